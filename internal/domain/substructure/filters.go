package substructure

// ComponentFilter returns a Mappings filter enforcing a fragment grouping of a
// disconnected query.  grouping[q] is the group of query vertex q, 0 meaning
// unconstrained.  Vertices of one group must land in one connected component
// of target, and distinct groups in distinct components.  A grouping whose
// length differs from the mapping rejects everything.
func ComponentFilter(grouping []int, target Graph) func(mapping []int) bool {
	comp := Components(target)
	groups := append([]int(nil), grouping...)
	return func(mapping []int) bool {
		if len(mapping) != len(groups) {
			return false
		}
		groupComp := make(map[int]int, 4)
		compGroup := make(map[int]int, 4)
		for q, g := range groups {
			if g == 0 {
				continue
			}
			c := comp[mapping[q]]
			if seen, ok := groupComp[g]; ok {
				if seen != c {
					return false
				}
				continue
			}
			if owner, ok := compGroup[c]; ok && owner != g {
				return false
			}
			groupComp[g] = c
			compGroup[c] = g
		}
		return true
	}
}

// TetrahedralCentre is a stereo centre with four neighbour slots in winding
// order.  A slot of -1 stands for an implicit neighbour (usually hydrogen).
// Parity is +1 for clockwise and -1 for anticlockwise, looking from the first
// slot.
type TetrahedralCentre struct {
	Focus     int
	Neighbors [4]int
	Parity    int
}

// DoubleBondStereo fixes the relative position of RefBegin (a neighbour of
// Begin) and RefEnd (a neighbour of End) across the Begin=End double bond.
type DoubleBondStereo struct {
	Begin, End       int
	RefBegin, RefEnd int
	Together         bool
}

// StereoSource exposes the stereo descriptors of a graph.
type StereoSource interface {
	TetrahedralCentres() []TetrahedralCentre
	TetrahedralAt(v int) (TetrahedralCentre, bool)
	DoubleBondStereos() []DoubleBondStereo
	// DoubleBondAt looks the configuration up by its bond endpoints in
	// either order.
	DoubleBondAt(u, v int) (DoubleBondStereo, bool)
}

// StereoFilter returns a Mappings filter keeping mappings whose images
// reproduce every stereo descriptor of query.  A query descriptor whose image
// carries no target descriptor rejects the mapping.
func StereoFilter(query, target StereoSource) func(mapping []int) bool {
	centres := query.TetrahedralCentres()
	bonds := query.DoubleBondStereos()
	if len(centres) == 0 && len(bonds) == 0 {
		return func([]int) bool { return true }
	}
	return func(mapping []int) bool {
		for _, qc := range centres {
			tc, ok := target.TetrahedralAt(mapping[qc.Focus])
			if !ok || !tetrahedralAgrees(qc, tc, mapping) {
				return false
			}
		}
		for _, qb := range bonds {
			tb, ok := target.DoubleBondAt(mapping[qb.Begin], mapping[qb.End])
			if !ok || !doubleBondAgrees(qb, tb, mapping) {
				return false
			}
		}
		return true
	}
}

// tetrahedralAgrees maps every query slot to a target slot and compares the
// parities, flipping the target's for an odd permutation.  Query slots with no
// image take the remaining target slots in order.
func tetrahedralAgrees(qc, tc TetrahedralCentre, mapping []int) bool {
	var slot [4]int
	var taken [4]bool
	for i, qn := range qc.Neighbors {
		slot[i] = -1
		if qn < 0 {
			continue
		}
		img := mapping[qn]
		j := -1
		for k, tn := range tc.Neighbors {
			if tn == img {
				j = k
				break
			}
		}
		if j < 0 || taken[j] {
			return false
		}
		slot[i], taken[j] = j, true
	}
	k := 0
	for i := range slot {
		if slot[i] >= 0 {
			continue
		}
		for taken[k] {
			k++
		}
		slot[i], taken[k] = k, true
	}
	return qc.Parity == tc.Parity*permutationSign(slot[:])
}

func doubleBondAgrees(qb, tb DoubleBondStereo, mapping []int) bool {
	if tb.Begin != mapping[qb.Begin] {
		tb.Begin, tb.End = tb.End, tb.Begin
		tb.RefBegin, tb.RefEnd = tb.RefEnd, tb.RefBegin
	}
	together := tb.Together
	if mapping[qb.RefBegin] != tb.RefBegin {
		together = !together
	}
	if mapping[qb.RefEnd] != tb.RefEnd {
		together = !together
	}
	return together == qb.Together
}

// permutationSign returns +1 for an even permutation and -1 for an odd one.
func permutationSign(p []int) int {
	sign := 1
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			if p[i] > p[j] {
				sign = -sign
			}
		}
	}
	return sign
}
