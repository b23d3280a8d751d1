package molecule

import (
	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// stereoIndex holds the stereo descriptors of a molecule or query with lookup
// by focus atom and by bond endpoints.
type stereoIndex struct {
	centres []substructure.TetrahedralCentre
	byFocus map[int]int
	bonds   []substructure.DoubleBondStereo
	byAtoms map[[2]int]int
}

func (s stereoIndex) centreAt(v int) (substructure.TetrahedralCentre, bool) {
	i, ok := s.byFocus[v]
	if !ok {
		return substructure.TetrahedralCentre{}, false
	}
	return s.centres[i], true
}

func (s stereoIndex) bondAt(u, v int) (substructure.DoubleBondStereo, bool) {
	i, ok := s.byAtoms[[2]int{u, v}]
	if !ok {
		return substructure.DoubleBondStereo{}, false
	}
	return s.bonds[i], true
}

func (s stereoIndex) empty() bool {
	return len(s.centres) == 0 && len(s.bonds) == 0
}

// buildStereoIndex collects the stereo descriptors of g.  A centre's neighbour
// slots must be -1 (at most once) or distinct atoms bonded to the focus; a
// double bond's references must be bonded to the matching end.
func buildStereoIndex(
	g substructure.Graph,
	atom func(v int) (mtypes.Chirality, []int),
	bond func(e int) (mtypes.BondStereo, []int),
) (stereoIndex, error) {
	s := stereoIndex{byFocus: make(map[int]int), byAtoms: make(map[[2]int]int)}
	n := g.VertexCount()

	for v := 0; v < n; v++ {
		chirality, nbrs := atom(v)
		if chirality == mtypes.ChiralityNone {
			continue
		}
		if !chirality.IsValid() || len(nbrs) != 4 {
			return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "tetrahedral centre needs a winding and four neighbour slots").
				WithDetailf("atom=%d chirality=%q slots=%d", v, chirality, len(nbrs))
		}
		c := substructure.TetrahedralCentre{Focus: v, Parity: 1}
		if chirality == mtypes.ChiralityCounterClockwise {
			c.Parity = -1
		}
		implicit := 0
		for i, u := range nbrs {
			if u < 0 {
				implicit++
				c.Neighbors[i] = -1
				continue
			}
			if u >= n || g.EdgeBetween(v, u) < 0 {
				return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "chiral neighbour is not bonded to the centre").WithDetailf("atom=%d neighbour=%d", v, u)
			}
			for _, prev := range nbrs[:i] {
				if prev == u {
					return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "chiral neighbour listed twice").WithDetailf("atom=%d neighbour=%d", v, u)
				}
			}
			c.Neighbors[i] = u
		}
		if implicit > 1 {
			return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "at most one implicit neighbour per centre").WithDetailf("atom=%d", v)
		}
		s.byFocus[v] = len(s.centres)
		s.centres = append(s.centres, c)
	}

	for e := 0; e < g.EdgeCount(); e++ {
		config, refs := bond(e)
		if config == mtypes.BondStereoNone {
			continue
		}
		if !config.IsValid() || len(refs) != 2 {
			return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "stereo bond needs a configuration and two reference atoms").
				WithDetailf("bond=%d stereo=%q refs=%d", e, config, len(refs))
		}
		a, b := g.Endpoints(e)
		if refs[0] == b || refs[0] < 0 || refs[0] >= n || g.EdgeBetween(a, refs[0]) < 0 {
			return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "first reference must be bonded to the begin atom").WithDetailf("bond=%d ref=%d", e, refs[0])
		}
		if refs[1] == a || refs[1] < 0 || refs[1] >= n || g.EdgeBetween(b, refs[1]) < 0 {
			return stereoIndex{}, errors.New(errors.ErrCodeStereoMalformed, "second reference must be bonded to the end atom").WithDetailf("bond=%d ref=%d", e, refs[1])
		}
		s.byAtoms[[2]int{a, b}] = len(s.bonds)
		s.byAtoms[[2]int{b, a}] = len(s.bonds)
		s.bonds = append(s.bonds, substructure.DoubleBondStereo{
			Begin: a, End: b, RefBegin: refs[0], RefEnd: refs[1],
			Together: config == mtypes.BondStereoTogether,
		})
	}
	return s, nil
}
