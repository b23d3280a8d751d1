package substructure

// frontierStrategy grows the mapping through the connected neighbourhood of
// the placed query vertices.  The next query vertex is the first unplaced
// neighbour met while walking the path in placement order; its candidates are
// the unused target neighbours of its parent's image.  When the placed part
// has no unplaced neighbour a new component starts from the lowest unplaced
// query vertex against every unused target vertex.
type frontierStrategy struct{}

func (frontierStrategy) expand(s *searchState) {
	for _, pq := range s.path {
		for _, qn := range s.query.Neighbors(pq) {
			if s.mapping[qn] != Unmapped {
				continue
			}
			for _, tn := range s.target.Neighbors(s.mapping[pq]) {
				if s.inverse[tn] == Unmapped {
					s.push(qn, tn)
				}
			}
			return
		}
	}

	q := -1
	for v, t := range s.mapping {
		if t == Unmapped {
			q = v
			break
		}
	}
	if q < 0 {
		return
	}
	for t, owner := range s.inverse {
		if owner == Unmapped {
			s.push(q, t)
		}
	}
}

// admit applies the one-step lookahead: the unplaced neighbours of the query
// vertex must fit into the unused neighbours of the target vertex.
func (frontierStrategy) admit(s *searchState, c candidate) bool {
	needed := 0
	for _, qn := range s.query.Neighbors(c.q) {
		if s.mapping[qn] == Unmapped {
			needed++
		}
	}
	if needed == 0 {
		return true
	}
	free := 0
	for _, tn := range s.target.Neighbors(c.t) {
		if s.inverse[tn] == Unmapped {
			free++
			if free >= needed {
				return true
			}
		}
	}
	return false
}

func (frontierStrategy) placed(*searchState, candidate) bool { return true }

func (frontierStrategy) unplaced(*searchState) {}
