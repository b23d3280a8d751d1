package substructure

import (
	"github.com/bits-and-blooms/bitset"
)

// refinementStrategy keeps a domain matrix: row q is the set of target
// vertices query vertex q may still take.  Rows are seeded by degree and the
// vertex predicate and pruned to arc consistency: (q, t) survives only while
// every query neighbour of q has a domain member among the neighbours of t
// joined by a compatible edge.  Each commitment saves the matrix to an arena
// slab, pins the row, removes the target from every other row and prunes
// again; undo copies the saved block back.
//
// Pruning only ever drops pairs that cannot be part of a completion of the
// current partial mapping, so the search stays complete.
type refinementStrategy struct {
	words int
	cur   []uint64
	rows  []*bitset.BitSet
	slab  []uint64
	alive bool
}

func newRefinementStrategy(s *searchState) *refinementStrategy {
	n, tn := s.n, s.target.VertexCount()
	words := (tn + 63) / 64
	if words == 0 {
		words = 1
	}
	r := &refinementStrategy{
		words: words,
		cur:   make([]uint64, n*words),
		rows:  make([]*bitset.BitSet, n),
		slab:  make([]uint64, 0, n*words*minInt(n, 8)),
	}
	for q := 0; q < n; q++ {
		lo, hi := q*words, (q+1)*words
		r.rows[q] = bitset.From(r.cur[lo:hi:hi])
	}
	for q := 0; q < n; q++ {
		for t := 0; t < tn; t++ {
			if s.targetDegree[t] >= s.queryDegree[q] && s.compat.VertexCompatible(q, t) {
				r.rows[q].Set(uint(t))
			}
		}
	}
	r.alive = r.refine(s)
	return r
}

// expand offers the unplaced query vertex with the smallest domain (lowest
// index on ties) against every member of that domain.
func (r *refinementStrategy) expand(s *searchState) {
	if !r.alive {
		return
	}
	best, bestSize := -1, uint(0)
	for q := 0; q < s.n; q++ {
		if s.mapping[q] != Unmapped {
			continue
		}
		size := r.rows[q].Count()
		if best < 0 || size < bestSize {
			best, bestSize = q, size
		}
	}
	if best < 0 {
		return
	}
	row := r.rows[best]
	for t, ok := row.NextSet(0); ok; t, ok = row.NextSet(t + 1) {
		s.push(best, int(t))
	}
}

func (r *refinementStrategy) admit(_ *searchState, c candidate) bool {
	return r.rows[c.q].Test(uint(c.t))
}

func (r *refinementStrategy) placed(s *searchState, c candidate) bool {
	r.slab = append(r.slab, r.cur...)

	lo, hi := c.q*r.words, (c.q+1)*r.words
	for i := lo; i < hi; i++ {
		r.cur[i] = 0
	}
	r.rows[c.q].Set(uint(c.t))
	for q := 0; q < s.n; q++ {
		if q != c.q {
			r.rows[q].Clear(uint(c.t))
		}
	}
	return r.refine(s)
}

func (r *refinementStrategy) unplaced(*searchState) {
	block := len(r.cur)
	saved := r.slab[len(r.slab)-block:]
	copy(r.cur, saved)
	r.slab = r.slab[:len(r.slab)-block]
}

// refine removes unsupported pairs until nothing changes.  It reports false
// as soon as a row empties.
func (r *refinementStrategy) refine(s *searchState) bool {
	for changed := true; changed; {
		changed = false
		for q := 0; q < s.n; q++ {
			row := r.rows[q]
			for t, ok := row.NextSet(0); ok; t, ok = row.NextSet(t + 1) {
				if !r.supported(s, q, int(t)) {
					row.Clear(t)
					changed = true
				}
			}
			if row.None() {
				return false
			}
		}
	}
	return true
}

func (r *refinementStrategy) supported(s *searchState, q, t int) bool {
	tnbrs := s.target.Neighbors(t)
	for _, qn := range s.query.Neighbors(q) {
		qe := s.query.EdgeBetween(q, qn)
		dom := r.rows[qn]
		found := false
		for _, tn := range tnbrs {
			if dom.Test(uint(tn)) && s.compat.EdgeCompatible(qe, s.target.EdgeBetween(t, tn)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
