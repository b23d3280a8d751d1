package substructure

// Unmapped marks a query vertex (or target vertex, in the inverse) that has no
// partner in the current partial mapping.
const Unmapped = -1

// candidate is a tentative (query vertex, target vertex) pair.
type candidate struct {
	q, t int
}

// level is one depth of the search.  Its candidates live in
// frontier[start:end]; cursor is the next one to try.
type level struct {
	start, end, cursor int
}

// Stats counts the work done by one search.
type Stats struct {
	// States is the number of candidate pairs evaluated.
	States int64
	// Pruned is the number of candidate pairs rejected by feasibility.
	Pruned int64
	// Results is the number of complete mappings produced.
	Results int64
}

// strategy supplies the algorithm-specific parts of the search.
type strategy interface {
	// expand appends the candidates for the next depth to s.frontier.
	expand(s *searchState)
	// admit runs the strategy's own cheap check before the shared
	// structural tests.
	admit(s *searchState, c candidate) bool
	// placed is called after c has been recorded.  Returning false marks the
	// new state dead.
	placed(s *searchState, c candidate) bool
	// unplaced is called after the most recent pair has been removed.
	unplaced(s *searchState)
}

// searchState is the arena-indexed backtracking state of one match attempt.
// The frontier is a single growable buffer; each level owns a window of it
// and undo truncates back to that window's start, so extend and undo are exact
// inverses.  Between steps len(levels) == len(path)+1.
type searchState struct {
	query  Graph
	target Graph
	compat Compatibility
	mode   Mode
	strat  strategy

	// plan, when set, supplies precomputed back-references for edge checks.
	plan *plan

	n        int
	mapping  []int
	inverse  []int
	path     []int
	frontier []candidate
	levels   []level

	queryDegree  []int
	targetDegree []int

	goal  bool
	done  bool
	stats Stats
}

func newSearchState(query, target Graph, compat Compatibility, mode Mode, strat strategy, qdeg []int) *searchState {
	n, tn := query.VertexCount(), target.VertexCount()
	s := &searchState{
		query:        query,
		target:       target,
		compat:       compat,
		mode:         mode,
		strat:        strat,
		n:            n,
		mapping:      make([]int, n),
		inverse:      make([]int, tn),
		path:         make([]int, 0, n),
		frontier:     make([]candidate, 0, 4*(n+1)),
		levels:       make([]level, 0, n+1),
		queryDegree:  qdeg,
		targetDegree: make([]int, tn),
	}
	for i := range s.mapping {
		s.mapping[i] = Unmapped
	}
	for i := range s.inverse {
		s.inverse[i] = Unmapped
		s.targetDegree[i] = len(target.Neighbors(i))
	}
	return s
}

// start opens the root level.  It must be called once, after the strategy has
// initialised whatever it needs.
func (s *searchState) start() {
	if s.n == 0 {
		s.levels = append(s.levels, level{})
		return
	}
	s.pushLevel()
}

func (s *searchState) pushLevel() {
	begin := len(s.frontier)
	s.strat.expand(s)
	s.levels = append(s.levels, level{start: begin, end: len(s.frontier), cursor: begin})
}

func (s *searchState) push(q, t int) {
	s.frontier = append(s.frontier, candidate{q: q, t: t})
}

// extend places c and opens the next level.  It reports whether the new state
// is still alive.
func (s *searchState) extend(c candidate) bool {
	s.mapping[c.q] = c.t
	s.inverse[c.t] = c.q
	s.path = append(s.path, c.q)
	alive := s.strat.placed(s, c)
	if alive && len(s.path) < s.n {
		s.pushLevel()
	} else {
		s.levels = append(s.levels, level{start: len(s.frontier), end: len(s.frontier), cursor: len(s.frontier)})
	}
	return alive
}

// undo removes the most recent pair and its level.
func (s *searchState) undo() {
	top := s.levels[len(s.levels)-1]
	s.frontier = s.frontier[:top.start]
	s.levels = s.levels[:len(s.levels)-1]

	q := s.path[len(s.path)-1]
	s.path = s.path[:len(s.path)-1]
	s.inverse[s.mapping[q]] = Unmapped
	s.mapping[q] = Unmapped
	s.strat.unplaced(s)
}

// next advances to the next complete mapping.  After it returns true the
// mapping is readable through s.mapping until the following call.
func (s *searchState) next() bool {
	if s.done {
		return false
	}
	if s.n == 0 {
		s.done = true
		s.stats.Results++
		return true
	}
	if s.goal {
		s.goal = false
		s.undo()
	}
	for {
		top := &s.levels[len(s.levels)-1]
		if top.cursor >= top.end {
			if len(s.path) == 0 {
				s.done = true
				return false
			}
			s.undo()
			continue
		}
		c := s.frontier[top.cursor]
		top.cursor++
		s.stats.States++
		if !s.feasible(c) {
			s.stats.Pruned++
			continue
		}
		if s.extend(c) && len(s.path) == s.n {
			s.goal = true
			s.stats.Results++
			return true
		}
	}
}

// feasible runs the shared tests cheapest first: target unused, query vertex
// unplaced, degree, strategy check, edges to placed neighbours, the exact-mode
// edge count, then the vertex and edge predicates.
func (s *searchState) feasible(c candidate) bool {
	if s.inverse[c.t] != Unmapped || s.mapping[c.q] != Unmapped {
		return false
	}
	if s.targetDegree[c.t] < s.queryDegree[c.q] {
		return false
	}
	if !s.strat.admit(s, c) {
		return false
	}

	placedQuery := 0
	if s.plan != nil {
		refs := s.plan.refsOf(c.q)
		for _, r := range refs {
			if s.target.EdgeBetween(c.t, s.mapping[r.q]) < 0 {
				return false
			}
		}
		placedQuery = len(refs)
	} else {
		for _, qn := range s.query.Neighbors(c.q) {
			tn := s.mapping[qn]
			if tn == Unmapped {
				continue
			}
			if s.target.EdgeBetween(c.t, tn) < 0 {
				return false
			}
			placedQuery++
		}
	}

	if s.mode == ModeExact {
		placedTarget := 0
		for _, tn := range s.target.Neighbors(c.t) {
			if s.inverse[tn] != Unmapped {
				placedTarget++
			}
		}
		if placedTarget != placedQuery {
			return false
		}
	}

	if !s.compat.VertexCompatible(c.q, c.t) {
		return false
	}

	if s.plan != nil {
		for _, r := range s.plan.refsOf(c.q) {
			if !s.compat.EdgeCompatible(r.edge, s.target.EdgeBetween(c.t, s.mapping[r.q])) {
				return false
			}
		}
		return true
	}
	for _, qn := range s.query.Neighbors(c.q) {
		tn := s.mapping[qn]
		if tn == Unmapped {
			continue
		}
		if !s.compat.EdgeCompatible(s.query.EdgeBetween(c.q, qn), s.target.EdgeBetween(c.t, tn)) {
			return false
		}
	}
	return true
}

// current returns a copy of the mapping.
func (s *searchState) current() []int {
	out := make([]int, s.n)
	copy(out, s.mapping)
	return out
}
