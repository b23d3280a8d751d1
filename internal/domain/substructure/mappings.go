package substructure

import (
	"time"
)

// Mappings is a lazy sequence of complete mappings of a query in one target.
// Operators return new sequences and never run a search; every terminal
// operation (and every Iterator) runs its own search from scratch, so a
// Mappings value can be consumed any number of times.  Operators apply left to
// right: Limit(100).GetUniqueAtoms() deduplicates the first hundred raw
// mappings, GetUniqueAtoms().Limit(100) returns the first hundred distinct
// ones.
type Mappings struct {
	pattern *Pattern
	target  Graph
	stages  []stageSpec
}

type stageKind int

const (
	stageFilter stageKind = iota
	stageLimit
	stageUniqueAtoms
	stageUniqueBonds
)

type stageSpec struct {
	kind   stageKind
	filter func([]int) bool
	limit  int
}

func (m *Mappings) with(st stageSpec) *Mappings {
	stages := make([]stageSpec, len(m.stages), len(m.stages)+1)
	copy(stages, m.stages)
	return &Mappings{pattern: m.pattern, target: m.target, stages: append(stages, st)}
}

// Filter keeps the mappings for which keep returns true.  keep must not
// modify the mapping.
func (m *Mappings) Filter(keep func(mapping []int) bool) *Mappings {
	return m.with(stageSpec{kind: stageFilter, filter: keep})
}

// Limit ends the sequence after n mappings.  Negative n counts as zero.
func (m *Mappings) Limit(n int) *Mappings {
	if n < 0 {
		n = 0
	}
	return m.with(stageSpec{kind: stageLimit, limit: n})
}

// GetUniqueAtoms drops mappings whose set of target vertices was already seen.
func (m *Mappings) GetUniqueAtoms() *Mappings {
	return m.with(stageSpec{kind: stageUniqueAtoms})
}

// GetUniqueBonds drops mappings whose set of target edges was already seen.
func (m *Mappings) GetUniqueBonds() *Mappings {
	return m.with(stageSpec{kind: stageUniqueBonds})
}

// ─────────────────────────────────────────────────────────────────────────────
// Active pipeline
// ─────────────────────────────────────────────────────────────────────────────

type stage interface {
	accept(mapping []int) bool
	// exhausted reports that no further mapping can pass.
	exhausted() bool
}

type filterStage struct{ keep func([]int) bool }

func (f filterStage) accept(mapping []int) bool { return f.keep(mapping) }
func (filterStage) exhausted() bool             { return false }

type limitStage struct{ remaining int }

func (l *limitStage) accept([]int) bool {
	if l.remaining == 0 {
		return false
	}
	l.remaining--
	return true
}

func (l *limitStage) exhausted() bool { return l.remaining == 0 }

type uniqueStage struct {
	seen *uniqueSet
	key  func([]int) keySet
}

func (u uniqueStage) accept(mapping []int) bool { return u.seen.add(u.key(mapping)) }
func (uniqueStage) exhausted() bool             { return false }

func (m *Mappings) build() []stage {
	out := make([]stage, 0, len(m.stages))
	for _, st := range m.stages {
		switch st.kind {
		case stageFilter:
			out = append(out, filterStage{keep: st.filter})
		case stageLimit:
			out = append(out, &limitStage{remaining: st.limit})
		case stageUniqueAtoms:
			out = append(out, uniqueStage{seen: newUniqueSet(), key: vertexKey})
		case stageUniqueBonds:
			query, target := m.pattern.query, m.target
			out = append(out, uniqueStage{seen: newUniqueSet(), key: func(mapping []int) keySet {
				return edgeKey(query, target, mapping)
			}})
		}
	}
	return out
}

// Iterator pulls mappings one at a time.  The search binds the query on the
// first call to Next.
//
//	it := pattern.MatchAll(target).GetUniqueAtoms().Iterator()
//	defer it.Close()
//	for it.Next() {
//		use(it.Mapping())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	src      *Mappings
	stages   []stage
	search   *searchState
	started  bool
	finished bool
	current  []int
	yielded  int
	err      error
	begin    time.Time
	stats    Stats
}

// Iterator starts a new, independent pass over the sequence.
func (m *Mappings) Iterator() *Iterator {
	return &Iterator{src: m, stages: m.build()}
}

func (it *Iterator) exhausted() bool {
	for _, st := range it.stages {
		if st.exhausted() {
			return true
		}
	}
	return false
}

// Next advances to the next mapping that passes every operator.
func (it *Iterator) Next() bool {
	if it.finished {
		return false
	}
	if !it.started {
		it.started = true
		it.begin = time.Now()
		if it.exhausted() {
			it.finish()
			return false
		}
		s, err := it.src.pattern.newSearch(it.src.target, -1)
		if err != nil {
			it.err = err
			it.finish()
			return false
		}
		if s == nil {
			it.finish()
			return false
		}
		it.search = s
	}
	for {
		if it.exhausted() || !it.search.next() {
			it.finish()
			return false
		}
		mapping := it.search.current()
		if it.pass(mapping) {
			it.current = mapping
			it.yielded++
			return true
		}
	}
}

func (it *Iterator) pass(mapping []int) bool {
	for _, st := range it.stages {
		if !st.accept(mapping) {
			return false
		}
	}
	return true
}

// Mapping returns the mapping produced by the last successful Next.  The
// slice belongs to the caller.
func (it *Iterator) Mapping() []int { return it.current }

// Err returns the error that ended the iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Stats returns the search counters accumulated so far.
func (it *Iterator) Stats() Stats {
	if it.search != nil {
		return it.search.stats
	}
	return it.stats
}

// Close stops the iteration early and reports it to the Pattern's recorder
// unless it never started.  It is safe to call more than once.
func (it *Iterator) Close() {
	if !it.started {
		it.started, it.finished = true, true
		return
	}
	it.finish()
}

func (it *Iterator) finish() {
	if it.finished {
		return
	}
	it.finished = true
	it.current = nil
	if it.search != nil {
		it.stats = it.search.stats
		it.search = nil
	}
	p := it.src.pattern
	outcome := OutcomeNoMatch
	switch {
	case it.err != nil:
		outcome = OutcomeError
	case it.yielded > 0:
		outcome = OutcomeMatched
	}
	p.recorder.RecordMatch(p.algorithm.String(), outcome, time.Since(it.begin), it.stats)
}

// ─────────────────────────────────────────────────────────────────────────────
// Terminal operations
// ─────────────────────────────────────────────────────────────────────────────

// Each calls fn for every mapping until fn returns false.
func (m *Mappings) Each(fn func(mapping []int) bool) error {
	it := m.Iterator()
	defer it.Close()
	for it.Next() {
		if !fn(it.Mapping()) {
			break
		}
	}
	return it.Err()
}

// ToArray materialises the whole sequence.
func (m *Mappings) ToArray() ([][]int, error) {
	out := make([][]int, 0)
	err := m.Each(func(mapping []int) bool {
		out = append(out, mapping)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the first mapping, or nil when the sequence is empty.
func (m *Mappings) First() ([]int, error) {
	var first []int
	err := m.Each(func(mapping []int) bool {
		first = mapping
		return false
	})
	return first, err
}

// Count consumes the sequence and returns its length.
func (m *Mappings) Count() (int, error) {
	n := 0
	err := m.Each(func([]int) bool {
		n++
		return true
	})
	return n, err
}

// CountUnique counts the distinct target vertex sets without retaining the
// mappings.
func (m *Mappings) CountUnique() (int, error) {
	return m.GetUniqueAtoms().Count()
}

// AtLeast reports whether the sequence holds k or more mappings, stopping as
// soon as it knows.  k <= 0 is true without searching.
func (m *Mappings) AtLeast(k int) (bool, error) {
	if k <= 0 {
		return true, nil
	}
	n := 0
	err := m.Each(func([]int) bool {
		n++
		return n < k
	})
	if err != nil {
		return false, err
	}
	return n >= k, nil
}

// Exists reports whether the sequence is non-empty.
func (m *Mappings) Exists() (bool, error) {
	return m.AtLeast(1)
}
