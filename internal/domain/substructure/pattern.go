package substructure

import (
	"time"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// Outcome classifies a finished match call for a Recorder.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeError   Outcome = "error"
)

// Recorder receives one observation per finished match call.
type Recorder interface {
	RecordMatch(algorithm string, outcome Outcome, elapsed time.Duration, stats Stats)
}

type nopRecorder struct{}

func (nopRecorder) RecordMatch(string, Outcome, time.Duration, Stats) {}

// Option configures a Pattern.
type Option func(*Pattern)

// WithAlgorithm selects the search strategy.
func WithAlgorithm(a Algorithm) Option {
	return func(p *Pattern) { p.algorithm = a }
}

// WithMode selects subgraph or exact edge semantics.
func WithMode(m Mode) Option {
	return func(p *Pattern) { p.mode = m }
}

// WithLogger sets the logger used for compilation and failures.
func WithLogger(l logging.Logger) Option {
	return func(p *Pattern) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the observer notified after every call.
func WithRecorder(r Recorder) Option {
	return func(p *Pattern) {
		if r != nil {
			p.recorder = r
		}
	}
}

// Pattern is a compiled query.  It is immutable after NewPattern and safe for
// concurrent use; every call runs on its own search state.
type Pattern struct {
	query     Query
	algorithm Algorithm
	mode      Mode
	logger    logging.Logger
	recorder  Recorder

	queryDegree []int
	plan        *plan
	rootPlan    *plan
}

// NewPattern validates q and compiles it.  The depth-first plan and the plan
// rooted at query vertex 0 are built here so that repeated matching against
// many targets pays for them once.
func NewPattern(q Query, opts ...Option) (*Pattern, error) {
	if q == nil {
		return nil, errors.QueryMalformed("query is nil")
	}
	p := &Pattern{
		query:     q,
		algorithm: AlgorithmFrontier,
		mode:      ModeSubgraph,
		logger:    logging.NewNopLogger(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.algorithm.valid() {
		return nil, errors.New(errors.ErrCodeAlgorithmUnsupported, "unsupported matching algorithm").WithDetailf("algorithm=%d", int(p.algorithm))
	}
	if !p.mode.valid() {
		return nil, errors.New(errors.ErrCodeModeUnsupported, "unsupported matching mode").WithDetailf("mode=%d", int(p.mode))
	}
	if err := ValidateGraph(q, errors.CodeQueryMalformed); err != nil {
		return nil, err
	}

	n := q.VertexCount()
	p.queryDegree = make([]int, n)
	for v := 0; v < n; v++ {
		p.queryDegree[v] = len(q.Neighbors(v))
	}
	p.plan = compilePlan(q, -1)
	p.rootPlan = compilePlan(q, 0)

	order := make([]int, len(p.plan.steps))
	for i, st := range p.plan.steps {
		order[i] = st.q
	}
	p.logger.Debug("pattern compiled",
		logging.String("algorithm", p.algorithm.String()),
		logging.String("mode", p.mode.String()),
		logging.Int("query_vertices", n),
		logging.Int("query_edges", q.EdgeCount()),
		logging.Ints("plan_order", order),
	)
	return p, nil
}

// Query returns the compiled query.
func (p *Pattern) Query() Query { return p.query }

// Algorithm returns the search strategy.
func (p *Pattern) Algorithm() Algorithm { return p.algorithm }

// Mode returns the edge semantics.
func (p *Pattern) Mode() Mode { return p.mode }

// newSearch prepares a search of target.  It returns a nil state, without
// binding the query, when the query has more vertices than the target.  A
// root >= 0 restricts query vertex 0 to that target vertex using the rooted
// plan.
func (p *Pattern) newSearch(target Graph, root int) (*searchState, error) {
	if err := ValidateGraph(target, errors.CodeTargetMalformed); err != nil {
		return nil, err
	}
	if p.query.VertexCount() > target.VertexCount() {
		return nil, nil
	}
	compat, err := p.query.Bind(target)
	if err != nil {
		code := errors.GetCode(err)
		if code == errors.CodeUnknown {
			code = errors.CodeTargetMalformed
		}
		return nil, errors.Wrap(err, code, "query cannot bind to target")
	}
	if compat == nil {
		return nil, errors.TargetMalformed("query bound to a nil compatibility")
	}

	if root >= 0 {
		d := &depthFirstStrategy{plan: p.rootPlan, root: root}
		s := newSearchState(p.query, target, compat, p.mode, d, p.queryDegree)
		s.plan = p.rootPlan
		s.start()
		return s, nil
	}

	var s *searchState
	switch p.algorithm {
	case AlgorithmRefinement:
		s = newSearchState(p.query, target, compat, p.mode, nil, p.queryDegree)
		s.strat = newRefinementStrategy(s)
	case AlgorithmDepthFirst:
		s = newSearchState(p.query, target, compat, p.mode, &depthFirstStrategy{plan: p.plan, root: -1}, p.queryDegree)
		s.plan = p.plan
	default:
		s = newSearchState(p.query, target, compat, p.mode, frontierStrategy{}, p.queryDegree)
	}
	s.start()
	return s, nil
}

func (p *Pattern) record(start time.Time, s *searchState, found bool, err error) {
	var stats Stats
	if s != nil {
		stats = s.stats
	}
	outcome := OutcomeNoMatch
	switch {
	case err != nil:
		outcome = OutcomeError
		p.logger.Warn("match failed", logging.String("algorithm", p.algorithm.String()), logging.Err(err))
	case found:
		outcome = OutcomeMatched
	}
	p.recorder.RecordMatch(p.algorithm.String(), outcome, time.Since(start), stats)
}

// Match returns the first mapping found, or a zero-length slice when there is
// none.  The empty query yields a zero-length mapping too; use Matches to tell
// the two apart.
func (p *Pattern) Match(target Graph) ([]int, error) {
	start := time.Now()
	s, err := p.newSearch(target, -1)
	if err != nil {
		p.record(start, nil, false, err)
		return nil, err
	}
	if s == nil {
		p.record(start, nil, false, nil)
		return []int{}, nil
	}
	if !s.next() {
		p.record(start, s, false, nil)
		return []int{}, nil
	}
	p.record(start, s, true, nil)
	return s.current(), nil
}

// Matches reports whether at least one mapping exists.
func (p *Pattern) Matches(target Graph) (bool, error) {
	start := time.Now()
	s, err := p.newSearch(target, -1)
	if err != nil || s == nil {
		p.record(start, s, false, err)
		return false, err
	}
	found := s.next()
	p.record(start, s, found, nil)
	return found, nil
}

// MatchesRoot reports whether some mapping sends query vertex 0 to root.  It
// uses the plan rooted at vertex 0 regardless of the Pattern's algorithm.  The
// empty query has no vertex 0 and never matches.
func (p *Pattern) MatchesRoot(target Graph, root int) (bool, error) {
	start := time.Now()
	if target == nil {
		err := errors.TargetMalformed("graph is nil")
		p.record(start, nil, false, err)
		return false, err
	}
	if root < 0 || root >= target.VertexCount() {
		err := errors.New(errors.ErrCodeRootOutOfRange, "root vertex out of range").
			WithDetailf("root=%d vertices=%d", root, target.VertexCount())
		p.record(start, nil, false, err)
		return false, err
	}
	if p.query.VertexCount() == 0 {
		p.record(start, nil, false, nil)
		return false, nil
	}
	s, err := p.newSearch(target, root)
	if err != nil || s == nil {
		p.record(start, s, false, err)
		return false, err
	}
	found := s.next()
	p.record(start, s, found, nil)
	return found, nil
}

// MatchAll returns the lazy sequence of every mapping of the query in target.
// No work happens until a terminal operation or iterator consumes it.
func (p *Pattern) MatchAll(target Graph) *Mappings {
	return &Mappings{pattern: p, target: target}
}
