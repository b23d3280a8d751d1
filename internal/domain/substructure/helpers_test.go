package substructure

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// listGraph is a small labelled adjacency-list graph for tests.
type listGraph struct {
	labels []string
	adj    [][]int
	ends   [][2]int
	index  map[[2]int]int
}

func newGraph(labels string, edges ...[2]int) *listGraph {
	g := &listGraph{
		adj:   make([][]int, len(labels)),
		index: make(map[[2]int]int),
	}
	for _, r := range labels {
		g.labels = append(g.labels, string(r))
	}
	for _, e := range edges {
		g.addEdge(e[0], e[1])
	}
	return g
}

func (g *listGraph) addEdge(a, b int) {
	id := len(g.ends)
	g.ends = append(g.ends, [2]int{a, b})
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	g.index[[2]int{a, b}] = id
	g.index[[2]int{b, a}] = id
}

func (g *listGraph) VertexCount() int      { return len(g.adj) }
func (g *listGraph) EdgeCount() int        { return len(g.ends) }
func (g *listGraph) Neighbors(v int) []int { return g.adj[v] }
func (g *listGraph) Endpoints(e int) (int, int) {
	return g.ends[e][0], g.ends[e][1]
}
func (g *listGraph) EdgeBetween(u, v int) int {
	if e, ok := g.index[[2]int{u, v}]; ok {
		return e
	}
	return -1
}

func uniform(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'C'
	}
	return string(b)
}

func pathGraph(n int) *listGraph {
	g := newGraph(uniform(n))
	for i := 0; i+1 < n; i++ {
		g.addEdge(i, i+1)
	}
	return g
}

func cycleGraph(n int) *listGraph {
	g := pathGraph(n)
	g.addEdge(n-1, 0)
	return g
}

// naphthalene-like fused bicycle: two six rings sharing edge 0-5.
func bicyclic() *listGraph {
	return newGraph("CCCCCCCCCC",
		[2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{5, 0},
		[2]int{5, 6}, [2]int{6, 7}, [2]int{7, 8}, [2]int{8, 9}, [2]int{9, 0},
	)
}

// labelQuery matches vertex labels exactly and edges unconditionally.
func labelQuery(q *listGraph) Query {
	vs := make([]VertexPredicate, q.VertexCount())
	for i, l := range q.labels {
		label := l
		vs[i] = VertexPredicateFunc(func(target Graph, v int) bool {
			return target.(*listGraph).labels[v] == label
		})
	}
	pq, err := NewQuery(q, vs, nil)
	if err != nil {
		panic(err)
	}
	return pq
}

func anyQuery(q Graph) Query {
	pq, err := NewQuery(q, nil, nil)
	if err != nil {
		panic(err)
	}
	return pq
}

// countingQuery counts Bind calls.
type countingQuery struct {
	Query
	binds int32
}

func (c *countingQuery) Bind(target Graph) (Compatibility, error) {
	atomic.AddInt32(&c.binds, 1)
	return c.Query.Bind(target)
}

type failingQuery struct{ Query }

func (failingQuery) Bind(Graph) (Compatibility, error) {
	return nil, errors.TargetMalformed("not a molecule")
}

type recorded struct {
	algorithm string
	outcome   Outcome
	stats     Stats
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (r *fakeRecorder) RecordMatch(algorithm string, outcome Outcome, _ time.Duration, stats Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recorded{algorithm: algorithm, outcome: outcome, stats: stats})
}

func (r *fakeRecorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.seen...)
}

var allAlgorithms = []Algorithm{AlgorithmFrontier, AlgorithmRefinement, AlgorithmDepthFirst}

func mustPattern(q Query, opts ...Option) *Pattern {
	p, err := NewPattern(q, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// canonical sorts mappings lexicographically so that algorithms can be
// compared regardless of enumeration order.
func canonical(ms [][]int) [][]int {
	out := make([][]int, len(ms))
	copy(out, ms)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}
