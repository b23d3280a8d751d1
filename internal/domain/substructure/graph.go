// Package substructure implements subgraph isomorphism matching over small
// labelled graphs.  A query graph with per-vertex and per-edge compatibility
// predicates is compiled into a Pattern, which finds, tests for, or lazily
// enumerates the embeddings of the query in a target graph using one of three
// backtracking strategies: constraint refinement, frontier expansion, or a
// precompiled depth-first plan.
//
// Finding no embedding is never an error.  Errors are reserved for malformed
// graphs, a query that refuses to bind to a target, and bad options.
package substructure

import (
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// Graph is read-only adjacency access over a query or target graph.  Vertices
// are 0..VertexCount()-1 and edges 0..EdgeCount()-1.  Implementations must not
// change while a match against them is in progress.
type Graph interface {
	VertexCount() int
	EdgeCount() int
	// Neighbors lists the vertices adjacent to v in a deterministic order
	// without duplicates.  Callers do not modify the returned slice.
	Neighbors(v int) []int
	// EdgeBetween returns the index of the edge joining u and v, or -1.
	EdgeBetween(u, v int) int
	// Endpoints returns the two vertices of edge e.
	Endpoints(e int) (int, int)
}

// Degree returns the number of neighbours of v.
func Degree(g Graph, v int) int {
	return len(g.Neighbors(v))
}

// ValidateGraph checks that g is a simple undirected graph whose adjacency,
// edge lookup and endpoints agree.  Failures carry the supplied code, which is
// CodeQueryMalformed or CodeTargetMalformed depending on the graph's role.
func ValidateGraph(g Graph, code errors.ErrorCode) error {
	if g == nil {
		return errors.New(code, "graph is nil")
	}
	n, m := g.VertexCount(), g.EdgeCount()
	if n < 0 || m < 0 {
		return errors.New(code, "negative vertex or edge count").WithDetailf("vertices=%d edges=%d", n, m)
	}

	seen := make([]int, n)
	for i := range seen {
		seen[i] = -1
	}
	degreeSum := 0
	for v := 0; v < n; v++ {
		for _, u := range g.Neighbors(v) {
			if u < 0 || u >= n {
				return errors.New(code, "neighbour index out of range").WithDetailf("vertex=%d neighbour=%d", v, u)
			}
			if u == v {
				return errors.New(code, "self loop").WithDetailf("vertex=%d", v)
			}
			if seen[u] == v {
				return errors.New(code, "duplicate neighbour").WithDetailf("vertex=%d neighbour=%d", v, u)
			}
			seen[u] = v
			e := g.EdgeBetween(v, u)
			if e < 0 || e >= m {
				return errors.New(code, "adjacent vertices have no edge").WithDetailf("u=%d v=%d edge=%d", v, u, e)
			}
			if g.EdgeBetween(u, v) != e {
				return errors.New(code, "adjacency is not symmetric").WithDetailf("u=%d v=%d", v, u)
			}
			a, b := g.Endpoints(e)
			if !(a == v && b == u) && !(a == u && b == v) {
				return errors.New(code, "edge endpoints disagree with adjacency").WithDetailf("edge=%d", e)
			}
		}
		degreeSum += len(g.Neighbors(v))
	}
	if degreeSum != 2*m {
		return errors.New(code, "edge count disagrees with adjacency").WithDetailf("edges=%d degree_sum=%d", m, degreeSum)
	}
	return nil
}

// Components labels every vertex of g with the index of its connected
// component.  Components are numbered in order of their lowest vertex.
func Components(g Graph) []int {
	n := g.VertexCount()
	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}
	queue := make([]int, 0, n)
	next := 0
	for s := 0; s < n; s++ {
		if comp[s] >= 0 {
			continue
		}
		comp[s] = next
		queue = append(queue[:0], s)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, u := range g.Neighbors(v) {
				if comp[u] < 0 {
					comp[u] = next
					queue = append(queue, u)
				}
			}
		}
		next++
	}
	return comp
}
