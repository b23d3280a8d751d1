package substructure

import (
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// Compatibility answers whether a query vertex (edge) may be matched to a
// target vertex (edge).  It is obtained from Query.Bind for one target and must
// be pure: the engine may call it any number of times in any order.
type Compatibility interface {
	VertexCompatible(queryVertex, targetVertex int) bool
	EdgeCompatible(queryEdge, targetEdge int) bool
}

// Query is a query graph that can bind its predicates to a target graph.
// Bind is called once per match attempt; an error aborts the attempt.
type Query interface {
	Graph
	Bind(target Graph) (Compatibility, error)
}

// VertexPredicate tests one target vertex.
type VertexPredicate interface {
	Accept(target Graph, v int) bool
}

// EdgePredicate tests one target edge.
type EdgePredicate interface {
	Accept(target Graph, e int) bool
}

// VertexPredicateFunc adapts a function to VertexPredicate.
type VertexPredicateFunc func(target Graph, v int) bool

// Accept implements VertexPredicate.
func (f VertexPredicateFunc) Accept(target Graph, v int) bool { return f(target, v) }

// EdgePredicateFunc adapts a function to EdgePredicate.
type EdgePredicateFunc func(target Graph, e int) bool

// Accept implements EdgePredicate.
func (f EdgePredicateFunc) Accept(target Graph, e int) bool { return f(target, e) }

type anyVertex struct{}

func (anyVertex) Accept(Graph, int) bool { return true }

type anyEdge struct{}

func (anyEdge) Accept(Graph, int) bool { return true }

// AnyVertex accepts every target vertex.
func AnyVertex() VertexPredicate { return anyVertex{} }

// AnyEdge accepts every target edge.
func AnyEdge() EdgePredicate { return anyEdge{} }

// AllVertices accepts a vertex when every predicate does.
func AllVertices(ps ...VertexPredicate) VertexPredicate {
	return VertexPredicateFunc(func(g Graph, v int) bool {
		for _, p := range ps {
			if !p.Accept(g, v) {
				return false
			}
		}
		return true
	})
}

// AnyOfVertices accepts a vertex when at least one predicate does.
func AnyOfVertices(ps ...VertexPredicate) VertexPredicate {
	return VertexPredicateFunc(func(g Graph, v int) bool {
		for _, p := range ps {
			if p.Accept(g, v) {
				return true
			}
		}
		return false
	})
}

// NotVertex negates p.
func NotVertex(p VertexPredicate) VertexPredicate {
	return VertexPredicateFunc(func(g Graph, v int) bool { return !p.Accept(g, v) })
}

// AllEdges accepts an edge when every predicate does.
func AllEdges(ps ...EdgePredicate) EdgePredicate {
	return EdgePredicateFunc(func(g Graph, e int) bool {
		for _, p := range ps {
			if !p.Accept(g, e) {
				return false
			}
		}
		return true
	})
}

// AnyOfEdges accepts an edge when at least one predicate does.
func AnyOfEdges(ps ...EdgePredicate) EdgePredicate {
	return EdgePredicateFunc(func(g Graph, e int) bool {
		for _, p := range ps {
			if p.Accept(g, e) {
				return true
			}
		}
		return false
	})
}

// NotEdge negates p.
func NotEdge(p EdgePredicate) EdgePredicate {
	return EdgePredicateFunc(func(g Graph, e int) bool { return !p.Accept(g, e) })
}

// PredicateQuery is a Query built from a plain graph and one predicate per
// vertex and per edge.  It binds to any target graph.
type PredicateQuery struct {
	Graph
	vertices []VertexPredicate
	edges    []EdgePredicate
}

// NewQuery builds a PredicateQuery.  A nil slice means "any" for every vertex
// (edge); a nil entry means "any" for that vertex (edge).
func NewQuery(g Graph, vertices []VertexPredicate, edges []EdgePredicate) (*PredicateQuery, error) {
	if err := ValidateGraph(g, errors.CodeQueryMalformed); err != nil {
		return nil, err
	}
	if vertices != nil && len(vertices) != g.VertexCount() {
		return nil, errors.QueryMalformed("one vertex predicate per query vertex is required").
			WithDetailf("vertices=%d predicates=%d", g.VertexCount(), len(vertices))
	}
	if edges != nil && len(edges) != g.EdgeCount() {
		return nil, errors.QueryMalformed("one edge predicate per query edge is required").
			WithDetailf("edges=%d predicates=%d", g.EdgeCount(), len(edges))
	}

	vs := make([]VertexPredicate, g.VertexCount())
	for i := range vs {
		vs[i] = AnyVertex()
		if vertices != nil && vertices[i] != nil {
			vs[i] = vertices[i]
		}
	}
	es := make([]EdgePredicate, g.EdgeCount())
	for i := range es {
		es[i] = AnyEdge()
		if edges != nil && edges[i] != nil {
			es[i] = edges[i]
		}
	}
	return &PredicateQuery{Graph: g, vertices: vs, edges: es}, nil
}

// Bind implements Query.
func (q *PredicateQuery) Bind(target Graph) (Compatibility, error) {
	return predicateCompatibility{query: q, target: target}, nil
}

type predicateCompatibility struct {
	query  *PredicateQuery
	target Graph
}

func (c predicateCompatibility) VertexCompatible(qv, tv int) bool {
	return c.query.vertices[qv].Accept(c.target, tv)
}

func (c predicateCompatibility) EdgeCompatible(qe, te int) bool {
	return c.query.edges[qe].Accept(c.target, te)
}
