package substructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// brokenGraph overrides adjacency of a listGraph to produce invalid shapes.
type brokenGraph struct {
	*listGraph
	neighbors func(v int) []int
	edgeCount int
}

func (b brokenGraph) Neighbors(v int) []int {
	if b.neighbors != nil {
		return b.neighbors(v)
	}
	return b.listGraph.Neighbors(v)
}

func (b brokenGraph) EdgeCount() int {
	if b.edgeCount >= 0 {
		return b.edgeCount
	}
	return b.listGraph.EdgeCount()
}

func TestValidateGraph_Valid(t *testing.T) {
	for _, g := range []Graph{pathGraph(1), cycleGraph(4), bicyclic(), newGraph("")} {
		assert.NoError(t, ValidateGraph(g, errors.CodeTargetMalformed))
	}
}

func TestValidateGraph_Invalid(t *testing.T) {
	base := pathGraph(3)
	tests := []struct {
		name string
		g    Graph
	}{
		{"nil", nil},
		{"neighbour out of range", brokenGraph{listGraph: base, edgeCount: -1, neighbors: func(v int) []int {
			if v == 0 {
				return []int{1, 7}
			}
			return base.Neighbors(v)
		}}},
		{"self loop", brokenGraph{listGraph: base, edgeCount: -1, neighbors: func(v int) []int {
			if v == 2 {
				return []int{1, 2}
			}
			return base.Neighbors(v)
		}}},
		{"duplicate neighbour", brokenGraph{listGraph: base, edgeCount: -1, neighbors: func(v int) []int {
			if v == 0 {
				return []int{1, 1}
			}
			return base.Neighbors(v)
		}}},
		{"asymmetric", brokenGraph{listGraph: base, edgeCount: -1, neighbors: func(v int) []int {
			if v == 0 {
				return []int{1, 2}
			}
			return base.Neighbors(v)
		}}},
		{"edge count mismatch", brokenGraph{listGraph: base, edgeCount: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGraph(tt.g, errors.CodeQueryMalformed)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeQueryMalformed), err.Error())
		})
	}
}

func TestComponents(t *testing.T) {
	g := newGraph("CCCCCC", [2]int{0, 1}, [2]int{3, 4}, [2]int{4, 5})
	assert.Equal(t, []int{0, 0, 1, 2, 2, 2}, Components(g))
	assert.Empty(t, Components(newGraph("")))
}

func TestDegree(t *testing.T) {
	g := bicyclic()
	assert.Equal(t, 3, Degree(g, 0))
	assert.Equal(t, 2, Degree(g, 1))
}

func TestInducedSubstructure(t *testing.T) {
	g := cycleGraph(3)
	sub := InducedSubstructure(g, []int{2, 0, 1})
	assert.Equal(t, []int{0, 1, 2}, sub.Vertices)
	assert.Equal(t, []int{0, 1, 2}, sub.Edges)

	sub = InducedSubstructure(pathGraph(4), []int{3, 1})
	assert.Equal(t, []int{1, 3}, sub.Vertices)
	assert.Empty(t, sub.Edges)

	sub = InducedSubstructure(pathGraph(2), []int{})
	assert.NotNil(t, sub.Vertices)
	assert.Empty(t, sub.Vertices)
}
