package substructure

import (
	"strings"

	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// Algorithm selects the backtracking strategy a Pattern uses.
type Algorithm int

const (
	// AlgorithmFrontier grows the mapping through the neighbourhood of the
	// vertices already placed.  It is the default.
	AlgorithmFrontier Algorithm = iota
	// AlgorithmRefinement keeps a candidate matrix and prunes it to arc
	// consistency after every commitment.
	AlgorithmRefinement
	// AlgorithmDepthFirst walks a visiting order fixed when the Pattern is
	// built.
	AlgorithmDepthFirst
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmFrontier:
		return "frontier"
	case AlgorithmRefinement:
		return "refinement"
	case AlgorithmDepthFirst:
		return "depthfirst"
	default:
		return "unknown"
	}
}

func (a Algorithm) valid() bool {
	return a >= AlgorithmFrontier && a <= AlgorithmDepthFirst
}

// ParseAlgorithm accepts the canonical names and the common aliases
// (ullmann, vf2, df).  The empty string selects AlgorithmFrontier.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "frontier", "vf2":
		return AlgorithmFrontier, nil
	case "refinement", "ullmann":
		return AlgorithmRefinement, nil
	case "depthfirst", "depth-first", "df":
		return AlgorithmDepthFirst, nil
	}
	return 0, errors.New(errors.ErrCodeAlgorithmUnsupported, "unsupported matching algorithm").WithDetailf("algorithm=%q", s)
}

// Mode selects how target edges between matched vertices are treated.
type Mode int

const (
	// ModeSubgraph ignores target edges the query does not ask for.
	ModeSubgraph Mode = iota
	// ModeExact requires every target edge between matched vertices to
	// correspond to a query edge.
	ModeExact
)

func (m Mode) String() string {
	switch m {
	case ModeSubgraph:
		return "subgraph"
	case ModeExact:
		return "exact"
	default:
		return "unknown"
	}
}

func (m Mode) valid() bool {
	return m == ModeSubgraph || m == ModeExact
}

// ParseMode accepts "subgraph" and "exact".  The empty string selects
// ModeSubgraph.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "subgraph":
		return ModeSubgraph, nil
	case "exact":
		return ModeExact, nil
	}
	return 0, errors.New(errors.ErrCodeModeUnsupported, "unsupported matching mode").WithDetailf("mode=%q", s)
}
