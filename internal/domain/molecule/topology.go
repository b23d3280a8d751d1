package molecule

import (
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// topology is the adjacency shared by molecules and queries.  Degrees are
// small, so bond lookup scans the neighbour list.
type topology struct {
	// adj[v] and adjBonds[v] list the neighbours of v and the joining bonds
	// in the same order.
	adj      [][]int
	adjBonds [][]int
	ends     [][2]int
}

func newTopology(atoms, bonds int) topology {
	return topology{
		adj:      make([][]int, atoms),
		adjBonds: make([][]int, atoms),
		ends:     make([][2]int, 0, bonds),
	}
}

// link adds the bond a-b as the next bond index.  Failures carry code.
func (t *topology) link(a, b int, code errors.ErrorCode) error {
	n, i := len(t.adj), len(t.ends)
	if a < 0 || a >= n || b < 0 || b >= n {
		return errors.New(code, "bond atom index out of range").WithDetailf("bond=%d begin=%d end=%d atoms=%d", i, a, b, n)
	}
	if a == b {
		return errors.New(code, "bond joins an atom to itself").WithDetailf("bond=%d atom=%d", i, a)
	}
	if t.EdgeBetween(a, b) >= 0 {
		return errors.New(code, "duplicate bond").WithDetailf("bond=%d begin=%d end=%d", i, a, b)
	}
	t.ends = append(t.ends, [2]int{a, b})
	t.adj[a] = append(t.adj[a], b)
	t.adjBonds[a] = append(t.adjBonds[a], i)
	t.adj[b] = append(t.adj[b], a)
	t.adjBonds[b] = append(t.adjBonds[b], i)
	return nil
}

// VertexCount returns the number of atoms.
func (t *topology) VertexCount() int { return len(t.adj) }

// EdgeCount returns the number of bonds.
func (t *topology) EdgeCount() int { return len(t.ends) }

// Neighbors lists the atoms bonded to v in bond order.
func (t *topology) Neighbors(v int) []int { return t.adj[v] }

// EdgeBetween returns the bond joining u and v, or -1.
func (t *topology) EdgeBetween(u, v int) int {
	for i, w := range t.adj[u] {
		if w == v {
			return t.adjBonds[u][i]
		}
	}
	return -1
}

// Endpoints returns the two atoms of bond e.
func (t *topology) Endpoints(e int) (int, int) {
	return t.ends[e][0], t.ends[e][1]
}

// Degree returns the number of explicit bonds of v.
func (t *topology) Degree(v int) int { return len(t.adj[v]) }

// bridges marks every bond that lies on no cycle.
func (t *topology) bridges() []bool {
	n := len(t.adj)
	bridge := make([]bool, len(t.ends))
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	clock := 0

	var visit func(v, viaBond int)
	visit = func(v, viaBond int) {
		disc[v], low[v] = clock, clock
		clock++
		for i, u := range t.adj[v] {
			e := t.adjBonds[v][i]
			if e == viaBond {
				continue
			}
			if disc[u] < 0 {
				visit(u, e)
				if low[u] < low[v] {
					low[v] = low[u]
				}
				if low[u] > disc[v] {
					bridge[e] = true
				}
			} else if disc[u] < low[v] {
				low[v] = disc[u]
			}
		}
	}
	for v := 0; v < n; v++ {
		if disc[v] < 0 {
			visit(v, -1)
		}
	}
	return bridge
}
