package substructure

import (
	"slices"
)

// Projection is a lazy view of a Mappings sequence converted element by
// element.
type Projection[T any] struct {
	src  *Mappings
	conv func(mapping []int) T
}

// Each calls fn for every converted mapping until fn returns false.
func (p Projection[T]) Each(fn func(T) bool) error {
	return p.src.Each(func(mapping []int) bool {
		return fn(p.conv(mapping))
	})
}

// ToArray materialises the projection.
func (p Projection[T]) ToArray() ([]T, error) {
	out := make([]T, 0)
	err := p.Each(func(v T) bool {
		out = append(out, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AtomBondMap pairs the vertex and edge associations of one mapping.
type AtomBondMap struct {
	Atoms map[int]int `json:"atoms"`
	Bonds map[int]int `json:"bonds"`
}

// Substructure is the target subgraph induced by one mapping: its vertices in
// ascending order and every target edge between them, ascending.
type Substructure struct {
	Vertices []int `json:"vertices"`
	Edges    []int `json:"edges"`
}

// ToAtomMaps projects each mapping to query vertex -> target vertex.
func (m *Mappings) ToAtomMaps() Projection[map[int]int] {
	return Projection[map[int]int]{src: m, conv: atomMap}
}

// ToBondMaps projects each mapping to query edge -> target edge.
func (m *Mappings) ToBondMaps() Projection[map[int]int] {
	query, target := m.pattern.query, m.target
	return Projection[map[int]int]{src: m, conv: func(mapping []int) map[int]int {
		return bondMap(query, target, mapping)
	}}
}

// ToAtomBondMaps projects each mapping to both associations.
func (m *Mappings) ToAtomBondMaps() Projection[AtomBondMap] {
	query, target := m.pattern.query, m.target
	return Projection[AtomBondMap]{src: m, conv: func(mapping []int) AtomBondMap {
		return AtomBondMap{Atoms: atomMap(mapping), Bonds: bondMap(query, target, mapping)}
	}}
}

// ToSubstructures projects each mapping to its induced target subgraph.
func (m *Mappings) ToSubstructures() Projection[Substructure] {
	target := m.target
	return Projection[Substructure]{src: m, conv: func(mapping []int) Substructure {
		return InducedSubstructure(target, mapping)
	}}
}

func atomMap(mapping []int) map[int]int {
	out := make(map[int]int, len(mapping))
	for q, t := range mapping {
		out[q] = t
	}
	return out
}

func bondMap(query, target Graph, mapping []int) map[int]int {
	out := make(map[int]int, query.EdgeCount())
	for e := 0; e < query.EdgeCount(); e++ {
		a, b := query.Endpoints(e)
		out[e] = target.EdgeBetween(mapping[a], mapping[b])
	}
	return out
}

// InducedSubstructure returns the target vertices of mapping and every target
// edge joining two of them.
func InducedSubstructure(target Graph, mapping []int) Substructure {
	vs := slices.Clone(mapping)
	slices.Sort(vs)
	es := make([]int, 0, len(vs))
	for _, v := range vs {
		for _, u := range target.Neighbors(v) {
			if u > v {
				if _, ok := slices.BinarySearch(vs, u); ok {
					es = append(es, target.EdgeBetween(v, u))
				}
			}
		}
	}
	slices.Sort(es)
	if vs == nil {
		vs = []int{}
	}
	return Substructure{Vertices: vs, Edges: es}
}
