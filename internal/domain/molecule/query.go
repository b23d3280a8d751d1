package molecule

import (
	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// QueryBond joins two query atoms under a bond predicate.  A nil Predicate
// accepts any bond.
type QueryBond struct {
	Begin     int
	End       int
	Predicate BondPredicate
}

// Query is a compiled molecule query.  It implements substructure.Query and
// binds only to *Molecule targets; it also carries the fragment grouping and
// stereo descriptors used by the post-filters.
type Query struct {
	topology

	Name string

	atoms  []AtomPredicate
	bonds  []BondPredicate
	groups []int
	stereo stereoIndex

	inner *substructure.PredicateQuery
}

var (
	_ substructure.Query        = (*Query)(nil)
	_ substructure.StereoSource = (*Query)(nil)
)

// NewQuery builds a query from explicit predicates.  A nil atom predicate
// accepts any atom.
func NewQuery(name string, atoms []AtomPredicate, bonds []QueryBond) (*Query, error) {
	q := &Query{
		topology: newTopology(len(atoms), len(bonds)),
		Name:     name,
		atoms:    make([]AtomPredicate, len(atoms)),
		bonds:    make([]BondPredicate, len(bonds)),
		stereo:   stereoIndex{byFocus: map[int]int{}, byAtoms: map[[2]int]int{}},
	}
	for i, p := range atoms {
		if p == nil {
			p = AnyAtom()
		}
		q.atoms[i] = p
	}
	for i, b := range bonds {
		if err := q.link(b.Begin, b.End, errors.CodeQueryMalformed); err != nil {
			return nil, err
		}
		p := b.Predicate
		if p == nil {
			p = AnyBond()
		}
		q.bonds[i] = p
	}
	if err := q.compile(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Query) compile() error {
	vs := make([]substructure.VertexPredicate, len(q.atoms))
	for i, p := range q.atoms {
		vs[i] = p
	}
	es := make([]substructure.EdgePredicate, len(q.bonds))
	for i, p := range q.bonds {
		es[i] = p
	}
	inner, err := substructure.NewQuery(&q.topology, vs, es)
	if err != nil {
		return err
	}
	q.inner = inner
	return nil
}

// CompileQuery turns a query transfer object into a Query.  Every set field of
// an atom or bond constraint is combined with AND; Negate inverts the whole
// atom constraint.
func CompileQuery(dto *mtypes.QueryDTO) (*Query, error) {
	if dto == nil {
		return nil, errors.QueryMalformed("query is nil")
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	atoms := make([]AtomPredicate, len(dto.Atoms))
	for i, a := range dto.Atoms {
		atoms[i] = compileAtom(a)
	}
	bonds := make([]QueryBond, len(dto.Bonds))
	for i, b := range dto.Bonds {
		bonds[i] = QueryBond{Begin: b.Begin, End: b.End, Predicate: compileBond(b)}
	}
	q, err := NewQuery(dto.Name, atoms, bonds)
	if err != nil {
		return nil, err
	}

	if len(dto.Groups) > 0 {
		q.groups = append([]int(nil), dto.Groups...)
	}
	stereo, err := buildStereoIndex(q,
		func(v int) (mtypes.Chirality, []int) { return dto.Atoms[v].Chirality, dto.Atoms[v].ChiralNeighbors },
		func(e int) (mtypes.BondStereo, []int) { return dto.Bonds[e].Stereo, dto.Bonds[e].StereoRefs },
	)
	if err != nil {
		return nil, err
	}
	q.stereo = stereo
	return q, nil
}

func compileAtom(a mtypes.QueryAtomDTO) AtomPredicate {
	var ps []AtomPredicate
	if len(a.Symbols) > 0 {
		ps = append(ps, SymbolIn(a.Symbols...))
	}
	if a.Aromatic != nil {
		ps = append(ps, IsAromatic(*a.Aromatic))
	}
	if a.Charge != nil {
		ps = append(ps, ChargeIs(*a.Charge))
	}
	if a.InRing != nil {
		ps = append(ps, InRing(*a.InRing))
	}
	if a.MinDegree > 0 {
		ps = append(ps, MinDegree(a.MinDegree))
	}
	if a.HydrogenCount != nil {
		ps = append(ps, HydrogenCountIs(*a.HydrogenCount))
	}

	var p AtomPredicate
	switch len(ps) {
	case 0:
		p = AnyAtom()
	case 1:
		p = ps[0]
	default:
		p = AtomAnd(ps...)
	}
	if a.Negate {
		p = AtomNot(p)
	}
	return p
}

func compileBond(b mtypes.QueryBondDTO) BondPredicate {
	var ps []BondPredicate
	if len(b.Orders) > 0 {
		ps = append(ps, OrderIs(b.Orders...))
	}
	if b.Aromatic != nil {
		ps = append(ps, AromaticBond(*b.Aromatic))
	}
	if b.InRing != nil {
		ps = append(ps, RingBond(*b.InRing))
	}
	switch len(ps) {
	case 0:
		return AnyBond()
	case 1:
		return ps[0]
	}
	return BondAnd(ps...)
}

// Bind implements substructure.Query.  Targets other than *Molecule are
// rejected with CodeTargetMalformed.
func (q *Query) Bind(target substructure.Graph) (substructure.Compatibility, error) {
	m, ok := target.(*Molecule)
	if !ok {
		return nil, errors.TargetMalformed("query atoms can only bind to a molecule")
	}
	return q.inner.Bind(m)
}

// Groups returns the fragment grouping, or nil when the query has none.
func (q *Query) Groups() []int { return q.groups }

// HasStereo reports whether the query carries any stereo descriptor.
func (q *Query) HasStereo() bool { return !q.stereo.empty() }

// TetrahedralCentres lists the chiral query atoms.
func (q *Query) TetrahedralCentres() []substructure.TetrahedralCentre {
	return q.stereo.centres
}

// TetrahedralAt returns the centre on query atom v.
func (q *Query) TetrahedralAt(v int) (substructure.TetrahedralCentre, bool) {
	return q.stereo.centreAt(v)
}

// DoubleBondStereos lists the stereo double bonds of the query.
func (q *Query) DoubleBondStereos() []substructure.DoubleBondStereo {
	return q.stereo.bonds
}

// DoubleBondAt returns the configuration of the query bond joining u and v.
func (q *Query) DoubleBondAt(u, v int) (substructure.DoubleBondStereo, bool) {
	return q.stereo.bondAt(u, v)
}
