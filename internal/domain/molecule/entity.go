// Package molecule provides the molecule graph used as a matching target and
// the compiled atom/bond queries matched against it.  A Molecule is an
// immutable atom/bond graph with its ring membership, connected components and
// stereo descriptors precomputed at construction; it implements the
// substructure package's Graph and StereoSource views.
package molecule

import (
	"strings"

	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Value Objects
// ─────────────────────────────────────────────────────────────────────────────

// Atom is one vertex of a molecule.
type Atom struct {
	Symbol        string
	Charge        int
	Aromatic      bool
	HydrogenCount int
	Isotope       int

	// Chirality with four neighbour slots in winding order; -1 is an
	// implicit hydrogen.
	Chirality       mtypes.Chirality
	ChiralNeighbors []int
}

// Bond is one edge of a molecule.
type Bond struct {
	Begin    int
	End      int
	Order    mtypes.BondOrder
	Aromatic bool

	// Stereo of a double bond relative to StereoRefs[0] (a neighbour of
	// Begin) and StereoRefs[1] (a neighbour of End).
	Stereo     mtypes.BondStereo
	StereoRefs []int
}

// EffectiveOrder returns aromatic for an aromatic bond and the stated order
// otherwise.
func (b Bond) EffectiveOrder() mtypes.BondOrder {
	if b.Aromatic {
		return mtypes.BondAromatic
	}
	return b.Order
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule Aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is an immutable molecule graph.  It is safe for concurrent reads.
type Molecule struct {
	topology

	ID   string
	Name string

	atoms []Atom
	bonds []Bond

	ringBond   []bool
	ringAtom   []bool
	component  []int
	components int

	stereo stereoIndex
}

var (
	_ substructure.Graph        = (*Molecule)(nil)
	_ substructure.StereoSource = (*Molecule)(nil)
)

// New builds a molecule.  It rejects blank symbols, bond indices out of range,
// self loops, duplicate bonds and unknown bond orders with
// ErrCodeMoleculeInvalidGraph, and inconsistent stereo with
// ErrCodeStereoMalformed.  An empty bond order is read as single, and an
// aromatic order marks the bond aromatic.
func New(id, name string, atoms []Atom, bonds []Bond) (*Molecule, error) {
	m := &Molecule{
		topology: newTopology(len(atoms), len(bonds)),
		ID:       id,
		Name:     name,
		atoms:    make([]Atom, len(atoms)),
		bonds:    make([]Bond, len(bonds)),
	}
	for i, a := range atoms {
		a.Symbol = strings.TrimSpace(a.Symbol)
		if a.Symbol == "" {
			return nil, errors.New(errors.ErrCodeMoleculeInvalidGraph, "atom symbol must not be empty").WithDetailf("atom=%d", i)
		}
		a.ChiralNeighbors = append([]int(nil), a.ChiralNeighbors...)
		m.atoms[i] = a
	}

	for i, b := range bonds {
		if err := m.link(b.Begin, b.End, errors.ErrCodeMoleculeInvalidGraph); err != nil {
			return nil, err
		}
		if b.Order == "" {
			b.Order = mtypes.BondSingle
		}
		if !b.Order.IsValid() {
			return nil, errors.New(errors.ErrCodeMoleculeInvalidGraph, "unknown bond order").WithDetailf("bond=%d order=%q", i, b.Order)
		}
		if b.Order == mtypes.BondAromatic {
			b.Aromatic = true
		}
		b.StereoRefs = append([]int(nil), b.StereoRefs...)
		m.bonds[i] = b
	}

	stereo, err := buildStereoIndex(m,
		func(v int) (mtypes.Chirality, []int) { return m.atoms[v].Chirality, m.atoms[v].ChiralNeighbors },
		func(e int) (mtypes.BondStereo, []int) { return m.bonds[e].Stereo, m.bonds[e].StereoRefs },
	)
	if err != nil {
		return nil, err
	}
	m.stereo = stereo

	m.perceiveRings()
	m.component = substructure.Components(m)
	for _, c := range m.component {
		if c+1 > m.components {
			m.components = c + 1
		}
	}
	return m, nil
}

// Atom returns atom v.
func (m *Molecule) Atom(v int) Atom { return m.atoms[v] }

// Bond returns bond e.
func (m *Molecule) Bond(e int) Bond { return m.bonds[e] }

// IsRingBond reports whether bond e lies on a cycle.
func (m *Molecule) IsRingBond(e int) bool { return m.ringBond[e] }

// IsRingAtom reports whether atom v lies on a cycle.
func (m *Molecule) IsRingAtom(v int) bool { return m.ringAtom[v] }

// ComponentOf returns the connected component index of atom v.
func (m *Molecule) ComponentOf(v int) int { return m.component[v] }

// ComponentCount returns the number of connected components.
func (m *Molecule) ComponentCount() int { return m.components }

// RingBondCount returns the number of bonds on a cycle.
func (m *Molecule) RingBondCount() int {
	n := 0
	for _, r := range m.ringBond {
		if r {
			n++
		}
	}
	return n
}

// perceiveRings marks every bond that is not a bridge as a ring bond, and every
// atom touching a ring bond as a ring atom.
func (m *Molecule) perceiveRings() {
	bridge := m.bridges()
	m.ringBond = make([]bool, len(m.bonds))
	m.ringAtom = make([]bool, len(m.atoms))
	for e, b := range m.bonds {
		if !bridge[e] {
			m.ringBond[e] = true
			m.ringAtom[b.Begin] = true
			m.ringAtom[b.End] = true
		}
	}
}

// TetrahedralCentres lists the chiral atoms.
func (m *Molecule) TetrahedralCentres() []substructure.TetrahedralCentre {
	return m.stereo.centres
}

// TetrahedralAt returns the centre on atom v.
func (m *Molecule) TetrahedralAt(v int) (substructure.TetrahedralCentre, bool) {
	return m.stereo.centreAt(v)
}

// DoubleBondStereos lists the stereo double bonds.
func (m *Molecule) DoubleBondStereos() []substructure.DoubleBondStereo {
	return m.stereo.bonds
}

// DoubleBondAt returns the configuration of the bond joining u and v.
func (m *Molecule) DoubleBondAt(u, v int) (substructure.DoubleBondStereo, bool) {
	return m.stereo.bondAt(u, v)
}
