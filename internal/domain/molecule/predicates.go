package molecule

import (
	"strings"

	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// AtomPredicate tests one atom of a target molecule.  It satisfies
// substructure.VertexPredicate and rejects every vertex of a graph that is not
// a *Molecule.
type AtomPredicate func(m *Molecule, v int) bool

// Accept implements substructure.VertexPredicate.
func (p AtomPredicate) Accept(target substructure.Graph, v int) bool {
	m, ok := target.(*Molecule)
	return ok && p(m, v)
}

// BondPredicate tests one bond of a target molecule.
type BondPredicate func(m *Molecule, e int) bool

// Accept implements substructure.EdgePredicate.
func (p BondPredicate) Accept(target substructure.Graph, e int) bool {
	m, ok := target.(*Molecule)
	return ok && p(m, e)
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom predicates
// ─────────────────────────────────────────────────────────────────────────────

// AnyAtom accepts every atom.
func AnyAtom() AtomPredicate {
	return func(*Molecule, int) bool { return true }
}

// SymbolIs accepts atoms of one element.  Case is ignored, so "c" also matches
// an aromatic carbon written in lower case.
func SymbolIs(symbol string) AtomPredicate {
	return SymbolIn(symbol)
}

// SymbolIn accepts atoms whose element is one of symbols.
func SymbolIn(symbols ...string) AtomPredicate {
	set := make([]string, len(symbols))
	for i, s := range symbols {
		set[i] = strings.TrimSpace(s)
	}
	return func(m *Molecule, v int) bool {
		sym := m.atoms[v].Symbol
		for _, s := range set {
			if strings.EqualFold(s, sym) {
				return true
			}
		}
		return false
	}
}

// IsAromatic accepts atoms whose aromatic flag equals want.
func IsAromatic(want bool) AtomPredicate {
	return func(m *Molecule, v int) bool { return m.atoms[v].Aromatic == want }
}

// ChargeIs accepts atoms carrying the given formal charge.
func ChargeIs(charge int) AtomPredicate {
	return func(m *Molecule, v int) bool { return m.atoms[v].Charge == charge }
}

// InRing accepts atoms whose ring membership equals want.
func InRing(want bool) AtomPredicate {
	return func(m *Molecule, v int) bool { return m.ringAtom[v] == want }
}

// MinDegree accepts atoms with at least d explicit bonds.
func MinDegree(d int) AtomPredicate {
	return func(m *Molecule, v int) bool { return len(m.adj[v]) >= d }
}

// HydrogenCountIs accepts atoms with exactly h attached hydrogens.
func HydrogenCountIs(h int) AtomPredicate {
	return func(m *Molecule, v int) bool { return m.atoms[v].HydrogenCount == h }
}

// AtomAnd accepts an atom when every predicate does.
func AtomAnd(ps ...AtomPredicate) AtomPredicate {
	return func(m *Molecule, v int) bool {
		for _, p := range ps {
			if !p(m, v) {
				return false
			}
		}
		return true
	}
}

// AtomOr accepts an atom when at least one predicate does.
func AtomOr(ps ...AtomPredicate) AtomPredicate {
	return func(m *Molecule, v int) bool {
		for _, p := range ps {
			if p(m, v) {
				return true
			}
		}
		return false
	}
}

// AtomNot inverts p.
func AtomNot(p AtomPredicate) AtomPredicate {
	return func(m *Molecule, v int) bool { return !p(m, v) }
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond predicates
// ─────────────────────────────────────────────────────────────────────────────

// AnyBond accepts every bond.
func AnyBond() BondPredicate {
	return func(*Molecule, int) bool { return true }
}

// OrderIs accepts bonds whose effective order is one of orders.  An aromatic
// bond only matches BondAromatic, whatever Kekulé order it was given.
func OrderIs(orders ...mtypes.BondOrder) BondPredicate {
	set := make([]mtypes.BondOrder, len(orders))
	for i, o := range orders {
		if o == "" {
			o = mtypes.BondSingle
		}
		set[i] = o
	}
	return func(m *Molecule, e int) bool {
		got := m.bonds[e].EffectiveOrder()
		for _, o := range set {
			if o == got {
				return true
			}
		}
		return false
	}
}

// AromaticBond accepts bonds whose aromatic flag equals want.
func AromaticBond(want bool) BondPredicate {
	return func(m *Molecule, e int) bool { return m.bonds[e].Aromatic == want }
}

// RingBond accepts bonds whose ring membership equals want.
func RingBond(want bool) BondPredicate {
	return func(m *Molecule, e int) bool { return m.ringBond[e] == want }
}

// BondAnd accepts a bond when every predicate does.
func BondAnd(ps ...BondPredicate) BondPredicate {
	return func(m *Molecule, e int) bool {
		for _, p := range ps {
			if !p(m, e) {
				return false
			}
		}
		return true
	}
}

// BondOr accepts a bond when at least one predicate does.
func BondOr(ps ...BondPredicate) BondPredicate {
	return func(m *Molecule, e int) bool {
		for _, p := range ps {
			if p(m, e) {
				return true
			}
		}
		return false
	}
}

// BondNot inverts p.
func BondNot(p BondPredicate) BondPredicate {
	return func(m *Molecule, e int) bool { return !p(m, e) }
}
