package molecule

import (
	"testing"

	"github.com/stretchr/testify/require"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

func atomsOf(symbols ...string) []Atom {
	out := make([]Atom, len(symbols))
	for i, s := range symbols {
		out[i] = Atom{Symbol: s}
	}
	return out
}

func single(a, b int) Bond { return Bond{Begin: a, End: b, Order: mtypes.BondSingle} }

func mustMolecule(t *testing.T, atoms []Atom, bonds ...Bond) *Molecule {
	t.Helper()
	m, err := New("", "", atoms, bonds)
	require.NoError(t, err)
	return m
}

// benzene ring with a methyl on atom 0.
func toluene(t *testing.T) *Molecule {
	t.Helper()
	atoms := make([]Atom, 7)
	bonds := make([]Bond, 0, 7)
	for i := 0; i < 6; i++ {
		atoms[i] = Atom{Symbol: "C", Aromatic: true}
		bonds = append(bonds, Bond{Begin: i, End: (i + 1) % 6, Order: mtypes.BondAromatic})
	}
	atoms[6] = Atom{Symbol: "C", HydrogenCount: 3}
	bonds = append(bonds, single(0, 6))
	m, err := New("mol-toluene", "toluene", atoms, bonds)
	require.NoError(t, err)
	return m
}

// C0-C1-O2 with the hydroxyl hydrogen counted on O2.
func ethanol(t *testing.T) *Molecule {
	t.Helper()
	atoms := []Atom{
		{Symbol: "C", HydrogenCount: 3},
		{Symbol: "C", HydrogenCount: 2},
		{Symbol: "O", HydrogenCount: 1},
	}
	return mustMolecule(t, atoms, single(0, 1), single(1, 2))
}

// C0 with F1, Cl2, Br3 and an implicit hydrogen, clockwise from F.
func halomethane(t *testing.T, chirality mtypes.Chirality) *Molecule {
	t.Helper()
	atoms := atomsOf("C", "F", "Cl", "Br")
	atoms[0].Chirality = chirality
	atoms[0].ChiralNeighbors = []int{1, 2, 3, -1}
	return mustMolecule(t, atoms, single(0, 1), single(0, 2), single(0, 3))
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func symbolsQuery(symbols ...string) []mtypes.QueryAtomDTO {
	out := make([]mtypes.QueryAtomDTO, len(symbols))
	for i, s := range symbols {
		out[i] = mtypes.QueryAtomDTO{Symbols: []string{s}}
	}
	return out
}

func mustCompile(t *testing.T, dto *mtypes.QueryDTO) *Query {
	t.Helper()
	q, err := CompileQuery(dto)
	require.NoError(t, err)
	return q
}
