package testutil

import (
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

func chain(id, name string, atoms []mtypes.AtomDTO) mtypes.MoleculeGraphDTO {
	bonds := make([]mtypes.BondDTO, 0, len(atoms))
	for i := 1; i < len(atoms); i++ {
		bonds = append(bonds, mtypes.BondDTO{Begin: i - 1, End: i, Order: mtypes.BondSingle})
	}
	return mtypes.MoleculeGraphDTO{ID: id, Name: name, Atoms: atoms, Bonds: bonds}
}

// Ethanol is C0-C1-O2 with the hydroxyl hydrogen counted on O2.
func Ethanol() mtypes.MoleculeGraphDTO {
	return chain("mol-ethanol", "ethanol", []mtypes.AtomDTO{
		{Symbol: "C", HydrogenCount: 3}, {Symbol: "C", HydrogenCount: 2}, {Symbol: "O", HydrogenCount: 1},
	})
}

// Methanol is C0-O1.
func Methanol() mtypes.MoleculeGraphDTO {
	return chain("mol-methanol", "methanol", []mtypes.AtomDTO{
		{Symbol: "C", HydrogenCount: 3}, {Symbol: "O", HydrogenCount: 1},
	})
}

// DimethylEther is C0-O1-C2.
func DimethylEther() mtypes.MoleculeGraphDTO {
	return chain("mol-dme", "dimethyl ether", []mtypes.AtomDTO{
		{Symbol: "C", HydrogenCount: 3}, {Symbol: "O"}, {Symbol: "C", HydrogenCount: 3},
	})
}

// Benzene is an aromatic six-ring, atoms 0..5 in ring order.
func Benzene() mtypes.MoleculeGraphDTO {
	m := mtypes.MoleculeGraphDTO{ID: "mol-benzene", Name: "benzene"}
	for i := 0; i < 6; i++ {
		m.Atoms = append(m.Atoms, mtypes.AtomDTO{Symbol: "C", Aromatic: true, HydrogenCount: 1})
		m.Bonds = append(m.Bonds, mtypes.BondDTO{Begin: i, End: (i + 1) % 6, Order: mtypes.BondAromatic})
	}
	return m
}

// HydroxylQuery matches an O carrying one hydrogen bonded to a carbon.
// Query atom 0 is the oxygen.
func HydroxylQuery() mtypes.QueryDTO {
	one := 1
	return mtypes.QueryDTO{
		Name: "hydroxyl",
		Atoms: []mtypes.QueryAtomDTO{
			{Symbols: []string{"O"}, HydrogenCount: &one},
			{Symbols: []string{"C"}},
		},
		Bonds: []mtypes.QueryBondDTO{{Begin: 0, End: 1}},
	}
}

// CarbonPairQuery matches any two bonded carbons.
func CarbonPairQuery() mtypes.QueryDTO {
	return mtypes.QueryDTO{
		Name:  "C~C",
		Atoms: []mtypes.QueryAtomDTO{{Symbols: []string{"C"}}, {Symbols: []string{"C"}}},
		Bonds: []mtypes.QueryBondDTO{{Begin: 0, End: 1}},
	}
}
