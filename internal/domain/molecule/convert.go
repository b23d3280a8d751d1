package molecule

import (
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// FromDTO validates a transfer object and builds the molecule it describes.
func FromDTO(dto *mtypes.MoleculeGraphDTO) (*Molecule, error) {
	if dto == nil {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidGraph, "molecule is nil")
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	atoms := make([]Atom, len(dto.Atoms))
	for i, a := range dto.Atoms {
		atoms[i] = Atom{
			Symbol:          a.Symbol,
			Charge:          a.Charge,
			Aromatic:        a.Aromatic,
			HydrogenCount:   a.HydrogenCount,
			Isotope:         a.Isotope,
			Chirality:       a.Chirality,
			ChiralNeighbors: a.ChiralNeighbors,
		}
	}
	bonds := make([]Bond, len(dto.Bonds))
	for i, b := range dto.Bonds {
		bonds[i] = Bond{
			Begin:      b.Begin,
			End:        b.End,
			Order:      b.Order,
			Aromatic:   b.Aromatic,
			Stereo:     b.Stereo,
			StereoRefs: b.StereoRefs,
		}
	}
	return New(dto.ID, dto.Name, atoms, bonds)
}

// ToDTO converts a molecule back to its transfer form.  Bond orders come back
// normalised.
func ToDTO(m *Molecule) *mtypes.MoleculeGraphDTO {
	if m == nil {
		return nil
	}
	dto := &mtypes.MoleculeGraphDTO{
		ID:    m.ID,
		Name:  m.Name,
		Atoms: make([]mtypes.AtomDTO, len(m.atoms)),
		Bonds: make([]mtypes.BondDTO, len(m.bonds)),
	}
	for i, a := range m.atoms {
		dto.Atoms[i] = mtypes.AtomDTO{
			Symbol:          a.Symbol,
			Charge:          a.Charge,
			Aromatic:        a.Aromatic,
			HydrogenCount:   a.HydrogenCount,
			Isotope:         a.Isotope,
			Chirality:       a.Chirality,
			ChiralNeighbors: append([]int(nil), a.ChiralNeighbors...),
		}
	}
	for i, b := range m.bonds {
		dto.Bonds[i] = mtypes.BondDTO{
			Begin:      b.Begin,
			End:        b.End,
			Order:      b.Order,
			Aromatic:   b.Aromatic,
			Stereo:     b.Stereo,
			StereoRefs: append([]int(nil), b.StereoRefs...),
		}
	}
	return dto
}
