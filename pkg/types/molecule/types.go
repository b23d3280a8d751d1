// Package molecule defines the molecule-graph Data Transfer Objects,
// enumerations, and request/response structures used across every layer of the
// substructure matching platform.  It holds plain data
// types (plus shape validation) that are safe to import from any layer without
// creating circular dependencies.
package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// BondOrder: textual bond order
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder names the multiplicity of a bond in transfer objects.
type BondOrder string

const (
	BondSingle    BondOrder = "single"
	BondDouble    BondOrder = "double"
	BondTriple    BondOrder = "triple"
	BondQuadruple BondOrder = "quadruple"
	BondAromatic  BondOrder = "aromatic"
)

// IsValid reports whether the bond order is a known value.  The empty string is
// accepted and read as single.
func (o BondOrder) IsValid() bool {
	switch o {
	case "", BondSingle, BondDouble, BondTriple, BondQuadruple, BondAromatic:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Stereo descriptors
// ─────────────────────────────────────────────────────────────────────────────

// Chirality is the winding of a tetrahedral centre's neighbours, looking from
// the first neighbour.
type Chirality string

const (
	ChiralityNone             Chirality = ""
	ChiralityClockwise        Chirality = "cw"
	ChiralityCounterClockwise Chirality = "ccw"
)

// IsValid reports whether the chirality is a known value.
func (c Chirality) IsValid() bool {
	return c == ChiralityNone || c == ChiralityClockwise || c == ChiralityCounterClockwise
}

// BondStereo is the configuration of a stereo double bond relative to its two
// reference neighbours.
type BondStereo string

const (
	BondStereoNone     BondStereo = ""
	BondStereoTogether BondStereo = "together"
	BondStereoOpposite BondStereo = "opposite"
)

// IsValid reports whether the bond stereo is a known value.
func (s BondStereo) IsValid() bool {
	return s == BondStereoNone || s == BondStereoTogether || s == BondStereoOpposite
}

// ─────────────────────────────────────────────────────────────────────────────
// Target molecule graph
// ─────────────────────────────────────────────────────────────────────────────

// AtomDTO is one vertex of a molecule graph.
type AtomDTO struct {
	Symbol        string `json:"symbol" yaml:"symbol"`
	Charge        int    `json:"charge,omitempty" yaml:"charge,omitempty"`
	Aromatic      bool   `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`
	HydrogenCount int    `json:"hydrogen_count,omitempty" yaml:"hydrogen_count,omitempty"`
	Isotope       int    `json:"isotope,omitempty" yaml:"isotope,omitempty"`

	// Chirality and ChiralNeighbors describe a tetrahedral centre.  The
	// neighbour list holds exactly four atom indices in winding order, -1
	// standing for an implicit hydrogen.
	Chirality       Chirality `json:"chirality,omitempty" yaml:"chirality,omitempty"`
	ChiralNeighbors []int     `json:"chiral_neighbors,omitempty" yaml:"chiral_neighbors,omitempty"`
}

// BondDTO is one edge of a molecule graph.
type BondDTO struct {
	Begin    int       `json:"begin" yaml:"begin"`
	End      int       `json:"end" yaml:"end"`
	Order    BondOrder `json:"order,omitempty" yaml:"order,omitempty"`
	Aromatic bool      `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`

	// Stereo applies to double bonds; StereoRefs names one neighbour of Begin
	// and one neighbour of End.
	Stereo     BondStereo `json:"stereo,omitempty" yaml:"stereo,omitempty"`
	StereoRefs []int      `json:"stereo_refs,omitempty" yaml:"stereo_refs,omitempty"`
}

// MoleculeGraphDTO is the explicit atom/bond representation of a molecule.
type MoleculeGraphDTO struct {
	ID    string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string    `json:"name,omitempty" yaml:"name,omitempty"`
	Atoms []AtomDTO `json:"atoms" yaml:"atoms"`
	Bonds []BondDTO `json:"bonds,omitempty" yaml:"bonds,omitempty"`
}

// Validate checks the enumerated fields of the molecule.  Index ranges are
// checked when the graph is built.
func (m *MoleculeGraphDTO) Validate() error {
	for i, a := range m.Atoms {
		if strings.TrimSpace(a.Symbol) == "" {
			return errors.InvalidParam("atom symbol must not be empty").WithDetailf("atom=%d", i)
		}
		if err := validateChirality(a.Chirality, a.ChiralNeighbors, i); err != nil {
			return err
		}
	}
	for i, b := range m.Bonds {
		if !b.Order.IsValid() {
			return errors.InvalidParam("unknown bond order").WithDetailf("bond=%d order=%q", i, b.Order)
		}
		if err := validateBondStereo(b.Stereo, b.StereoRefs, i); err != nil {
			return err
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query graph
// ─────────────────────────────────────────────────────────────────────────────

// QueryAtomDTO constrains one query vertex.  Every nil or empty field means
// "anything"; set fields are combined with AND.
type QueryAtomDTO struct {
	Symbols       []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Aromatic      *bool    `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`
	Charge        *int     `json:"charge,omitempty" yaml:"charge,omitempty"`
	InRing        *bool    `json:"in_ring,omitempty" yaml:"in_ring,omitempty"`
	MinDegree     int      `json:"min_degree,omitempty" yaml:"min_degree,omitempty"`
	HydrogenCount *int     `json:"hydrogen_count,omitempty" yaml:"hydrogen_count,omitempty"`
	Negate        bool     `json:"negate,omitempty" yaml:"negate,omitempty"`

	Chirality       Chirality `json:"chirality,omitempty" yaml:"chirality,omitempty"`
	ChiralNeighbors []int     `json:"chiral_neighbors,omitempty" yaml:"chiral_neighbors,omitempty"`
}

// QueryBondDTO constrains one query edge.
type QueryBondDTO struct {
	Begin    int         `json:"begin" yaml:"begin"`
	End      int         `json:"end" yaml:"end"`
	Orders   []BondOrder `json:"orders,omitempty" yaml:"orders,omitempty"`
	Aromatic *bool       `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`
	InRing   *bool       `json:"in_ring,omitempty" yaml:"in_ring,omitempty"`

	Stereo     BondStereo `json:"stereo,omitempty" yaml:"stereo,omitempty"`
	StereoRefs []int      `json:"stereo_refs,omitempty" yaml:"stereo_refs,omitempty"`
}

// QueryDTO is a query graph with per-atom and per-bond constraints.
//
// Groups, when present, assigns each query atom a fragment group (0 means
// unconstrained).  Atoms of one group must land in one connected component of
// the target and distinct groups in distinct components.
type QueryDTO struct {
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Atoms  []QueryAtomDTO `json:"atoms" yaml:"atoms"`
	Bonds  []QueryBondDTO `json:"bonds,omitempty" yaml:"bonds,omitempty"`
	Groups []int          `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Validate checks the enumerated fields and the group vector length.
func (q *QueryDTO) Validate() error {
	if len(q.Groups) != 0 && len(q.Groups) != len(q.Atoms) {
		return errors.New(errors.ErrCodeGroupingMalformed, "groups must cover every query atom").
			WithDetailf("groups=%d atoms=%d", len(q.Groups), len(q.Atoms))
	}
	for i, g := range q.Groups {
		if g < 0 {
			return errors.New(errors.ErrCodeGroupingMalformed, "group ids must not be negative").WithDetailf("atom=%d", i)
		}
	}
	for i, a := range q.Atoms {
		if a.MinDegree < 0 {
			return errors.InvalidParam("min_degree must not be negative").WithDetailf("atom=%d", i)
		}
		if err := validateChirality(a.Chirality, a.ChiralNeighbors, i); err != nil {
			return err
		}
	}
	for i, b := range q.Bonds {
		for _, o := range b.Orders {
			if o == "" || !o.IsValid() {
				return errors.InvalidParam("unknown bond order").WithDetailf("bond=%d order=%q", i, o)
			}
		}
		if err := validateBondStereo(b.Stereo, b.StereoRefs, i); err != nil {
			return err
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Match options
// ─────────────────────────────────────────────────────────────────────────────

// UniqueMode selects the deduplication applied to a result stream.
type UniqueMode string

const (
	UniqueNone  UniqueMode = "none"
	UniqueAtoms UniqueMode = "atoms"
	UniqueBonds UniqueMode = "bonds"
)

// IsValid reports whether the mode is known.  Empty means "use the default".
func (u UniqueMode) IsValid() bool {
	return u == "" || u == UniqueNone || u == UniqueAtoms || u == UniqueBonds
}

// MatchOptionsDTO tunes one match request.  Empty strings and zero values defer
// to the configured defaults.
type MatchOptionsDTO struct {
	Algorithm  string     `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Mode       string     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Unique     UniqueMode `json:"unique,omitempty" yaml:"unique,omitempty"`
	Limit      int        `json:"limit,omitempty" yaml:"limit,omitempty"`
	Stereo     bool       `json:"stereo,omitempty" yaml:"stereo,omitempty"`
	Components bool       `json:"components,omitempty" yaml:"components,omitempty"`
}

// Validate checks the option values that do not need the engine to parse.
func (o *MatchOptionsDTO) Validate() error {
	if o.Limit < 0 {
		return errors.InvalidParam("limit must not be negative").WithDetailf("limit=%d", o.Limit)
	}
	if !o.Unique.IsValid() {
		return errors.InvalidParam("unknown unique mode").WithDetailf("unique=%q", o.Unique)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Requests and results
// ─────────────────────────────────────────────────────────────────────────────

// MatchRequestDTO asks for the embeddings of a query in one target.
type MatchRequestDTO struct {
	Query   QueryDTO         `json:"query" yaml:"query"`
	Target  MoleculeGraphDTO `json:"target" yaml:"target"`
	Options MatchOptionsDTO  `json:"options,omitempty" yaml:"options,omitempty"`
}

// MatchResultDTO carries the embeddings found in one target.  Mappings[i][q] is
// the target atom matched to query atom q.
type MatchResultDTO struct {
	Matched   bool          `json:"matched" yaml:"matched"`
	Count     int           `json:"count" yaml:"count"`
	Mappings  [][]int       `json:"mappings" yaml:"mappings"`
	AtomMaps  []map[int]int `json:"atom_maps,omitempty" yaml:"atom_maps,omitempty"`
	BondMaps  []map[int]int `json:"bond_maps,omitempty" yaml:"bond_maps,omitempty"`
	Algorithm string        `json:"algorithm" yaml:"algorithm"`
	Mode      string        `json:"mode" yaml:"mode"`
	Unique    UniqueMode    `json:"unique" yaml:"unique"`
	Truncated bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// ScreenRequestDTO asks which molecules of a library contain the query.
type ScreenRequestDTO struct {
	Query   QueryDTO           `json:"query" yaml:"query"`
	Library []MoleculeGraphDTO `json:"library" yaml:"library"`
	Options MatchOptionsDTO    `json:"options,omitempty" yaml:"options,omitempty"`
	// CountHits asks for the number of unique atom sets per hit instead of a
	// plain existence check.
	CountHits bool `json:"count_hits,omitempty" yaml:"count_hits,omitempty"`
}

// Validate checks that there is something to screen.
func (r *ScreenRequestDTO) Validate() error {
	if len(r.Library) == 0 {
		return errors.New(errors.ErrCodeScreenLibraryEmpty, "screening library is empty")
	}
	return r.Options.Validate()
}

// ScreenHitDTO is one library molecule that contains the query.
type ScreenHitDTO struct {
	Index      int    `json:"index" yaml:"index"`
	MoleculeID string `json:"molecule_id,omitempty" yaml:"molecule_id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	MatchCount int    `json:"match_count,omitempty" yaml:"match_count,omitempty"`
	Cached     bool   `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// ScreenResultDTO summarises a screening run.
type ScreenResultDTO struct {
	JobID     string         `json:"job_id" yaml:"job_id"`
	Screened  int            `json:"screened" yaml:"screened"`
	HitCount  int            `json:"hit_count" yaml:"hit_count"`
	CacheHits int            `json:"cache_hits" yaml:"cache_hits"`
	Hits      []ScreenHitDTO `json:"hits" yaml:"hits"`
	Algorithm string         `json:"algorithm" yaml:"algorithm"`
}

// AnchorRequestDTO asks which target atoms can host query atom 0.
type AnchorRequestDTO struct {
	Query   QueryDTO         `json:"query" yaml:"query"`
	Target  MoleculeGraphDTO `json:"target" yaml:"target"`
	Options MatchOptionsDTO  `json:"options,omitempty" yaml:"options,omitempty"`
}

// AnchorResultDTO lists the target atoms that can host query atom 0.
type AnchorResultDTO struct {
	Anchors []int `json:"anchors" yaml:"anchors"`
	Count   int   `json:"count" yaml:"count"`
}

func validateChirality(c Chirality, neighbors []int, atom int) error {
	if !c.IsValid() {
		return errors.New(errors.ErrCodeStereoMalformed, "unknown chirality").WithDetailf("atom=%d chirality=%q", atom, c)
	}
	if c == ChiralityNone {
		if len(neighbors) != 0 {
			return errors.New(errors.ErrCodeStereoMalformed, "chiral neighbours given without chirality").WithDetailf("atom=%d", atom)
		}
		return nil
	}
	if len(neighbors) != 4 {
		return errors.New(errors.ErrCodeStereoMalformed, "tetrahedral centre needs four neighbour slots").
			WithDetail(fmt.Sprintf("atom=%d slots=%d", atom, len(neighbors)))
	}
	return nil
}

func validateBondStereo(s BondStereo, refs []int, bond int) error {
	if !s.IsValid() {
		return errors.New(errors.ErrCodeStereoMalformed, "unknown bond stereo").WithDetailf("bond=%d stereo=%q", bond, s)
	}
	if s != BondStereoNone && len(refs) != 2 {
		return errors.New(errors.ErrCodeStereoMalformed, "stereo bond needs two reference atoms").WithDetailf("bond=%d refs=%d", bond, len(refs))
	}
	return nil
}
