package molecule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

type countingRecorder struct{ calls int }

func (r *countingRecorder) RecordMatch(string, substructure.Outcome, time.Duration, substructure.Stats) {
	r.calls++
}

func compileWith(t *testing.T, svc *Service, dto *mtypes.QueryDTO, set MatchSettings) (*substructure.Pattern, *Query) {
	t.Helper()
	q := mustCompile(t, dto)
	p, err := svc.Compile(q, set)
	require.NoError(t, err)
	return p, q
}

func TestService_Compile(t *testing.T) {
	rec := &countingRecorder{}
	svc := NewService(nil, rec)

	_, err := svc.Compile(nil, MatchSettings{})
	assert.True(t, errors.IsCode(err, errors.CodeQueryMalformed))

	_, err = svc.Compile(mustCompile(t, &mtypes.QueryDTO{Atoms: symbolsQuery("C")}), MatchSettings{Algorithm: substructure.Algorithm(7)})
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlgorithmUnsupported))

	set := MatchSettings{Algorithm: substructure.AlgorithmRefinement, Mode: substructure.ModeExact}
	p, _ := compileWith(t, svc, &mtypes.QueryDTO{Atoms: symbolsQuery("C")}, set)
	assert.Equal(t, substructure.AlgorithmRefinement, p.Algorithm())
	assert.Equal(t, substructure.ModeExact, p.Mode())

	_, err = p.Matches(ethanol(t))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
}

func TestService_MappingsUniqueAndLimit(t *testing.T) {
	svc := NewService(logging.NewNopLogger(), nil)
	target := toluene(t)
	p, q := compileWith(t, svc, aromaticRingQuery(), MatchSettings{})

	tests := []struct {
		name string
		set  MatchSettings
		want int
	}{
		{"raw", MatchSettings{}, 12},
		{"unique atoms", MatchSettings{Unique: mtypes.UniqueAtoms}, 1},
		{"unique bonds", MatchSettings{Unique: mtypes.UniqueBonds}, 1},
		{"explicit none", MatchSettings{Unique: mtypes.UniqueNone}, 12},
		{"limit", MatchSettings{Limit: 5}, 5},
		{"limit after unique", MatchSettings{Unique: mtypes.UniqueAtoms, Limit: 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := svc.Mappings(p, q, target, tt.set).Count()
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestService_ComponentGrouping(t *testing.T) {
	svc := NewService(nil, nil)
	// hydrogen peroxide O0-O1 next to a water O2
	target := mustMolecule(t, atomsOf("O", "O", "O"), single(0, 1))

	tests := []struct {
		name   string
		groups []int
		want   int
	}{
		{"ungrouped", nil, 6},
		{"separate fragments", []int{1, 2}, 4},
		{"same fragment", []int{1, 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := &mtypes.QueryDTO{Atoms: symbolsQuery("O", "O"), Groups: tt.groups}
			set := MatchSettings{Components: true}
			p, q := compileWith(t, svc, dto, set)
			n, err := svc.Mappings(p, q, target, set).Count()
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)

			ok, err := svc.Contains(p, q, target, set)
			require.NoError(t, err)
			assert.Equal(t, tt.want > 0, ok)
		})
	}
}

func chiralQuery(chirality mtypes.Chirality, neighbors ...int) *mtypes.QueryDTO {
	atoms := symbolsQuery("C", "F", "Cl", "Br")
	atoms[0].Chirality = chirality
	atoms[0].ChiralNeighbors = neighbors
	return &mtypes.QueryDTO{
		Atoms: atoms,
		Bonds: []mtypes.QueryBondDTO{{Begin: 0, End: 1}, {Begin: 0, End: 2}, {Begin: 0, End: 3}},
	}
}

func TestService_StereoFilter(t *testing.T) {
	svc := NewService(nil, nil)
	target := halomethane(t, mtypes.ChiralityClockwise)
	stereo := MatchSettings{Stereo: true}

	tests := []struct {
		name string
		dto  *mtypes.QueryDTO
		set  MatchSettings
		want bool
	}{
		{"same winding", chiralQuery(mtypes.ChiralityClockwise, 1, 2, 3, -1), stereo, true},
		{"mirror image", chiralQuery(mtypes.ChiralityCounterClockwise, 1, 2, 3, -1), stereo, false},
		{"mirror image, stereo ignored", chiralQuery(mtypes.ChiralityCounterClockwise, 1, 2, 3, -1), MatchSettings{}, true},
		{"swapped slots and winding", chiralQuery(mtypes.ChiralityCounterClockwise, 2, 1, 3, -1), stereo, true},
		{"no query stereo", chiralQuery(mtypes.ChiralityNone), stereo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, q := compileWith(t, svc, tt.dto, tt.set)
			ok, err := svc.Contains(p, q, target, tt.set)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	// a stereo query never matches a target without stereo
	flat := mustMolecule(t, atomsOf("C", "F", "Cl", "Br"), single(0, 1), single(0, 2), single(0, 3))
	p, q := compileWith(t, svc, chiralQuery(mtypes.ChiralityClockwise, 1, 2, 3, -1), stereo)
	ok, err := svc.Contains(p, q, flat, stereo)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_CountUnique(t *testing.T) {
	svc := NewService(nil, nil)
	dto := &mtypes.QueryDTO{Atoms: symbolsQuery("C", "C"), Bonds: []mtypes.QueryBondDTO{{Begin: 0, End: 1}}}
	p, q := compileWith(t, svc, dto, MatchSettings{})
	n, err := svc.CountUnique(p, q, toluene(t), MatchSettings{})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestService_Anchors(t *testing.T) {
	svc := NewService(nil, nil)
	hydroxyl := &mtypes.QueryDTO{
		Atoms: []mtypes.QueryAtomDTO{{Symbols: []string{"O"}, HydrogenCount: intPtr(1)}, {Symbols: []string{"C"}}},
		Bonds: []mtypes.QueryBondDTO{{Begin: 0, End: 1}},
	}
	for _, alg := range []substructure.Algorithm{substructure.AlgorithmFrontier, substructure.AlgorithmRefinement, substructure.AlgorithmDepthFirst} {
		set := MatchSettings{Algorithm: alg}
		p, q := compileWith(t, svc, hydroxyl, set)
		anchors, err := svc.Anchors(p, q, ethanol(t), set)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, anchors, alg.String())

		anchors, err = svc.Anchors(p, q, toluene(t), set)
		require.NoError(t, err)
		assert.NotNil(t, anchors)
		assert.Empty(t, anchors)
	}

	// the filtered path must agree with the rooted one
	carbons := &mtypes.QueryDTO{Atoms: symbolsQuery("C", "C"), Bonds: []mtypes.QueryBondDTO{{Begin: 0, End: 1}}, Groups: []int{1, 1}}
	set := MatchSettings{Components: true}
	p, q := compileWith(t, svc, carbons, set)
	filtered, err := svc.Anchors(p, q, ethanol(t), set)
	require.NoError(t, err)
	rooted, err := svc.Anchors(p, q, ethanol(t), MatchSettings{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, filtered)
	assert.Equal(t, rooted, filtered)

	empty := mustCompile(t, &mtypes.QueryDTO{})
	pe, err := svc.Compile(empty, MatchSettings{})
	require.NoError(t, err)
	anchors, err := svc.Anchors(pe, empty, ethanol(t), MatchSettings{})
	require.NoError(t, err)
	assert.Empty(t, anchors)
}
