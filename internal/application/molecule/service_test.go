package molecule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-Substructure/internal/config"
	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Substructure/internal/testutil"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// MockHitCache mocks the screening cache.
type MockHitCache struct {
	mock.Mock
}

func (m *MockHitCache) Lookup(ctx context.Context, queryKey string, moleculeKeys []string) (map[string]redis.HitEntry, error) {
	args := m.Called(ctx, queryKey, moleculeKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]redis.HitEntry), args.Error(1)
}

func (m *MockHitCache) Store(ctx context.Context, queryKey string, entries map[string]redis.HitEntry) error {
	args := m.Called(ctx, queryKey, entries)
	return args.Error(0)
}

type fakeMetrics struct {
	mu       sync.Mutex
	matches  int
	screens  []screenRecord
	cache    map[string]int
	active   int
	maxAlive int
}

type screenRecord struct {
	algorithm      string
	screened, hits int
	failed         bool
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{cache: make(map[string]int)}
}

func (f *fakeMetrics) RecordMatch(string, substructure.Outcome, time.Duration, substructure.Stats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches++
}

func (f *fakeMetrics) RecordScreen(algorithm string, screened, hits int, _ time.Duration, failed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screens = append(f.screens, screenRecord{algorithm, screened, hits, failed})
}

func (f *fakeMetrics) RecordCacheAccess(outcome string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[outcome] += n
}

func (f *fakeMetrics) TrackScreen(string) func() {
	f.mu.Lock()
	f.active++
	if f.active > f.maxAlive {
		f.maxAlive = f.active
	}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}
}

func testConfig() config.MatcherConfig {
	return config.MatcherConfig{
		Algorithm:       "frontier",
		ScreenAlgorithm: "depthfirst",
		Mode:            "subgraph",
		Unique:          "none",
		MaxLibrarySize:  10,
		MaxMappings:     100,
		ScreenWorkers:   2,
	}
}

func library() []mtypes.MoleculeGraphDTO {
	return []mtypes.MoleculeGraphDTO{testutil.Ethanol(), testutil.DimethylEther(), testutil.Methanol()}
}

func TestNewService(t *testing.T) {
	svc := NewService(testConfig(), nil)
	assert.NotNil(t, svc)

	cfg := testConfig()
	cfg.ScreenWorkers = 0
	impl := NewService(cfg, nil).(*serviceImpl)
	assert.Equal(t, 1, impl.cfg.ScreenWorkers)
}

func TestMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("hydroxyl in ethanol", func(t *testing.T) {
		svc := NewService(testConfig(), nil)
		res, err := svc.Match(ctx, &mtypes.MatchRequestDTO{Query: testutil.HydroxylQuery(), Target: testutil.Ethanol()})
		require.NoError(t, err)
		assert.True(t, res.Matched)
		assert.Equal(t, 1, res.Count)
		assert.Equal(t, [][]int{{2, 1}}, res.Mappings)
		assert.Equal(t, map[int]int{0: 2, 1: 1}, res.AtomMaps[0])
		assert.Equal(t, map[int]int{0: 1}, res.BondMaps[0])
		assert.Equal(t, "frontier", res.Algorithm)
		assert.Equal(t, "subgraph", res.Mode)
		assert.False(t, res.Truncated)
	})

	t.Run("no match", func(t *testing.T) {
		svc := NewService(testConfig(), nil)
		res, err := svc.Match(ctx, &mtypes.MatchRequestDTO{Query: testutil.HydroxylQuery(), Target: testutil.DimethylEther()})
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Equal(t, 0, res.Count)
		assert.Empty(t, res.Mappings)
	})

	t.Run("unique atoms collapses symmetric mappings", func(t *testing.T) {
		svc := NewService(testConfig(), nil)
		req := &mtypes.MatchRequestDTO{Query: testutil.CarbonPairQuery(), Target: testutil.Benzene()}

		res, err := svc.Match(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 12, res.Count)

		req.Options.Unique = mtypes.UniqueAtoms
		res, err = svc.Match(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 6, res.Count)
		assert.Equal(t, mtypes.UniqueAtoms, res.Unique)
	})

	t.Run("truncated at max mappings", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxMappings = 5
		svc := NewService(cfg, nil)
		res, err := svc.Match(ctx, &mtypes.MatchRequestDTO{Query: testutil.CarbonPairQuery(), Target: testutil.Benzene()})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Count)
		assert.True(t, res.Truncated)
	})

	t.Run("explicit limit below cap", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxMappings = 5
		svc := NewService(cfg, nil)
		res, err := svc.Match(ctx, &mtypes.MatchRequestDTO{
			Query:   testutil.CarbonPairQuery(),
			Target:  testutil.Benzene(),
			Options: mtypes.MatchOptionsDTO{Limit: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Count)
		assert.False(t, res.Truncated)
	})

	t.Run("algorithm override", func(t *testing.T) {
		svc := NewService(testConfig(), nil)
		for _, alg := range []string{"refinement", "depthfirst"} {
			res, err := svc.Match(ctx, &mtypes.MatchRequestDTO{
				Query:   testutil.CarbonPairQuery(),
				Target:  testutil.Benzene(),
				Options: mtypes.MatchOptionsDTO{Algorithm: alg},
			})
			require.NoError(t, err)
			assert.Equal(t, alg, res.Algorithm)
			assert.Equal(t, 12, res.Count)
		}
	})

	t.Run("records metrics", func(t *testing.T) {
		m := newFakeMetrics()
		svc := NewService(testConfig(), nil, WithMetrics(m))
		_, err := svc.Match(ctx, &mtypes.MatchRequestDTO{Query: testutil.HydroxylQuery(), Target: testutil.Ethanol()})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.matches, 1)
	})
}

func TestMatch_Errors(t *testing.T) {
	svc := NewService(testConfig(), nil)
	ctx := context.Background()

	_, err := svc.Match(ctx, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = svc.Match(ctx, &mtypes.MatchRequestDTO{
		Query:   testutil.HydroxylQuery(),
		Target:  testutil.Ethanol(),
		Options: mtypes.MatchOptionsDTO{Algorithm: "quantum"},
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeAlgorithmUnsupported))

	_, err = svc.Match(ctx, &mtypes.MatchRequestDTO{
		Query:   testutil.HydroxylQuery(),
		Target:  testutil.Ethanol(),
		Options: mtypes.MatchOptionsDTO{Mode: "fuzzy"},
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeModeUnsupported))

	bad := testutil.Ethanol()
	bad.Bonds = append(bad.Bonds, mtypes.BondDTO{Begin: 0, End: 9})
	_, err = svc.Match(ctx, &mtypes.MatchRequestDTO{Query: testutil.HydroxylQuery(), Target: bad})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidGraph))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Match(cctx, &mtypes.MatchRequestDTO{Query: testutil.HydroxylQuery(), Target: testutil.Ethanol()})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestAnchors(t *testing.T) {
	svc := NewService(testConfig(), nil)
	res, err := svc.Anchors(context.Background(), &mtypes.AnchorRequestDTO{Query: testutil.HydroxylQuery(), Target: testutil.Ethanol()})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Anchors)
	assert.Equal(t, 1, res.Count)

	res, err = svc.Anchors(context.Background(), &mtypes.AnchorRequestDTO{Query: testutil.HydroxylQuery(), Target: testutil.DimethylEther()})
	require.NoError(t, err)
	assert.Empty(t, res.Anchors)

	_, err = svc.Anchors(context.Background(), nil)
	assert.Error(t, err)
}

func TestScreen(t *testing.T) {
	ctx := context.Background()

	t.Run("hits", func(t *testing.T) {
		logger := testutil.NewMockLogger()
		m := newFakeMetrics()
		svc := NewService(testConfig(), logger, WithMetrics(m))

		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: library()})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Screened)
		assert.Equal(t, 2, res.HitCount)
		require.Len(t, res.Hits, 2)
		assert.Equal(t, 0, res.Hits[0].Index)
		assert.Equal(t, "mol-ethanol", res.Hits[0].MoleculeID)
		assert.Equal(t, 2, res.Hits[1].Index)
		assert.Equal(t, 0, res.CacheHits)
		assert.Equal(t, "depthfirst", res.Algorithm)
		_, err = uuid.Parse(res.JobID)
		assert.NoError(t, err)

		require.Len(t, m.screens, 1)
		assert.Equal(t, screenRecord{"depthfirst", 3, 2, false}, m.screens[0])
		assert.Equal(t, 1, m.maxAlive)
		assert.Equal(t, 0, m.active)

		msg, ok := logger.Find("info", "screening finished")
		require.True(t, ok)
		jobID, _ := msg.Field("job_id")
		assert.Equal(t, res.JobID, jobID)
	})

	t.Run("count hits", func(t *testing.T) {
		svc := NewService(testConfig(), nil)
		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{
			Query:     testutil.CarbonPairQuery(),
			Library:   []mtypes.MoleculeGraphDTO{testutil.Benzene(), testutil.Methanol(), testutil.Ethanol()},
			CountHits: true,
		})
		require.NoError(t, err)
		require.Len(t, res.Hits, 2)
		assert.Equal(t, 6, res.Hits[0].MatchCount)
		assert.Equal(t, 2, res.Hits[1].Index)
		assert.Equal(t, 1, res.Hits[1].MatchCount)
	})

	t.Run("no hits gives empty slice", func(t *testing.T) {
		svc := NewService(testConfig(), nil)
		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{
			Query:   testutil.HydroxylQuery(),
			Library: []mtypes.MoleculeGraphDTO{testutil.DimethylEther()},
		})
		require.NoError(t, err)
		assert.NotNil(t, res.Hits)
		assert.Empty(t, res.Hits)
	})
}

func TestScreen_Errors(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxLibrarySize = 2
	m := newFakeMetrics()
	svc := NewService(cfg, nil, WithMetrics(m))

	_, err := svc.Screen(ctx, nil)
	assert.Error(t, err)

	_, err = svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery()})
	assert.True(t, errors.IsCode(err, errors.ErrCodeScreenLibraryEmpty))

	_, err = svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: library()})
	assert.True(t, errors.IsCode(err, errors.ErrCodeScreenLibraryTooBig))

	bad := testutil.Methanol()
	bad.Bonds[0].End = 7
	_, err = svc.Screen(ctx, &mtypes.ScreenRequestDTO{
		Query:   testutil.HydroxylQuery(),
		Library: []mtypes.MoleculeGraphDTO{testutil.Ethanol(), bad},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMoleculeInvalidGraph, errors.GetCode(err))
	require.NotEmpty(t, m.screens)
	assert.True(t, m.screens[len(m.screens)-1].failed)
	assert.Equal(t, 0, m.active)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Screen(cctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: library()[:1]})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestScreen_Cache(t *testing.T) {
	ctx := context.Background()
	lib := library()
	keys := make([]string, len(lib))
	for i := range lib {
		k, err := redis.Fingerprint(lib[i])
		require.NoError(t, err)
		keys[i] = k
	}

	t.Run("cached entries skip matching", func(t *testing.T) {
		cache := new(MockHitCache)
		m := newFakeMetrics()
		svc := NewService(testConfig(), nil, WithHitCache(cache), WithMetrics(m))

		// The cached verdict for dimethyl ether is deliberately wrong so the
		// test can tell it was not recomputed.
		cache.On("Lookup", ctx, mock.AnythingOfType("string"), keys).
			Return(map[string]redis.HitEntry{keys[1]: {Matched: true}}, nil)
		cache.On("Store", ctx, mock.AnythingOfType("string"), map[string]redis.HitEntry{
			keys[0]: {Matched: true},
			keys[2]: {Matched: true},
		}).Return(nil)

		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: lib})
		require.NoError(t, err)
		assert.Equal(t, 3, res.HitCount)
		assert.Equal(t, 1, res.CacheHits)
		assert.True(t, res.Hits[1].Cached)
		assert.False(t, res.Hits[0].Cached)
		assert.Equal(t, 1, m.cache["hit"])
		assert.Equal(t, 2, m.cache["miss"])
		cache.AssertExpectations(t)
	})

	t.Run("duplicate molecules count one access each", func(t *testing.T) {
		cache := new(MockHitCache)
		m := newFakeMetrics()
		svc := NewService(testConfig(), nil, WithHitCache(cache), WithMetrics(m))
		dup := []mtypes.MoleculeGraphDTO{testutil.Ethanol(), testutil.Ethanol(), testutil.Ethanol(), testutil.Methanol()}

		cache.On("Lookup", ctx, mock.AnythingOfType("string"), []string{keys[0], keys[0], keys[0], keys[2]}).
			Return(map[string]redis.HitEntry{keys[0]: {Matched: true}}, nil)
		cache.On("Store", ctx, mock.AnythingOfType("string"), map[string]redis.HitEntry{
			keys[2]: {Matched: true},
		}).Return(nil)

		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: dup})
		require.NoError(t, err)
		assert.Equal(t, 3, res.CacheHits)
		assert.Equal(t, 3, m.cache["hit"])
		assert.Equal(t, 1, m.cache["miss"])
		cache.AssertExpectations(t)
	})

	t.Run("fully cached stores nothing", func(t *testing.T) {
		cache := new(MockHitCache)
		svc := NewService(testConfig(), nil, WithHitCache(cache))
		cache.On("Lookup", ctx, mock.AnythingOfType("string"), keys).Return(map[string]redis.HitEntry{
			keys[0]: {Matched: true}, keys[1]: {}, keys[2]: {Matched: true},
		}, nil)

		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: lib})
		require.NoError(t, err)
		assert.Equal(t, 2, res.HitCount)
		assert.Equal(t, 3, res.CacheHits)
		cache.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lookup failure degrades to full screen", func(t *testing.T) {
		cache := new(MockHitCache)
		m := newFakeMetrics()
		logger := testutil.NewMockLogger()
		svc := NewService(testConfig(), logger, WithHitCache(cache), WithMetrics(m))
		cache.On("Lookup", ctx, mock.Anything, keys).Return(nil, errors.New(errors.ErrCodeCacheError, "down"))
		cache.On("Store", ctx, mock.Anything, mock.Anything).Return(errors.New(errors.ErrCodeCacheError, "down"))

		res, err := svc.Screen(ctx, &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: lib})
		require.NoError(t, err)
		assert.Equal(t, 2, res.HitCount)
		assert.Equal(t, 0, res.CacheHits)
		assert.Equal(t, 1, m.cache["error"])
		assert.True(t, logger.HasMessage("warn", "screening cache lookup failed"))
		assert.True(t, logger.HasMessage("warn", "failed to store screening hits"))
	})

	t.Run("query key depends on options", func(t *testing.T) {
		cache := new(MockHitCache)
		svc := NewService(testConfig(), nil, WithHitCache(cache))
		var seen []string
		cache.On("Lookup", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { seen = append(seen, args.String(1)) }).
			Return(map[string]redis.HitEntry{}, nil)
		cache.On("Store", ctx, mock.Anything, mock.Anything).Return(nil)

		req := &mtypes.ScreenRequestDTO{Query: testutil.HydroxylQuery(), Library: lib}
		_, err := svc.Screen(ctx, req)
		require.NoError(t, err)
		req.Options.Algorithm = "frontier"
		_, err = svc.Screen(ctx, req)
		require.NoError(t, err)
		req.CountHits = true
		_, err = svc.Screen(ctx, req)
		require.NoError(t, err)

		require.Len(t, seen, 3)
		assert.Equal(t, seen[0], seen[1])
		assert.NotEqual(t, seen[1], seen[2])
	})
}
