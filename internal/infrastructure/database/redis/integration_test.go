//go:build integration

// Integration tests against a real Redis server.  They require Docker and are
// gated behind the "integration" build tag.
package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	appmol "github.com/turtacn/KeyIP-Substructure/internal/application/molecule"
	"github.com/turtacn/KeyIP-Substructure/internal/config"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/testutil"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// startRedis launches a Redis 7 container and returns a connected client.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redis.NewClient(ctx, config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestHitCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := redis.NewHitCache(startRedis(t), logging.NewNopLogger(), redis.WithPrefix("it:"))

	require.NoError(t, cache.Store(ctx, "q", map[string]redis.HitEntry{
		"a": {Matched: true, Count: 2},
		"b": {Matched: false},
	}))
	got, err := cache.Lookup(ctx, "q", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]redis.HitEntry{"a": {Matched: true, Count: 2}, "b": {}}, got)

	n, err := cache.Invalidate(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, err = cache.Get(ctx, "q", "a")
	assert.ErrorIs(t, err, redis.ErrCacheMiss)
}

func TestHitCache_ScreeningReusesStoredHits(t *testing.T) {
	ctx := context.Background()
	cache := redis.NewHitCache(startRedis(t), logging.NewNopLogger(), redis.WithPrefix("it:"))

	cfg := config.Default()
	svc := appmol.NewService(cfg.Matcher, testutil.NewMockLogger(), appmol.WithHitCache(cache))
	req := &mtypes.ScreenRequestDTO{
		Query:   testutil.HydroxylQuery(),
		Library: []mtypes.MoleculeGraphDTO{testutil.Ethanol(), testutil.DimethylEther(), testutil.Methanol()},
	}

	first, err := svc.Screen(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)

	second, err := svc.Screen(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, second.CacheHits)
	assert.Equal(t, first.HitCount, second.HitCount)
	for _, h := range second.Hits {
		assert.True(t, h.Cached)
	}
}
