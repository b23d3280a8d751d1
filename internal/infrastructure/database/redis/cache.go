package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// HitEntry is the cached outcome of screening one library molecule with one
// query under one set of options.
type HitEntry struct {
	Matched bool `json:"m"`
	Count   int  `json:"c,omitempty"`
}

// HitCache stores screening outcomes keyed by a query fingerprint and a
// molecule fingerprint.  Both fingerprints come from Fingerprint.
type HitCache interface {
	Get(ctx context.Context, queryKey, moleculeKey string) (HitEntry, error)
	Lookup(ctx context.Context, queryKey string, moleculeKeys []string) (map[string]HitEntry, error)
	Store(ctx context.Context, queryKey string, entries map[string]HitEntry) error
	GetOrCompute(ctx context.Context, queryKey, moleculeKey string, compute func(ctx context.Context) (HitEntry, error)) (HitEntry, bool, error)
	Invalidate(ctx context.Context, queryKey string) (int64, error)
	Ping(ctx context.Context) error
}

// Fingerprint hashes the JSON encoding of v into a fixed-width key segment.
// Values with equal encodings share a fingerprint.
func Fingerprint(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", ErrSerializationFailed.WithCause(err)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

type redisHitCache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	ttl          time.Duration
	singleflight singleflight.Group
}

type CacheOption func(*redisHitCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisHitCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *redisHitCache) { c.ttl = ttl }
}

// NewHitCache returns a HitCache backed by client.
func NewHitCache(client *Client, log logging.Logger, opts ...CacheOption) HitCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisHitCache{
		client: client,
		logger: log,
		prefix: "keyip:substructure:",
		ttl:    time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisHitCache) key(queryKey, moleculeKey string) string {
	return c.prefix + "hit:" + queryKey + ":" + moleculeKey
}

// jitterTTL spreads expiry by +/- 10% so a screened library does not expire
// in one burst.
func (c *redisHitCache) jitterTTL() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitter := float64(c.ttl) * 0.1 * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(jitter)
}

func decodeEntry(data []byte) (HitEntry, error) {
	var e HitEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return HitEntry{}, ErrSerializationFailed.WithCause(err)
	}
	return e, nil
}

func (c *redisHitCache) Get(ctx context.Context, queryKey, moleculeKey string) (HitEntry, error) {
	data, err := c.client.Get(ctx, c.key(queryKey, moleculeKey)).Bytes()
	if err == redis.Nil {
		return HitEntry{}, ErrCacheMiss
	}
	if err != nil {
		return HitEntry{}, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	return decodeEntry(data)
}

// Lookup fetches many entries in one round trip.  Missing and undecodable
// entries are left out of the result.
func (c *redisHitCache) Lookup(ctx context.Context, queryKey string, moleculeKeys []string) (map[string]HitEntry, error) {
	out := make(map[string]HitEntry, len(moleculeKeys))
	if len(moleculeKeys) == 0 {
		return out, nil
	}
	keys := make([]string, len(moleculeKeys))
	for i, k := range moleculeKeys {
		keys[i] = c.key(queryKey, k)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read cached hits")
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		e, err := decodeEntry([]byte(s))
		if err != nil {
			c.logger.Warn("dropping undecodable cache entry", logging.String("key", keys[i]), logging.Err(err))
			continue
		}
		out[moleculeKeys[i]] = e
	}
	return out, nil
}

func (c *redisHitCache) Store(ctx context.Context, queryKey string, entries map[string]HitEntry) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for k, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return ErrSerializationFailed.WithCause(err)
		}
		pipe.Set(ctx, c.key(queryKey, k), data, c.jitterTTL())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to store hits")
	}
	return nil
}

// GetOrCompute returns the cached entry or runs compute once per key across
// concurrent callers and stores its result.  The boolean reports a cache hit.
// A failed write is logged and does not fail the call.
func (c *redisHitCache) GetOrCompute(ctx context.Context, queryKey, moleculeKey string, compute func(ctx context.Context) (HitEntry, error)) (HitEntry, bool, error) {
	e, err := c.Get(ctx, queryKey, moleculeKey)
	if err == nil {
		return e, true, nil
	}
	if err != ErrCacheMiss {
		c.logger.Warn("cache read failed, computing", logging.Err(err))
	}

	key := c.key(queryKey, moleculeKey)
	v, err, _ := c.singleflight.Do(key, func() (interface{}, error) {
		e, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		data, _ := json.Marshal(e)
		if setErr := c.client.Set(ctx, key, data, c.jitterTTL()).Err(); setErr != nil {
			c.logger.Warn("Failed to set cache in GetOrCompute", logging.Err(setErr))
		}
		return e, nil
	})
	if err != nil {
		return HitEntry{}, false, err
	}
	return v.(HitEntry), false, nil
}

// Invalidate removes every entry stored for queryKey.
func (c *redisHitCache) Invalidate(ctx context.Context, queryKey string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.prefix + "hit:" + queryKey + ":*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan cache")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache keys")
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *redisHitCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
