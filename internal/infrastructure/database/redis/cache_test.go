package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

type HitCacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache HitCache
}

func (s *HitCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	// A zero TTL keeps SET arguments deterministic.
	s.cache = NewHitCache(NewClientFrom(db, nil), logging.NewNopLogger(), WithPrefix("test:"), WithTTL(0))
}

func (s *HitCacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func TestHitCacheSuite(t *testing.T) {
	suite.Run(t, new(HitCacheTestSuite))
}

func (s *HitCacheTestSuite) TestGet_Hit() {
	s.mock.ExpectGet("test:hit:q1:m1").SetVal(`{"m":true,"c":3}`)

	e, err := s.cache.Get(context.Background(), "q1", "m1")
	s.Require().NoError(err)
	s.Equal(HitEntry{Matched: true, Count: 3}, e)
}

func (s *HitCacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:hit:q1:m1").RedisNil()

	_, err := s.cache.Get(context.Background(), "q1", "m1")
	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *HitCacheTestSuite) TestGet_Error() {
	s.mock.ExpectGet("test:hit:q1:m1").SetErr(errors.New("connection reset"))

	_, err := s.cache.Get(context.Background(), "q1", "m1")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *HitCacheTestSuite) TestGet_Corrupt() {
	s.mock.ExpectGet("test:hit:q1:m1").SetVal("not json")

	_, err := s.cache.Get(context.Background(), "q1", "m1")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *HitCacheTestSuite) TestLookup() {
	s.mock.ExpectMGet("test:hit:q1:a", "test:hit:q1:b", "test:hit:q1:c").
		SetVal([]interface{}{`{"m":true,"c":1}`, nil, "garbage"})

	got, err := s.cache.Lookup(context.Background(), "q1", []string{"a", "b", "c"})
	s.Require().NoError(err)
	s.Equal(map[string]HitEntry{"a": {Matched: true, Count: 1}}, got)
}

func (s *HitCacheTestSuite) TestLookup_Empty() {
	got, err := s.cache.Lookup(context.Background(), "q1", nil)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *HitCacheTestSuite) TestStore() {
	s.mock.MatchExpectationsInOrder(false)
	s.mock.ExpectSet("test:hit:q1:a", []byte(`{"m":true,"c":2}`), 0).SetVal("OK")
	s.mock.ExpectSet("test:hit:q1:b", []byte(`{"m":false}`), 0).SetVal("OK")

	err := s.cache.Store(context.Background(), "q1", map[string]HitEntry{
		"a": {Matched: true, Count: 2},
		"b": {},
	})
	s.NoError(err)
}

func (s *HitCacheTestSuite) TestGetOrCompute_Hit() {
	s.mock.ExpectGet("test:hit:q1:m1").SetVal(`{"m":true}`)

	e, cached, err := s.cache.GetOrCompute(context.Background(), "q1", "m1", func(context.Context) (HitEntry, error) {
		s.Fail("compute must not run on a hit")
		return HitEntry{}, nil
	})
	s.Require().NoError(err)
	s.True(cached)
	s.True(e.Matched)
}

func (s *HitCacheTestSuite) TestGetOrCompute_Miss() {
	s.mock.ExpectGet("test:hit:q1:m1").RedisNil()
	s.mock.ExpectSet("test:hit:q1:m1", []byte(`{"m":true,"c":4}`), 0).SetVal("OK")

	e, cached, err := s.cache.GetOrCompute(context.Background(), "q1", "m1", func(context.Context) (HitEntry, error) {
		return HitEntry{Matched: true, Count: 4}, nil
	})
	s.Require().NoError(err)
	s.False(cached)
	s.Equal(HitEntry{Matched: true, Count: 4}, e)
}

func (s *HitCacheTestSuite) TestGetOrCompute_ComputeError() {
	s.mock.ExpectGet("test:hit:q1:m1").RedisNil()
	boom := errors.New("boom")

	_, _, err := s.cache.GetOrCompute(context.Background(), "q1", "m1", func(context.Context) (HitEntry, error) {
		return HitEntry{}, boom
	})
	s.ErrorIs(err, boom)
}

func (s *HitCacheTestSuite) TestInvalidate() {
	s.mock.ExpectScan(0, "test:hit:q1:*", 100).SetVal([]string{"test:hit:q1:a", "test:hit:q1:b"}, 7)
	s.mock.ExpectDel("test:hit:q1:a", "test:hit:q1:b").SetVal(2)
	s.mock.ExpectScan(7, "test:hit:q1:*", 100).SetVal([]string{"test:hit:q1:c"}, 0)
	s.mock.ExpectDel("test:hit:q1:c").SetVal(1)

	n, err := s.cache.Invalidate(context.Background(), "q1")
	s.Require().NoError(err)
	s.Equal(int64(3), n)
}

func (s *HitCacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	s.NoError(s.cache.Ping(context.Background()))
}

func TestFingerprint(t *testing.T) {
	type payload struct {
		Symbols []string `json:"symbols"`
	}
	a, err := Fingerprint(payload{Symbols: []string{"C", "O"}})
	require.NoError(t, err)
	b, err := Fingerprint(payload{Symbols: []string{"C", "O"}})
	require.NoError(t, err)
	c, err := Fingerprint(payload{Symbols: []string{"O", "C"}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = Fingerprint(make(chan int))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func TestJitterTTL(t *testing.T) {
	c := &redisHitCache{ttl: 10 * time.Second}
	for i := 0; i < 100; i++ {
		d := c.jitterTTL()
		assert.GreaterOrEqual(t, d, 9*time.Second)
		assert.LessOrEqual(t, d, 11*time.Second)
	}
	assert.Zero(t, (&redisHitCache{}).jitterTTL())
}
