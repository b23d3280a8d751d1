package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limiter state reported in the X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter keeps one in-memory token bucket per key.  Buckets start
// full, refill at rate tokens per second and never hold more than burst.
type TokenBucketLimiter struct {
	rate            float64
	burst           int
	cleanupInterval time.Duration
	now             func() time.Time

	mu      sync.RWMutex
	buckets map[string]*tokenBucket

	stopOnce sync.Once
	stop     chan struct{}
}

// NewTokenBucketLimiter starts a limiter.  A positive cleanupInterval runs a
// background sweep of idle buckets until Stop is called.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:            rate,
		burst:           burst,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
		buckets:         make(map[string]*tokenBucket),
		stop:            make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow takes one token from key's bucket if one is available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok {
		l.mu.Lock()
		if b, ok = l.buckets[key]; !ok {
			b = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
			l.buckets[key] = b
		}
		l.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.burst), b.tokens+elapsed*l.rate)
		b.lastRefill = now
	}

	info := RateLimitInfo{Limit: l.burst}
	if b.tokens >= 1 {
		b.tokens--
		info.Remaining = int(b.tokens)
		info.ResetAt = now.Add(l.untilFull(b.tokens))
		return true, info
	}
	// Time until the next whole token.
	info.ResetAt = now.Add(time.Duration((1 - b.tokens) / l.rate * float64(time.Second)))
	return false, info
}

func (l *TokenBucketLimiter) untilFull(tokens float64) time.Duration {
	missing := float64(l.burst) - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / l.rate * float64(time.Second))
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops buckets that have sat idle for a whole interval.  An idle
// bucket would have refilled to burst anyway, so dropping it loses nothing.
func (l *TokenBucketLimiter) cleanup() {
	threshold := l.now().Add(-l.cleanupInterval)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastRefill.Before(threshold)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine.  It is safe to call more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// BucketCount reports how many keys are currently tracked.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// RateLimitKey keys requests by API key id when APIKeyAuth admitted the
// caller, and by client IP otherwise.
func RateLimitKey(c *gin.Context) string {
	if id := GetAPIKeyID(c); id != "" {
		return "apikey:" + id
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects requests over the limiter's budget with 429 and a
// Retry-After header.  A nil keyFunc selects RateLimitKey.
func RateLimit(limiter RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = RateLimitKey
	}
	return func(c *gin.Context) {
		allowed, info := limiter.Allow(keyFunc(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if allowed {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(time.Until(info.ResetAt).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		abortWithCode(c, errors.ErrCodeRateLimited, "rate limit exceeded, retry later")
	}
}

// abortWithCode writes the same JSON error envelope the handlers use.
func abortWithCode(c *gin.Context, code errors.ErrorCode, message string) {
	body := gin.H{"code": code.String(), "message": message}
	if id := GetRequestID(c); id != "" {
		body["request_id"] = id
	}
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), body)
}

var _ RateLimiter = (*TokenBucketLimiter)(nil)
