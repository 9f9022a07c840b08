package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"github.com/hwangseoul-netizen/tention-mini/pkg/response"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Rate limit per second per client IP
	RequestsPerSecond int
	// Burst size (token bucket capacity)
	BurstSize int
	// Key prefix for Redis
	KeyPrefix string
	// Cleanup interval for local rate limiter
	CleanupInterval time.Duration
	// Entry TTL for local rate limiter
	EntryTTL time.Duration
}

// DefaultRateLimitConfig returns the limits applied to mutating routes
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		KeyPrefix:         "tention:ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// LocalRateLimiter implements in-memory token bucket rate limiting
type LocalRateLimiter struct {
	config   RateLimitConfig
	entries  sync.Map
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once

	totalAllowed  uint64
	totalRejected uint64
}

// NewLocalRateLimiter creates a local limiter and starts its cleanup loop
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = time.Minute
	}
	rl := &LocalRateLimiter{
		config: config,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow takes one token from key's bucket
func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := rl.now()

	entry, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	e := entry.(*rateLimitEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := now.Sub(e.lastUpdate).Seconds()
	e.tokens = min(float64(rl.config.BurstSize), e.tokens+elapsed*float64(rl.config.RequestsPerSecond))
	e.lastUpdate = now

	if e.tokens >= 1 {
		e.tokens--
		atomic.AddUint64(&rl.totalAllowed, 1)
		return true, nil
	}

	atomic.AddUint64(&rl.totalRejected, 1)
	return false, nil
}

// GetStats returns rate limiter statistics
func (rl *LocalRateLimiter) GetStats() (allowed, rejected uint64) {
	return atomic.LoadUint64(&rl.totalAllowed), atomic.LoadUint64(&rl.totalRejected)
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictBefore(rl.now().Add(-rl.config.EntryTTL))
		case <-rl.stop:
			return
		}
	}
}

func (rl *LocalRateLimiter) evictBefore(cutoff time.Time) {
	rl.entries.Range(func(key, value any) bool {
		e := value.(*rateLimitEntry)
		e.mu.Lock()
		if e.lastUpdate.Before(cutoff) {
			rl.entries.Delete(key)
		}
		e.mu.Unlock()
		return true
	})
}

// Stop stops the cleanup goroutine
func (rl *LocalRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// tokenBucketScript refills and takes one token atomically
const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = 1

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

local elapsed = now - last_update
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, 60)
return {allowed, tostring(tokens)}
`

type scriptEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisRateLimiter shares token buckets across instances through Redis
type RedisRateLimiter struct {
	config RateLimitConfig
	client scriptEvaler
	now    func() time.Time
}

// NewRedisRateLimiter creates a Redis limiter on an existing client
func NewRedisRateLimiter(client *redis.Client, config RateLimitConfig) *RedisRateLimiter {
	return newRedisRateLimiter(client, config)
}

func newRedisRateLimiter(client scriptEvaler, config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{
		config: config,
		client: client,
		now:    time.Now,
	}
}

// Allow checks if a request should be allowed using Redis
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(rl.now().UnixNano()) / 1e9

	result := rl.client.Eval(ctx, tokenBucketScript,
		[]string{rl.config.KeyPrefix + key},
		float64(rl.config.RequestsPerSecond),
		float64(rl.config.BurstSize),
		now,
	)

	values, err := result.Slice()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	if len(values) < 1 {
		return false, fmt.Errorf("rate limit script: unexpected result length %d", len(values))
	}

	allowed, _ := values[0].(int64)
	return allowed == 1, nil
}

// RateLimiter creates a rate limiting middleware keyed by client IP.
// Limiter errors fail open.
func RateLimiter(limiter Limiter, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), clientIP)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "rate limiter unavailable, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			allowed = true
		}

		remaining := config.BurstSize - 1
		if !allowed {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retryAfter := 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.TooManyRequests(
				"Rate limit exceeded. Please retry after "+strconv.Itoa(retryAfter)+" second(s).",
			))
			return
		}

		c.Next()
	}
}
