package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result reports the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window request counter keyed by credential.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter counts requests in Redis so the window is shared across
// service instances.
type RedisLimiter struct {
	rdb    redis.Cmdable
	window time.Duration
	max    int
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(rdb redis.Cmdable, window time.Duration, max int) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, window: window, max: max}
}

// Allow increments the window counter for key and reports whether the request
// fits in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := "ratelimit:" + key
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, k, l.window).Err(); err != nil {
			return Result{}, err
		}
	}
	ttl, err := l.rdb.PTTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	res := Result{Limit: l.max, ResetAt: time.Now().Add(ttl)}
	if count > int64(l.max) {
		return res, nil
	}
	res.Allowed = true
	res.Remaining = l.max - int(count)
	return res, nil
}

// MemoryLimiter keeps windows in process memory. Suitable for single-instance
// deployments and tests; windows are not shared across instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	window  time.Duration
	max     int
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates an in-memory fixed-window limiter.
func NewMemoryLimiter(windowDur time.Duration, max int) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		window:  windowDur,
		max:     max,
		now:     time.Now,
	}
}

// Allow increments the window counter for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(l.window)}
		l.windows[key] = w
	}

	res := Result{Limit: l.max, ResetAt: w.resetAt}
	if w.count >= l.max {
		return res, nil
	}
	w.count++
	res.Allowed = true
	res.Remaining = l.max - w.count
	return res, nil
}
