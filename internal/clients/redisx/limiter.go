// Package redisx provides Redis-backed request rate limiting with an
// in-process fallback for environments without Redis.
package redisx

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window counter keyed by caller identity and action.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// NewClient dials Redis from REDIS_URL. Empty REDIS_URL returns nil without
// error; callers fall back to the in-memory limiter.
func NewClient(log *logger.Logger) (*redis.Client, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis connected")
	return client, nil
}

type redisLimiter struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewLimiter wraps a Redis client as a Limiter. A nil client yields the
// in-memory limiter instead.
func NewLimiter(rdb *redis.Client, log *logger.Logger) Limiter {
	if rdb == nil {
		log.Warn("rate limiter running in-memory; counts are per-process")
		return NewMemoryLimiter()
	}
	return &redisLimiter{rdb: rdb, log: log.With("service", "RateLimiter")}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	redisKey := "ratelimit:" + key

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(incr.Val())
	res := Result{Limit: limit}
	if count <= limit {
		res.Allowed = true
		res.Remaining = limit - count
		return res, nil
	}
	res.RetryAfter = ttl.Val()
	if res.RetryAfter < 0 {
		res.RetryAfter = window
	}
	return res, nil
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

type memoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryLimiter is a per-process fixed-window limiter for tests and
// Redis-less deployments.
func NewMemoryLimiter() Limiter {
	return &memoryLimiter{windows: make(map[string]*memoryWindow)}
}

func (l *memoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		l.windows[key] = w
	}
	w.count++

	res := Result{Limit: limit}
	if w.count <= limit {
		res.Allowed = true
		res.Remaining = limit - w.count
		return res, nil
	}
	res.RetryAfter = time.Until(w.resetAt)
	if res.RetryAfter < 0 {
		res.RetryAfter = 0
	}
	return res, nil
}
