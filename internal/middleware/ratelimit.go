package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fanfie/fanfie-api/internal/config"
)

// CounterStore is the shared counter backend used for rate-limit windows.
// Increment bumps the counter at key, setting ttl when the key is created,
// and returns the post-increment value.
type CounterStore interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounterStore implements CounterStore on Redis
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a Redis-backed counter store
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Increment atomically increments the key and sets its expiry on creation
func (s *RedisCounterStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimitResult carries the rate-limit state after a check
type RateLimitResult struct {
	Limit     int
	Remaining int
	Reset     time.Time
	Allowed   bool
}

// RateLimiter implements fixed-window rate limiting per (client, endpoint
// class). Windows reset at fixed boundaries, so up to 2x the limit can pass
// across a boundary; callers must not assume smoothing.
type RateLimiter struct {
	store   CounterStore
	classes map[string]config.RateLimitClass
	def     config.RateLimitClass
}

// NewRateLimiter creates a rate limiter from the per-class configuration
func NewRateLimiter(store CounterStore, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store: store,
		classes: map[string]config.RateLimitClass{
			"default": cfg.Default,
			"auth":    cfg.Auth,
			"images":  cfg.Images,
		},
		def: cfg.Default,
	}
}

// Class returns the configuration for an endpoint class, falling back to the
// default class for unknown labels
func (r *RateLimiter) Class(name string) config.RateLimitClass {
	if c, ok := r.classes[name]; ok && c.MaxRequests > 0 {
		return c
	}
	return r.def
}

// Check increments the client's window counter for the endpoint class and
// returns the resulting state. An error means the counter store is
// unreachable; the caller must treat that as a denial, never as unlimited.
func (r *RateLimiter) Check(ctx context.Context, clientID, class string) (RateLimitResult, error) {
	cls := r.Class(class)
	now := time.Now()

	windowStart := now.Truncate(cls.Window)
	reset := windowStart.Add(cls.Window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", class, clientID, windowStart.Unix())

	count, err := r.store.Increment(ctx, key, cls.Window)
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("rate limit counter: %w", err)
	}

	remaining := cls.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Limit:     cls.MaxRequests,
		Remaining: remaining,
		Reset:     reset,
		Allowed:   count <= int64(cls.MaxRequests),
	}, nil
}
