package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fanfie/fanfie-api/internal/config"
)

// Paths that only scanners and exploit kits request. A single hit blocks the
// client for the configured duration.
var suspiciousPathFragments = []string{
	".php",
	".asp",
	".aspx",
	".jsp",
	".cgi",
	".env",
	".git",
	"wp-admin",
	"wp-login",
	"wp-content",
	"phpmyadmin",
	"/admin.",
	"/.well-known/security",
	"/etc/passwd",
	"xmlrpc",
	"/vendor/",
	"/cgi-bin/",
}

// BlockStore persists client blocks and per-second burst counters
type BlockStore interface {
	Block(ctx context.Context, clientID, reason string, duration time.Duration) error
	BlockReason(ctx context.Context, clientID string) (string, bool, error)
	IncrementBurst(ctx context.Context, clientID string, second int64) (int64, error)
}

// RedisBlockStore implements BlockStore on Redis so blocks are shared across
// instances
type RedisBlockStore struct {
	client *redis.Client
}

// NewRedisBlockStore creates a Redis-backed block store
func NewRedisBlockStore(client *redis.Client) *RedisBlockStore {
	return &RedisBlockStore{client: client}
}

// Block records a client block with an expiry
func (s *RedisBlockStore) Block(ctx context.Context, clientID, reason string, duration time.Duration) error {
	return s.client.Set(ctx, blockKey(clientID), reason, duration).Err()
}

// BlockReason returns the block reason if the client is currently blocked
func (s *RedisBlockStore) BlockReason(ctx context.Context, clientID string) (string, bool, error) {
	reason, err := s.client.Get(ctx, blockKey(clientID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return reason, true, nil
}

// IncrementBurst bumps the client's counter for the given second
func (s *RedisBlockStore) IncrementBurst(ctx context.Context, clientID string, second int64) (int64, error) {
	key := fmt.Sprintf("abuse:burst:%s:%d", clientID, second)
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func blockKey(clientID string) string {
	return "abuse:block:" + clientID
}

// AbuseGuard applies heuristic abuse checks: suspicious path probes, the
// block list, and per-second request bursts
type AbuseGuard struct {
	store          BlockStore
	burstThreshold int
	blockDuration  time.Duration
}

// NewAbuseGuard creates an abuse guard from configuration
func NewAbuseGuard(store BlockStore, cfg config.AbuseConfig) *AbuseGuard {
	burst := cfg.BurstThreshold
	if burst <= 0 {
		burst = 10
	}
	duration := cfg.BlockDuration
	if duration <= 0 {
		duration = time.Hour
	}
	return &AbuseGuard{
		store:          store,
		burstThreshold: burst,
		blockDuration:  duration,
	}
}

// SuspiciousPath returns true if the path looks like a scanner probe
func (g *AbuseGuard) SuspiciousPath(path string) bool {
	lower := strings.ToLower(path)
	for _, fragment := range suspiciousPathFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Block blocks the client for the configured duration
func (g *AbuseGuard) Block(ctx context.Context, clientID, reason string) error {
	return g.store.Block(ctx, clientID, reason, g.blockDuration)
}

// IsBlocked returns whether the client is currently blocked, with the reason
func (g *AbuseGuard) IsBlocked(ctx context.Context, clientID string) (bool, string, error) {
	reason, blocked, err := g.store.BlockReason(ctx, clientID)
	if err != nil {
		return false, "", err
	}
	return blocked, reason, nil
}

// CheckBurst counts this request against the client's current second and
// returns false when the burst threshold is exceeded
func (g *AbuseGuard) CheckBurst(ctx context.Context, clientID string) (bool, error) {
	count, err := g.store.IncrementBurst(ctx, clientID, time.Now().Unix())
	if err != nil {
		return false, err
	}
	return count <= int64(g.burstThreshold), nil
}

// BlockDuration returns the configured block duration
func (g *AbuseGuard) BlockDuration() time.Duration {
	return g.blockDuration
}
