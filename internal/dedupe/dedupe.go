// Package dedupe keeps a short-lived record of processed job IDs so that a
// redelivered job runs at most once per retention window.
package dedupe

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a processed job ID is remembered.
const DefaultTTL = 24 * time.Hour

// KV is the minimal key-value surface the guard needs
// This enables better testability by allowing mock implementations
type KV interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// RedisKV adapts a go-redis client to KV.
type RedisKV struct {
	Client *redis.Client
}

// SetNX sets key to value if it does not exist yet.
func (r RedisKV) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, key, value, ttl).Result()
}

// Guard records observed job IDs under a prefix with a TTL.
type Guard struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

// NewGuard creates a guard. A non-positive ttl falls back to DefaultTTL.
func NewGuard(kv KV, prefix string, ttl time.Duration) *Guard {
	if prefix == "" {
		prefix = "defermq:seen"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{kv: kv, prefix: prefix, ttl: ttl}
}

// FirstSeen records id and reports whether this was its first observation
// within the retention window.
func (g *Guard) FirstSeen(ctx context.Context, id string) (bool, error) {
	sum := sha1.Sum([]byte(id))
	key := fmt.Sprintf("%s:%s", g.prefix, hex.EncodeToString(sum[:]))

	first, err := g.kv.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to record job id: %w", err)
	}
	return first, nil
}
