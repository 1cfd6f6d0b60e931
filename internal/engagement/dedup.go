package engagement

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore enforces at-most-one engagement write per external call id.
// The status and recording callbacks for one call may race; whichever
// claims the key first gets to write.
type DedupStore interface {
	// MarkOnce returns true exactly once per key within the TTL window
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const dedupKeyPrefix = "engagement:"

// RedisDedup backs DedupStore with Redis SETNX, surviving restarts and
// shared across replicas
type RedisDedup struct {
	client *redis.Client
}

func NewRedisDedup(client *redis.Client) *RedisDedup {
	return &RedisDedup{client: client}
}

func (r *RedisDedup) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, dedupKeyPrefix+key, "1", ttl).Result()
}

// MemoryDedup is an in-process DedupStore for tests and single-node
// development setups
type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{seen: make(map[string]time.Time)}
}

func (m *MemoryDedup) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, ok := m.seen[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	m.seen[key] = time.Now().Add(ttl)
	return true, nil
}
