package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

// Cache is the key-value cache used to memoize resolved auth contexts,
// permission lookups, and read-model projections.
//
// Implementations never surface backend errors: a failed Get is a miss, a
// failed Set or Del is dropped. The cache is a performance layer, not a
// correctness dependency - callers must behave identically with the cache
// entirely disabled.
type Cache interface {
	// Get returns the cached value for key, or (nil, false) on miss
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given TTL. A Set followed by a
	// Get on the same process, before the TTL elapses, returns the value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Del removes a single key
	Del(ctx context.Context, key string)

	// InvalidatePattern removes every key beginning with the pattern's
	// literal prefix. Only a trailing "*" wildcard is supported.
	InvalidatePattern(ctx context.Context, pattern string)

	// Close releases backend resources
	Close() error
}

// GetJSON fetches key and unmarshals it into dest. Corrupt entries are
// deleted and treated as a miss.
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key. Marshal failures are
// dropped; the next read is a miss.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, data, ttl)
}

// Tiered prefers a Redis backend and falls back to an in-process store. When
// both are active, writes and invalidations go to both so no stale entry
// survives a mutation in either backend; reads try the local store first.
type Tiered struct {
	local  *Memory
	remote *Redis
	logger *observability.Logger
}

// NewTiered builds the cache layer. remote may be nil (Redis unreachable at
// startup); the local store alone then carries the full contract.
func NewTiered(local *Memory, remote *Redis, logger *observability.Logger) *Tiered {
	return &Tiered{
		local:  local,
		remote: remote,
		logger: logger,
	}
}

// Get returns the cached value for key, trying local first
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if data, ok := t.local.Get(ctx, key); ok {
		return data, true
	}
	if t.remote != nil {
		return t.remote.Get(ctx, key)
	}
	return nil, false
}

// Set stores value in every active backend
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	t.local.Set(ctx, key, value, ttl)
	if t.remote != nil {
		t.remote.Set(ctx, key, value, ttl)
	}
}

// Del removes key from every active backend
func (t *Tiered) Del(ctx context.Context, key string) {
	t.local.Del(ctx, key)
	if t.remote != nil {
		t.remote.Del(ctx, key)
	}
}

// InvalidatePattern removes matching keys from every active backend
func (t *Tiered) InvalidatePattern(ctx context.Context, pattern string) {
	t.local.InvalidatePattern(ctx, pattern)
	if t.remote != nil {
		t.remote.InvalidatePattern(ctx, pattern)
	}
}

// Close releases backend resources
func (t *Tiered) Close() error {
	if t.remote != nil {
		return t.remote.Close()
	}
	return nil
}
