package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

const (
	// defaultMaxEntries bounds the in-process store so a busy instance
	// cannot grow without limit when Redis is down.
	defaultMaxEntries = 4096

	// maxEntryTTL is the LRU-level upper bound; per-entry TTLs are
	// enforced at read time.
	maxEntryTTL = time.Hour
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process cache backend, an expirable LRU. Safe for
// concurrent use by in-flight requests.
type Memory struct {
	lru     *lru.LRU[string, memoryEntry]
	metrics *observability.Metrics
}

// NewMemory creates the in-process cache backend. maxEntries <= 0 uses the
// default bound. metrics may be nil.
func NewMemory(maxEntries int, metrics *observability.Metrics) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		lru:     lru.NewLRU[string, memoryEntry](maxEntries, nil, maxEntryTTL),
		metrics: metrics,
	}
}

// Get returns the cached value for key, or (nil, false) on miss
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	entry, ok := m.lru.Get(key)
	if !ok || time.Now().After(entry.expiresAt) {
		if ok {
			m.lru.Remove(key)
		}
		m.recordMiss()
		return nil, false
	}
	m.recordHit()
	return entry.value, true
}

// Set stores value under key with the given TTL
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.lru.Add(key, memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
}

// Del removes a single key
func (m *Memory) Del(_ context.Context, key string) {
	m.lru.Remove(key)
}

// InvalidatePattern removes every key whose name starts with the pattern's
// literal prefix (trailing "*" wildcard only)
func (m *Memory) InvalidatePattern(_ context.Context, pattern string) {
	prefix := strings.TrimSuffix(pattern, "*")
	for _, key := range m.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			m.lru.Remove(key)
		}
	}
}

// Close is a no-op for the in-process backend
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) recordHit() {
	if m.metrics != nil {
		m.metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
	}
}

func (m *Memory) recordMiss() {
	if m.metrics != nil {
		m.metrics.CacheMissesTotal.WithLabelValues("memory").Inc()
	}
}
