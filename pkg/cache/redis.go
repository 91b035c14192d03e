package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/taskboardhq/taskboard/pkg/config"
	"github.com/taskboardhq/taskboard/pkg/observability"
)

// Redis is the networked cache backend
type Redis struct {
	client  *redis.Client
	metrics *observability.Metrics
}

// NewRedis creates a Redis cache backend. The connection is verified with a
// ping so the caller can decide to fall back to the in-process store when
// Redis is unreachable at startup.
func NewRedis(cfg config.RedisConfig, metrics *observability.Metrics) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB >= 0 {
		opts.DB = cfg.DB
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client, metrics: metrics}, nil
}

// Get returns the cached value for key, or (nil, false) on miss. Backend
// errors count as misses.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		r.recordMiss()
		return nil, false
	}
	if err != nil {
		r.recordError("get")
		return nil, false
	}
	r.recordHit()
	return data, true
}

// Set stores value under key with the given TTL. Errors are dropped.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.recordError("set")
	}
}

// Del removes a single key
func (r *Redis) Del(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.recordError("del")
	}
}

// InvalidatePattern removes every key matching the prefix pattern using SCAN
func (r *Redis) InvalidatePattern(ctx context.Context, pattern string) {
	if !strings.HasSuffix(pattern, "*") {
		pattern += "*"
	}
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.recordError("del")
		}
	}
	if err := iter.Err(); err != nil {
		r.recordError("scan")
	}
}

// Ping checks Redis connectivity
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client for health checks
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) recordHit() {
	if r.metrics != nil {
		r.metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
	}
}

func (r *Redis) recordMiss() {
	if r.metrics != nil {
		r.metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
	}
}

func (r *Redis) recordError(op string) {
	if r.metrics != nil {
		r.metrics.CacheErrorsTotal.WithLabelValues("redis", op).Inc()
	}
}
