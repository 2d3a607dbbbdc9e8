package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/metrics"
)

// Cache is a JSON read-through cache for backend catalog responses
// (buildings, sensors, alerts). A nil *Cache is valid and disables caching,
// so callers never branch on configuration.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		PoolSize:   50,
		MaxRetries: 3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Key builds a cache key from resource name and discriminator parts.
func Key(resource string, parts ...string) string {
	key := "dashboard:" + resource
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// GetJSON loads a cached value into dst. Returns false on miss or when the
// cache is disabled; decode failures count as misses so a poisoned entry
// never breaks a request.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		} else {
			metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return false
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return true
}

// SetJSON stores a value under key with the configured TTL. Failures are
// recorded but not returned; the cache is best-effort.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return
	}
	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
