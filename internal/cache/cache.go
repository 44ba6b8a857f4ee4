// Package cache holds the catalog snapshot served to storefront clients.
// Every catalog write invalidates it, so a stale snapshot lives at most
// until the next write or TTL expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProductsKey   = "catalog:snapshot:products"
	CategoriesKey = "catalog:snapshot:categories"
)

// Cache stores JSON-encoded values under string keys
type Cache interface {
	// Get decodes the value at key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Cache backed by Redis. A zero ttl keeps entries
// until they are invalidated.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

type nopCache struct{}

// NewNopCache returns a Cache that never hits. Used when Redis is disabled.
func NewNopCache() Cache {
	return nopCache{}
}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any) error         { return nil }
func (nopCache) Invalidate(context.Context, ...string) error    { return nil }
