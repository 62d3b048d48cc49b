// Package cache provides an optional Redis-backed cache for external lookup
// results (municipality listings, geocoded coordinates). A nil *Cache is a
// valid no-op, so callers never branch on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a cache over addr, or nil when addr is empty.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    defaultTTL,
	}
}

// GetJSON unmarshals the cached value for key into dest, reporting whether a
// value was present. Cache errors count as misses.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores v under key. Failures are ignored: the cache is an
// optimization, never a source of truth.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
