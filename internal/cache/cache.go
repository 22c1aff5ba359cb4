package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkozlov/planmate/internal/planner"
)

const keyPrefix = "search:"

// Cache wraps a Redis client and provides typed get/set/delete for ranked
// search results, keyed by an intent fingerprint.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with the given result TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func key(fingerprint string) string {
	return keyPrefix + fingerprint
}

// Get retrieves a ranked result from cache.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) Get(ctx context.Context, fingerprint string) (*planner.Result, error) {
	val, err := c.client.Get(ctx, key(fingerprint)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for %s: %w", fingerprint, err)
	}

	var result planner.Result
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("unmarshaling cached result for %s: %w", fingerprint, err)
	}

	return &result, nil
}

// Set stores a ranked result with the configured TTL.
func (c *Cache) Set(ctx context.Context, fingerprint string, result *planner.Result) error {
	if result == nil {
		return nil
	}

	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result for %s: %w", fingerprint, err)
	}

	if err := c.client.Set(ctx, key(fingerprint), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for %s: %w", fingerprint, err)
	}

	return nil
}

// Delete removes the cached result for the given fingerprint.
func (c *Cache) Delete(ctx context.Context, fingerprint string) error {
	if err := c.client.Del(ctx, key(fingerprint)).Err(); err != nil {
		return fmt.Errorf("cache delete for %s: %w", fingerprint, err)
	}
	return nil
}
