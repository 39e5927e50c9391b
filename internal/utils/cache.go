package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil matching
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache stores JSON documents in Redis with a fixed TTL
type Cache struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Expiry applied on every Set
}

// NewCache wraps a Redis client
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err // Corrupt entry counts as a miss for the caller
	}
	return true, nil
}

// Set stores value as JSON under key
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err() // Set value in Redis with TTL
}

// Generation reads the counter at key; a missing counter is generation 0
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.rdb.Get(ctx, key).Int64() // Counter stored as a plain integer
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Bump increments the counter at key. Counters carry no TTL so a generation never rewinds
func (c *Cache) Bump(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}
