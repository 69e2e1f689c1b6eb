// Package cache stores computed page results keyed by snapshot version, in
// Redis or in process memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/savegress/bankpulse/internal/config"
)

// DefaultTTL bounds how long a result outlives its snapshot
const DefaultTTL = 10 * time.Minute

// ErrMiss is returned by Get when the key holds nothing
var ErrMiss = errors.New("cache miss")

// Backend stores encoded results
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}

// New returns a Redis backend when Redis is enabled and an in-memory one
// otherwise
func New(cfg config.RedisConfig) (Backend, error) {
	if !cfg.Enabled {
		return NewMemory(), nil
	}
	return NewRedis(cfg)
}

// Key builds a cache key for one query against one snapshot version
func Key(version, page string, params ...string) string {
	parts := append([]string{version, page}, params...)
	return strings.Join(parts, ":")
}

// Fetch returns the cached value under key or computes, stores and returns
// it. Cache failures never fail the call; the value is computed instead.
func Fetch[T any](ctx context.Context, b Backend, key string, ttl time.Duration, compute func() (T, error)) (T, bool, error) {
	var out T
	if data, err := b.Get(ctx, key); err == nil {
		if json.Unmarshal(data, &out) == nil {
			return out, true, nil
		}
	}

	out, err := compute()
	if err != nil {
		return out, false, err
	}

	if data, err := json.Marshal(out); err == nil {
		_ = b.Set(ctx, key, data, ttl)
	}
	return out, false, nil
}

// Redis caches results in a Redis server
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis connects to Redis and checks the connection
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "bankpulse"
	}

	return &Redis{client: client, keyPrefix: prefix}, nil
}

func (c *Redis) key(k string) string {
	return c.keyPrefix + ":" + k
}

// Get retrieves a value from cache
func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// Set stores a value in cache with TTL
func (c *Redis) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// DeletePattern removes all keys matching a glob pattern
func (c *Redis) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, c.key(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	return c.client.Close()
}
