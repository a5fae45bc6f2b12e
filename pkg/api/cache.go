package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by a Cache that has no entry for a key.
var ErrCacheMiss = errors.New("api: cache miss")

// Cache stores upstream responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedClient serves repeated upstream reads from a Cache. Cache failures
// are logged and fall through to the upstream. Rendered pages are never
// cached, only the JSON the effects read.
type CachedClient struct {
	next   Client
	cache  Cache
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewCachedClient wraps next with cache. A zero ttl means 30 seconds.
func NewCachedClient(next Client, cache Cache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedClient{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		prefix: "isomorph:api:",
		logger: slog.Default().With("component", "api-cache"),
	}
}

// Get returns the cached response for resourcePath or fetches and stores it.
func (c *CachedClient) Get(ctx context.Context, resourcePath string) (json.RawMessage, error) {
	key := c.prefix + resourcePath

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		return json.RawMessage(data), nil
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	body, err := c.next.Get(ctx, resourcePath)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return body, nil
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db).
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("api: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("api: connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get reads key. A missing key yields ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set writes key with a TTL.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
