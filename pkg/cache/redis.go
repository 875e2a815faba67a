package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	rcache "github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Defaults for the local layer of [RedisCache].
const (
	DefaultLocalSize = 10_000
	DefaultLocalTTL  = time.Minute
)

// RedisCache stores entries in Redis behind an in-process TinyLFU layer.
type RedisCache struct {
	client *redis.Client
	data   *rcache.Cache
	prefix string
	owned  bool
}

// RedisOptions configures [NewRedisCache].
type RedisOptions struct {
	// Prefix is prepended to every key. Default "mindtree:cache:".
	Prefix string
	// LocalSize and LocalTTL size the local TinyLFU layer. LocalSize < 0
	// disables it.
	LocalSize int
	LocalTTL  time.Duration
}

// NewRedisCache connects to url (redis://...) and verifies the connection,
// retrying transient failures.
func NewRedisCache(ctx context.Context, url string, opts RedisOptions) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	err = RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return networkError(err, "ping")
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	c := NewRedisCacheFromClient(client, opts)
	c.owned = true
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client. Close does not close it.
func NewRedisCacheFromClient(client *redis.Client, opts RedisOptions) *RedisCache {
	if opts.Prefix == "" {
		opts.Prefix = "mindtree:cache:"
	}
	if opts.LocalSize == 0 {
		opts.LocalSize = DefaultLocalSize
	}
	if opts.LocalTTL <= 0 {
		opts.LocalTTL = DefaultLocalTTL
	}
	copts := &rcache.Options{Redis: client}
	if opts.LocalSize > 0 {
		copts.LocalCache = rcache.NewTinyLFU(opts.LocalSize, opts.LocalTTL)
	}
	return &RedisCache{
		client: client,
		data:   rcache.New(copts),
		prefix: opts.Prefix,
	}
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.data.Get(ctx, c.prefix+key, &data)
	if errors.Is(err, rcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, networkError(err, "get")
	}
	return data, true, nil
}

// Set stores a value. A non-positive ttl persists the key.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		// The item API reads a negative TTL as local-only, so write through
		// the client with no expiry instead.
		b, err := c.data.Marshal(data)
		if err != nil {
			return err
		}
		if err := c.client.Set(ctx, c.prefix+key, b, 0).Err(); err != nil {
			return networkError(err, "set")
		}
		return nil
	}
	return c.data.Set(&rcache.Item{
		Ctx:   ctx,
		Key:   c.prefix + key,
		Value: data,
		TTL:   ttl,
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.data.Delete(ctx, c.prefix+key)
	if errors.Is(err, rcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		if err := c.data.Delete(ctx, iter.Val()); err != nil && !errors.Is(err, rcache.ErrCacheMiss) {
			return err
		}
	}
	return iter.Err()
}

// Close closes the client if the cache created it.
func (c *RedisCache) Close() error {
	if c.owned {
		return c.client.Close()
	}
	return nil
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
