package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerdictCache stores yes/no validator decisions keyed by a hash of the
// contract text and the sportsbook side it was checked against.
type VerdictCache interface {
	Get(ctx context.Context, key string) (verdict bool, ok bool, err error)
	Set(ctx context.Context, key string, verdict bool) error
	Close() error
}

type redisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisVerdictCache(opts Options) (VerdictCache, error) {
	client, err := opts.client()
	if err != nil {
		return nil, err
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "side_verdict"
	}
	return &redisVerdictCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisVerdictCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisVerdictCache) Get(ctx context.Context, key string) (bool, bool, error) {
	if c == nil || c.client == nil {
		return false, false, nil
	}
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val == "1", true, nil
}

func (c *redisVerdictCache) Set(ctx context.Context, key string, verdict bool) error {
	if c == nil || c.client == nil {
		return nil
	}
	value := "0"
	if verdict {
		value = "1"
	}
	return c.client.Set(ctx, c.key(key), value, c.ttl).Err()
}

func (c *redisVerdictCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
