package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

// RedisCache stores values under a fixed key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

var _ ports.Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "gentletalk:cache:"}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return "", false, err
	}

	value, err := c.client.Get(ctx, c.key(trimmedKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(err, "redis get")
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(trimmedKey), value, ttl).Err(); err != nil {
		return errs.Wrap(err, "redis set")
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	trimmedKey, err := checkKey(ctx, key)
	if err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(trimmedKey)).Err(); err != nil {
		return errs.Wrap(err, "redis del")
	}
	return nil
}

// NopCache never stores anything.
type NopCache struct{}

var _ ports.Cache = NopCache{}

func (NopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NopCache) Set(context.Context, string, string, time.Duration) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
