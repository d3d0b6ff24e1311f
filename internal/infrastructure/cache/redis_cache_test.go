package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisCache(client), s
}

func TestRedisCacheSetGetDelete(t *testing.T) {
	cache, s := setupRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "issue:status:1", "analyzed", time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !s.Exists("gentletalk:cache:issue:status:1") {
		t.Fatalf("Set() did not write the prefixed key")
	}

	value, found, err := cache.Get(ctx, "issue:status:1")
	if err != nil || !found || value != "analyzed" {
		t.Fatalf("Get() = %q, %v, %v", value, found, err)
	}

	s.FastForward(2 * time.Hour)
	if _, found, err := cache.Get(ctx, "issue:status:1"); err != nil || found {
		t.Fatalf("Get() after ttl found=%v err=%v", found, err)
	}

	if err := cache.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := cache.Get(ctx, "k"); found {
		t.Fatalf("Get() after delete found=true")
	}
}
