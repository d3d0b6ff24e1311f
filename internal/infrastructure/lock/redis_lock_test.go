package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisLock(client, time.Minute, 5*time.Millisecond), s
}

func TestRedisLockExcludesSecondHolder(t *testing.T) {
	l, s := setupRedisLock(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "5:abc")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !s.Exists("gentletalk:lock:5:abc") {
		t.Fatalf("Acquire() did not set the lease key")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, "5:abc"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire() while held error = %v, want deadline exceeded", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release() error = %v", err)
	}
	release2, err := l.Acquire(ctx, "5:abc")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = release2(ctx)
}

func TestRedisLockReleaseKeepsForeignLease(t *testing.T) {
	l, s := setupRedisLock(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	// lease expired and was taken by another holder
	s.FastForward(2 * time.Minute)
	if err := s.Set("gentletalk:lock:k", "other"); err != nil {
		t.Fatalf("seed foreign lease: %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release() error = %v", err)
	}
	got, err := s.Get("gentletalk:lock:k")
	if err != nil || got != "other" {
		t.Fatalf("foreign lease = %q, %v", got, err)
	}
}

func TestLocalLockHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Local{}).Acquire(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Acquire() error = %v", err)
	}
}
