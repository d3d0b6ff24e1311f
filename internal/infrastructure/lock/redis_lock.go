package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a lease held with SET NX PX. The lease expires on its own if the holder dies.
type RedisLock struct {
	client       *redis.Client
	prefix       string
	ttl          time.Duration
	pollInterval time.Duration
}

var _ ports.GenerationLock = (*RedisLock)(nil)

func NewRedisLock(client *redis.Client, ttl time.Duration, pollInterval time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	return &RedisLock{
		client:       client,
		prefix:       "gentletalk:lock:",
		ttl:          ttl,
		pollInterval: pollInterval,
	}
}

// Acquire blocks until the lease is taken or ctx is done.
func (l *RedisLock) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}

	redisKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errs.Wrapf(err, "acquire lease %q", key)
		}
		if ok {
			return func(releaseCtx context.Context) error {
				if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
					return errs.Wrapf(err, "release lease %q", key)
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Local is used when a single process owns the store; in-process single-flight already
// serializes generation per key.
type Local struct{}

var _ ports.GenerationLock = Local{}

func (Local) Acquire(ctx context.Context, _ string) (func(context.Context) error, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func(context.Context) error { return nil }, nil
}
