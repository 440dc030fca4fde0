package redislock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/config"
)

const (
	keyPrefix      = "designer:lock:"
	defaultRetry   = 50 * time.Millisecond
	defaultTimeout = 5 * time.Second
)

// releaseScript deletes KEYS[1] only while it holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out Redis advisory locks.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// Lock is one acquired lock.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Connect opens a Redis client from cfg and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*Locker, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return New(client, time.Duration(cfg.LockTTL)*time.Second, time.Duration(cfg.LockWait)*time.Second), nil
}

// New wraps an existing client. A lock lives for ttl unless released;
// Acquire waits up to wait for a busy lock.
func New(client *redis.Client, ttl, wait time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl, wait: wait, retry: defaultRetry}
}

// ProjectKey names the lock of one project.
func ProjectKey(projectID int64) string {
	return keyPrefix + "project:" + strconv.FormatInt(projectID, 10)
}

// Acquire takes the lock named key, polling until it is free, the wait
// elapses (ErrBusy) or ctx ends.
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquiring %s: %w", key, err)
		}
		if ok {
			return &Lock{client: l.client, key: key, token: token}, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrBusy, key)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Release frees the lock if this owner still holds it.
func (lk *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Int64()
	if err != nil {
		return fmt.Errorf("releasing %s: %w", lk.key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotHeld, lk.key)
	}
	return nil
}

// Key returns the name of the lock.
func (lk *Lock) Key() string {
	return lk.key
}

// HealthCheck pings Redis.
func (l *Locker) HealthCheck(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}
