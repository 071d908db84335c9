// Package redislock provides a short-lived mutual exclusion lock stored in Redis.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock stays held past the wait budget.
var ErrNotAcquired = errors.New("redislock: lock not acquired")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out locks scoped by key.
type Locker struct {
	client   redis.UniversalClient
	prefix   string
	ttl      time.Duration
	interval time.Duration
}

// Lock is a held lock. Release is safe to call more than once.
type Lock struct {
	locker *Locker
	key    string
	token  string
}

// New creates a Locker. A nil client yields a nil Locker whose Acquire is a no-op.
func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Locker {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: client, prefix: prefix, ttl: ttl, interval: 50 * time.Millisecond}
}

// Acquire blocks until the lock for key is held, the context ends, or wait elapses.
func (l *Locker) Acquire(ctx context.Context, key string, wait time.Duration) (*Lock, error) {
	if l == nil {
		return &Lock{}, nil
	}

	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
		}
		if ok {
			return &Lock{locker: l, key: fullKey, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Release drops the lock if this holder still owns it.
func (lk *Lock) Release(ctx context.Context) error {
	if lk == nil || lk.locker == nil || lk.token == "" {
		return nil
	}
	err := releaseScript.Run(ctx, lk.locker.client, []string{lk.key}, lk.token).Err()
	lk.token = ""
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lock %s: %w", lk.key, err)
	}
	return nil
}
