package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Retention cycles run daily per environment, so a lease slightly longer
// than one cycle guarantees a crashed worker cannot wedge the schedule for
// more than a day.
const defaultLeaseTTL = 26 * time.Hour

// Lock serializes retention cycles across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock holds the cycle lease in Redis. The value is a per-acquisition
// token so a worker that lost its lease cannot release a newer holder's.
type RedisLock struct {
	store lockStore
	key   string
	lease time.Duration
	token string
}

func NewRedisLock(store lockStore, key string, lease time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("lock requires a redis store")
	}
	if key == "" {
		return nil, errors.New("lock requires a key")
	}
	if lease <= 0 {
		lease = defaultLeaseTTL
	}
	return &RedisLock{store: store, key: key, lease: lease}, nil
}

// Acquire claims the lease with SETNX. A false return means another worker
// holds it and this cycle should be skipped, not queued.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.lease)
	if err != nil {
		return false, fmt.Errorf("acquiring retention lease: %w", err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release drops the lease only while this worker's token is still stored.
// An expired lease taken over by another worker is left alone.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	current, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("checking retention lease holder: %w", err)
	}
	if current != l.token {
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("releasing retention lease: %w", err)
	}
	l.token = ""
	return nil
}
