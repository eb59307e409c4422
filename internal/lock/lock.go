// Package lock guards a tenant against two maintenance runs writing at the same time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another run holds the tenant lock.
var ErrLocked = errors.New("tenant is locked by another run")

// Locker obtains per-tenant locks.
type Locker interface {
	Acquire(ctx context.Context, organizationID uint) (Release, error)
}

// Release frees an obtained lock.
type Release func(ctx context.Context) error

// Key returns the lock key for a tenant.
func Key(organizationID uint) string {
	return fmt.Sprintf("kunder:lock:%d", organizationID)
}

// Redis is a Locker on top of redislock.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedis returns a Locker whose locks expire after ttl unless released.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: redislock.New(rdb), ttl: ttl}
}

// Acquire implements Locker.
func (r *Redis) Acquire(ctx context.Context, organizationID uint) (Release, error) {
	l, err := r.client.Obtain(ctx, Key(organizationID), r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w (organization %d)", ErrLocked, organizationID)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock: %w", err)
	}
	return func(ctx context.Context) error {
		if err := l.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// Noop never blocks. It is used when no redis is configured.
type Noop struct{}

// Acquire implements Locker.
func (Noop) Acquire(context.Context, uint) (Release, error) {
	return func(context.Context) error { return nil }, nil
}
