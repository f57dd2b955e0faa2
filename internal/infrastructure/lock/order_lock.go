// Package lock serializes receiving per purchase order across instances using
// redis leases.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL       = 30 * time.Second
	DefaultWait      = 5 * time.Second
	defaultKeyPrefix = "procurement:lock:purchase_order:"
	retryInterval    = 25 * time.Millisecond
)

// Config tunes the order lock
type Config struct {
	TTL       time.Duration // lease length; a crashed holder blocks others at most this long
	Wait      time.Duration // how long Lock keeps retrying a held lock
	KeyPrefix string
}

// RedisOrderLocker hands out one lease per purchase order
type RedisOrderLocker struct {
	client *redislock.Client
	cfg    Config
	logger *zap.Logger
}

// NewRedisOrderLocker creates a locker on a shared redis client
func NewRedisOrderLocker(client *redis.Client, cfg Config, logger *zap.Logger) *RedisOrderLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultWait
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisOrderLocker{
		client: redislock.New(client),
		cfg:    cfg,
		logger: logger,
	}
}

// Key returns the redis key guarding orderID
func (l *RedisOrderLocker) Key(orderID uuid.UUID) string {
	return l.cfg.KeyPrefix + orderID.String()
}

// Lock blocks until the order's lease is obtained or Wait elapses. The
// returned function releases the lease.
func (l *RedisOrderLocker) Lock(ctx context.Context, orderID uuid.UUID) (func(context.Context) error, error) {
	key := l.Key(orderID)

	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.Wait)
	defer cancel()

	lease, err := l.client.Obtain(waitCtx, key, l.cfg.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryInterval),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			l.logger.Warn("purchase order is locked by another receive",
				zap.String("order_id", orderID.String()),
				zap.Duration("waited", l.cfg.Wait),
			)
			return nil, shared.NewConcurrencyError(
				fmt.Sprintf("purchase order %s is being received by another request", orderID))
		}
		return nil, fmt.Errorf("failed to obtain order lock: %w", err)
	}

	l.logger.Debug("order lock obtained", zap.String("key", key))

	return func(releaseCtx context.Context) error {
		if err := lease.Release(releaseCtx); err != nil {
			if errors.Is(err, redislock.ErrLockNotHeld) {
				return fmt.Errorf("order lock %s expired before release: %w", key, err)
			}
			return fmt.Errorf("failed to release order lock: %w", err)
		}
		return nil
	}, nil
}
