package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
)

// defaultLockTTL bounds how long a crashed holder can block a key.
const defaultLockTTL = 30 * time.Second

// withLock runs fn while holding the named lock. A held lock fails with ErrConflict from the Locker.
func (s *BaseService) withLock(ctx context.Context, locker ports.Locker, key string, ttl time.Duration, fn func() error) error {
	if locker == nil {
		return fn()
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	release, err := locker.Acquire(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() {
		// Release on a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			s.LogError(ctx, err, "Failed to release lock", slog.String("lock_key", key))
		}
	}()
	return fn()
}
