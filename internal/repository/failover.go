package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"salonq/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverGuardRepository uses primary until it errors, then serves from fallback
// and probes primary again once per recoveryInterval.
type FailoverGuardRepository struct {
	primary  domain.GuardRepository
	fallback domain.GuardRepository
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverGuardRepository(primary, fallback domain.GuardRepository, logger *zerolog.Logger) *FailoverGuardRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverGuardRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverGuardRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverGuardRepository) markResult(err error) {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Msg("primary guard repository recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("primary guard repository failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverGuardRepository) ClaimNotification(ctx context.Context, entryID int64, ttl time.Duration) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.ClaimNotification(ctx, entryID, ttl)
		r.markResult(err)
		if err == nil {
			return ok, nil
		}
	}
	return r.fallback.ClaimNotification(ctx, entryID, ttl)
}

func (r *FailoverGuardRepository) ReleaseNotification(ctx context.Context, entryID int64) error {
	// release on both sides; the claim may have been taken on either
	_ = r.fallback.ReleaseNotification(ctx, entryID)
	if r.usePrimary() {
		err := r.primary.ReleaseNotification(ctx, entryID)
		r.markResult(err)
		return err
	}
	return nil
}

func (r *FailoverGuardRepository) CheckRateLimit(ctx context.Context, phone string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, phone, limit, window)
		r.markResult(err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, phone, limit, window)
}
