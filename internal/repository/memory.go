package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryGuardRepository is the in-process guard used without Redis or while Redis is down.
type MemoryGuardRepository struct {
	mu         sync.Mutex
	claims     map[int64]time.Time
	rateLimits map[string]*rateLimitEntry
	lastSweep  time.Time
	now        func() time.Time
}

const sweepInterval = time.Minute

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryGuardRepository() *MemoryGuardRepository {
	return &MemoryGuardRepository{
		claims:     make(map[int64]time.Time),
		rateLimits: make(map[string]*rateLimitEntry),
		now:        time.Now,
	}
}

func (r *MemoryGuardRepository) ClaimNotification(_ context.Context, entryID int64, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	if expiresAt, ok := r.claims[entryID]; ok && now.Before(expiresAt) {
		return false, nil
	}
	r.claims[entryID] = now.Add(ttl)
	return true, nil
}

func (r *MemoryGuardRepository) ReleaseNotification(_ context.Context, entryID int64) error {
	r.mu.Lock()
	delete(r.claims, entryID)
	r.mu.Unlock()
	return nil
}

func (r *MemoryGuardRepository) CheckRateLimit(_ context.Context, phone string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	entry, ok := r.rateLimits[phone]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[phone] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// sweep drops expired claims and rate-limit windows. Caller holds mu.
func (r *MemoryGuardRepository) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now

	for id, expiresAt := range r.claims {
		if !now.Before(expiresAt) {
			delete(r.claims, id)
		}
	}
	for phone, entry := range r.rateLimits {
		if now.After(entry.expiresAt) {
			delete(r.rateLimits, phone)
		}
	}
}
