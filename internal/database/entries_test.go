package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"salonq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWaitingEntry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.CreateWaitingEntry(ctx, "+212600000001")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, models.StatusWaiting, first.Status)
	assert.False(t, first.Priority)

	again, err := db.CreateWaitingEntry(ctx, "+212600000001")
	assert.ErrorIs(t, err, ErrAlreadyWaiting)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)

	count, err := db.CountWaiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	byPhone, err := db.GetWaitingEntryByPhone(ctx, "+212600000001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byPhone.ID)

	// once served, the same phone may check in again
	require.NoError(t, db.MarkDone(ctx, first.ID))
	second, err := db.CreateWaitingEntry(ctx, "+212600000001")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = db.GetWaitingEntryByPhone(ctx, "+212600000009")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetWaitingEntries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &models.QueueEntry{Phone: "+1", CreatedAt: base}
	b := &models.QueueEntry{Phone: "+2", CreatedAt: base.Add(time.Minute), Priority: true}
	c := &models.QueueEntry{Phone: "+3", CreatedAt: base.Add(2 * time.Minute), Status: models.StatusDone}
	for _, e := range []*models.QueueEntry{a, b, c} {
		require.NoError(t, db.CreateEntry(ctx, e))
	}

	entries, err := db.GetWaitingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, a.ID, entries[0].ID)
	assert.False(t, entries[0].Priority)
	assert.True(t, entries[1].Priority)
	assert.True(t, entries[0].CreatedAt.Equal(base))
	assert.Nil(t, entries[0].NotifiedAt)
}

func TestPriorityNullReadsFalse(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO queue_entries (phone, status, priority, created_at) VALUES (?, ?, NULL, ?), (?, ?, 7, ?)`,
		"+1", models.StatusWaiting, time.Now().UTC(), "+2", models.StatusWaiting, time.Now().UTC())
	require.NoError(t, err)

	entries, err := db.GetWaitingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Priority)
	assert.False(t, entries[1].Priority)
}

func TestOldestWaitingIgnoresPriority(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.OldestWaiting(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &models.QueueEntry{Phone: "+A", CreatedAt: base}
	b := &models.QueueEntry{Phone: "+B", CreatedAt: base.Add(time.Second), Priority: true}
	require.NoError(t, db.CreateEntry(ctx, a))
	require.NoError(t, db.CreateEntry(ctx, b))

	oldest, err := db.OldestWaiting(ctx)
	require.NoError(t, err)
	assert.Equal(t, "+A", oldest.Phone)
}

func TestMarkDone(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e, err := db.CreateWaitingEntry(ctx, "+1")
	require.NoError(t, err)

	require.NoError(t, db.MarkDone(ctx, e.ID))
	assert.ErrorIs(t, db.MarkDone(ctx, e.ID), ErrNotFound)

	got, err := db.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestSetPriority(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e, err := db.CreateWaitingEntry(ctx, "+1")
	require.NoError(t, err)

	require.NoError(t, db.SetPriority(ctx, e.ID))
	got, err := db.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Priority)

	assert.ErrorIs(t, db.SetPriority(ctx, 999), ErrNotFound)
}

func TestMarkNotifiedIsCompareAndSet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e, err := db.CreateWaitingEntry(ctx, "+1")
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ok, err := db.MarkNotified(ctx, e.ID, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.MarkNotified(ctx, e.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := db.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NotifiedAt)
	assert.True(t, got.NotifiedAt.Equal(at))
}

func TestMarkNotifiedConcurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e, err := db.CreateWaitingEntry(ctx, "+1")
	require.NoError(t, err)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ok, err := db.MarkNotified(ctx, e.ID, time.Now())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestGetEntries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	in := &models.QueueEntry{Phone: "+in", CreatedAt: day.Add(10 * time.Hour), Status: models.StatusDone}
	out := &models.QueueEntry{Phone: "+out", CreatedAt: day.AddDate(0, 0, 2)}
	require.NoError(t, db.CreateEntry(ctx, in))
	require.NoError(t, db.CreateEntry(ctx, out))

	entries, err := db.GetEntries(ctx, day, day.Add(24*time.Hour-time.Nanosecond))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "+in", entries[0].Phone)
}
