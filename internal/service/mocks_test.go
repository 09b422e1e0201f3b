package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"salonq/internal/database"
	"salonq/internal/models"
	"salonq/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQueueRepo struct {
	mock.Mock
}

func (m *mockQueueRepo) UpsertClient(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}
func (m *mockQueueRepo) CreateWaitingEntry(ctx context.Context, phone string) (*models.QueueEntry, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}
func (m *mockQueueRepo) GetEntry(ctx context.Context, id int64) (*models.QueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}
func (m *mockQueueRepo) GetWaitingEntries(ctx context.Context) ([]models.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QueueEntry), args.Error(1)
}
func (m *mockQueueRepo) GetEntries(ctx context.Context, from, to time.Time) ([]models.QueueEntry, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QueueEntry), args.Error(1)
}
func (m *mockQueueRepo) CountWaiting(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockQueueRepo) OldestWaiting(ctx context.Context) (*models.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}
func (m *mockQueueRepo) MarkDone(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockQueueRepo) SetPriority(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockQueueRepo) MarkNotified(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}
func (m *mockSettingsRepo) ToggleBotActive(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type mockGuard struct {
	mock.Mock
}

func (m *mockGuard) ClaimNotification(ctx context.Context, id int64, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, id, ttl)
	return args.Bool(0), args.Error(1)
}
func (m *mockGuard) ReleaseNotification(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockGuard) CheckRateLimit(ctx context.Context, phone string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, phone, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

// fakeNotifier records sends; phones listed in fail get an error.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func (n *fakeNotifier) Notify(_ context.Context, phone, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail[phone]; err != nil {
		return err
	}
	n.sent = append(n.sent, phone)
	return nil
}

func (n *fakeNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type botStatus bool

func (b botStatus) IsBotActive(context.Context) bool { return bool(b) }

type recalcSpy struct {
	mu       sync.Mutex
	triggers []string
}

func (r *recalcSpy) Run(_ context.Context, trigger string) models.CycleReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, trigger)
	return models.CycleReport{Trigger: trigger}
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background(), "1234"))
	return db
}

func seedEntry(t *testing.T, db *database.DB, phone string, createdAt time.Time, priority bool) *models.QueueEntry {
	t.Helper()
	e := &models.QueueEntry{Phone: phone, CreatedAt: createdAt, Priority: priority}
	require.NoError(t, db.CreateEntry(context.Background(), e))
	return e
}

func newTestGuard() *repository.MemoryGuardRepository {
	return repository.NewMemoryGuardRepository()
}
