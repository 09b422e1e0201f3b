package domain

import (
	"context"
	"time"

	"salonq/internal/models"
)

// QueueRepository is the queue store adapter.
type QueueRepository interface {
	UpsertClient(ctx context.Context, phone string) error
	CreateWaitingEntry(ctx context.Context, phone string) (*models.QueueEntry, error)
	GetEntry(ctx context.Context, id int64) (*models.QueueEntry, error)
	GetWaitingEntries(ctx context.Context) ([]models.QueueEntry, error)
	GetEntries(ctx context.Context, from, to time.Time) ([]models.QueueEntry, error)
	CountWaiting(ctx context.Context) (int, error)
	OldestWaiting(ctx context.Context) (*models.QueueEntry, error)
	MarkDone(ctx context.Context, id int64) error
	SetPriority(ctx context.Context, id int64) error
	MarkNotified(ctx context.Context, id int64, at time.Time) (bool, error)
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	ToggleBotActive(ctx context.Context) (bool, error)
}

// GuardRepository holds short-lived coordination state: per-entry notification
// claims and per-phone inbound rate limits.
type GuardRepository interface {
	ClaimNotification(ctx context.Context, entryID int64, ttl time.Duration) (bool, error)
	ReleaseNotification(ctx context.Context, entryID int64) error
	CheckRateLimit(ctx context.Context, phone string, limit int, window time.Duration) (bool, error)
}

// Notifier delivers one text message to one recipient.
type Notifier interface {
	Notify(ctx context.Context, phone, body string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BotStatus answers whether the bot accepts check-ins and sends notifications.
type BotStatus interface {
	IsBotActive(ctx context.Context) bool
}

// Recalculator runs one recalculation and notification pass.
type Recalculator interface {
	Run(ctx context.Context, trigger string) models.CycleReport
}
