package service

import (
	"context"
	"time"

	"salonq/internal/config"
	"salonq/internal/domain"
	"salonq/internal/events"
	"salonq/internal/metrics"
	"salonq/internal/models"
	"salonq/internal/queue"

	"github.com/rs/zerolog"
)

// NotificationCycle recomputes the queue and tells customers whose turn is near.
type NotificationCycle struct {
	repo            domain.QueueRepository
	guard           domain.GuardRepository
	notifier        domain.Notifier
	status          domain.BotStatus
	eventBus        domain.EventPublisher
	serviceDuration time.Duration
	threshold       time.Duration
	claimTTL        time.Duration
	logger          *zerolog.Logger
	now             func() time.Time
}

func NewNotificationCycle(
	repo domain.QueueRepository,
	guard domain.GuardRepository,
	notifier domain.Notifier,
	status domain.BotStatus,
	eventBus domain.EventPublisher,
	cfg config.QueueConfig,
	logger *zerolog.Logger,
) *NotificationCycle {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NotificationCycle{
		repo:            repo,
		guard:           guard,
		notifier:        notifier,
		status:          status,
		eventBus:        eventBus,
		serviceDuration: cfg.ServiceDuration(),
		threshold:       cfg.NotificationThreshold(),
		claimTTL:        cfg.ClaimTTL(),
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one pass. It never returns an error; problems are logged and
// counted in the report.
func (c *NotificationCycle) Run(ctx context.Context, trigger string) (report models.CycleReport) {
	start := time.Now()
	report.Trigger = trigger
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("trigger", trigger).Msg("recalculation panicked")
		}
		metrics.ObserveCycle(trigger, time.Since(start), report.Waiting)
	}()

	if !c.status.IsBotActive(ctx) {
		report.Skipped = true
		return report
	}

	entries, err := c.repo.GetWaitingEntries(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("trigger", trigger).Msg("failed to load waiting entries")
		return report
	}
	report.Waiting = len(entries)
	if len(entries) == 0 {
		return report
	}

	thresholdMinutes := int(c.threshold / time.Minute)
	for _, p := range queue.Order(entries, c.serviceDuration) {
		if p.Notified || p.EstimatedMinutes > thresholdMinutes {
			continue
		}
		report.Due++

		switch c.notify(ctx, p, trigger) {
		case nil:
			report.Notified++
		case errClaimed:
		default:
			report.Failed++
		}
	}

	c.logger.Info().
		Str("trigger", trigger).
		Int("waiting", report.Waiting).
		Int("due", report.Due).
		Int("notified", report.Notified).
		Int("failed", report.Failed).
		Msg("recalculation finished")
	return report
}

func (c *NotificationCycle) notify(ctx context.Context, p queue.Position, trigger string) error {
	if c.guard != nil {
		claimed, err := c.guard.ClaimNotification(ctx, p.ID, c.claimTTL)
		if err != nil {
			c.logger.Warn().Err(err).Int64("entry_id", p.ID).Msg("notification claim failed, retry next cycle")
			return err
		}
		if !claimed {
			return errClaimed
		}
	}

	if err := c.notifier.Notify(ctx, p.Phone, NotificationMessage); err != nil {
		// notified_at stays NULL so the next cycle tries again
		c.release(ctx, p.ID)
		return err
	}

	marked, err := c.repo.MarkNotified(ctx, p.ID, c.now())
	if err != nil {
		// claim is kept until it expires to avoid an immediate resend
		c.logger.Error().Err(err).Int64("entry_id", p.ID).Msg("message sent but notified_at not saved")
		return nil
	}
	if !marked {
		c.logger.Warn().Int64("entry_id", p.ID).Msg("entry already marked notified")
	}

	if c.eventBus != nil {
		payload := events.EntryEventPayload{
			EntryID:          p.ID,
			Phone:            p.Phone,
			Position:         p.Position,
			EstimatedMinutes: p.EstimatedMinutes,
			Trigger:          trigger,
		}
		if err := c.eventBus.PublishJSON(events.EventEntryNotified, payload); err != nil {
			c.logger.Error().Err(err).Msg("failed to publish notified event")
		}
	}
	return nil
}

func (c *NotificationCycle) release(ctx context.Context, id int64) {
	if c.guard == nil {
		return
	}
	if err := c.guard.ReleaseNotification(ctx, id); err != nil {
		c.logger.Warn().Err(err).Int64("entry_id", id).Msg("failed to release notification claim")
	}
}
