package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonq/internal/config"
	"salonq/internal/database"
	"salonq/internal/domain"
	"salonq/internal/events"
	"salonq/internal/metrics"
	"salonq/internal/models"
	"salonq/internal/queue"

	"github.com/rs/zerolog"
)

// AdvanceResult describes the customer called to the chair.
type AdvanceResult struct {
	Entry     models.QueueEntry
	Remaining int
}

type QueueService struct {
	repo            domain.QueueRepository
	guard           domain.GuardRepository
	status          domain.BotStatus
	recalc          domain.Recalculator
	eventBus        domain.EventPublisher
	serviceDuration time.Duration
	advancePolicy   string
	rateLimit       int
	rateWindow      time.Duration
	logger          *zerolog.Logger
}

func NewQueueService(
	repo domain.QueueRepository,
	guard domain.GuardRepository,
	status domain.BotStatus,
	recalc domain.Recalculator,
	eventBus domain.EventPublisher,
	queueCfg config.QueueConfig,
	webhookCfg config.WebhookConfig,
	logger *zerolog.Logger,
) *QueueService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &QueueService{
		repo:            repo,
		guard:           guard,
		status:          status,
		recalc:          recalc,
		eventBus:        eventBus,
		serviceDuration: queueCfg.ServiceDuration(),
		advancePolicy:   queueCfg.AdvancePolicy,
		rateLimit:       webhookCfg.RateLimitMessages,
		rateWindow:      webhookCfg.Window(),
		logger:          logger,
	}
}

// HandleInbound turns one WhatsApp message into the reply text.
// Store failures are returned; the caller answers with ReplyTechnicalError.
func (s *QueueService) HandleInbound(ctx context.Context, body, phone string) (string, error) {
	if !s.status.IsBotActive(ctx) {
		metrics.IncCheckIn("closed")
		return ReplyClosed, nil
	}

	if !s.allowInbound(ctx, phone) {
		metrics.IncCheckIn("rate_limited")
		return ReplySlowDown, nil
	}

	// only the exact body "1" checks in
	if body != CheckInCommand {
		return ReplyWelcome, nil
	}

	if err := s.repo.UpsertClient(ctx, phone); err != nil {
		return "", fmt.Errorf("upsert client: %w", err)
	}

	entry, err := s.repo.CreateWaitingEntry(ctx, phone)
	if errors.Is(err, database.ErrAlreadyWaiting) {
		metrics.IncCheckIn("duplicate")
		return s.replyExisting(ctx, entry)
	}
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}

	count, err := s.repo.CountWaiting(ctx)
	if err != nil {
		return "", fmt.Errorf("count waiting: %w", err)
	}
	position, minutes := queue.EstimateForCount(count, s.serviceDuration)

	metrics.IncCheckIn("created")
	s.logger.Info().Int64("entry_id", entry.ID).Str("phone", phone).Int("position", position).Msg("client checked in")
	s.publish(events.EventEntryCreated, events.EntryEventPayload{
		EntryID:          entry.ID,
		Phone:            phone,
		Position:         position,
		EstimatedMinutes: minutes,
	})

	return ReplyCheckedIn(position, minutes), nil
}

// replyExisting answers a repeated check-in with the entry's current place.
func (s *QueueService) replyExisting(ctx context.Context, existing *models.QueueEntry) (string, error) {
	entries, err := s.repo.GetWaitingEntries(ctx)
	if err != nil {
		return "", fmt.Errorf("load waiting entries: %w", err)
	}
	positions := queue.Order(entries, s.serviceDuration)
	for _, p := range positions {
		if existing != nil && p.ID == existing.ID {
			return ReplyAlreadyWaiting(p.Position, p.EstimatedMinutes), nil
		}
	}
	// served between the insert attempt and the read
	position, minutes := queue.EstimateForCount(len(positions), s.serviceDuration)
	return ReplyAlreadyWaiting(position, minutes), nil
}

func (s *QueueService) allowInbound(ctx context.Context, phone string) bool {
	if s.guard == nil || s.rateLimit <= 0 {
		return true
	}
	allowed, err := s.guard.CheckRateLimit(ctx, phone, s.rateLimit, s.rateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Str("phone", phone).Msg("rate limit check failed")
		return true
	}
	return allowed
}

// Advance marks the next customer done and runs one recalculation.
func (s *QueueService) Advance(ctx context.Context) (*AdvanceResult, error) {
	next, err := s.nextEntry(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkDone(ctx, next.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// served concurrently
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("mark done: %w", err)
	}

	s.recalc.Run(ctx, models.TriggerAdmin)

	remaining, err := s.repo.CountWaiting(ctx)
	if err != nil {
		return nil, fmt.Errorf("count waiting: %w", err)
	}

	s.logger.Info().Int64("entry_id", next.ID).Str("phone", next.Phone).Int("remaining", remaining).Msg("queue advanced")
	s.publish(events.EventEntryAdvanced, events.EntryEventPayload{
		EntryID:   next.ID,
		Phone:     next.Phone,
		Remaining: remaining,
	})

	return &AdvanceResult{Entry: *next, Remaining: remaining}, nil
}

func (s *QueueService) nextEntry(ctx context.Context) (*models.QueueEntry, error) {
	if s.advancePolicy == models.AdvancePolicyPriority {
		entries, err := s.repo.GetWaitingEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("load waiting entries: %w", err)
		}
		if len(entries) == 0 {
			return nil, ErrQueueEmpty
		}
		head := queue.Sort(entries)[0]
		return &head, nil
	}

	entry, err := s.repo.OldestWaiting(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load oldest entry: %w", err)
	}
	return entry, nil
}

// Prioritize moves an entry ahead of non-priority customers.
func (s *QueueService) Prioritize(ctx context.Context, id int64) error {
	if err := s.repo.SetPriority(ctx, id); err != nil {
		return err
	}

	s.recalc.Run(ctx, models.TriggerAdmin)

	s.logger.Info().Int64("entry_id", id).Msg("entry prioritized")
	s.publish(events.EventEntryPrioritized, events.EntryEventPayload{EntryID: id})
	return nil
}

// Snapshot returns the ordered queue; an empty slice on any store error.
func (s *QueueService) Snapshot(ctx context.Context) []queue.Position {
	entries, err := s.repo.GetWaitingEntries(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load queue")
		return []queue.Position{}
	}
	return queue.Order(entries, s.serviceDuration)
}

func (s *QueueService) publish(eventType string, payload events.EntryEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
