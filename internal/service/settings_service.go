package service

import (
	"context"
	"crypto/subtle"

	"salonq/internal/domain"
	"salonq/internal/events"

	"github.com/rs/zerolog"
)

type SettingsService struct {
	repo     domain.SettingsRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewSettingsService(repo domain.SettingsRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *SettingsService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SettingsService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// IsBotActive fails open: if settings can't be read the bot stays active.
func (s *SettingsService) IsBotActive(ctx context.Context) bool {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil || settings == nil {
		s.logger.Warn().Err(err).Msg("settings unavailable, bot active by default")
		return true
	}
	return settings.BotActive
}

// Authorize checks a presented admin code against the stored one.
func (s *SettingsService) Authorize(ctx context.Context, code string) bool {
	if code == "" {
		return false
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil || settings == nil {
		s.logger.Error().Err(err).Msg("failed to load admin code")
		return false
	}
	if settings.AdminCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(settings.AdminCode), []byte(code)) == 1
}

// Toggle flips bot_active and returns the new value.
func (s *SettingsService) Toggle(ctx context.Context) (bool, error) {
	active, err := s.repo.ToggleBotActive(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to toggle bot")
		return false, err
	}

	s.logger.Info().Bool("bot_active", active).Msg("bot toggled")
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventBotToggled, events.EntryEventPayload{BotActive: &active}); err != nil {
			s.logger.Error().Err(err).Msg("failed to publish bot toggle event")
		}
	}
	return active, nil
}
