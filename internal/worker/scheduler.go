package worker

import (
	"context"
	"fmt"

	"salonq/internal/domain"
	"salonq/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler fires the periodic recalculation and, optionally, database backups.
type Scheduler struct {
	cron   *cron.Cron
	logger *zerolog.Logger
}

func NewScheduler(logger *zerolog.Logger) *Scheduler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// AddRecalculation registers the notification cycle on a standard 5-field cron expression.
func (s *Scheduler) AddRecalculation(spec string, recalc domain.Recalculator) error {
	_, err := s.cron.AddFunc(spec, func() {
		report := recalc.Run(context.Background(), models.TriggerSchedule)
		s.logger.Debug().
			Bool("skipped", report.Skipped).
			Int("waiting", report.Waiting).
			Int("notified", report.Notified).
			Int("failed", report.Failed).
			Msg("scheduled recalculation finished")
	})
	if err != nil {
		return fmt.Errorf("schedule recalculation %q: %w", spec, err)
	}
	return nil
}

// AddJob registers an arbitrary named job, e.g. backups.
func (s *Scheduler) AddJob(name, spec string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop until ctx is cancelled, then waits for running jobs.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info().Int("jobs", s.Jobs()).Msg("scheduler started")

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}
