package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"salonq/internal/api"
	"salonq/internal/database"
	"salonq/internal/logging"
	"salonq/internal/metrics"
	"salonq/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type serveCommand struct {
	opts *rootOptions
}

func (cmd serveCommand) Command(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the webhook, admin API and scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.main(ctx)
		},
	}
}

func (cmd serveCommand) main(ctx context.Context) error {
	a, err := newApp(ctx, cmd.opts.configPath, "serve")
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	logger := a.logger

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	startMetrics(ctx, a)

	scheduler := worker.NewScheduler(logging.Component(a.base, "scheduler"))
	if err := scheduler.AddRecalculation(cfg.Queue.RecalcSchedule, a.cycle); err != nil {
		return err
	}
	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logging.Component(a.base, "backup"))
		if err := scheduler.AddJob("backup", cfg.Backup.Schedule, func(ctx context.Context) error {
			backup.Run(ctx)
			return nil
		}); err != nil {
			return err
		}
	}
	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(schedulerDone)
	}()

	httpServer := api.NewHTTPServer(cfg.API, cfg.Admin, api.Deps{
		Queue:    a.queue,
		Settings: a.settings,
		Exporter: a.export,
		Store:    a.db,
	}, logging.Component(a.base, "http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().
		Int("http_port", cfg.API.HTTP.Port).
		Str("recalc_schedule", cfg.Queue.RecalcSchedule).
		Str("advance_policy", cfg.Queue.AdvancePolicy).
		Msg("salon queue started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("scheduler did not stop in time")
	}

	logger.Info().Msg("salon queue stopped")
	return nil
}

func startMetrics(ctx context.Context, a *app) {
	if !a.cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, a.cfg.Monitoring.PrometheusPort, a.logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
