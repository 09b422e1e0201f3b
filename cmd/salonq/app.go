package main

import (
	"context"
	"fmt"
	"io"

	"salonq/internal/config"
	"salonq/internal/database"
	"salonq/internal/domain"
	"salonq/internal/events"
	"salonq/internal/logging"
	"salonq/internal/notify"
	"salonq/internal/repository"
	"salonq/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds the wired services shared by the commands.
type app struct {
	cfg      *config.Config
	base     *zerolog.Logger
	logger   *zerolog.Logger
	db       *database.DB
	redis    *redis.Client
	bus      *events.EventBus
	settings *service.SettingsService
	cycle    *service.NotificationCycle
	queue    *service.QueueService
	export   *service.ExportService

	closer io.Closer
}

func loadConfigAndLogger(configPath string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, baseLogger, closer, nil
}

func newApp(ctx context.Context, configPath, component string) (*app, error) {
	cfg, base, closer, err := loadConfigAndLogger(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Component(base, component)

	db, err := database.NewDB(cfg.Database.Path, logging.Component(base, "database"))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.Migrate(ctx, cfg.Admin.BootstrapCode); err != nil {
		_ = db.Close()
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	a := &app{cfg: cfg, base: base, logger: logger, db: db, closer: closer}
	a.redis = initRedis(ctx, cfg, logger)
	guard := a.guardRepository()

	a.bus = events.NewEventBus()
	a.bus.SubscribeAll(events.AuditHandler(logging.Component(base, "events")))

	notifier := notify.New(cfg.Messaging, logging.Component(base, "notify"))

	a.settings = service.NewSettingsService(db, a.bus, logging.Component(base, "settings"))
	a.cycle = service.NewNotificationCycle(db, guard, notifier, a.settings, a.bus, cfg.Queue,
		logging.Component(base, "recalc"))
	a.queue = service.NewQueueService(db, guard, a.settings, a.cycle, a.bus, cfg.Queue, cfg.Webhook,
		logging.Component(base, "queue"))
	a.export = service.NewExportService(db, logging.Component(base, "export"))

	return a, nil
}

// guardRepository prefers Redis and falls back to process memory.
func (a *app) guardRepository() domain.GuardRepository {
	memory := repository.NewMemoryGuardRepository()
	if a.redis == nil {
		return memory
	}
	primary := repository.NewRedisGuardRepository(a.redis, a.cfg.App.Name)
	return repository.NewFailoverGuardRepository(primary, memory, logging.Component(a.base, "guard"))
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory guards")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}
