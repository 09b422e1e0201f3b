package main

import (
	"context"
	"fmt"

	"salonq/internal/database"
	"salonq/internal/logging"

	"github.com/spf13/cobra"
)

type migrateCommand struct {
	opts *rootOptions
}

func (cmd migrateCommand) Command(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create tables and seed the settings row",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, base, closer, err := loadConfigAndLogger(cmd.opts.configPath)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			logger := logging.Component(base, "migrate")

			db, err := database.NewDB(cfg.Database.Path, logger)
			if err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			defer db.Close()

			if err := db.Migrate(ctx, cfg.Admin.BootstrapCode); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Str("path", cfg.Database.Path).Msg("database ready")
			return nil
		},
	}
}
