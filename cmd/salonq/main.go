package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(ctx).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "salonq",
		Short:         "Walk-in queue for the salon, driven by WhatsApp",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath(), "path to config.yaml")

	root.AddCommand(
		serveCommand{opts: opts}.Command(ctx),
		recalcCommand{opts: opts}.Command(ctx),
		queueCommand{opts: opts}.Command(ctx),
		migrateCommand{opts: opts}.Command(ctx),
		exportCommand{opts: opts}.Command(ctx),
	)
	return root
}

type rootOptions struct {
	configPath string
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
