package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"salonq/internal/queue"

	"github.com/spf13/cobra"
)

type queueCommand struct {
	opts *rootOptions
}

func (cmd queueCommand) Command(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "print the current queue in service order",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp(ctx, cmd.opts.configPath, "queue-cli")
			if err != nil {
				return err
			}
			defer a.Close()

			printQueue(os.Stdout, a.queue.Snapshot(ctx))
			return nil
		},
	}
}

func printQueue(w io.Writer, positions []queue.Position) {
	if len(positions) == 0 {
		fmt.Fprintln(w, "queue is empty")
		return
	}
	fmt.Fprintln(w, renderTable(queueColumns, queueRows(positions)))
}
