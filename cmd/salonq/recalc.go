package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"salonq/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type recalcCommand struct {
	opts *rootOptions
}

func (cmd recalcCommand) Command(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "run one recalculation and notification pass",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp(ctx, cmd.opts.configPath, "recalc-cli")
			if err != nil {
				return err
			}
			defer a.Close()

			printReport(os.Stdout, a.cycle.Run(ctx, models.TriggerManual))
			return nil
		},
	}
}

func printReport(w io.Writer, report models.CycleReport) {
	if report.Skipped {
		fmt.Fprintln(w, "bot is inactive, nothing to do")
		return
	}
	fmt.Fprintln(w, renderTable(reportColumns, []table.Row{reportRow(report)}))
}
