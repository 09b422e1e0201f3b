package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type exportCommand struct {
	opts *rootOptions
}

func (cmd exportCommand) Command(ctx context.Context) *cobra.Command {
	var from, to string

	c := &cobra.Command{
		Use:   "export",
		Short: "write queue history to an Excel file",
		RunE: func(c *cobra.Command, _ []string) error {
			start, end, err := parseRange(from, to, time.Now().UTC())
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cmd.opts.configPath, "export-cli")
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := a.export.ExportToDir(ctx, a.cfg.Exports.Path, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), path)
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default: 30 days ago)")
	c.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default: today)")
	return c
}

func parseRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	var err error
	if from != "" {
		if start, err = time.Parse(layout, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.Parse(layout, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return start, end.Add(24*time.Hour - time.Nanosecond), nil
}
