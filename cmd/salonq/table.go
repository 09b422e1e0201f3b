package main

import (
	"salonq/internal/models"
	"salonq/internal/queue"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type column struct {
	title string
	align text.Align
}

var queueColumns = []column{
	{"#", text.AlignRight},
	{"ID", text.AlignRight},
	{"Phone", text.AlignLeft},
	{"ETA (min)", text.AlignRight},
	{"Priority", text.AlignLeft},
	{"Notified", text.AlignLeft},
}

var reportColumns = []column{
	{"Trigger", text.AlignLeft},
	{"Waiting", text.AlignRight},
	{"Due", text.AlignRight},
	{"Notified", text.AlignRight},
	{"Failed", text.AlignRight},
}

func queueRows(positions []queue.Position) []table.Row {
	rows := make([]table.Row, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, table.Row{
			p.Position,
			p.ID,
			p.Phone,
			p.EstimatedMinutes,
			flag(p.Priority),
			flag(p.Notified),
		})
	}
	return rows
}

func reportRow(report models.CycleReport) table.Row {
	return table.Row{
		report.Trigger,
		report.Waiting,
		report.Due,
		report.Notified,
		report.Failed,
	}
}

// renderTable draws rows under columns; titles are printed as written.
func renderTable(columns []column, rows []table.Row) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		if len(row) > len(columns) {
			row = row[:len(columns)]
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}

func flag(v bool) string {
	if v {
		return "yes"
	}
	return ""
}
