package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"salonq/internal/domain"
	"salonq/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Passages"

var exportHeaders = []string{"ID", "Téléphone", "Statut", "Priorité", "Arrivée", "Notifié", "Terminé", "Attente (min)"}

// ExportService writes queue history to an Excel workbook.
type ExportService struct {
	repo   domain.QueueRepository
	logger *zerolog.Logger
}

func NewExportService(repo domain.QueueRepository, logger *zerolog.Logger) *ExportService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ExportService{repo: repo, logger: logger}
}

// Export writes entries created in [from, to] as xlsx to w.
func (s *ExportService) Export(ctx context.Context, w io.Writer, from, to time.Time) error {
	f, err := s.build(ctx, from, to)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// ExportToDir saves the workbook under dir and returns the file path.
func (s *ExportService) ExportToDir(ctx context.Context, dir string, from, to time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := s.build(ctx, from, to)
	if err != nil {
		return "", err
	}
	defer f.Close()

	filePath := filepath.Join(dir, ExportFileName(from, to))
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func ExportFileName(from, to time.Time) string {
	return fmt.Sprintf("queue_%s_to_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (s *ExportService) build(ctx context.Context, from, to time.Time) (*excelize.File, error) {
	entries, err := s.repo.GetEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error getting entries: %w", err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, e := range entries {
		row := i + 2
		values := []interface{}{
			e.ID,
			e.Phone,
			e.Status,
			yesNo(e.Priority),
			formatTime(&e.CreatedAt),
			formatTime(e.NotifiedAt),
			formatTime(e.CompletedAt),
			waitMinutes(e),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "B", 20)
	_ = f.SetColWidth(exportSheet, "C", "H", 18)
	return f, nil
}

func yesNo(v bool) string {
	if v {
		return "oui"
	}
	return "non"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// waitMinutes is the time from arrival to being served; empty while waiting.
func waitMinutes(e models.QueueEntry) interface{} {
	if e.CompletedAt == nil {
		return ""
	}
	return int(e.CompletedAt.Sub(e.CreatedAt) / time.Minute)
}
