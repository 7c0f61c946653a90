package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"mediatracker/internal/common"
	"mediatracker/internal/repository"
)

// Service is a tiny façade over the entry repository that produces XLSX
// bytes for exports.
type Service struct {
	repo   repository.EntryRepository
	logger *slog.Logger
}

func NewService(repo repository.EntryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"Title",
	"Medium",
	"Type",
	"Season",
	"Platform",
	"Language",
	"Episodes",
	"Length",
	"Price",
	"My Rating",
	"Average Rating",
	"Status",
	"Start Date",
	"Finish Date",
	"Time Taken",
	"Genre",
	"Release Year",
	"IMDB ID",
}

// ExportEntriesXLSX returns an XLSX workbook (as bytes) with every entry,
// one row per entry in list order.
func (s *Service) ExportEntriesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Entries"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, common.NewAppError("EXPORT_ERROR",
				fmt.Sprintf("create sheet: %v", err), common.ErrInternal)
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, e.Title)
		write(2, strOr(e.Medium))
		write(3, strOr(e.Type))
		write(4, strOr(e.Season))
		write(5, strOr(e.Platform))
		write(6, strOr(e.Language))
		if e.Episodes != nil {
			write(7, *e.Episodes)
		}
		write(8, strOr(e.Length))
		if e.Price != nil {
			write(9, *e.Price)
		}
		if e.MyRating != nil {
			write(10, *e.MyRating)
		}
		if e.AverageRating != nil {
			write(11, *e.AverageRating)
		}
		write(12, strOr(e.Status))
		write(13, strOr(e.StartDate))
		write(14, strOr(e.FinishDate))
		write(15, strOr(e.TimeTaken))
		write(16, strOr(e.Genre))
		write(17, strOr(e.ReleaseYear))
		write(18, strOr(e.ImdbID))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 36) // title
	_ = f.SetColWidth(sheet, "B", "C", 12)
	_ = f.SetColWidth(sheet, "F", "F", 20) // language
	_ = f.SetColWidth(sheet, "P", "P", 28) // genre

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewAppError("EXPORT_ERROR",
			fmt.Sprintf("xlsx write: %v", err), common.ErrInternal)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
