// Package ingest turns pasted tabular text into persisted entries, either
// directly or through the LLM cleaning stage.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediatracker/internal/common"
	"mediatracker/internal/entity"
	"mediatracker/internal/llm"
	"mediatracker/internal/repository"
	"mediatracker/internal/transform"
)

type Service struct {
	cleaner llm.RowCleaner
	repo    repository.EntryRepository
	logger  *slog.Logger
}

func NewService(cleaner llm.RowCleaner, repo repository.EntryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cleaner: cleaner, repo: repo, logger: logger}
}

// ImportText splits the raw text on its own delimiters and imports the
// rows without an LLM round trip. The cheap path for well-formed pastes.
func (s *Service) ImportText(ctx context.Context, rawText string) (entity.ImportBatchResult, error) {
	result := entity.ImportBatchResult{Entries: []entity.CleanedEntry{}, Errors: []string{}}

	if strings.TrimSpace(rawText) == "" {
		return result, common.NewAppError("INPUT_ERROR", "raw text is required", common.ErrInvalidInput)
	}
	rows := SplitTabular(rawText)
	if len(rows) == 0 {
		return result, common.NewAppError("INPUT_ERROR",
			"no tabular rows found; expected a header line plus data lines", common.ErrInvalidInput)
	}
	s.logger.Info("ingest.import.start", "rows", len(rows))
	return s.importRows(ctx, rows, nil)
}

// CleanAndImport routes the raw text through the LLM cleaning stage first,
// then imports whatever rows survived. Row-level complaints from the model
// carry through into the result's Errors.
func (s *Service) CleanAndImport(ctx context.Context, req llm.CleanRequest) (entity.ImportBatchResult, error) {
	result := entity.ImportBatchResult{Entries: []entity.CleanedEntry{}, Errors: []string{}}

	batch, _, err := s.cleaner.CleanRows(ctx, req)
	if err != nil {
		return result, fmt.Errorf("clean rows: %w", err)
	}
	s.logger.Info("ingest.clean_import.start",
		"rows", len(batch.Entries), "model_errors", len(batch.Errors))
	return s.importRows(ctx, batch.Entries, batch.Errors)
}

func (s *Service) importRows(ctx context.Context, rows []map[string]any, priorErrors []string) (entity.ImportBatchResult, error) {
	result := entity.ImportBatchResult{Entries: []entity.CleanedEntry{}, Errors: []string{}}
	result.Errors = append(result.Errors, priorErrors...)

	cleaned, dropped := transform.Rows(rows)
	result.Errors = append(result.Errors, dropped...)

	for _, ce := range cleaned {
		if s.repo != nil {
			if _, err := s.repo.Create(ctx, toEntry(ce)); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %v", ce.Title, err))
				continue
			}
		}
		result.Entries = append(result.Entries, ce)
	}

	s.logger.Info("ingest.import.done",
		"imported", len(result.Entries), "errors", len(result.Errors))
	return result, nil
}

// toEntry maps the canonical cleaned record onto the persisted shape.
// List fields flatten to comma-joined strings.
func toEntry(ce entity.CleanedEntry) *entity.Entry {
	e := &entity.Entry{
		Title:         ce.Title,
		Medium:        ce.Medium,
		Type:          ce.Type,
		Season:        ce.Season,
		Platform:      ce.Platform,
		Episodes:      ce.Episodes,
		Length:        ce.Length,
		Price:         ce.Price,
		MyRating:      ce.MyRating,
		AverageRating: ce.AverageRating,
		Status:        ce.Status,
		StartDate:     ce.StartDate,
		FinishDate:    ce.FinishDate,
		TimeTaken:     ce.TimeTaken,
		PosterURL:     ce.PosterURL,
		ImdbID:        ce.ImdbID,
	}
	if len(ce.Language) > 0 {
		joined := strings.Join(ce.Language, ", ")
		e.Language = &joined
	}
	if len(ce.Genre) > 0 {
		joined := strings.Join(ce.Genre, ", ")
		e.Genre = &joined
	}
	return e
}
