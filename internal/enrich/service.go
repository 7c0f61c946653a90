// Package enrich walks entries that still lack metadata, looks each one up
// against the configured providers, and merges the result in without ever
// overwriting a value the user already has.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediatracker/constants"
	"mediatracker/internal/common"
	"mediatracker/internal/entity"
	"mediatracker/internal/metadata"
	"mediatracker/internal/repository"
)

// Lookup resolves one title into provider details. *metadata.Service
// satisfies this; tests substitute fakes.
type Lookup interface {
	Lookup(ctx context.Context, query string, hints metadata.LookupHints) (*metadata.Details, error)
}

// Report accounts for one batch run. Attempted counts entries that reached
// a provider lookup; Skipped ones never did.
type Report struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Failures  []string `json:"failures,omitempty"`
}

// ProgressFunc observes the run after each entry: current is 1-based.
type ProgressFunc func(current, total int, title string)

type Service struct {
	repo   repository.EntryRepository
	lookup Lookup
	pacer  Pacer
	logger *slog.Logger

	// OnComplete fires after a run with at least one successful
	// enrichment; fully failed runs do not trigger it.
	OnComplete func(Report)
}

func NewService(repo repository.EntryRepository, lookup Lookup, pacer Pacer, logger *slog.Logger) *Service {
	if pacer == nil {
		pacer = nopPacer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, lookup: lookup, pacer: pacer, logger: logger}
}

// Run enriches every entry still missing metadata, strictly one at a time.
// Provider calls are paced; a failed entry is recorded and the run moves
// on. The returned error is non-nil only when the worklist could not be
// fetched or when every single lookup failed.
func (s *Service) Run(ctx context.Context, onProgress ProgressFunc) (Report, error) {
	var report Report

	entries, err := s.repo.ListMissingMetadata(ctx)
	if err != nil {
		return report, fmt.Errorf("list entries: %w", err)
	}
	total := len(entries)
	s.logger.Info("enrich.run.start", "total", total)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if strings.TrimSpace(entry.Title) == "" {
			report.Skipped++
			s.logger.Warn("enrich.run.skip_untitled", "id", entry.ID)
			continue
		}

		// The limiter starts with one free token, so the first wait is
		// immediate and every later one spaces the calls out.
		if err := s.pacer.Wait(ctx); err != nil {
			return report, err
		}
		report.Attempted++

		if err := s.enrichOne(ctx, entry); err != nil {
			report.Failed++
			report.Failures = append(report.Failures,
				fmt.Sprintf("%s: %v", entry.Title, err))
			s.logger.Warn("enrich.run.entry_failed",
				"id", entry.ID, "title", entry.Title, "error", err)
		} else {
			report.Succeeded++
		}
		if onProgress != nil {
			onProgress(i+1, total, entry.Title)
		}
	}

	s.logger.Info("enrich.run.done",
		"attempted", report.Attempted, "succeeded", report.Succeeded,
		"failed", report.Failed, "skipped", report.Skipped)

	if report.Attempted > 0 && report.Succeeded == 0 {
		return report, common.NewAppError("ENRICH_ERROR",
			fmt.Sprintf("all %d lookups failed", report.Attempted), nil)
	}
	if s.OnComplete != nil && report.Succeeded > 0 {
		s.OnComplete(report)
	}
	return report, nil
}

func (s *Service) enrichOne(ctx context.Context, entry *entity.Entry) error {
	details, err := s.lookup.Lookup(ctx, entry.Title, lookupHints(entry))
	if err != nil {
		return err
	}
	delta := MergeDelta(entry, details)
	if len(delta) == 0 {
		return nil
	}
	return s.repo.UpdateFields(ctx, entry.ID, delta)
}

func lookupHints(entry *entity.Entry) metadata.LookupHints {
	var hints metadata.LookupHints
	if entry.Medium != nil {
		if m, ok := constants.CanonicalizeMedium(*entry.Medium); ok {
			hints.MediaType = constants.MediaTypeHint(m)
		}
	}
	if entry.Season != nil {
		hints.Season = *entry.Season
	}
	return hints
}

// MergeDelta computes the column updates for one entry: a provider value
// lands only where the entry holds nil. Existing values always win.
func MergeDelta(entry *entity.Entry, details *metadata.Details) map[string]any {
	delta := map[string]any{}
	if details == nil {
		return delta
	}

	if entry.Language == nil && details.Language != nil {
		delta["language"] = *details.Language
	}
	if entry.Genre == nil && len(details.Genres) > 0 {
		delta["genre"] = strings.Join(details.Genres, ", ")
	}
	if entry.PosterURL == nil && details.PosterURL != nil {
		delta["poster_url"] = *details.PosterURL
	}
	if entry.ImdbID == nil && details.ImdbID != nil {
		delta["imdb_id"] = *details.ImdbID
	}
	if entry.ReleaseYear == nil && details.Year != nil {
		delta["release_year"] = *details.Year
	}
	if entry.Length == nil && details.RuntimeMinutes != nil {
		delta["length"] = fmt.Sprintf("%d min", *details.RuntimeMinutes)
	}
	if entry.Episodes == nil && details.Episodes != nil {
		delta["episodes"] = *details.Episodes
	}
	if entry.AverageRating == nil && details.AverageRating != nil {
		delta["average_rating"] = *details.AverageRating
	}
	if entry.Type == nil && details.MediaType != "" {
		switch details.MediaType {
		case metadata.MediaTypeMovie:
			delta["type"] = "Movie"
		case metadata.MediaTypeTV:
			delta["type"] = "Series"
		}
	}
	return delta
}
