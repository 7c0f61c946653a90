// Package metadata provides title search across external providers with an
// ordered fallback chain, and the single-title lookup used by enrichment.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"mediatracker/internal/common"
)

// maxResultsPerProvider caps how many matches one provider contributes.
const maxResultsPerProvider = 8

// minQueryLength is the minimum number of non-whitespace characters before
// any provider is called. Shorter queries return an empty set, a cost and
// noise guard, not an error.
const minQueryLength = 2

// Service queries the primary provider first and falls back to the
// secondary when the primary yields nothing. Either provider may be nil or
// unconfigured.
type Service struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
}

func NewService(primary, secondary Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{primary: primary, secondary: secondary, logger: logger}
}

// Search implements the fallback chain. The primary's own failure is
// swallowed and logged (it counts as zero results); a secondary failure is
// a transient provider error. When neither provider is configured the
// returned error is a configuration error and the result list is empty,
// never nil, so callers can render "no results" uniformly.
func (s *Service) Search(ctx context.Context, query string) ([]SearchResult, error) {
	results := []SearchResult{}

	if utf8.RuneCountInString(strings.Join(strings.Fields(query), "")) < minQueryLength {
		return results, nil
	}

	primaryOK := s.primary != nil && s.primary.Configured()
	secondaryOK := s.secondary != nil && s.secondary.Configured()
	if !primaryOK && !secondaryOK {
		return results, common.NewAppError("CONFIG_ERROR",
			"no metadata provider configured; set TMDB_API_KEY or OMDB_API_KEY",
			common.ErrInvalidInput)
	}

	if primaryOK {
		found, err := s.primary.Search(ctx, query)
		if err != nil {
			s.logger.Warn("metadata.search.primary_failed",
				"provider", s.primary.Name(), "query", query, "error", err)
		} else {
			results = cap8(found)
		}
	}

	if len(results) == 0 && secondaryOK {
		found, err := s.secondary.Search(ctx, query)
		if err != nil {
			return results, fmt.Errorf("%s search: %w", s.secondary.Name(), err)
		}
		results = cap8(found)
	}
	return results, nil
}

// Lookup resolves one title (plus hints) into the rich record used for
// enrichment: search, take the best match, then ask the owning provider
// for details. A failed details call degrades to what the search result
// already carried rather than failing the lookup.
func (s *Service) Lookup(ctx context.Context, query string, hints LookupHints) (*Details, error) {
	q := strings.TrimSpace(query)
	if hints.Season != "" {
		q = q + " " + hints.Season
	}

	results, err := s.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	best, ok := pickBest(results, hints.MediaType)
	if !ok && hints.Season != "" {
		// Season suffix can over-narrow; retry on the bare title.
		results, err = s.Search(ctx, strings.TrimSpace(query))
		if err != nil {
			return nil, err
		}
		best, ok = pickBest(results, hints.MediaType)
	}
	if !ok {
		return nil, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("no metadata match for %q", query), common.ErrNotFound)
	}

	owner := s.ownerOf(best.ID)
	if owner != nil {
		details, err := owner.Details(ctx, best)
		if err == nil {
			return details, nil
		}
		s.logger.Warn("metadata.lookup.details_failed",
			"provider", owner.Name(), "id", best.ID, "error", err)
	}

	d := &Details{
		Title:     best.Title,
		Year:      best.Year,
		PosterURL: best.PosterURL,
		MediaType: best.MediaType,
	}
	if best.ImdbID != "" {
		id := best.ImdbID
		d.ImdbID = &id
	}
	return d, nil
}

// pickBest prefers the first result matching the media-type hint, falling
// back to the first result overall.
func pickBest(results []SearchResult, mediaType string) (SearchResult, bool) {
	if len(results) == 0 {
		return SearchResult{}, false
	}
	if mediaType != "" {
		for _, r := range results {
			if r.MediaType == mediaType {
				return r, true
			}
		}
	}
	return results[0], true
}

func (s *Service) ownerOf(id string) Provider {
	for _, p := range []Provider{s.primary, s.secondary} {
		if p != nil && p.Configured() && strings.HasPrefix(id, p.Name()+"_") {
			return p
		}
	}
	return nil
}

func cap8(results []SearchResult) []SearchResult {
	if len(results) > maxResultsPerProvider {
		return results[:maxResultsPerProvider]
	}
	if results == nil {
		return []SearchResult{}
	}
	return results
}
