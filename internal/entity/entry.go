package entity

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a persisted media entry for data transfer between layers.
// Optional fields are pointers; nil means "never filled in", which is what
// the enrichment merge keys off.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Medium        *string   `json:"medium,omitempty"`
	Type          *string   `json:"type,omitempty"`
	Season        *string   `json:"season,omitempty"`
	Platform      *string   `json:"platform,omitempty"`
	Language      *string   `json:"language,omitempty"` // comma-joined list
	Episodes      *int      `json:"episodes,omitempty"`
	Length        *string   `json:"length,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	MyRating      *float64  `json:"my_rating,omitempty"`
	AverageRating *float64  `json:"average_rating,omitempty"`
	Status        *string   `json:"status,omitempty"`
	StartDate     *string   `json:"start_date,omitempty"`  // YYYY-MM-DD
	FinishDate    *string   `json:"finish_date,omitempty"` // YYYY-MM-DD
	TimeTaken     *string   `json:"time_taken,omitempty"`  // "1 day", "12 days"
	Genre         *string   `json:"genre,omitempty"`       // comma-joined list
	ReleaseYear   *string   `json:"release_year,omitempty"`
	PosterURL     *string   `json:"poster_url,omitempty"`
	ImdbID        *string   `json:"imdb_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CleanedEntry is the canonical record produced by the transform stage.
// Title is the only required field; everything else defaults to nil when
// absent, empty, "N/A", or "-".
type CleanedEntry struct {
	Title         string   `json:"title"`
	Medium        *string  `json:"medium,omitempty"`
	Type          *string  `json:"type,omitempty"`
	Season        *string  `json:"season,omitempty"`
	Platform      *string  `json:"platform,omitempty"`
	Language      []string `json:"language,omitempty"`
	Episodes      *int     `json:"episodes,omitempty"`
	Length        *string  `json:"length,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	MyRating      *float64 `json:"my_rating,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	Status        *string  `json:"status,omitempty"`
	StartDate     *string  `json:"start_date,omitempty"`
	FinishDate    *string  `json:"finish_date,omitempty"`
	TimeTaken     *string  `json:"time_taken,omitempty"`
	Genre         []string `json:"genre,omitempty"`
	PosterURL     *string  `json:"poster_url,omitempty"`
	ImdbID        *string  `json:"imdb_id,omitempty"`
}

// ImportBatchResult is the outcome of one import: the cleaned entries plus
// a human-readable failure string per dropped row. Entries is always
// non-nil, even when empty.
type ImportBatchResult struct {
	Entries []CleanedEntry `json:"entries"`
	Errors  []string       `json:"errors"`
}
