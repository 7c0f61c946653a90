package metadata

// Media types in the unified result domain. Provider-specific type codes
// (e.g. OMDb's "series") are mapped onto these two values.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// SearchResult is the unified shape returned regardless of provider. ID
// encodes which provider produced the result ("tmdb_<type>_<id>" or
// "omdb_<imdbID>"), so downstream code never tracks provenance separately.
type SearchResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Year      *string `json:"year,omitempty"`
	PosterURL *string `json:"poster_url,omitempty"`
	MediaType string  `json:"media_type"`
	ImdbID    string  `json:"imdb_id,omitempty"`
}

// Details is the richer record fetched for one title, used by enrichment.
// Fields the provider did not supply stay nil.
type Details struct {
	Title          string
	Year           *string
	PosterURL      *string
	MediaType      string
	ImdbID         *string
	Genres         []string
	Language       *string
	RuntimeMinutes *int
	Episodes       *int
	AverageRating  *float64
}

// LookupHints narrow an enrichment lookup beyond the bare title.
type LookupHints struct {
	MediaType string // "movie" or "tv", when the entry's medium implies one
	Season    string // e.g. "Season 2", appended for disambiguation
}
