// Package tmdb implements the primary metadata provider against The Movie
// Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"mediatracker/internal/metadata"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Config for the TMDB client.
type Config struct {
	APIKey  string // if empty, falls back to env TMDB_API_KEY
	BaseURL string // default https://api.themoviedb.org/3
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("TMDB_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

func (c *Client) Name() string { return "tmdb" }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

type multiSearchResponse struct {
	Results []struct {
		ID           int64   `json:"id"`
		MediaType    string  `json:"media_type"`
		Title        string  `json:"title"`          // movies
		Name         string  `json:"name"`           // tv
		ReleaseDate  string  `json:"release_date"`   // movies
		FirstAirDate string  `json:"first_air_date"` // tv
		PosterPath   string  `json:"poster_path"`
		VoteAverage  float64 `json:"vote_average"`
	} `json:"results"`
}

// Search runs a multi-search (page 1) and maps movie/tv hits into the
// unified shape. Person hits and other media types are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]metadata.SearchResult, error) {
	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("include_adult", "false")

	var resp multiSearchResponse
	if err := c.getJSON(ctx, "/search/multi?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}

	results := make([]metadata.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.MediaType != metadata.MediaTypeMovie && r.MediaType != metadata.MediaTypeTV {
			continue
		}
		sr := metadata.SearchResult{
			ID:        fmt.Sprintf("tmdb_%s_%d", r.MediaType, r.ID),
			MediaType: r.MediaType,
			Title:     r.Title,
		}
		if sr.Title == "" {
			sr.Title = r.Name
		}
		if y := yearOf(r.ReleaseDate, r.FirstAirDate); y != "" {
			sr.Year = &y
		}
		if r.PosterPath != "" {
			u := posterBaseURL + r.PosterPath
			sr.PosterURL = &u
		}
		results = append(results, sr)
	}
	return results, nil
}

type movieDetailsResponse struct {
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       string  `json:"poster_path"`
	Runtime          int     `json:"runtime"`
	EpisodeRunTime   []int   `json:"episode_run_time"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
	ImdbID           string  `json:"imdb_id"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ExternalIDs struct {
		ImdbID string `json:"imdb_id"`
	} `json:"external_ids"`
}

// Details fetches /movie/{id} or /tv/{id} for one of our own search
// results. external_ids is appended so TV lookups also yield an IMDb id.
func (c *Client) Details(ctx context.Context, result metadata.SearchResult) (*metadata.Details, error) {
	mediaType, rawID, err := splitID(result.ID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("append_to_response", "external_ids")

	var resp movieDetailsResponse
	path := fmt.Sprintf("/%s/%s?%s", mediaType, rawID, q.Encode())
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("tmdb details: %w", err)
	}

	d := &metadata.Details{
		Title:     resp.Title,
		MediaType: mediaType,
	}
	if d.Title == "" {
		d.Title = resp.Name
	}
	if y := yearOf(resp.ReleaseDate, resp.FirstAirDate); y != "" {
		d.Year = &y
	}
	if resp.PosterPath != "" {
		u := posterBaseURL + resp.PosterPath
		d.PosterURL = &u
	}
	if imdb := firstNonEmpty(resp.ImdbID, resp.ExternalIDs.ImdbID); imdb != "" {
		d.ImdbID = &imdb
	}
	for _, g := range resp.Genres {
		if g.Name != "" {
			d.Genres = append(d.Genres, g.Name)
		}
	}
	if resp.OriginalLanguage != "" {
		lang := resp.OriginalLanguage
		d.Language = &lang
	}
	if resp.Runtime > 0 {
		rt := resp.Runtime
		d.RuntimeMinutes = &rt
	} else if len(resp.EpisodeRunTime) > 0 && resp.EpisodeRunTime[0] > 0 {
		rt := resp.EpisodeRunTime[0]
		d.RuntimeMinutes = &rt
	}
	if resp.NumberOfEpisodes > 0 {
		eps := resp.NumberOfEpisodes
		d.Episodes = &eps
	}
	if resp.VoteAverage > 0 {
		avg := resp.VoteAverage
		d.AverageRating = &avg
	}
	return d, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("tmdb.body_close_error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return json.Unmarshal(raw, out)
}

// splitID reverses the "tmdb_<type>_<id>" convention.
func splitID(id string) (mediaType, rawID string, err error) {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 || parts[0] != "tmdb" {
		return "", "", fmt.Errorf("not a tmdb result id: %q", id)
	}
	if _, convErr := strconv.ParseInt(parts[2], 10, 64); convErr != nil {
		return "", "", fmt.Errorf("bad tmdb id %q: %w", id, convErr)
	}
	return parts[1], parts[2], nil
}

func yearOf(dates ...string) string {
	for _, d := range dates {
		if len(d) >= 4 {
			return d[:4]
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
