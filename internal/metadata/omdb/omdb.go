// Package omdb implements the secondary (fallback) metadata provider
// against the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"mediatracker/internal/metadata"
	"mediatracker/internal/normalize"
)

// Config for the OMDb client.
type Config struct {
	APIKey  string // if empty, falls back to env OMDB_API_KEY
	BaseURL string // default https://www.omdbapi.com
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OMDB_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.omdbapi.com"
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

func (c *Client) Name() string { return "omdb" }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

type searchResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Search   []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		ImdbID string `json:"imdbID"`
		Type   string `json:"Type"` // "movie", "series", "game", ...
		Poster string `json:"Poster"`
	} `json:"Search"`
}

// Search runs a title search. OMDb reports "not found" as an error payload
// with Response=False; that is an empty result set here, not a failure.
func (c *Client) Search(ctx context.Context, query string) ([]metadata.SearchResult, error) {
	q := url.Values{}
	q.Set("apikey", c.cfg.APIKey)
	q.Set("s", query)

	var resp searchResponse
	if err := c.getJSON(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("omdb search: %w", err)
	}
	if resp.Response != "True" {
		if resp.Error != "" && !strings.EqualFold(resp.Error, "Movie not found!") {
			return nil, fmt.Errorf("omdb search: %s", resp.Error)
		}
		return []metadata.SearchResult{}, nil
	}

	results := make([]metadata.SearchResult, 0, len(resp.Search))
	for _, r := range resp.Search {
		sr := metadata.SearchResult{
			ID:        "omdb_" + r.ImdbID,
			Title:     r.Title,
			MediaType: mapType(r.Type),
			ImdbID:    r.ImdbID,
		}
		if r.Year != "" {
			y := r.Year
			sr.Year = &y
		}
		if r.Poster != "" && r.Poster != "N/A" {
			p := r.Poster
			sr.PosterURL = &p
		}
		results = append(results, sr)
	}
	return results, nil
}

type detailsResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"` // "148 min"
	Genre      string `json:"Genre"`   // "Action, Sci-Fi"
	Language   string `json:"Language"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
	Type       string `json:"Type"`
}

// Details fetches the full record by IMDb id.
func (c *Client) Details(ctx context.Context, result metadata.SearchResult) (*metadata.Details, error) {
	imdbID := strings.TrimPrefix(result.ID, "omdb_")
	if imdbID == "" || imdbID == result.ID {
		return nil, fmt.Errorf("not an omdb result id: %q", result.ID)
	}

	q := url.Values{}
	q.Set("apikey", c.cfg.APIKey)
	q.Set("i", imdbID)

	var resp detailsResponse
	if err := c.getJSON(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("omdb details: %w", err)
	}
	if resp.Response != "True" {
		return nil, fmt.Errorf("omdb details: %s", resp.Error)
	}

	d := &metadata.Details{
		Title:     resp.Title,
		MediaType: mapType(resp.Type),
	}
	if !normalize.IsNullish(resp.Year) {
		y := resp.Year
		d.Year = &y
	}
	if !normalize.IsNullish(resp.Poster) {
		p := resp.Poster
		d.PosterURL = &p
	}
	if resp.ImdbID != "" {
		id := resp.ImdbID
		d.ImdbID = &id
	}
	d.Genres = normalize.SplitList(resp.Genre)
	if langs := normalize.SplitList(resp.Language); len(langs) > 0 {
		lang := strings.Join(langs, ", ")
		d.Language = &lang
	}
	d.RuntimeMinutes = normalize.Duration(resp.Runtime)
	d.AverageRating = normalize.Rating(resp.ImdbRating)
	return d, nil
}

func (c *Client) getJSON(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+"/?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("omdb.body_close_error", "error", cerr)
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

// mapType folds OMDb's type codes into the two-valued movie/tv domain.
func mapType(t string) string {
	switch strings.ToLower(t) {
	case "series", "episode":
		return metadata.MediaTypeTV
	default:
		return metadata.MediaTypeMovie
	}
}
