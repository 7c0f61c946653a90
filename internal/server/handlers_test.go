package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediatracker/internal/enrich"
	"mediatracker/internal/export"
	"mediatracker/internal/ingest"
	"mediatracker/internal/metadata"
	"mediatracker/internal/repository"
)

type stubProvider struct {
	results []metadata.SearchResult
}

func (p *stubProvider) Name() string     { return "tmdb" }
func (p *stubProvider) Configured() bool { return true }

func (p *stubProvider) Search(ctx context.Context, query string) ([]metadata.SearchResult, error) {
	return p.results, nil
}

func (p *stubProvider) Details(ctx context.Context, r metadata.SearchResult) (*metadata.Details, error) {
	return &metadata.Details{Title: r.Title, MediaType: r.MediaType}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	db, driver, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	repo := repository.NewEntryRepository(db, driver, logger)

	provider := &stubProvider{results: []metadata.SearchResult{
		{ID: "tmdb_movie_438631", Title: "Dune", MediaType: "movie"},
	}}
	search := metadata.NewService(provider, nil, logger)

	return New(
		ingest.NewService(nil, repo, logger),
		search,
		enrich.NewService(repo, search, nil, logger),
		export.NewService(repo, logger),
		repo,
		logger,
	)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportAndList(t *testing.T) {
	router := newTestServer(t).Router()

	body, _ := json.Marshal(map[string]string{
		"raw_text": "Title\tMedium\tMy Rating\nDune\tMovie\t9/10\n",
	})
	w := doJSON(t, router, http.MethodPost, "/api/import", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}

	var result struct {
		Entries []struct {
			Title    string   `json:"title"`
			MyRating *float64 `json:"my_rating"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Title != "Dune" {
		t.Fatalf("entries = %+v, want Dune", result.Entries)
	}
	if result.Entries[0].MyRating == nil || *result.Entries[0].MyRating != 9 {
		t.Errorf("my_rating = %v, want 9", result.Entries[0].MyRating)
	}

	w = doJSON(t, router, http.MethodGet, "/api/entries", "")
	if w.Code != http.StatusOK {
		t.Fatalf("entries status = %d", w.Code)
	}
	var list struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}
}

func TestImportValidation(t *testing.T) {
	router := newTestServer(t).Router()

	w := doJSON(t, router, http.MethodPost, "/api/import", `{"raw_text": "  "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for blank raw_text", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/import", `{"raw_text": "x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a one-character paste", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/import", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad body", w.Code)
	}
}

func TestGetEntry(t *testing.T) {
	router := newTestServer(t).Router()

	body, _ := json.Marshal(map[string]string{
		"raw_text": "Title\tMedium\nDune\tMovie\n",
	})
	w := doJSON(t, router, http.MethodPost, "/api/import", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}
	var imported struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &imported); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if len(imported.Entries) != 1 {
		t.Fatalf("entries = %+v, want one", imported.Entries)
	}

	w = doJSON(t, router, http.MethodGet, "/api/entries/"+imported.Entries[0].ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", w.Code, w.Body.String())
	}
	var entry struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Title != "Dune" {
		t.Errorf("title = %q, want Dune", entry.Title)
	}

	w = doJSON(t, router, http.MethodGet, "/api/entries/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a malformed id", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/entries/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown id", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestServer(t).Router()

	w := doJSON(t, router, http.MethodGet, "/api/search?q=Dune", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Results []metadata.SearchResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "tmdb_movie_438631" {
		t.Errorf("results = %+v", resp.Results)
	}

	w = doJSON(t, router, http.MethodGet, "/api/search?q=a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d for short query", w.Code)
	}
}

func TestEnrichStatusIdle(t *testing.T) {
	router := newTestServer(t).Router()

	w := doJSON(t, router, http.MethodGet, "/api/enrich/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state struct {
		Running bool `json:"running"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Running {
		t.Error("running = true on an idle server")
	}
}

func TestExportEndpoint(t *testing.T) {
	router := newTestServer(t).Router()

	w := doJSON(t, router, http.MethodGet, "/api/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q, want xlsx", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty export body")
	}
}
