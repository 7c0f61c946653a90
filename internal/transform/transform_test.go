package transform

import (
	"testing"
)

func TestRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		entry, ok := Row(map[string]any{
			"Title":       "Severance",
			"Medium":      "series",
			"Season":      float64(2),
			"Platform":    "Apple TV+",
			"Language":    "English, Korean",
			"Episodes":    "10",
			"Length":      "45 min",
			"Price":       "$4.99",
			"My Rating":   "9/10",
			"IMDB Rating": "8.7",
			"Status":      "watching",
			"start_date":  "2024-01-01",
			"finish_date": "2024-01-12",
			"Genre":       "Drama, Sci-Fi",
		})
		if !ok {
			t.Fatal("Row() ok = false, want true")
		}
		if entry.Title != "Severance" {
			t.Errorf("Title = %q", entry.Title)
		}
		if entry.Medium == nil || *entry.Medium != "TV Show" {
			t.Errorf("Medium = %v, want TV Show", entry.Medium)
		}
		if entry.Season == nil || *entry.Season != "Season 2" {
			t.Errorf("Season = %v, want Season 2", entry.Season)
		}
		if len(entry.Language) != 2 || entry.Language[0] != "English" {
			t.Errorf("Language = %v", entry.Language)
		}
		if entry.Episodes == nil || *entry.Episodes != 10 {
			t.Errorf("Episodes = %v, want 10", entry.Episodes)
		}
		if entry.Length == nil || *entry.Length != "45 min" {
			t.Errorf("Length = %v, want 45 min", entry.Length)
		}
		if entry.Price == nil || *entry.Price != 4.99 {
			t.Errorf("Price = %v, want 4.99", entry.Price)
		}
		if entry.MyRating == nil || *entry.MyRating != 9 {
			t.Errorf("MyRating = %v, want 9", entry.MyRating)
		}
		if entry.AverageRating == nil || *entry.AverageRating != 8.7 {
			t.Errorf("AverageRating = %v, want 8.7", entry.AverageRating)
		}
		if entry.Status == nil || *entry.Status != "In Progress" {
			t.Errorf("Status = %v, want In Progress", entry.Status)
		}
		if entry.TimeTaken == nil || *entry.TimeTaken != "12 days" {
			t.Errorf("TimeTaken = %v, want 12 days", entry.TimeTaken)
		}
		if len(entry.Genre) != 2 || entry.Genre[1] != "Sci-Fi" {
			t.Errorf("Genre = %v", entry.Genre)
		}
	})

	t.Run("missing title drops row", func(t *testing.T) {
		if _, ok := Row(map[string]any{"medium": "Movie"}); ok {
			t.Error("Row() ok = true for titleless row, want false")
		}
		if _, ok := Row(map[string]any{"title": "  "}); ok {
			t.Error("Row() ok = true for blank title, want false")
		}
		if _, ok := Row(map[string]any{"title": "N/A"}); ok {
			t.Error("Row() ok = true for N/A title, want false")
		}
	})

	t.Run("rating alias order first non-null wins", func(t *testing.T) {
		entry, ok := Row(map[string]any{
			"title":     "Dune",
			"my rating": "not a number",
			"rating":    "4/5",
		})
		if !ok {
			t.Fatal("Row() ok = false")
		}
		if entry.MyRating == nil || *entry.MyRating != 8 {
			t.Errorf("MyRating = %v, want 8 (fallback alias)", entry.MyRating)
		}
	})

	t.Run("same-day pair is one day", func(t *testing.T) {
		entry, _ := Row(map[string]any{
			"title":       "Arrival",
			"start date":  "2024-03-05",
			"finish date": "2024-03-05",
		})
		if entry.TimeTaken == nil || *entry.TimeTaken != "1 day" {
			t.Errorf("TimeTaken = %v, want 1 day", entry.TimeTaken)
		}
	})

	t.Run("reversed dates leave time taken null", func(t *testing.T) {
		entry, _ := Row(map[string]any{
			"title":       "Arrival",
			"start date":  "2024-03-10",
			"finish date": "2024-03-05",
		})
		if entry.TimeTaken != nil {
			t.Errorf("TimeTaken = %v, want nil for reversed pair", *entry.TimeTaken)
		}
	})

	t.Run("explicit time taken wins over computed", func(t *testing.T) {
		entry, _ := Row(map[string]any{
			"title":       "Arrival",
			"time taken":  "3 days",
			"start date":  "2024-03-01",
			"finish date": "2024-03-10",
		})
		if entry.TimeTaken == nil || *entry.TimeTaken != "3 days" {
			t.Errorf("TimeTaken = %v, want 3 days", entry.TimeTaken)
		}
	})

	t.Run("nullish markers become nil", func(t *testing.T) {
		entry, _ := Row(map[string]any{
			"title":    "Dune",
			"season":   "n/a",
			"platform": "-",
			"genre":    "",
			"status":   "whatever",
		})
		if entry.Season != nil {
			t.Errorf("Season = %v, want nil", *entry.Season)
		}
		if entry.Platform != nil {
			t.Errorf("Platform = %v, want nil", *entry.Platform)
		}
		if entry.Genre != nil {
			t.Errorf("Genre = %v, want nil", entry.Genre)
		}
		if entry.Status != nil {
			t.Errorf("Status = %v, want nil for unknown label", *entry.Status)
		}
	})

	t.Run("book length in pages", func(t *testing.T) {
		entry, _ := Row(map[string]any{
			"title":  "Project Hail Mary",
			"medium": "Book",
			"length": "476 pages",
		})
		if entry.Length == nil || *entry.Length != "476 pages" {
			t.Errorf("Length = %v, want 476 pages", entry.Length)
		}
	})

	t.Run("duration length canonicalized to minutes", func(t *testing.T) {
		entry, _ := Row(map[string]any{
			"title":  "Oppenheimer",
			"length": "3h 0m",
		})
		if entry.Length == nil || *entry.Length != "180 min" {
			t.Errorf("Length = %v, want 180 min", entry.Length)
		}
	})
}

func TestRows(t *testing.T) {
	entries, errs := Rows([]map[string]any{
		{"title": "Dune"},
		{"medium": "Movie"},
		{"title": "Arrival"},
	})
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one drop notice", errs)
	}
}
