package repository

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"mediatracker/internal/common"
	"mediatracker/internal/entity"
)

func newTestRepository(t *testing.T) EntryRepository {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	db, driver, err := Open(ctx, Config{DSN: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewEntryRepository(db, driver, logger)
}

func strPtr(s string) *string { return &s }

func TestEntryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, &entity.Entry{
		Title:  "Dune",
		Medium: strPtr("Movie"),
		Status: strPtr("Completed"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("Create did not assign an ID")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("Title = %q, want Dune", got.Title)
	}
	if got.Medium == nil || *got.Medium != "Movie" {
		t.Errorf("Medium = %v, want Movie", got.Medium)
	}
	if got.Language != nil {
		t.Errorf("Language = %v, want nil", got.Language)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not persisted")
	}
}

func TestEntryCreateConflictIsDatabaseError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, &entity.Entry{Title: "Dune"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = repo.Create(ctx, &entity.Entry{ID: created.ID, Title: "Dune again"})
	if !errors.Is(err, common.ErrDatabase) {
		t.Errorf("err = %v, want ErrDatabase for a duplicate id", err)
	}
}

func TestEntryGetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEntryUpdateFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, &entity.Entry{Title: "Severance"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = repo.UpdateFields(ctx, created.ID, map[string]any{
		"language":   "English",
		"genre":      "Drama, Sci-Fi",
		"poster_url": "https://image.tmdb.org/t/p/w500/x.jpg",
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Language == nil || *got.Language != "English" {
		t.Errorf("Language = %v, want English", got.Language)
	}
	if got.Genre == nil || *got.Genre != "Drama, Sci-Fi" {
		t.Errorf("Genre = %v, want Drama, Sci-Fi", got.Genre)
	}
	if got.Title != "Severance" {
		t.Errorf("Title = %q, want untouched Severance", got.Title)
	}

	t.Run("unknown column rejected", func(t *testing.T) {
		err := repo.UpdateFields(ctx, created.ID, map[string]any{"nope": 1})
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("missing entry is ErrNotFound", func(t *testing.T) {
		err := repo.UpdateFields(ctx, uuid.New(), map[string]any{"language": "English"})
		if !errors.Is(err, common.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestListMissingMetadata(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	full, err := repo.Create(ctx, &entity.Entry{
		Title:       "Already Rich",
		Language:    strPtr("English"),
		Genre:       strPtr("Drama"),
		PosterURL:   strPtr("https://example.com/p.jpg"),
		ImdbID:      strPtr("tt0000001"),
		ReleaseYear: strPtr("2020"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bare, err := repo.Create(ctx, &entity.Entry{Title: "Bare Bones"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	missing, err := repo.ListMissingMetadata(ctx)
	if err != nil {
		t.Fatalf("ListMissingMetadata: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != bare.ID {
		t.Fatalf("missing = %d entries, want only the bare one", len(missing))
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List = %d entries, want 2", len(all))
	}
	_ = full
}
