package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mediatracker/internal/common"
	"mediatracker/internal/entity"
	"mediatracker/internal/llm"
)

func TestSplitTabular(t *testing.T) {
	t.Run("tab separated with header", func(t *testing.T) {
		text := "Title\tMedium\tRating\nDune\tMovie\t8.5/10\nProject Hail Mary\tBook\t5/5\n"
		rows := SplitTabular(text)
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		if rows[0]["Title"] != "Dune" || rows[0]["Rating"] != "8.5/10" {
			t.Errorf("row 0 = %v", rows[0])
		}
		if rows[1]["Medium"] != "Book" {
			t.Errorf("row 1 = %v", rows[1])
		}
	})

	t.Run("comma separated with quoted cell", func(t *testing.T) {
		text := "Title,Genre\n\"Crouching Tiger, Hidden Dragon\",Action\n"
		rows := SplitTabular(text)
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		if rows[0]["Title"] != "Crouching Tiger, Hidden Dragon" {
			t.Errorf("Title = %v, want quoted comma preserved", rows[0]["Title"])
		}
	})

	t.Run("semicolon separated", func(t *testing.T) {
		rows := SplitTabular("Title;Medium\nDune;Movie\n")
		if len(rows) != 1 || rows[0]["Medium"] != "Movie" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("blank and all-empty lines dropped", func(t *testing.T) {
		text := "Title\tMedium\n\nDune\tMovie\n\t\n"
		rows := SplitTabular(text)
		if len(rows) != 1 {
			t.Errorf("got %d rows, want 1", len(rows))
		}
	})

	t.Run("header only yields nothing", func(t *testing.T) {
		if rows := SplitTabular("Title\tMedium\n"); rows != nil {
			t.Errorf("rows = %v, want nil", rows)
		}
	})
}

type fakeCleaner struct {
	batch llm.RawBatch
	err   error
}

func (f *fakeCleaner) CleanRows(ctx context.Context, req llm.CleanRequest) (llm.RawBatch, []byte, error) {
	return f.batch, nil, f.err
}

type memRepo struct {
	created []*entity.Entry
	failOn  string
}

func (m *memRepo) Create(ctx context.Context, e *entity.Entry) (*entity.Entry, error) {
	if m.failOn != "" && e.Title == m.failOn {
		return nil, errors.New("disk full")
	}
	e.ID = uuid.New()
	m.created = append(m.created, e)
	return e, nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	return nil, common.ErrNotFound
}

func (m *memRepo) List(ctx context.Context) ([]*entity.Entry, error) { return m.created, nil }

func (m *memRepo) ListMissingMetadata(ctx context.Context) ([]*entity.Entry, error) {
	return m.created, nil
}

func (m *memRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

func TestImportText(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("persists cleaned rows", func(t *testing.T) {
		repo := &memRepo{}
		svc := NewService(nil, repo, logger)

		text := "Title\tMedium\tStatus\tLanguage\nDune\tMovie\twatched\tEnglish, French\n\tMovie\t\t\n"
		result, err := svc.ImportText(ctx, text)
		if err != nil {
			t.Fatalf("ImportText: %v", err)
		}
		if len(result.Entries) != 1 {
			t.Fatalf("imported %d entries, want 1", len(result.Entries))
		}
		if len(result.Errors) != 1 {
			t.Errorf("errors = %v, want one for the titleless row", result.Errors)
		}
		if len(repo.created) != 1 {
			t.Fatalf("persisted %d entries, want 1", len(repo.created))
		}
		if repo.created[0].Language == nil || *repo.created[0].Language != "English, French" {
			t.Errorf("Language = %v, want comma-joined", repo.created[0].Language)
		}
	})

	t.Run("empty input rejected", func(t *testing.T) {
		svc := NewService(nil, &memRepo{}, logger)
		_, err := svc.ImportText(ctx, "   \n  ")
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("persist failure recorded per entry", func(t *testing.T) {
		repo := &memRepo{failOn: "Dune"}
		svc := NewService(nil, repo, logger)

		text := "Title\nDune\nSeverance\n"
		result, err := svc.ImportText(ctx, text)
		if err != nil {
			t.Fatalf("ImportText: %v", err)
		}
		if len(result.Entries) != 1 || result.Entries[0].Title != "Severance" {
			t.Errorf("entries = %v, want only Severance", result.Entries)
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Dune") {
			t.Errorf("errors = %v, want the Dune failure", result.Errors)
		}
	})
}

func TestCleanAndImport(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("model rows and errors carry through", func(t *testing.T) {
		cleaner := &fakeCleaner{batch: llm.RawBatch{
			Entries: []map[string]any{
				{"title": "Dune", "medium": "Movie", "my rating": "9/10"},
			},
			Errors: []string{"row 3: no title"},
		}}
		repo := &memRepo{}
		svc := NewService(cleaner, repo, logger)

		result, err := svc.CleanAndImport(ctx, llm.CleanRequest{RawText: "whatever"})
		if err != nil {
			t.Fatalf("CleanAndImport: %v", err)
		}
		if len(result.Entries) != 1 || result.Entries[0].Title != "Dune" {
			t.Fatalf("entries = %v, want Dune", result.Entries)
		}
		if result.Entries[0].MyRating == nil || *result.Entries[0].MyRating != 9 {
			t.Errorf("MyRating = %v, want 9", result.Entries[0].MyRating)
		}
		if len(result.Errors) != 1 {
			t.Errorf("errors = %v, want the model's row error", result.Errors)
		}
	})

	t.Run("cleaner failure aborts", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("llm unavailable")}
		svc := NewService(cleaner, &memRepo{}, logger)

		_, err := svc.CleanAndImport(ctx, llm.CleanRequest{RawText: "x"})
		if err == nil {
			t.Fatal("CleanAndImport succeeded, want error")
		}
	})
}
