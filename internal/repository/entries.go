package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediatracker/internal/common"
	"mediatracker/internal/entity"
)

// EntryRepository is the persistence surface for media entries.
type EntryRepository interface {
	Create(ctx context.Context, entry *entity.Entry) (*entity.Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error)
	List(ctx context.Context) ([]*entity.Entry, error)
	ListMissingMetadata(ctx context.Context) ([]*entity.Entry, error)
	// UpdateFields applies a partial update. Keys are column names;
	// unknown columns are rejected rather than silently dropped.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

type entryRepository struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewEntryRepository(db *sql.DB, driver string, logger *slog.Logger) EntryRepository {
	return &entryRepository{
		db:     db,
		driver: driver,
		logger: logger,
	}
}

const entryColumns = `id, title, medium, type, season, platform, language, episodes,
	length, price, my_rating, average_rating, status, start_date, finish_date,
	time_taken, genre, release_year, poster_url, imdb_id, created_at, updated_at`

// updatableColumns guards UpdateFields against typo'd or hostile keys.
var updatableColumns = map[string]bool{
	"title": true, "medium": true, "type": true, "season": true,
	"platform": true, "language": true, "episodes": true, "length": true,
	"price": true, "my_rating": true, "average_rating": true, "status": true,
	"start_date": true, "finish_date": true, "time_taken": true,
	"genre": true, "release_year": true, "poster_url": true, "imdb_id": true,
}

func (r *entryRepository) Create(ctx context.Context, entry *entity.Entry) (*entity.Entry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := r.rebind(`INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		entry.ID.String(), entry.Title, entry.Medium, entry.Type, entry.Season,
		entry.Platform, entry.Language, entry.Episodes, entry.Length,
		entry.Price, entry.MyRating, entry.AverageRating, entry.Status,
		entry.StartDate, entry.FinishDate, entry.TimeTaken, entry.Genre,
		entry.ReleaseYear, entry.PosterURL, entry.ImdbID,
		entry.CreatedAt.Format(time.RFC3339), entry.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		r.logger.Error("repository.entry.create_failed", "title", entry.Title, "error", err)
		return nil, common.NewAppError("DB_ERROR",
			fmt.Sprintf("insert entry: %v", err), common.ErrDatabase)
	}
	return entry, nil
}

func (r *entryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	query := r.rebind(`SELECT ` + entryColumns + ` FROM entries WHERE id = ?`)
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("entry %s not found", id), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR",
			fmt.Sprintf("get entry: %v", err), common.ErrDatabase)
	}
	return entry, nil
}

func (r *entryRepository) List(ctx context.Context) ([]*entity.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries ORDER BY created_at, title`
	return r.queryEntries(ctx, query)
}

// ListMissingMetadata returns entries that still lack any enrichable
// field, in insertion order. This is the enrichment worklist.
func (r *entryRepository) ListMissingMetadata(ctx context.Context) ([]*entity.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE poster_url IS NULL OR imdb_id IS NULL OR genre IS NULL
			OR language IS NULL OR release_year IS NULL
		ORDER BY created_at, title`
	return r.queryEntries(ctx, query)
}

func (r *entryRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !updatableColumns[col] {
			return common.NewAppError("INPUT_ERROR",
				fmt.Sprintf("column %q is not updatable", col), common.ErrInvalidInput)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id.String())

	query := r.rebind("UPDATE entries SET " + strings.Join(sets, ", ") + " WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repository.entry.update_failed", "id", id, "error", err)
		return common.NewAppError("DB_ERROR",
			fmt.Sprintf("update entry: %v", err), common.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND",
			fmt.Sprintf("entry %s not found", id), common.ErrNotFound)
	}
	return nil
}

func (r *entryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*entity.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR",
			fmt.Sprintf("query entries: %v", err), common.ErrDatabase)
	}
	defer rows.Close()

	var entries []*entity.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// rebind rewrites ? placeholders to $n for postgres; sqlite takes ? as-is.
func (r *entryRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*entity.Entry, error) {
	var (
		e                    entity.Entry
		id, created, updated string
	)
	if err := row.Scan(&id, &e.Title, &e.Medium, &e.Type, &e.Season,
		&e.Platform, &e.Language, &e.Episodes, &e.Length, &e.Price,
		&e.MyRating, &e.AverageRating, &e.Status, &e.StartDate,
		&e.FinishDate, &e.TimeTaken, &e.Genre, &e.ReleaseYear,
		&e.PosterURL, &e.ImdbID, &created, &updated); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse entry id: %w", err)
	}
	e.ID = parsed
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		e.UpdatedAt = t
	}
	return &e, nil
}
