package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Open connects to the database named by the DSN. A postgres:// DSN goes
// through a pgx pool; anything else is treated as a SQLite path, with
// ":memory:" giving a throwaway in-memory database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, string, error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		db, err := openPostgres(ctx, cfg, logger)
		return db, "postgres", err
	}
	db, err := openSQLite(ctx, cfg, logger)
	return db, "sqlite", err
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "mediatracker"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	path := cfg.DSN
	if path == "" {
		path = ":memory:"
	}
	logger.Info("opening sqlite database", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, err
	}
	// The modernc driver is not safe for concurrent writers over
	// multiple connections; a single connection sidesteps SQLITE_BUSY
	// and keeps :memory: databases from vanishing between queries.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping sqlite database", "error", err)
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const entriesDDL = `
CREATE TABLE IF NOT EXISTS entries (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	medium         TEXT,
	type           TEXT,
	season         TEXT,
	platform       TEXT,
	language       TEXT,
	episodes       INTEGER,
	length         TEXT,
	price          DOUBLE PRECISION,
	my_rating      DOUBLE PRECISION,
	average_rating DOUBLE PRECISION,
	status         TEXT,
	start_date     TEXT,
	finish_date    TEXT,
	time_taken     TEXT,
	genre          TEXT,
	release_year   TEXT,
	poster_url     TEXT,
	imdb_id        TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
)`

// Migrate creates the schema when it does not exist. The DDL sticks to
// types both backends accept, so one statement serves postgres and sqlite.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, entriesDDL)
	return err
}
