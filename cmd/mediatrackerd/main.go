package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediatracker/internal/common"
	"mediatracker/internal/enrich"
	"mediatracker/internal/export"
	"mediatracker/internal/ingest"
	"mediatracker/internal/llm/openai"
	"mediatracker/internal/metadata"
	"mediatracker/internal/metadata/omdb"
	"mediatracker/internal/metadata/tmdb"
	"mediatracker/internal/repository"
	"mediatracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, driver, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := repository.Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	entries := repository.NewEntryRepository(db, driver, logger)

	cleaner := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	searchSvc := metadata.NewService(
		tmdb.NewClient(tmdb.Config{APIKey: cfg.Metadata.TMDBAPIKey}, logger),
		omdb.NewClient(omdb.Config{APIKey: cfg.Metadata.OMDBAPIKey}, logger),
		logger,
	)

	enrichSvc := enrich.NewService(entries, searchSvc,
		enrich.NewIntervalPacer(cfg.Enrich.Interval), logger)

	srv := server.New(
		ingest.NewService(cleaner, entries, logger),
		searchSvc,
		enrichSvc,
		export.NewService(entries, logger),
		entries,
		logger,
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
