// import-batch imports a tabular text file end to end: clean (optionally
// through the LLM), persist, enrich from the metadata providers, and write
// an XLSX alongside the input.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediatracker/internal/common"
	"mediatracker/internal/enrich"
	"mediatracker/internal/export"
	"mediatracker/internal/ingest"
	"mediatracker/internal/llm"
	"mediatracker/internal/llm/openai"
	"mediatracker/internal/metadata"
	"mediatracker/internal/metadata/omdb"
	"mediatracker/internal/metadata/tmdb"
	"mediatracker/internal/repository"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in       = flag.String("in", "", "tabular text file to import (required)")
		out      = flag.String("out", "", "output XLSX path (defaults next to the input)")
		medium   = flag.String("medium", "", "default medium hint for the cleaning stage")
		useLLM   = flag.Bool("llm", false, "route the text through the LLM cleaning stage")
		doEnrich = flag.Bool("enrich", true, "enrich imported entries from metadata providers")
	)
	flag.Parse()

	if *in == "" {
		printError("Error: --in is required\n")
		os.Exit(1)
	}
	if *out == "" {
		base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
		*out = filepath.Join(filepath.Dir(*in), base+".xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	raw, err := os.ReadFile(*in)
	if err != nil {
		logger.Error("failed to read input file", "path", *in, "error", err)
		os.Exit(1)
	}

	db, driver, err := repository.Open(ctx, repository.Config{DSN: cfg.Database.DSN}, logger)
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
	ingestSvc := ingest.NewService(cleaner, entries, logger)

	result := importResult(ctx, ingestSvc, string(raw), *medium, *useLLM, logger)
	fmt.Printf("imported %d entries (%d rows dropped)\n",
		len(result.entries), result.errors)

	if *doEnrich && len(result.entries) > 0 {
		searchSvc := metadata.NewService(
			tmdb.NewClient(tmdb.Config{APIKey: cfg.Metadata.TMDBAPIKey}, logger),
			omdb.NewClient(omdb.Config{APIKey: cfg.Metadata.OMDBAPIKey}, logger),
			logger,
		)
		enrichSvc := enrich.NewService(entries, searchSvc,
			enrich.NewIntervalPacer(cfg.Enrich.Interval), logger)

		report, err := enrichSvc.Run(ctx, func(current, total int, title string) {
			fmt.Printf("enriching %d/%d: %s\n", current, total, title)
		})
		if err != nil {
			logger.Warn("enrichment incomplete", "error", err)
		}
		fmt.Printf("enriched %d/%d entries (%d failed, %d skipped)\n",
			report.Succeeded, report.Attempted, report.Failed, report.Skipped)
	}

	exportSvc := export.NewService(entries, logger)
	data, err := exportSvc.ExportEntriesXLSX(ctx)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

type summary struct {
	entries []string
	errors  int
}

func importResult(ctx context.Context, svc *ingest.Service, raw, medium string, useLLM bool, logger *slog.Logger) summary {
	var (
		titles []string
		errs   int
	)
	if useLLM {
		result, err := svc.CleanAndImport(ctx, llm.CleanRequest{
			RawText:       raw,
			DefaultMedium: medium,
		})
		if err != nil {
			logger.Error("clean and import failed", "error", err)
			os.Exit(1)
		}
		for _, e := range result.Entries {
			titles = append(titles, e.Title)
		}
		errs = len(result.Errors)
	} else {
		result, err := svc.ImportText(ctx, raw)
		if err != nil {
			logger.Error("import failed", "error", err)
			os.Exit(1)
		}
		for _, e := range result.Entries {
			titles = append(titles, e.Title)
		}
		errs = len(result.Errors)
	}
	return summary{entries: titles, errors: errs}
}
