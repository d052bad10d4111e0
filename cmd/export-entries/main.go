package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/ai-accountant/internal/config"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/export"
	"github.com/dvloznov/ai-accountant/internal/jobs"
	"github.com/dvloznov/ai-accountant/internal/ledger"
	"github.com/dvloznov/ai-accountant/internal/logger"
)

func main() {
	log := logger.New()

	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required)")
	dryRun := flag.Bool("dry-run", false, "List the entries without exporting them")
	snapshot := flag.String("snapshot", "", "Bolt snapshot file (or set LEDGER_SNAPSHOT env)")
	configFile := flag.String("config", "", "YAML configuration file with the export settings")
	flag.Parse()

	// Sink settings come from the same file and environment as the API.
	var cfgArgs []string
	if *configFile != "" {
		cfgArgs = append(cfgArgs, "-config", *configFile)
	}
	if *snapshot != "" {
		cfgArgs = append(cfgArgs, "-snapshot", *snapshot)
	}
	cfg, err := config.Load("export-entries", cfgArgs, os.LookupEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if *startDateStr == "" {
		log.Fatal().Msg("Error: --start-date is required")
	}
	if *endDateStr == "" {
		log.Fatal().Msg("Error: --end-date is required")
	}
	startDate, err := civil.ParseDate(*startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}
	endDate, err := civil.ParseDate(*endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		log.Fatal().
			Str("start_date", *startDateStr).
			Str("end_date", *endDateStr).
			Msg("Error: end-date must not be before start-date")
	}
	if cfg.Ledger.SnapshotPath == "" {
		log.Fatal().Msg("Error: --snapshot is required")
	}

	// Create context with timeout so the command doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, err := ledger.NewStore(ledger.WithSnapshot(cfg.Ledger.SnapshotPath), ledger.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer store.Close()

	entries, err := store.ListEntries(ctx, ledger.EntryFilter{Status: domain.EntryStatusApproved})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list entries")
	}
	entries = inRange(entries, startDate, endDate)

	log.Info().
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Int("entries", len(entries)).
		Bool("dry_run", *dryRun).
		Msg("Starting entry export")

	if *dryRun {
		for _, e := range entries {
			fmt.Printf("%s  %s  %s  %s\n", e.ID, e.Date, e.TotalDebit.StringFixed(2), e.Description)
		}
		return
	}

	sinks, closeSinks, err := export.NewSinks(ctx, cfg.Export, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export sinks")
	}
	defer closeSinks()
	if len(sinks) == 0 {
		log.Fatal().Msg("Error: no export sink configured")
	}
	exporter := export.NewExporter(log, sinks...)

	failed := 0
	for _, e := range entries {
		job := &jobs.ExportEntryJob{JobID: "backfill-" + e.ID, EntryID: e.ID, Entry: e, CreatedAt: time.Now()}
		if err := exporter.Handle(ctx, job); err != nil {
			failed++
			log.Error().Err(err).Str("entry_id", e.ID).Msg("Export failed")
		}
	}
	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Export finished with failures")
	}

	fmt.Printf("Exported %d entries.\n", len(entries))
}

func inRange(entries []domain.AccountingEntry, start, end civil.Date) []domain.AccountingEntry {
	var out []domain.AccountingEntry
	for _, e := range entries {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}
