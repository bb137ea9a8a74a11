package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/config"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/riskibarqy/matchstats-etl/internal/usecase"
)

func testConfig(t *testing.T, formats ...string) config.Config {
	t.Helper()
	root := t.TempDir()
	return config.Config{
		AppEnv:        config.EnvDev,
		GamesDir:      filepath.Join(root, "games"),
		OutputDir:     filepath.Join(root, "output"),
		OutputFormats: formats,
		SQLitePath:    filepath.Join(root, "output", "matchstats.db"),
		RunCacheTTL:   time.Minute,
		RunLedger:     config.RunLedgerSQLite,
	}
}

func TestNew_BuildsFileAndSQLiteSinks(t *testing.T) {
	cfg := testConfig(t, config.OutputCSV, config.OutputJSONL, config.OutputSQLite)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.Corpus == nil || a.Export == nil || a.Runs == nil {
		t.Fatalf("expected wired services")
	}
	if len(a.closers) != 1 {
		t.Fatalf("expected sqlite handle to be tracked, got %d closers", len(a.closers))
	}
}

func TestNew_PostgresOutputRequiresDatabase(t *testing.T) {
	cfg := testConfig(t, config.OutputPostgres)

	_, err := New(context.Background(), cfg, logging.NewNop())
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewFetchService_RequiresAPIKey(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, config.OutputCSV), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := a.NewFetchService(); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	a.Config.SportradarAPIKey = "key"
	a.Config.SportradarWorkers = 1
	if svc, err := a.NewFetchService(); err != nil || svc == nil {
		t.Fatalf("expected fetch service, err=%v", err)
	}
}

func TestNew_DefaultRunLedgerSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, config.OutputCSV)
	ctx := context.Background()

	first, err := New(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	started := time.Date(2024, 8, 16, 19, 0, 0, 0, time.UTC)
	err = first.Runs.SaveRun(ctx, corpus.Run{
		ID:     "run-1",
		Source: cfg.GamesDir,
		Report: corpus.Report{DocumentsSeen: 2, EventsExtracted: 2, StartedAt: started, FinishedAt: started},
	})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close app: %v", err)
	}

	second, err := New(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	history, err := second.RunHistory()
	if err != nil {
		t.Fatalf("run history: %v", err)
	}
	runs, err := history.ListRecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" || runs[0].Report.EventsExtracted != 2 {
		t.Fatalf("unexpected runs after restart: %+v", runs)
	}
}

func TestRunHistory_RejectsMemoryLedger(t *testing.T) {
	cfg := testConfig(t, config.OutputCSV)
	cfg.RunLedger = config.RunLedgerMemory

	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if len(a.closers) != 0 {
		t.Fatalf("memory ledger must not open sqlite, got %d closers", len(a.closers))
	}
	if _, err := a.RunHistory(); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
