package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchstats-etl/external/sportradar"
	"github.com/riskibarqy/matchstats-etl/internal/config"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/filesink"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/filestore"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/sqlite"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/sqltable"
	basecache "github.com/riskibarqy/matchstats-etl/internal/platform/cache"
	idgen "github.com/riskibarqy/matchstats-etl/internal/platform/id"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/riskibarqy/matchstats-etl/internal/platform/resilience"
	"github.com/riskibarqy/matchstats-etl/internal/usecase"
)

// App holds the wired services of one command invocation.
type App struct {
	Config  config.Config
	Logger  *logging.Logger
	Games   *filestore.Directory
	Runs    corpus.RunRepository
	Corpus  *usecase.CorpusService
	Export  *usecase.ExportService
	closers []func() error
	lite    *sqlx.DB
}

// New wires the build pipeline: games directory, extractor, sinks and run
// history. Database handles are opened only for the outputs that need them.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{
		Config: cfg,
		Logger: logger,
		Games:  filestore.NewDirectory(cfg.GamesDir),
	}

	var pg *sqlx.DB
	if cfg.DBEnabled {
		db, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		pg = db
		a.closers = append(a.closers, db.Close)
	}

	sinks, err := a.buildSinks(pg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	runs, err := a.buildRunRepository(ctx, pg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Runs = cache.NewRunRepository(runs, basecache.NewStore[[]corpus.Run](cfg.RunCacheTTL))

	var extractorOpts []usecase.ExtractorOption
	if cfg.StatsOnly {
		extractorOpts = append(extractorOpts, usecase.WithoutEventMetadata())
	}
	a.Corpus = usecase.NewCorpusService(usecase.NewExtractor(logger, extractorOpts...), logger)
	a.Export = usecase.NewExportService(sinks, a.Runs, idgen.NewRandomGenerator(), logger)
	return a, nil
}

func (a *App) buildSinks(pg *sqlx.DB) ([]table.Sink, error) {
	cfg := a.Config
	opts := []sqltable.Option{sqltable.WithTablePrefix(cfg.TablePrefix), sqltable.WithLogger(a.Logger)}

	var sinks []table.Sink
	for _, format := range cfg.OutputFormats {
		switch format {
		case config.OutputCSV:
			sinks = append(sinks, filesink.NewCSV(cfg.OutputDir, a.Logger))
		case config.OutputJSONL:
			sinks = append(sinks, filesink.NewJSONLines(cfg.OutputDir, a.Logger))
		case config.OutputSQLite:
			db, err := a.sqliteDB()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sqlite.NewTableSink(db, opts...))
		case config.OutputPostgres:
			if pg == nil {
				return nil, fmt.Errorf("%w: postgres output requires DB_ENABLED=true", usecase.ErrInvalidInput)
			}
			sinks = append(sinks, postgres.NewTableSink(pg, opts...))
		default:
			return nil, fmt.Errorf("%w: unknown output format %q", usecase.ErrInvalidInput, format)
		}
	}
	return sinks, nil
}

// buildRunRepository picks the run ledger: postgres when the database is
// enabled, otherwise the sqlite file at SQLITE_PATH unless RUN_LEDGER=memory.
func (a *App) buildRunRepository(ctx context.Context, pg *sqlx.DB) (corpus.RunRepository, error) {
	if pg != nil {
		return postgres.NewRunRepository(pg), nil
	}
	if a.Config.RunLedger == config.RunLedgerMemory {
		return memory.NewRunRepository(), nil
	}

	db, err := a.sqliteDB()
	if err != nil {
		return nil, err
	}
	runs := sqlite.NewRunRepository(db)
	if err := runs.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return runs, nil
}

// sqliteDB opens the sqlite file once; the table sink and the run ledger
// share the handle.
func (a *App) sqliteDB() (*sqlx.DB, error) {
	if a.lite != nil {
		return a.lite, nil
	}
	db, err := sqlite.Open(a.Config.SQLitePath)
	if err != nil {
		return nil, err
	}
	a.lite = db
	a.closers = append(a.closers, db.Close)
	return db, nil
}

// RunHistory returns the run ledger for listing. An in-process ledger starts
// empty on every invocation, so listing from it is rejected.
func (a *App) RunHistory() (corpus.RunRepository, error) {
	if !a.Config.DBEnabled && a.Config.RunLedger == config.RunLedgerMemory {
		return nil, fmt.Errorf("%w: run history is not kept with RUN_LEDGER=memory", usecase.ErrInvalidInput)
	}
	return a.Runs, nil
}

// NewFetchService wires the sportradar client to the games directory.
func (a *App) NewFetchService() (*usecase.FetchService, error) {
	cfg := a.Config
	if cfg.SportradarAPIKey == "" {
		return nil, fmt.Errorf("%w: SPORTRADAR_API_KEY is required for fetch", usecase.ErrInvalidInput)
	}

	client := sportradar.NewClient(sportradar.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.SportradarTimeout},
		BaseURL:    cfg.SportradarBaseURL,
		APIKey:     cfg.SportradarAPIKey,
		Timeout:    cfg.SportradarTimeout,
		MaxRetries: cfg.SportradarMaxRetries,
		RetryDelay: cfg.SportradarRetryDelay,
		Logger:     a.Logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportradarCircuitEnabled,
			FailureThreshold: cfg.SportradarCircuitFailureCount,
			OpenTimeout:      cfg.SportradarCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportradarCircuitHalfOpenMaxReq,
		},
	})

	return usecase.NewFetchService(client, a.Games, usecase.FetchConfig{
		Workers:      cfg.SportradarWorkers,
		Spacing:      cfg.SportradarDownloadSpacing,
		SkipExisting: cfg.SportradarSkipExisting,
	}, a.Logger), nil
}

// Close releases database handles in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.lite = nil
	return errors.Join(errs...)
}
