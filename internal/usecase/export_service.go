package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	idgen "github.com/riskibarqy/matchstats-etl/internal/platform/id"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

type ExportResult struct {
	RunID   string
	Written []TableWrite
}

type TableWrite struct {
	Sink     string
	Table    string
	Rows     int
	Duration time.Duration
}

// ExportService writes corpus tables to every configured sink and records the
// run. Sinks run concurrently; tables within one sink are written in order.
type ExportService struct {
	sinks  []table.Sink
	runs   corpus.RunRepository
	ids    idgen.Generator
	logger *logging.Logger
}

func NewExportService(sinks []table.Sink, runs corpus.RunRepository, ids idgen.Generator, logger *logging.Logger) *ExportService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	return &ExportService{
		sinks:  append([]table.Sink(nil), sinks...),
		runs:   runs,
		ids:    ids,
		logger: logger,
	}
}

// Export records the run, then writes non-empty tables. A result without
// events returns ErrNothingToPersist. Sink failures are joined; a failing sink
// does not stop the others.
func (s *ExportService) Export(ctx context.Context, source string, result corpus.Result) (ExportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExportService.Export")
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return ExportResult{}, fmt.Errorf("generate run id: %w", err)
	}
	out := ExportResult{RunID: runID}

	if s.runs != nil {
		run := corpus.Run{ID: runID, Source: source, Report: result.Report}
		if err := s.runs.SaveRun(ctx, run); err != nil {
			s.logger.WarnContext(ctx, "save run failed", "run_id", runID, "error", err)
		}
	}

	if result.Report.NothingToPersist() {
		return out, crerr.Wrapf(ErrNothingToPersist, "run %s extracted no events", runID)
	}
	if len(s.sinks) == 0 {
		return out, fmt.Errorf("%w: no table sink configured", ErrInvalidInput)
	}

	tables := result.Tables()
	writes := make([][]TableWrite, len(s.sinks))
	p := pool.New().WithErrors().WithContext(ctx)
	for i, sink := range s.sinks {
		i, sink := i, sink
		p.Go(func(ctx context.Context) error {
			for _, t := range tables {
				if t.Empty() {
					s.logger.InfoContext(ctx, "empty table skipped", "sink", sink.Name(), "table", t.Name)
					continue
				}
				start := time.Now()
				if err := sink.Write(ctx, t); err != nil {
					return fmt.Errorf("sink %s table %s: %w", sink.Name(), t.Name, err)
				}
				w := TableWrite{Sink: sink.Name(), Table: t.Name, Rows: t.Rows, Duration: time.Since(start)}
				writes[i] = append(writes[i], w)
				s.logger.InfoContext(ctx, "table written",
					"run_id", runID,
					"sink", w.Sink,
					"table", w.Table,
					"rows", w.Rows,
					"duration", w.Duration,
				)
			}
			return nil
		})
	}
	err = p.Wait()

	for _, w := range writes {
		out.Written = append(out.Written, w...)
	}
	if err != nil {
		recordSpanError(span, err)
		return out, err
	}
	return out, nil
}
