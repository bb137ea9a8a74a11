package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	corpusmock "github.com/riskibarqy/matchstats-etl/internal/mocks/domain/corpus"
	tablemock "github.com/riskibarqy/matchstats-etl/internal/mocks/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type staticIDs string

func (s staticIDs) NewID() (string, error) { return string(s), nil }

func processedCorpus(t *testing.T, n int) corpus.Result {
	t.Helper()
	result, err := NewCorpusService(nil, logging.NewNop()).ProcessCorpus(context.Background(), corpusOf(n))
	if err != nil {
		t.Fatalf("process corpus: %v", err)
	}
	return result
}

func tableNamed(name string) interface{} {
	return mock.MatchedBy(func(tbl table.Table) bool { return tbl.Name == name })
}

func TestExportService_WritesEveryTableToEverySink(t *testing.T) {
	t.Parallel()

	result := processedCorpus(t, 2)
	runs := corpusmock.NewRunRepository(t)
	runs.On("SaveRun", mock.Anything, mock.MatchedBy(func(r corpus.Run) bool {
		return r.ID == "run-1" && r.Source == "games" && r.Report.EventsExtracted == 2
	})).Return(nil).Once()

	var sinks []table.Sink
	for _, name := range []string{"csv", "sqlite"} {
		sink := tablemock.NewSink(t)
		sink.On("Name").Return(name)
		for _, tbl := range []string{"events", "team_statistics", "player_statistics"} {
			sink.On("Write", mock.Anything, tableNamed(tbl)).Return(nil).Once()
		}
		sinks = append(sinks, sink)
	}

	out, err := NewExportService(sinks, runs, staticIDs("run-1"), logging.NewNop()).
		Export(context.Background(), "games", result)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.RunID != "run-1" || len(out.Written) != 6 {
		t.Fatalf("unexpected export result: run=%s writes=%d", out.RunID, len(out.Written))
	}
	if out.Written[0].Table != "events" || out.Written[0].Rows != 2 {
		t.Fatalf("unexpected first write: %+v", out.Written[0])
	}
}

func TestExportService_SinkFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	result := processedCorpus(t, 1)
	boom := errors.New("disk full")

	broken := tablemock.NewSink(t)
	broken.On("Name").Return("csv")
	broken.On("Write", mock.Anything, tableNamed("events")).Return(boom).Once()

	healthy := tablemock.NewSink(t)
	healthy.On("Name").Return("jsonl")
	healthy.On("Write", mock.Anything, mock.Anything).Return(nil).Times(3)

	out, err := NewExportService([]table.Sink{broken, healthy}, nil, staticIDs("run-2"), logging.NewNop()).
		Export(context.Background(), "games", result)
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(out.Written) != 3 {
		t.Fatalf("expected healthy sink writes to be reported, got %d", len(out.Written))
	}
}

func TestExportService_SkipsEmptyTables(t *testing.T) {
	t.Parallel()

	result := processedCorpus(t, 1)
	result.Players = BuildPlayerStatisticsTable(nil)

	sink := tablemock.NewSink(t)
	sink.On("Name").Return("csv")
	sink.On("Write", mock.Anything, tableNamed("events")).Return(nil).Once()
	sink.On("Write", mock.Anything, tableNamed("team_statistics")).Return(nil).Once()

	out, err := NewExportService([]table.Sink{sink}, nil, staticIDs("run-3"), logging.NewNop()).
		Export(context.Background(), "games", result)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(out.Written) != 2 {
		t.Fatalf("unexpected writes: got=%d want=2", len(out.Written))
	}
}

func TestExportService_NothingToPersistStillRecordsRun(t *testing.T) {
	t.Parallel()

	result, _ := NewCorpusService(nil, logging.NewNop()).ProcessCorpus(context.Background(), nil)
	runs := corpusmock.NewRunRepository(t)
	runs.On("SaveRun", mock.Anything, mock.Anything).Return(nil).Once()

	sink := tablemock.NewSink(t)

	_, err := NewExportService([]table.Sink{sink}, runs, staticIDs("run-4"), logging.NewNop()).
		Export(context.Background(), "games", result)
	if !errors.Is(err, ErrNothingToPersist) {
		t.Fatalf("expected ErrNothingToPersist, got %v", err)
	}
	sink.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestExportService_RequiresSink(t *testing.T) {
	t.Parallel()

	_, err := NewExportService(nil, nil, staticIDs("run-5"), logging.NewNop()).
		Export(context.Background(), "games", processedCorpus(t, 1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExportService_RunSaveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	runs := corpusmock.NewRunRepository(t)
	runs.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	sink := tablemock.NewSink(t)
	sink.On("Name").Return("csv")
	sink.On("Write", mock.Anything, mock.Anything).Return(nil).Times(3)

	if _, err := NewExportService([]table.Sink{sink}, runs, staticIDs("run-6"), logging.NewNop()).
		Export(context.Background(), "games", processedCorpus(t, 1)); err != nil {
		t.Fatalf("export: %v", err)
	}
}
