package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	qb "github.com/riskibarqy/matchstats-etl/internal/platform/querybuilder"
)

const (
	runsTable        = "etl_runs"
	runFailuresTable = "etl_run_failures"
)

type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) SaveRun(ctx context.Context, run corpus.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	report := run.Report
	query, args, err := qb.InsertModel(runsTable, runInsertModel{
		RunID:           run.ID,
		Source:          run.Source,
		DocumentsSeen:   report.DocumentsSeen,
		EventsExtracted: report.EventsExtracted,
		TeamRecords:     report.TeamRecords,
		PlayerRecords:   report.PlayerRecords,
		FailureCount:    len(report.Failures),
		StartedAt:       report.StartedAt.UTC(),
		FinishedAt:      report.FinishedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert run query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run id=%s: %w", run.ID, err)
	}

	if len(report.Failures) > 0 {
		failures := make([]runFailureInsertModel, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, runFailureInsertModel{
				RunID:      run.ID,
				DocumentID: f.DocumentID,
				Kind:       string(f.Kind),
				Reason:     nullableString(f.Reason),
			})
		}
		query, args, err := qb.InsertModels(runFailuresTable, failures, "")
		if err != nil {
			return fmt.Errorf("build insert run failures query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert run failures id=%s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run tx: %w", err)
	}
	return nil
}

func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]corpus.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := qb.Select(
		"run_id", "source", "documents_seen", "events_extracted",
		"team_records", "player_records", "started_at", "finished_at",
	).
		From(runsTable).
		OrderBy("started_at DESC", "run_id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list runs query: %w", err)
	}

	var rows []runTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RunID)
	}
	failures, err := r.listFailures(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]corpus.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, corpus.Run{
			ID:     row.RunID,
			Source: row.Source,
			Report: corpus.Report{
				DocumentsSeen:   row.DocumentsSeen,
				EventsExtracted: row.EventsExtracted,
				TeamRecords:     row.TeamRecords,
				PlayerRecords:   row.PlayerRecords,
				Failures:        failures[row.RunID],
				StartedAt:       row.StartedAt,
				FinishedAt:      row.FinishedAt,
			},
		})
	}
	return out, nil
}

func (r *RunRepository) listFailures(ctx context.Context, runIDs []string) (map[string][]corpus.Failure, error) {
	query, args, err := qb.Select("run_id", "document_id", "kind", "reason").
		From(runFailuresTable).
		Where(qb.In("run_id", toAnySlice(runIDs))).
		OrderBy("run_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list run failures query: %w", err)
	}

	var rows []runFailureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list run failures: %w", err)
	}

	out := make(map[string][]corpus.Failure, len(runIDs))
	for _, row := range rows {
		out[row.RunID] = append(out[row.RunID], corpus.Failure{
			DocumentID: row.DocumentID,
			Kind:       corpus.FailureKind(row.Kind),
			Reason:     stringOrEmpty(row.Reason),
		})
	}
	return out, nil
}
