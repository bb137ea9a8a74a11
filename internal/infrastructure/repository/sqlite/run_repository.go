package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	qb "github.com/riskibarqy/matchstats-etl/internal/platform/querybuilder"
)

const (
	runsTable        = "etl_runs"
	runFailuresTable = "etl_run_failures"
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var runColumns = []string{
	"run_id", "source", "documents_seen", "events_extracted",
	"team_records", "player_records", "failure_count", "started_at", "finished_at",
}

type runRow struct {
	RunID           string `db:"run_id"`
	Source          string `db:"source"`
	DocumentsSeen   int    `db:"documents_seen"`
	EventsExtracted int    `db:"events_extracted"`
	TeamRecords     int    `db:"team_records"`
	PlayerRecords   int    `db:"player_records"`
	FailureCount    int    `db:"failure_count"`
	StartedAt       string `db:"started_at"`
	FinishedAt      string `db:"finished_at"`
}

type runFailureRow struct {
	RunID      string  `db:"run_id"`
	DocumentID string  `db:"document_id"`
	Kind       string  `db:"kind"`
	Reason     *string `db:"reason"`
}

// RunRepository keeps run history next to the sqlite output so it survives
// between invocations without a database server.
type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the ledger tables when they do not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	runs, err := qb.CreateTable(runsTable).
		IfNotExists().
		Column("run_id", "TEXT", "NOT NULL").
		Column("source", "TEXT", "NOT NULL").
		Column("documents_seen", "INTEGER", "NOT NULL").
		Column("events_extracted", "INTEGER", "NOT NULL").
		Column("team_records", "INTEGER", "NOT NULL").
		Column("player_records", "INTEGER", "NOT NULL").
		Column("failure_count", "INTEGER", "NOT NULL").
		Column("started_at", "TEXT", "NOT NULL").
		Column("finished_at", "TEXT", "NOT NULL").
		Constraint("PRIMARY KEY (run_id)").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create runs table: %w", err)
	}
	failures, err := qb.CreateTable(runFailuresTable).
		IfNotExists().
		Column("id", "INTEGER", "PRIMARY KEY AUTOINCREMENT").
		Column("run_id", "TEXT", "NOT NULL").
		Column("document_id", "TEXT", "NOT NULL").
		Column("kind", "TEXT", "NOT NULL").
		Column("reason", "TEXT").
		Constraint(fmt.Sprintf("FOREIGN KEY (run_id) REFERENCES %s (run_id) ON DELETE CASCADE", qb.QuoteIdent(runsTable))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create run failures table: %w", err)
	}

	for _, stmt := range []string{runs, failures} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create run ledger schema: %w", err)
		}
	}
	return nil
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
	query, args, err := qb.InsertInto(runsTable).
		Columns(runColumns...).
		Values(
			run.ID,
			run.Source,
			report.DocumentsSeen,
			report.EventsExtracted,
			report.TeamRecords,
			report.PlayerRecords,
			len(report.Failures),
			report.StartedAt.UTC().Format(timeLayout),
			report.FinishedAt.UTC().Format(timeLayout),
		).
		PlaceholderFormat(qb.Question).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert run query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run id=%s: %w", run.ID, err)
	}

	if len(report.Failures) > 0 {
		insert := qb.InsertInto(runFailuresTable).
			Columns("run_id", "document_id", "kind", "reason").
			PlaceholderFormat(qb.Question)
		for _, f := range report.Failures {
			insert.Values(run.ID, f.DocumentID, string(f.Kind), nullableString(f.Reason))
		}
		query, args, err := insert.ToSQL()
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

	query, args, err := qb.Select(runColumns...).
		From(runsTable).
		OrderBy("started_at DESC", "run_id DESC").
		Limit(limit).
		PlaceholderFormat(qb.Question).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list runs query: %w", err)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RunID)
	}
	failures, err := r.listFailures(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]corpus.Run, 0, len(rows))
	for _, row := range rows {
		startedAt, err := time.Parse(timeLayout, row.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("decode started_at run id=%s: %w", row.RunID, err)
		}
		finishedAt, err := time.Parse(timeLayout, row.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("decode finished_at run id=%s: %w", row.RunID, err)
		}
		out = append(out, corpus.Run{
			ID:     row.RunID,
			Source: row.Source,
			Report: corpus.Report{
				DocumentsSeen:   row.DocumentsSeen,
				EventsExtracted: row.EventsExtracted,
				TeamRecords:     row.TeamRecords,
				PlayerRecords:   row.PlayerRecords,
				Failures:        failures[row.RunID],
				StartedAt:       startedAt,
				FinishedAt:      finishedAt,
			},
		})
	}
	return out, nil
}

func (r *RunRepository) listFailures(ctx context.Context, runIDs []any) (map[string][]corpus.Failure, error) {
	query, args, err := qb.Select("run_id", "document_id", "kind", "reason").
		From(runFailuresTable).
		Where(qb.In("run_id", runIDs)).
		OrderBy("run_id", "id").
		PlaceholderFormat(qb.Question).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list run failures query: %w", err)
	}

	var rows []runFailureRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list run failures: %w", err)
	}

	out := make(map[string][]corpus.Failure, len(runIDs))
	for _, row := range rows {
		reason := ""
		if row.Reason != nil {
			reason = *row.Reason
		}
		out[row.RunID] = append(out[row.RunID], corpus.Failure{
			DocumentID: row.DocumentID,
			Kind:       corpus.FailureKind(row.Kind),
			Reason:     reason,
		})
	}
	return out, nil
}

func nullableString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
