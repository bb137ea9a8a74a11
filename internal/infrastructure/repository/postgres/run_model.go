package postgres

import "time"

type runInsertModel struct {
	RunID           string    `db:"run_id"`
	Source          string    `db:"source"`
	DocumentsSeen   int       `db:"documents_seen"`
	EventsExtracted int       `db:"events_extracted"`
	TeamRecords     int       `db:"team_records"`
	PlayerRecords   int       `db:"player_records"`
	FailureCount    int       `db:"failure_count"`
	StartedAt       time.Time `db:"started_at"`
	FinishedAt      time.Time `db:"finished_at"`
}

type runFailureInsertModel struct {
	RunID      string  `db:"run_id"`
	DocumentID string  `db:"document_id"`
	Kind       string  `db:"kind"`
	Reason     *string `db:"reason"`
}

type runTableModel struct {
	RunID           string    `db:"run_id"`
	Source          string    `db:"source"`
	DocumentsSeen   int       `db:"documents_seen"`
	EventsExtracted int       `db:"events_extracted"`
	TeamRecords     int       `db:"team_records"`
	PlayerRecords   int       `db:"player_records"`
	StartedAt       time.Time `db:"started_at"`
	FinishedAt      time.Time `db:"finished_at"`
}

type runFailureTableModel struct {
	RunID      string  `db:"run_id"`
	DocumentID string  `db:"document_id"`
	Kind       string  `db:"kind"`
	Reason     *string `db:"reason"`
}
