package corpus

import "context"

// Source lists the documents of a corpus in processing order.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// Run is a persisted record of one corpus pass.
type Run struct {
	ID     string
	Source string
	Report Report
}

// RunRepository keeps the history of corpus passes.
type RunRepository interface {
	SaveRun(ctx context.Context, run Run) error
	ListRecentRuns(ctx context.Context, limit int) ([]Run, error)
}

// Store keeps raw documents by id, typically one file per match summary.
type Store interface {
	Has(ctx context.Context, id string) (bool, error)
	Put(ctx context.Context, id string, raw []byte) error
}
