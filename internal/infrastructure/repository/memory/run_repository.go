package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
)

// RunRepository keeps run history in process, newest first on read.
type RunRepository struct {
	mu   sync.RWMutex
	runs []corpus.Run
}

func NewRunRepository() *RunRepository {
	return &RunRepository{}
}

func (r *RunRepository) SaveRun(_ context.Context, run corpus.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}

	run.Report.Failures = append([]corpus.Failure(nil), run.Report.Failures...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.runs {
		if item.ID == run.ID {
			r.runs[i] = run
			return nil
		}
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *RunRepository) ListRecentRuns(_ context.Context, limit int) ([]corpus.Run, error) {
	r.mu.RLock()
	out := make([]corpus.Run, 0, len(r.runs))
	out = append(out, r.runs...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Report.StartedAt.After(out[j].Report.StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
