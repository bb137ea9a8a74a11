package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/matchstats-etl/internal/platform/cache"
)

type countingRuns struct {
	corpus.RunRepository
	lists int
}

func (c *countingRuns) ListRecentRuns(ctx context.Context, limit int) ([]corpus.Run, error) {
	c.lists++
	return c.RunRepository.ListRecentRuns(ctx, limit)
}

func TestRunRepository_CachesUntilSave(t *testing.T) {
	t.Parallel()

	next := &countingRuns{RunRepository: memory.NewRunRepository()}
	repo := NewRunRepository(next, basecache.NewStore[[]corpus.Run](time.Minute))
	ctx := context.Background()

	if err := repo.SaveRun(ctx, corpus.Run{ID: "run-a"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	for i := 0; i < 3; i++ {
		runs, err := repo.ListRecentRuns(ctx, 10)
		if err != nil || len(runs) != 1 {
			t.Fatalf("unexpected list: runs=%d err=%v", len(runs), err)
		}
	}
	if next.lists != 1 {
		t.Fatalf("unexpected backend reads: got=%d want=1", next.lists)
	}

	if err := repo.SaveRun(ctx, corpus.Run{ID: "run-b"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	runs, _ := repo.ListRecentRuns(ctx, 10)
	if len(runs) != 2 {
		t.Fatalf("expected cache to be invalidated, got %d runs", len(runs))
	}
	if next.lists != 2 {
		t.Fatalf("unexpected backend reads: got=%d want=2", next.lists)
	}
}
