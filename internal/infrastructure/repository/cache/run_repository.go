package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	basecache "github.com/riskibarqy/matchstats-etl/internal/platform/cache"
)

const recentRunsPrefix = "runs:recent:"

// RunRepository caches run history reads and drops them on every save.
type RunRepository struct {
	next  corpus.RunRepository
	cache *basecache.Store[[]corpus.Run]
}

func NewRunRepository(next corpus.RunRepository, cache *basecache.Store[[]corpus.Run]) *RunRepository {
	return &RunRepository{next: next, cache: cache}
}

func (r *RunRepository) SaveRun(ctx context.Context, run corpus.Run) error {
	if err := r.next.SaveRun(ctx, run); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, recentRunsPrefix)
	return nil
}

func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]corpus.Run, error) {
	key := recentRunsPrefix + strconv.Itoa(limit)
	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]corpus.Run, error) {
		items, err := r.next.ListRecentRuns(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]corpus.Run(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]corpus.Run(nil), items...), nil
}
