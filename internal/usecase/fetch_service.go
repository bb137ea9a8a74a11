package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
)

// ScheduledEvent is one match listed in a season schedule.
type ScheduledEvent struct {
	EventID   string
	StartTime string
	HomeTeam  string
	AwayTeam  string
}

// SummaryProvider reads schedules and match summaries from the data provider.
type SummaryProvider interface {
	ListSeasonSchedule(ctx context.Context, seasonID string) ([]ScheduledEvent, error)
	FetchEventSummary(ctx context.Context, eventID string) ([]byte, error)
}

type FetchConfig struct {
	Workers int
	// Spacing is the minimum delay between two summary requests.
	Spacing      time.Duration
	SkipExisting bool
}

type FetchInput struct {
	SeasonIDs []string
}

type FetchResult struct {
	Seasons    []SeasonFetchResult `json:"seasons"`
	Scheduled  int                 `json:"scheduled"`
	Downloaded int                 `json:"downloaded"`
	Skipped    int                 `json:"skipped"`
	Failed     int                 `json:"failed"`
}

type SeasonFetchResult struct {
	SeasonID   string `json:"season_id"`
	Scheduled  int    `json:"scheduled"`
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Message    string `json:"message,omitempty"`
}

type FetchService struct {
	provider SummaryProvider
	store    corpus.Store
	cfg      FetchConfig
	logger   *logging.Logger
}

func NewFetchService(provider SummaryProvider, store corpus.Store, cfg FetchConfig, logger *logging.Logger) *FetchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Spacing < 0 {
		cfg.Spacing = 0
	}
	return &FetchService{provider: provider, store: store, cfg: cfg, logger: logger}
}

// FetchSeasons downloads the summary of every scheduled match of each season.
// A season whose schedule cannot be read is reported and skipped.
func (s *FetchService) FetchSeasons(ctx context.Context, input FetchInput) (FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FetchService.FetchSeasons")
	defer span.End()

	if s.provider == nil || s.store == nil {
		return FetchResult{}, fmt.Errorf("%w: summary provider and document store are required", ErrInvalidInput)
	}
	seasonIDs := normalizeSeasonIDs(input.SeasonIDs)
	if len(seasonIDs) == 0 {
		return FetchResult{}, fmt.Errorf("%w: at least one season id is required", ErrInvalidInput)
	}

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return FetchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var result FetchResult
	for _, seasonID := range seasonIDs {
		if err := ctx.Err(); err != nil {
			recordSpanError(span, err)
			return result, err
		}
		row, err := s.fetchSeason(ctx, pool, seasonID)
		if err != nil {
			return result, err
		}
		result.Seasons = append(result.Seasons, row)
		result.Scheduled += row.Scheduled
		result.Downloaded += row.Downloaded
		result.Skipped += row.Skipped
		result.Failed += row.Failed
	}

	s.logger.InfoContext(ctx, "fetch finished",
		"seasons", len(result.Seasons),
		"scheduled", result.Scheduled,
		"downloaded", result.Downloaded,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *FetchService) fetchSeason(ctx context.Context, pool *ants.Pool, seasonID string) (SeasonFetchResult, error) {
	row := SeasonFetchResult{SeasonID: seasonID}

	events, err := s.provider.ListSeasonSchedule(ctx, seasonID)
	if err != nil {
		if ctx.Err() != nil {
			return row, ctx.Err()
		}
		s.logger.ErrorContext(ctx, "season schedule unavailable, skipping season", "season_id", seasonID, "error", err)
		row.Message = err.Error()
		return row, nil
	}
	row.Scheduled = len(events)
	if len(events) == 0 {
		s.logger.WarnContext(ctx, "season schedule has no events", "season_id", seasonID)
		return row, nil
	}

	var downloaded, skipped, failed atomic.Int32
	var workers sync.WaitGroup
	var ticker *time.Ticker
	if s.cfg.Spacing > 0 {
		ticker = time.NewTicker(s.cfg.Spacing)
		defer ticker.Stop()
	}

	for idx, ev := range events {
		ev := ev
		if idx > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				workers.Wait()
				return row, ctx.Err()
			case <-ticker.C:
			}
		}

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			switch s.fetchEvent(ctx, seasonID, ev) {
			case fetchDownloaded:
				downloaded.Add(1)
			case fetchSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return row, fmt.Errorf("submit download to worker pool: %w", err)
		}
	}
	workers.Wait()

	row.Downloaded = int(downloaded.Load())
	row.Skipped = int(skipped.Load())
	row.Failed = int(failed.Load())
	s.logger.InfoContext(ctx, "season fetched",
		"season_id", seasonID,
		"downloaded", row.Downloaded,
		"skipped", row.Skipped,
		"failed", row.Failed,
		"scheduled", row.Scheduled,
	)
	return row, nil
}

type fetchOutcome int

const (
	fetchFailed fetchOutcome = iota
	fetchDownloaded
	fetchSkipped
)

func (s *FetchService) fetchEvent(ctx context.Context, seasonID string, ev ScheduledEvent) fetchOutcome {
	docID := corpus.DocumentIDForEvent(ev.EventID)
	if s.cfg.SkipExisting {
		exists, err := s.store.Has(ctx, docID)
		if err != nil {
			s.logger.WarnContext(ctx, "check stored summary failed", "document_id", docID, "error", err)
		} else if exists {
			return fetchSkipped
		}
	}

	raw, err := s.provider.FetchEventSummary(ctx, ev.EventID)
	if err != nil {
		s.logger.ErrorContext(ctx, "download summary failed",
			"season_id", seasonID,
			"event_id", ev.EventID,
			"home", ev.HomeTeam,
			"away", ev.AwayTeam,
			"error", err,
		)
		return fetchFailed
	}
	if err := s.store.Put(ctx, docID, raw); err != nil {
		s.logger.ErrorContext(ctx, "store summary failed", "document_id", docID, "error", err)
		return fetchFailed
	}

	s.logger.InfoContext(ctx, "summary saved",
		"event_id", ev.EventID,
		"document_id", docID,
		"home", ev.HomeTeam,
		"away", ev.AwayTeam,
	)
	return fetchDownloaded
}

func normalizeSeasonIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
