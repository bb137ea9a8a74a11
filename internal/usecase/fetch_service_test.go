package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	corpusmock "github.com/riskibarqy/matchstats-etl/internal/mocks/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type fakeProvider struct {
	mu        sync.Mutex
	schedules map[string][]ScheduledEvent
	broken    map[string]bool
	fetched   []string
}

func (p *fakeProvider) ListSeasonSchedule(_ context.Context, seasonID string) ([]ScheduledEvent, error) {
	events, ok := p.schedules[seasonID]
	if !ok {
		return nil, errors.New("season not found")
	}
	return events, nil
}

func (p *fakeProvider) FetchEventSummary(_ context.Context, eventID string) ([]byte, error) {
	p.mu.Lock()
	p.fetched = append(p.fetched, eventID)
	p.mu.Unlock()
	if p.broken[eventID] {
		return nil, errors.New("upstream 500")
	}
	return []byte(matchSummaryXML(eventID)), nil
}

type memoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (s *memoryStore) Has(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	return ok, nil
}

func (s *memoryStore) Put(_ context.Context, id string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = make(map[string][]byte)
	}
	s.docs[id] = raw
	return nil
}

func TestFetchService_DownloadsEverySeason(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		schedules: map[string][]ScheduledEvent{
			"sr:season:1": {
				{EventID: "sr:sport_event:1", HomeTeam: "A", AwayTeam: "B"},
				{EventID: "sr:sport_event:2", HomeTeam: "C", AwayTeam: "D"},
			},
			"sr:season:2": {
				{EventID: "sr:sport_event:3", HomeTeam: "A", AwayTeam: "C"},
			},
		},
		broken: map[string]bool{"sr:sport_event:3": true},
	}
	store := &memoryStore{}

	svc := NewFetchService(provider, store, FetchConfig{Workers: 2}, logging.NewNop())
	got, err := svc.FetchSeasons(context.Background(), FetchInput{
		SeasonIDs: []string{"sr:season:1", " sr:season:1 ", "sr:season:missing", "sr:season:2"},
	})
	if err != nil {
		t.Fatalf("fetch seasons: %v", err)
	}

	if len(got.Seasons) != 3 {
		t.Fatalf("unexpected season count: got=%d want=3", len(got.Seasons))
	}
	if got.Scheduled != 3 || got.Downloaded != 2 || got.Failed != 1 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Seasons[1].SeasonID != "sr:season:missing" || got.Seasons[1].Message == "" {
		t.Fatalf("expected missing season to be reported: %+v", got.Seasons[1])
	}
	if _, ok := store.docs["sr_sport_event_1.xml"]; !ok {
		t.Fatalf("expected summary to be stored under its document id")
	}
}

func TestFetchService_SkipsExistingDocumentsUsingMockery(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{schedules: map[string][]ScheduledEvent{
		"sr:season:1": {{EventID: "sr:sport_event:1"}, {EventID: "sr:sport_event:2"}},
	}}
	store := corpusmock.NewStore(t)
	store.On("Has", mock.Anything, "sr_sport_event_1.xml").Return(true, nil).Once()
	store.On("Has", mock.Anything, "sr_sport_event_2.xml").Return(false, nil).Once()
	store.On("Put", mock.Anything, "sr_sport_event_2.xml", mock.Anything).Return(nil).Once()

	svc := NewFetchService(provider, store, FetchConfig{Workers: 1, SkipExisting: true}, logging.NewNop())
	got, err := svc.FetchSeasons(context.Background(), FetchInput{SeasonIDs: []string{"sr:season:1"}})
	if err != nil {
		t.Fatalf("fetch seasons: %v", err)
	}
	if got.Skipped != 1 || got.Downloaded != 1 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if len(provider.fetched) != 1 || provider.fetched[0] != "sr:sport_event:2" {
		t.Fatalf("unexpected downloads: %v", provider.fetched)
	}
}

func TestFetchService_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewFetchService(&fakeProvider{}, &memoryStore{}, FetchConfig{}, logging.NewNop())
	if _, err := svc.FetchSeasons(context.Background(), FetchInput{SeasonIDs: []string{" ", ""}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	noStore := NewFetchService(&fakeProvider{}, nil, FetchConfig{}, logging.NewNop())
	if _, err := noStore.FetchSeasons(context.Background(), FetchInput{SeasonIDs: []string{"sr:season:1"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without store, got %v", err)
	}
}

func TestFetchService_StopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewFetchService(&fakeProvider{}, &memoryStore{}, FetchConfig{}, logging.NewNop())
	if _, err := svc.FetchSeasons(ctx, FetchInput{SeasonIDs: []string{"sr:season:1"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
