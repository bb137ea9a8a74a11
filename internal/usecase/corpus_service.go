package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/domain/event"
	"github.com/riskibarqy/matchstats-etl/internal/domain/playerstats"
	"github.com/riskibarqy/matchstats-etl/internal/domain/teamstats"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// CorpusService drives extraction over a whole corpus, one document at a
// time and in input order.
type CorpusService struct {
	extractor *Extractor
	logger    *logging.Logger
	now       func() time.Time
}

func NewCorpusService(extractor *Extractor, logger *logging.Logger) *CorpusService {
	if logger == nil {
		logger = logging.Default()
	}
	if extractor == nil {
		extractor = NewExtractor(logger)
	}
	return &CorpusService{extractor: extractor, logger: logger, now: time.Now}
}

// ProcessSource loads the documents of src and processes them.
func (s *CorpusService) ProcessSource(ctx context.Context, src corpus.Source) (corpus.Result, error) {
	if src == nil {
		return corpus.Result{}, fmt.Errorf("%w: corpus source is required", ErrInvalidInput)
	}
	docs, err := src.Documents(ctx)
	if err != nil {
		return corpus.Result{}, fmt.Errorf("list corpus documents: %w", err)
	}
	return s.ProcessCorpus(ctx, docs)
}

// ProcessCorpus extracts every document and builds the three tables. Parse
// and structural failures are recorded in the report and skipped; only
// context cancellation aborts the batch.
func (s *CorpusService) ProcessCorpus(ctx context.Context, docs []corpus.Document) (corpus.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CorpusService.ProcessCorpus",
		attribute.Int("corpus.documents", len(docs)),
	)
	defer span.End()

	report := corpus.Report{StartedAt: s.now()}
	var (
		events  []event.Record
		teams   []teamstats.Record
		players []playerstats.Record
	)
	seen := make(map[string]string, len(docs))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			recordSpanError(span, err)
			return corpus.Result{}, err
		}
		report.DocumentsSeen++

		tree, err := LoadDocument(doc.ID, doc.Raw)
		if err != nil {
			s.logger.WarnContext(ctx, "document skipped", "document_id", doc.ID, "error", err)
			report.Failures = append(report.Failures, corpus.Failure{
				DocumentID: doc.ID,
				Kind:       corpus.FailureParse,
				Reason:     err.Error(),
			})
			continue
		}

		out := s.extractor.ExtractDocument(tree)
		if out.Event == nil {
			err := crerr.Wrapf(ErrStructuralAbsence, "document %s: %s", doc.ID, out.Absence)
			s.logger.WarnContext(ctx, "document has no usable event", "document_id", doc.ID, "error", err)
			report.Failures = append(report.Failures, corpus.Failure{
				DocumentID: doc.ID,
				Kind:       corpus.FailureStructural,
				Reason:     out.Absence,
			})
			continue
		}

		if firstDoc, dup := seen[out.Event.EventID]; dup {
			s.logger.WarnContext(ctx, "duplicate event skipped",
				"document_id", doc.ID,
				"event_id", out.Event.EventID,
				"first_document_id", firstDoc,
			)
			report.Failures = append(report.Failures, corpus.Failure{
				DocumentID: doc.ID,
				Kind:       corpus.FailureDuplicate,
				Reason:     fmt.Sprintf("event %s already extracted from %s", out.Event.EventID, firstDoc),
			})
			continue
		}
		seen[out.Event.EventID] = doc.ID

		for _, problem := range out.Problems {
			report.Failures = append(report.Failures, corpus.Failure{
				DocumentID: doc.ID,
				Kind:       corpus.FailureExtraction,
				Reason:     problem.Error(),
			})
		}

		events = append(events, *out.Event)
		teams = append(teams, out.Teams...)
		players = append(players, out.Players...)
	}

	report.EventsExtracted = len(events)
	report.TeamRecords = len(teams)
	report.PlayerRecords = len(players)
	report.FinishedAt = s.now()

	s.logger.InfoContext(ctx, "corpus processed",
		"documents", report.DocumentsSeen,
		"events", report.EventsExtracted,
		"team_records", report.TeamRecords,
		"player_records", report.PlayerRecords,
		"failures", len(report.Failures),
	)

	return corpus.Result{
		Events:  BuildEventsTable(events),
		Teams:   BuildTeamStatisticsTable(teams),
		Players: BuildPlayerStatisticsTable(players),
		Report:  report,
	}, nil
}
