package corpus

import (
	"strings"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
)

// Document is one raw match summary as delivered by a source.
type Document struct {
	ID  string
	Raw []byte
}

type FailureKind string

const (
	FailureParse      FailureKind = "parse"
	FailureStructural FailureKind = "structural"
	FailureExtraction FailureKind = "extraction"
	FailureDuplicate  FailureKind = "duplicate"
)

type Failure struct {
	DocumentID string
	Kind       FailureKind
	Reason     string
}

// Report describes one corpus pass.
type Report struct {
	DocumentsSeen   int
	EventsExtracted int
	TeamRecords     int
	PlayerRecords   int
	Failures        []Failure
	StartedAt       time.Time
	FinishedAt      time.Time
}

func (r Report) NothingToPersist() bool {
	return r.EventsExtracted == 0
}

func (r Report) FailedDocumentIDs() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.DocumentID)
	}
	return out
}

// Result holds the three built tables of a corpus pass.
type Result struct {
	Events  table.Table
	Teams   table.Table
	Players table.Table
	Report  Report
}

func (r Result) Tables() []table.Table {
	return []table.Table{r.Events, r.Teams, r.Players}
}

// DocumentIDForEvent is the storage id of an event summary, e.g.
// "sr:sport_event:1" becomes "sr_sport_event_1.xml".
func DocumentIDForEvent(eventID string) string {
	return strings.ReplaceAll(eventID, ":", "_") + ".xml"
}
