package usecase

import (
	"encoding/xml"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchstats-etl/internal/domain/event"
	"github.com/riskibarqy/matchstats-etl/internal/domain/playerstats"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/domain/teamstats"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/riskibarqy/matchstats-etl/internal/platform/xmltree"
)

// SummaryNamespace is the namespace of soccer-extended v4 match summaries.
const SummaryNamespace = "http://schemas.sportradar.com/sportsapi/soccer-extended/v4"

var summaryNamespaces = map[string]string{"ns": SummaryNamespace}

var (
	pathSportEvent        = xmltree.MustCompile(".//ns:sport_event", summaryNamespaces)
	pathSportEventStatus  = xmltree.MustCompile(".//ns:sport_event_status", summaryNamespaces)
	pathEventContext      = xmltree.MustCompile(".//ns:sport_event_context", summaryNamespaces)
	pathSport             = xmltree.MustCompile(".//ns:sport", summaryNamespaces)
	pathCategory          = xmltree.MustCompile(".//ns:category", summaryNamespaces)
	pathCompetition       = xmltree.MustCompile(".//ns:competition", summaryNamespaces)
	pathSeason            = xmltree.MustCompile(".//ns:season", summaryNamespaces)
	pathRound             = xmltree.MustCompile(".//ns:round", summaryNamespaces)
	pathEventCompetitor   = xmltree.MustCompile(".//ns:competitor", summaryNamespaces)
	pathVenue             = xmltree.MustCompile(".//ns:venue", summaryNamespaces)
	pathAttendance        = xmltree.MustCompile(".//ns:sport_event_conditions//ns:attendance", summaryNamespaces)
	pathTotalsCompetitors = xmltree.MustCompile(".//ns:statistics/ns:totals/ns:competitors/ns:competitor", summaryNamespaces)
	pathPlayers           = xmltree.MustCompile(".//ns:players/ns:player", summaryNamespaces)

	statisticsName = xml.Name{Space: SummaryNamespace, Local: "statistics"}
)

// LoadDocument parses raw markup. Parse failures match ErrDocumentParse and
// carry the document id.
func LoadDocument(id string, raw []byte) (*xmltree.Document, error) {
	doc, err := xmltree.ParseBytes(raw)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "load document %s", id), ErrDocumentParse)
	}
	return doc, nil
}

type ExtractorOption func(*Extractor)

// WithoutEventMetadata limits the event step to the identifier and status
// fields. The status node becomes optional in this mode.
func WithoutEventMetadata() ExtractorOption {
	return func(e *Extractor) {
		e.eventMetadata = false
	}
}

// Extraction is everything one document yields. Problems lists recovered
// failures of the team or player walk; the other parts stay usable. Absence
// names the failed structural check when Event is nil.
type Extraction struct {
	Event    *event.Record
	Teams    []teamstats.Record
	Players  []playerstats.Record
	Problems []error
	Absence  string
}

const (
	absenceSportEvent = "sport_event node missing"
	absenceStatus     = "sport_event_status node missing"
	absenceEventID    = "sport_event id missing or empty"
)

type Extractor struct {
	logger        *logging.Logger
	eventMetadata bool
}

func NewExtractor(logger *logging.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Extractor{logger: logger, eventMetadata: true}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Extract returns the event record (nil when the document is unusable) and
// the team and player records that belong to it.
func (e *Extractor) Extract(doc *xmltree.Document) (*event.Record, []teamstats.Record, []playerstats.Record) {
	out := e.ExtractDocument(doc)
	return out.Event, out.Teams, out.Players
}

func (e *Extractor) ExtractDocument(doc *xmltree.Document) Extraction {
	ev, absence := e.locateEvent(doc)
	if ev == nil {
		return Extraction{Absence: absence}
	}

	out := Extraction{Event: ev}
	teams, err := e.ExtractTeams(doc, *ev)
	if err != nil {
		out.Problems = append(out.Problems, err)
	}
	out.Teams = teams

	players, err := e.ExtractPlayers(doc, ev.EventID)
	if err != nil {
		out.Problems = append(out.Problems, err)
	}
	out.Players = players
	return out
}

func (e *Extractor) ExtractEvent(doc *xmltree.Document) *event.Record {
	ev, _ := e.locateEvent(doc)
	return ev
}

func (e *Extractor) locateEvent(doc *xmltree.Document) (*event.Record, string) {
	sportEvent := doc.Find(pathSportEvent)
	status := doc.Find(pathSportEventStatus)
	if sportEvent == nil {
		return nil, absenceSportEvent
	}
	if status == nil && e.eventMetadata {
		return nil, absenceStatus
	}
	eventID, ok := sportEvent.Attr("id")
	if !ok || eventID == "" {
		return nil, absenceEventID
	}

	rec := &event.Record{
		EventID:     eventID,
		Status:      status.AttrPtr("status"),
		MatchStatus: status.AttrPtr("match_status"),
		HomeScore:   status.AttrPtr("home_score"),
		AwayScore:   status.AttrPtr("away_score"),
	}
	if !e.eventMetadata {
		return rec, ""
	}

	rec.StartTime = sportEvent.AttrPtr("start_time")

	eventContext := sportEvent.Find(pathEventContext)
	sport := eventContext.Find(pathSport)
	category := eventContext.Find(pathCategory)
	competition := eventContext.Find(pathCompetition)
	season := eventContext.Find(pathSeason)
	rec.SportID, rec.SportName = sport.AttrPtr("id"), sport.AttrPtr("name")
	rec.CategoryID, rec.CategoryName = category.AttrPtr("id"), category.AttrPtr("name")
	rec.CompetitionID, rec.CompetitionName = competition.AttrPtr("id"), competition.AttrPtr("name")
	rec.SeasonID, rec.SeasonName = season.AttrPtr("id"), season.AttrPtr("name")
	rec.RoundNumber = eventContext.Find(pathRound).AttrPtr("number")

	for _, competitor := range sportEvent.FindAll(pathEventCompetitor) {
		qualifier, _ := competitor.Attr("qualifier")
		switch qualifier {
		case event.QualifierHome:
			rec.HomeTeam, rec.HomeTeamID = competitor.AttrPtr("name"), competitor.AttrPtr("id")
		case event.QualifierAway:
			rec.AwayTeam, rec.AwayTeamID = competitor.AttrPtr("name"), competitor.AttrPtr("id")
		}
	}

	venue := sportEvent.Find(pathVenue)
	rec.VenueName = venue.AttrPtr("name")
	rec.VenueCity = venue.AttrPtr("city_name")
	rec.VenueCapacity = venue.AttrPtr("capacity")
	rec.Attendance = sportEvent.Find(pathAttendance).AttrPtr("count")

	return rec, ""
}

// ExtractTeams walks the totals block. A failure inside the walk is recovered
// and yields no team records for this document.
func (e *Extractor) ExtractTeams(doc *xmltree.Document, ev event.Record) (out []teamstats.Record, err error) {
	defer recoverWalk(e.logger, "team statistics", ev.EventID, &out, &err)

	for _, competitor := range doc.FindAll(pathTotalsCompetitors) {
		qualifier, ok := e.qualifierOf(competitor, ev.EventID)
		if !ok {
			continue
		}
		out = append(out, teamstats.Record{
			EventID:       ev.EventID,
			TeamID:        competitor.AttrPtr("id"),
			TeamName:      competitor.AttrPtr("name"),
			TeamQualifier: qualifier,
			EventStatus:   ev.Status,
			MatchStatus:   ev.MatchStatus,
			Score:         ev.ScoreFor(qualifier),
			Stats:         statisticsOf(competitor),
		})
	}
	return out, nil
}

// ExtractPlayers walks the players under each totals competitor, in document
// order. Failure handling matches ExtractTeams.
func (e *Extractor) ExtractPlayers(doc *xmltree.Document, eventID string) (out []playerstats.Record, err error) {
	defer recoverWalk(e.logger, "player statistics", eventID, &out, &err)

	for _, competitor := range doc.FindAll(pathTotalsCompetitors) {
		qualifier, ok := e.qualifierOf(competitor, eventID)
		if !ok {
			continue
		}
		teamID := competitor.AttrPtr("id")
		teamName := competitor.AttrPtr("name")
		for _, player := range competitor.FindAll(pathPlayers) {
			out = append(out, playerstats.Record{
				EventID:       eventID,
				TeamID:        teamID,
				TeamName:      teamName,
				TeamQualifier: qualifier,
				PlayerID:      player.AttrPtr("id"),
				PlayerName:    player.AttrPtr("name"),
				Starter:       player.AttrPtr("starter"),
				Stats:         statisticsOf(player),
			})
		}
	}
	return out, nil
}

func (e *Extractor) qualifierOf(competitor *xmltree.Node, eventID string) (string, bool) {
	qualifier, _ := competitor.Attr("qualifier")
	if event.ValidQualifier(qualifier) {
		return qualifier, true
	}
	teamID, _ := competitor.Attr("id")
	e.logger.Warn("skipping competitor with unexpected qualifier",
		"event_id", eventID,
		"team_id", teamID,
		"qualifier", qualifier,
	)
	return "", false
}

func recoverWalk[T any](logger *logging.Logger, what, eventID string, out *[]T, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	*out = nil
	*err = fmt.Errorf("extract %s for event %s: %v", what, eventID, rec)
	logger.Error("statistics walk failed", "event_id", eventID, "section", what, "panic", rec)
}

func statisticsOf(n *xmltree.Node) table.Attrs {
	stats := n.Child(statisticsName)
	attrs := stats.Attributes()
	if len(attrs) == 0 {
		return nil
	}
	out := make(table.Attrs, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, table.Attr{Name: a.Name, Value: a.Value})
	}
	return out
}
