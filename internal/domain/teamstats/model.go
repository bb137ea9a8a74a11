package teamstats

import (
	"github.com/riskibarqy/matchstats-etl/internal/domain/event"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
)

// Record is one competitor's aggregated statistics for one match.
type Record struct {
	EventID       string
	TeamID        *string
	TeamName      *string
	TeamQualifier string
	EventStatus   *string
	MatchStatus   *string
	Score         *string
	Stats         table.Attrs
}

const (
	ColumnEventID       = "event_id"
	ColumnTeamID        = "team_id"
	ColumnTeamName      = "team_name"
	ColumnTeamQualifier = "team_qualifier"
	ColumnEventStatus   = "event_status"
	ColumnMatchStatus   = "match_status"
	ColumnScore         = "score"
)

const TableName = "team_statistics"

var TableSpec = table.Spec{
	NonNumeric: []string{
		ColumnEventID,
		ColumnTeamID,
		ColumnTeamName,
		ColumnTeamQualifier,
		ColumnEventStatus,
		ColumnMatchStatus,
	},
}

func (r Record) Row() table.Row {
	eventID, qualifier := r.EventID, r.TeamQualifier
	return table.Row{
		{Name: ColumnEventID, Value: &eventID},
		{Name: ColumnTeamID, Value: r.TeamID},
		{Name: ColumnTeamName, Value: r.TeamName},
		{Name: ColumnTeamQualifier, Value: &qualifier},
		{Name: ColumnEventStatus, Value: r.EventStatus},
		{Name: ColumnMatchStatus, Value: r.MatchStatus},
		{Name: ColumnScore, Value: r.Score},
	}.Merge(r.Stats)
}

func (r Record) IsHome() bool {
	return r.TeamQualifier == event.QualifierHome
}
