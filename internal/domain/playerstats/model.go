package playerstats

import "github.com/riskibarqy/matchstats-etl/internal/domain/table"

// Record is one player's statistics for one match, tagged with the team the
// player appeared for.
type Record struct {
	EventID       string
	TeamID        *string
	TeamName      *string
	TeamQualifier string
	PlayerID      *string
	PlayerName    *string
	// Starter is the raw attribute value; only the literal "true" means a
	// starting appearance.
	Starter *string
	Stats   table.Attrs
}

const (
	ColumnEventID       = "event_id"
	ColumnTeamID        = "team_id"
	ColumnTeamName      = "team_name"
	ColumnTeamQualifier = "team_qualifier"
	ColumnPlayerID      = "player_id"
	ColumnPlayerName    = "player_name"
	ColumnStarter       = "starter"
)

const TableName = "player_statistics"

const starterTrue = "true"

var TableSpec = table.Spec{
	NonNumeric: []string{
		ColumnEventID,
		ColumnTeamID,
		ColumnTeamName,
		ColumnTeamQualifier,
		ColumnPlayerID,
		ColumnPlayerName,
	},
	Booleans: []string{ColumnStarter},
}

func (r Record) Row() table.Row {
	eventID, qualifier := r.EventID, r.TeamQualifier
	return table.Row{
		{Name: ColumnEventID, Value: &eventID},
		{Name: ColumnTeamID, Value: r.TeamID},
		{Name: ColumnTeamName, Value: r.TeamName},
		{Name: ColumnTeamQualifier, Value: &qualifier},
		{Name: ColumnPlayerID, Value: r.PlayerID},
		{Name: ColumnPlayerName, Value: r.PlayerName},
		{Name: ColumnStarter, Value: r.Starter},
	}.Merge(r.Stats)
}

func (r Record) IsStarter() bool {
	return r.Starter != nil && *r.Starter == starterTrue
}
