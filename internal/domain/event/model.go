package event

import "github.com/riskibarqy/matchstats-etl/internal/domain/table"

// Record is the match-level view of one summary document. Every field is the
// raw attribute value, nil when the source node or attribute was missing.
type Record struct {
	EventID         string
	StartTime       *string
	SportID         *string
	SportName       *string
	CategoryID      *string
	CategoryName    *string
	CompetitionID   *string
	CompetitionName *string
	SeasonID        *string
	SeasonName      *string
	RoundNumber     *string
	HomeTeam        *string
	HomeTeamID      *string
	AwayTeam        *string
	AwayTeamID      *string
	VenueName       *string
	VenueCity       *string
	VenueCapacity   *string
	Attendance      *string
	Status          *string
	MatchStatus     *string
	HomeScore       *string
	AwayScore       *string
}

const (
	ColumnEventID         = "event_id"
	ColumnStartTime       = "start_time"
	ColumnSportID         = "sport_id"
	ColumnSportName       = "sport_name"
	ColumnCategoryID      = "category_id"
	ColumnCategoryName    = "category_name"
	ColumnCompetitionID   = "competition_id"
	ColumnCompetitionName = "competition_name"
	ColumnSeasonID        = "season_id"
	ColumnSeasonName      = "season_name"
	ColumnRoundNumber     = "round_number"
	ColumnHomeTeam        = "home_team"
	ColumnHomeTeamID      = "home_team_id"
	ColumnAwayTeam        = "away_team"
	ColumnAwayTeamID      = "away_team_id"
	ColumnVenueName       = "venue_name"
	ColumnVenueCity       = "venue_city"
	ColumnVenueCapacity   = "venue_capacity"
	ColumnAttendance      = "attendance"
	ColumnStatus          = "status"
	ColumnMatchStatus     = "match_status"
	ColumnHomeScore       = "home_score"
	ColumnAwayScore       = "away_score"
)

const TableName = "events"

// TableSpec lists the columns kept as text; round, capacity, attendance and
// scores fall through to numeric coercion.
var TableSpec = table.Spec{
	NonNumeric: []string{
		ColumnEventID,
		ColumnSportID, ColumnSportName,
		ColumnCategoryID, ColumnCategoryName,
		ColumnCompetitionID, ColumnCompetitionName,
		ColumnSeasonID, ColumnSeasonName,
		ColumnHomeTeam, ColumnHomeTeamID,
		ColumnAwayTeam, ColumnAwayTeamID,
		ColumnVenueName, ColumnVenueCity,
		ColumnStatus, ColumnMatchStatus,
	},
	Timestamps: []string{ColumnStartTime},
}

// Row flattens the record in table column order.
func (r Record) Row() table.Row {
	eventID := r.EventID
	return table.Row{
		{Name: ColumnEventID, Value: &eventID},
		{Name: ColumnStartTime, Value: r.StartTime},
		{Name: ColumnSportID, Value: r.SportID},
		{Name: ColumnSportName, Value: r.SportName},
		{Name: ColumnCategoryID, Value: r.CategoryID},
		{Name: ColumnCategoryName, Value: r.CategoryName},
		{Name: ColumnCompetitionID, Value: r.CompetitionID},
		{Name: ColumnCompetitionName, Value: r.CompetitionName},
		{Name: ColumnSeasonID, Value: r.SeasonID},
		{Name: ColumnSeasonName, Value: r.SeasonName},
		{Name: ColumnRoundNumber, Value: r.RoundNumber},
		{Name: ColumnHomeTeam, Value: r.HomeTeam},
		{Name: ColumnHomeTeamID, Value: r.HomeTeamID},
		{Name: ColumnAwayTeam, Value: r.AwayTeam},
		{Name: ColumnAwayTeamID, Value: r.AwayTeamID},
		{Name: ColumnVenueName, Value: r.VenueName},
		{Name: ColumnVenueCity, Value: r.VenueCity},
		{Name: ColumnVenueCapacity, Value: r.VenueCapacity},
		{Name: ColumnAttendance, Value: r.Attendance},
		{Name: ColumnStatus, Value: r.Status},
		{Name: ColumnMatchStatus, Value: r.MatchStatus},
		{Name: ColumnHomeScore, Value: r.HomeScore},
		{Name: ColumnAwayScore, Value: r.AwayScore},
	}
}

// ScoreFor returns the score of the side named by qualifier.
func (r Record) ScoreFor(qualifier string) *string {
	switch qualifier {
	case QualifierHome:
		return r.HomeScore
	case QualifierAway:
		return r.AwayScore
	default:
		return nil
	}
}

const (
	QualifierHome = "home"
	QualifierAway = "away"
)

func ValidQualifier(q string) bool {
	return q == QualifierHome || q == QualifierAway
}
