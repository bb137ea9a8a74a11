package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
	"github.com/riskibarqy/matchstats-etl/internal/domain/event"
	"github.com/riskibarqy/matchstats-etl/internal/domain/playerstats"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
)

type Summary struct {
	Documents int           `json:"documents"`
	Failures  int           `json:"failures"`
	Events    EventSummary  `json:"events"`
	Teams     TeamSummary   `json:"team_statistics"`
	Players   PlayerSummary `json:"player_statistics"`
}

type EventSummary struct {
	Total              int           `json:"total"`
	UniqueSeasons      int           `json:"unique_seasons"`
	UniqueCompetitions int           `json:"unique_competitions"`
	UniqueTeams        int           `json:"unique_teams"`
	FirstStart         *time.Time    `json:"first_start,omitempty"`
	LastStart          *time.Time    `json:"last_start,omitempty"`
	PerSeason          []SeasonCount `json:"per_season"`
}

type SeasonCount struct {
	Season string `json:"season"`
	Events int    `json:"events"`
}

type TeamSummary struct {
	Total    int     `json:"total"`
	Columns  int     `json:"columns"`
	PerEvent float64 `json:"per_event"`
}

type PlayerSummary struct {
	Total         int `json:"total"`
	UniquePlayers int `json:"unique_players"`
	Columns       int `json:"columns"`
	Starters      int `json:"starters"`
	Substitutes   int `json:"substitutes"`
}

// Summarize computes the descriptive report of a corpus result. Null values
// are ignored by every distinct count.
func Summarize(result corpus.Result) Summary {
	out := Summary{
		Documents: result.Report.DocumentsSeen,
		Failures:  len(result.Report.Failures),
	}

	events := result.Events
	out.Events.Total = events.Rows
	out.Events.UniqueSeasons = len(distinctStrings(events, event.ColumnSeasonName))
	out.Events.UniqueCompetitions = len(distinctStrings(events, event.ColumnCompetitionName))
	out.Events.UniqueTeams = len(distinctStrings(events, event.ColumnHomeTeam, event.ColumnAwayTeam))
	out.Events.FirstStart, out.Events.LastStart = timeRange(events, event.ColumnStartTime)
	out.Events.PerSeason = seasonCounts(events)

	teams := result.Teams
	out.Teams.Total = teams.Rows
	out.Teams.Columns = len(teams.Columns)
	if events.Rows > 0 {
		out.Teams.PerEvent = float64(teams.Rows) / float64(events.Rows)
	}

	players := result.Players
	out.Players.Total = players.Rows
	out.Players.Columns = len(players.Columns)
	out.Players.UniquePlayers = len(distinctStrings(players, playerstats.ColumnPlayerID))
	if starter, ok := players.Column(playerstats.ColumnStarter); ok {
		for i := 0; i < players.Rows; i++ {
			if v, _ := starter.Bool(i); v {
				out.Players.Starters++
			} else {
				out.Players.Substitutes++
			}
		}
	}

	return out
}

// Lines renders the summary for terminal output.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("documents: %d (failures: %d)", s.Documents, s.Failures),
		fmt.Sprintf("events: %d", s.Events.Total),
		fmt.Sprintf("  unique seasons: %d", s.Events.UniqueSeasons),
		fmt.Sprintf("  unique competitions: %d", s.Events.UniqueCompetitions),
		fmt.Sprintf("  unique teams: %d", s.Events.UniqueTeams),
	}
	if s.Events.FirstStart != nil && s.Events.LastStart != nil {
		lines = append(lines, fmt.Sprintf("  date range: %s to %s",
			s.Events.FirstStart.Format(time.RFC3339), s.Events.LastStart.Format(time.RFC3339)))
	}
	for _, sc := range s.Events.PerSeason {
		lines = append(lines, fmt.Sprintf("  season %s: %d events", sc.Season, sc.Events))
	}
	lines = append(lines,
		fmt.Sprintf("team statistics: %d rows, %d columns, %.1f per event", s.Teams.Total, s.Teams.Columns, s.Teams.PerEvent),
		fmt.Sprintf("player statistics: %d rows, %d columns", s.Players.Total, s.Players.Columns),
		fmt.Sprintf("  unique players: %d", s.Players.UniquePlayers),
		fmt.Sprintf("  starters: %d, substitutes: %d", s.Players.Starters, s.Players.Substitutes),
	)
	return lines
}

func distinctStrings(t table.Table, columns ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		for i := 0; i < t.Rows; i++ {
			if v, ok := col.String(i); ok {
				out[v] = struct{}{}
			}
		}
	}
	return out
}

func timeRange(t table.Table, column string) (*time.Time, *time.Time) {
	col, ok := t.Column(column)
	if !ok {
		return nil, nil
	}
	var first, last *time.Time
	for i := 0; i < t.Rows; i++ {
		ts, ok := col.Time(i)
		if !ok {
			continue
		}
		if first == nil || ts.Before(*first) {
			v := ts
			first = &v
		}
		if last == nil || ts.After(*last) {
			v := ts
			last = &v
		}
	}
	return first, last
}

// seasonCounts orders seasons by event count, most frequent first.
func seasonCounts(t table.Table) []SeasonCount {
	col, ok := t.Column(event.ColumnSeasonName)
	if !ok {
		return nil
	}
	counts := make(map[string]int)
	for i := 0; i < t.Rows; i++ {
		if v, ok := col.String(i); ok {
			counts[v]++
		}
	}
	out := make([]SeasonCount, 0, len(counts))
	for season, n := range counts {
		out = append(out, SeasonCount{Season: season, Events: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Events != out[j].Events {
			return out[i].Events > out[j].Events
		}
		return out[i].Season < out[j].Season
	})
	return out
}
