package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/playerstats"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/domain/teamstats"
)

func str(v string) *string { return &v }

func TestBuildTable_CoercesColumns(t *testing.T) {
	t.Parallel()

	rows := []table.Row{
		{{Name: "id", Value: str("a")}, {Name: "goals", Value: str("1")}, {Name: "rating", Value: str("7")}, {Name: "at", Value: str("2024-08-16T19:00:00+02:00")}},
		{{Name: "id", Value: str("b")}, {Name: "goals", Value: nil}, {Name: "rating", Value: str("6.5")}, {Name: "at", Value: str("not a date")}},
		{{Name: "id", Value: str("c")}, {Name: "goals", Value: str("x")}, {Name: "rating", Value: str("NaN")}},
	}
	spec := table.Spec{NonNumeric: []string{"id"}, Timestamps: []string{"at"}}

	got := BuildTable("t", rows, spec)
	if got.Rows != 3 || len(got.Columns) != 4 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", got.Rows, len(got.Columns))
	}

	goals, _ := got.Column("goals")
	if goals.Kind != table.KindInt {
		t.Fatalf("unexpected goals kind: %s", goals.Kind)
	}
	if v, ok := goals.Int(0); !ok || v != 1 {
		t.Fatalf("unexpected goals[0]: %d ok=%v", v, ok)
	}
	if !goals.IsNull(1) || !goals.IsNull(2) {
		t.Fatalf("expected null for missing and unparsable goals")
	}

	rating, _ := got.Column("rating")
	if rating.Kind != table.KindFloat {
		t.Fatalf("unexpected rating kind: %s", rating.Kind)
	}
	if v, _ := rating.Float(0); v != 7 {
		t.Fatalf("unexpected rating[0]: %v", v)
	}
	if !rating.IsNull(2) {
		t.Fatalf("expected NaN to become null")
	}

	at, _ := got.Column("at")
	ts, ok := at.Time(0)
	if !ok || !ts.Equal(time.Date(2024, 8, 16, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v ok=%v", ts, ok)
	}
	if !at.IsNull(1) || !at.IsNull(2) {
		t.Fatalf("expected invalid and absent timestamps to be null")
	}

	id, _ := got.Column("id")
	if v, _ := id.String(2); v != "c" {
		t.Fatalf("unexpected id[2]: %q", v)
	}
}

func TestBuildTable_UnionOfColumnsInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	rows := []table.Row{
		{{Name: "event_id", Value: str("e1")}, {Name: "shots", Value: str("3")}},
		{{Name: "event_id", Value: str("e2")}, {Name: "corners", Value: str("5")}, {Name: "shots", Value: str("4")}},
	}
	got := BuildTable("team_statistics", rows, table.Spec{NonNumeric: []string{"event_id"}})

	names := got.ColumnNames()
	want := []string{"event_id", "shots", "corners"}
	if len(names) != len(want) {
		t.Fatalf("unexpected columns: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected column %d: got=%s want=%s", i, names[i], want[i])
		}
	}
	corners, _ := got.Column("corners")
	if !corners.IsNull(0) {
		t.Fatalf("expected null corners for first row")
	}
}

func TestBuildTable_BooleansNeverNull(t *testing.T) {
	t.Parallel()

	rows := []table.Row{
		{{Name: "starter", Value: str("true")}},
		{{Name: "starter", Value: str("True")}},
		{{Name: "starter", Value: str("false")}},
		{{Name: "starter", Value: str("")}},
		{{Name: "starter", Value: str("1")}},
		{{Name: "starter", Value: nil}},
	}
	got := BuildTable("p", rows, table.Spec{Booleans: []string{"starter"}})
	col, _ := got.Column("starter")
	want := []bool{true, false, false, false, false, false}
	for i, w := range want {
		v, ok := col.Bool(i)
		if !ok || v != w {
			t.Fatalf("unexpected starter[%d]: got=%v ok=%v want=%v", i, v, ok, w)
		}
	}
}

func TestBuildPlayerStatisticsTable_StarterOnlyForLiteralTrue(t *testing.T) {
	t.Parallel()

	raw := []*string{str("true"), str("false"), str(""), str("1"), str("True"), nil}
	records := make([]playerstats.Record, 0, len(raw))
	for _, starter := range raw {
		records = append(records, playerstats.Record{
			EventID:       "sr:sport_event:1",
			TeamQualifier: "home",
			PlayerID:      str("sr:player:1"),
			Starter:       starter,
		})
	}

	got := BuildPlayerStatisticsTable(records)
	col, ok := got.Column(playerstats.ColumnStarter)
	if !ok || col.Kind != table.KindBool {
		t.Fatalf("unexpected starter column: %+v", col)
	}
	want := []bool{true, false, false, false, false, false}
	for i, w := range want {
		v, ok := col.Bool(i)
		if !ok || v != w {
			t.Fatalf("unexpected starter[%d]: got=%v ok=%v want=%v", i, v, ok, w)
		}
	}
}

func TestBuildPlayerStatisticsTable_HomeSquadStarters(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(nil)
	_, _, players := ex.Extract(mustLoad(t, homeSquadSummaryXML("sr:sport_event:99")))
	if len(players) != 3 {
		t.Fatalf("unexpected player count: got=%d want=3", len(players))
	}

	got := BuildPlayerStatisticsTable(players)
	qualifier, _ := got.Column(playerstats.ColumnTeamQualifier)
	starter, _ := got.Column(playerstats.ColumnStarter)
	ids, _ := got.Column(playerstats.ColumnPlayerID)

	wantIDs := []string{"sr:player:10", "sr:player:11", "sr:player:12"}
	wantStarter := []bool{true, true, false}
	for i := 0; i < got.Rows; i++ {
		if q, _ := qualifier.String(i); q != "home" {
			t.Fatalf("unexpected qualifier[%d]: %q", i, q)
		}
		if id, _ := ids.String(i); id != wantIDs[i] {
			t.Fatalf("unexpected player_id[%d]: got=%s want=%s", i, id, wantIDs[i])
		}
		if v, ok := starter.Bool(i); !ok || v != wantStarter[i] {
			t.Fatalf("unexpected starter[%d]: got=%v want=%v", i, v, wantStarter[i])
		}
	}
}

func TestBuildStatisticsTables_RowsKeepRecordValues(t *testing.T) {
	t.Parallel()

	teams := []teamstats.Record{
		{
			EventID: "sr:sport_event:1", TeamID: str("sr:competitor:35"), TeamName: str("Manchester United"),
			TeamQualifier: "home", EventStatus: str("closed"), MatchStatus: str("ended"), Score: str("2"),
			Stats: table.Attrs{{Name: "shots_total", Value: "14"}, {Name: "ball_possession", Value: "55.5"}, {Name: "formation", Value: "4-3-3"}},
		},
		{
			EventID: "sr:sport_event:1", TeamID: str("sr:competitor:37"), TeamName: nil,
			TeamQualifier: "away", EventStatus: str("closed"), MatchStatus: str("ended"), Score: str("1"),
			Stats: table.Attrs{{Name: "shots_total", Value: "10"}, {Name: "ball_possession", Value: "44.5"}, {Name: "formation", Value: "4-2-3-1"}},
		},
	}
	players := []playerstats.Record{
		{
			EventID: "sr:sport_event:1", TeamID: str("sr:competitor:35"), TeamName: str("Manchester United"),
			TeamQualifier: "home", PlayerID: str("sr:player:2"), PlayerName: str("Zirkzee, Joshua"), Starter: str("true"),
			Stats: table.Attrs{{Name: "goals_scored", Value: "1"}, {Name: "rating", Value: "7.5"}, {Name: "position", Value: "F"}},
		},
		{
			EventID: "sr:sport_event:1", TeamID: str("sr:competitor:37"), TeamName: str("Fulham FC"),
			TeamQualifier: "away", PlayerID: str("sr:player:3"), PlayerName: nil, Starter: str("false"),
			Stats: table.Attrs{{Name: "goals_scored", Value: "0"}, {Name: "rating", Value: "6"}, {Name: "position", Value: "M"}},
		},
	}

	cases := []struct {
		name    string
		table   table.Table
		columns []string
		rows    [][]any
	}{
		{
			name:  "team statistics",
			table: BuildTeamStatisticsTable(teams),
			columns: []string{
				"event_id", "team_id", "team_name", "team_qualifier", "event_status", "match_status", "score",
				"shots_total", "ball_possession", "formation",
			},
			rows: [][]any{
				{"sr:sport_event:1", "sr:competitor:35", "Manchester United", "home", "closed", "ended", int64(2), int64(14), 55.5, nil},
				{"sr:sport_event:1", "sr:competitor:37", nil, "away", "closed", "ended", int64(1), int64(10), 44.5, nil},
			},
		},
		{
			name:  "player statistics",
			table: BuildPlayerStatisticsTable(players),
			columns: []string{
				"event_id", "team_id", "team_name", "team_qualifier", "player_id", "player_name", "starter",
				"goals_scored", "rating", "position",
			},
			rows: [][]any{
				{"sr:sport_event:1", "sr:competitor:35", "Manchester United", "home", "sr:player:2", "Zirkzee, Joshua", true, int64(1), 7.5, nil},
				{"sr:sport_event:1", "sr:competitor:37", "Fulham FC", "away", "sr:player:3", nil, false, int64(0), 6.0, nil},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			names := tc.table.ColumnNames()
			if len(names) != len(tc.columns) {
				t.Fatalf("unexpected columns: got=%v want=%v", names, tc.columns)
			}
			for i := range tc.columns {
				if names[i] != tc.columns[i] {
					t.Fatalf("unexpected column %d: got=%s want=%s", i, names[i], tc.columns[i])
				}
			}
			for i, want := range tc.rows {
				got := tc.table.Row(i)
				for c := range want {
					if got[c] != want[c] {
						t.Fatalf("row %d column %s: got=%#v want=%#v", i, names[c], got[c], want[c])
					}
				}
			}
		})
	}
}

func TestBuildTable_RejectsHexFloats(t *testing.T) {
	t.Parallel()

	rows := []table.Row{
		{{Name: "x", Value: str("0x1p4")}},
		{{Name: "x", Value: str("-0X1.8p1")}},
		{{Name: "x", Value: str("+0x10")}},
		{{Name: "x", Value: str("2.5")}},
	}
	got := BuildTable("t", rows, table.Spec{})
	col, _ := got.Column("x")
	for i := 0; i < 3; i++ {
		if !col.IsNull(i) {
			t.Fatalf("expected hex literal %d to be null, got=%v", i, col.Values[i])
		}
	}
	if v, ok := col.Float(3); !ok || v != 2.5 {
		t.Fatalf("unexpected x[3]: got=%v ok=%v", v, ok)
	}
}

func TestBuildTable_EmptyInput(t *testing.T) {
	t.Parallel()

	got := BuildEventsTable(nil)
	if !got.Empty() || len(got.Columns) != 0 || got.Name != "events" {
		t.Fatalf("unexpected empty table: %+v", got)
	}
}

func TestBuildTable_AllNullColumnIsFloat(t *testing.T) {
	t.Parallel()

	got := BuildTable("t", []table.Row{{{Name: "x", Value: nil}}}, table.Spec{})
	col, _ := got.Column("x")
	if col.Kind != table.KindFloat || !col.IsNull(0) {
		t.Fatalf("unexpected all-null column: %+v", col)
	}
}

func TestBuildTable_IsDeterministic(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(nil)
	_, _, players := ex.Extract(mustLoad(t, matchSummaryXML("sr:sport_event:1")))

	a := BuildPlayerStatisticsTable(players)
	b := BuildPlayerStatisticsTable(players)
	if len(a.Columns) != len(b.Columns) || a.Rows != b.Rows {
		t.Fatalf("tables differ in shape")
	}
	for c := range a.Columns {
		if a.Columns[c].Name != b.Columns[c].Name || a.Columns[c].Kind != b.Columns[c].Kind {
			t.Fatalf("column %d differs", c)
		}
		for i := 0; i < a.Rows; i++ {
			if a.Columns[c].Values[i] != b.Columns[c].Values[i] {
				t.Fatalf("cell %d/%d differs", c, i)
			}
		}
	}

	rating, _ := a.Column("rating")
	if rating.Kind != table.KindFloat || !rating.IsNull(0) {
		t.Fatalf("expected sparse float rating column")
	}
	goals, _ := a.Column("goals_scored")
	if goals.Kind != table.KindInt {
		t.Fatalf("expected integer goals column, got %s", goals.Kind)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"2024-08-16T19:00:00+00:00": true,
		"2024-08-16T19:00:00Z":      true,
		"2024-08-16T19:00:00+0000":  true,
		"2024-08-16 19:00:00":       true,
		"2024-08-16":                true,
		"":                          false,
		"16/08/2024":                false,
	}
	for raw, want := range cases {
		if _, ok := ParseTimestamp(raw); ok != want {
			t.Fatalf("ParseTimestamp(%q): got=%v want=%v", raw, ok, want)
		}
	}
}
