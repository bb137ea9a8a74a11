package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/sqltable"
	"github.com/stretchr/testify/require"
)

func sampleTable() table.Table {
	start := time.Date(2024, 8, 16, 19, 0, 0, 0, time.UTC)
	return table.Table{
		Name: "player_statistics",
		Rows: 3,
		Columns: []table.Column{
			{Name: "player_id", Kind: table.KindString, Values: []any{"sr:player:1", "sr:player:2", nil}},
			{Name: "goals_scored", Kind: table.KindInt, Values: []any{int64(1), nil, int64(0)}},
			{Name: "rating", Kind: table.KindFloat, Values: []any{7.5, 6.0, nil}},
			{Name: "starter", Kind: table.KindBool, Values: []any{true, true, false}},
			{Name: "start_time", Kind: table.KindTimestamp, Values: []any{start, nil, start}},
		},
	}
}

func TestTableSink_WriteReplacesTable(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sink := NewTableSink(db)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, sampleTable()))
	// A second write replaces the content instead of appending.
	require.NoError(t, sink.Write(ctx, sampleTable()))

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM "player_statistics"`))
	require.Equal(t, 3, count)

	type row struct {
		PlayerID  *string  `db:"player_id"`
		Goals     *int64   `db:"goals_scored"`
		Rating    *float64 `db:"rating"`
		Starter   int64    `db:"starter"`
		StartTime *string  `db:"start_time"`
	}
	var rows []row
	require.NoError(t, db.SelectContext(ctx, &rows, `SELECT player_id, goals_scored, rating, starter, start_time FROM "player_statistics" ORDER BY rowid`))
	require.Len(t, rows, 3)

	require.Equal(t, "sr:player:1", *rows[0].PlayerID)
	require.Equal(t, int64(1), *rows[0].Goals)
	require.Equal(t, int64(1), rows[0].Starter)
	require.Equal(t, "2024-08-16T19:00:00Z", *rows[0].StartTime)

	require.Nil(t, rows[1].Goals)
	require.Nil(t, rows[1].StartTime)

	require.Nil(t, rows[2].PlayerID)
	require.Nil(t, rows[2].Rating)
	require.Equal(t, int64(0), rows[2].Starter)
}

func TestTableSink_BatchesLargeTables(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	const rows = 25
	values := make([]any, rows)
	for i := range values {
		values[i] = int64(i)
	}
	tbl := table.Table{
		Name:    "events",
		Rows:    rows,
		Columns: []table.Column{{Name: "round_number", Kind: table.KindInt, Values: values}},
	}

	dialect := Dialect
	dialect.MaxParams = 4
	require.NoError(t, sqltable.NewSink(db, dialect).Write(context.Background(), tbl))

	var sum int64
	require.NoError(t, db.Get(&sum, `SELECT SUM(round_number) FROM "events"`))
	require.Equal(t, int64(rows*(rows-1)/2), sum)
}

func TestTableSink_RejectsTableWithoutColumns(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = NewTableSink(db).Write(context.Background(), table.Table{Name: "events"})
	require.Error(t, err)
}
