package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches wrapped no rows", func(t *testing.T) {
		if !isNotFound(fmt.Errorf("get run: %w", sql.ErrNoRows)) {
			t.Fatalf("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(fmt.Errorf("pq: relation etl_runs does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestNullableString(t *testing.T) {
	if got := nullableString("  "); got != nil {
		t.Fatalf("expected nil for blank string, got %q", *got)
	}
	got := nullableString(" doc.xml ")
	if got == nil || *got != "doc.xml" {
		t.Fatalf("unexpected value: %v", got)
	}
	if stringOrEmpty(nil) != "" {
		t.Fatalf("expected empty string for nil")
	}
}

func TestDialectColumnTypes(t *testing.T) {
	cases := map[table.Kind]string{
		table.KindString:    "TEXT",
		table.KindInt:       "BIGINT",
		table.KindFloat:     "DOUBLE PRECISION",
		table.KindBool:      "BOOLEAN",
		table.KindTimestamp: "TIMESTAMPTZ",
	}
	for kind, want := range cases {
		if got := Dialect.TypeOf(kind); got != want {
			t.Fatalf("unexpected type for %s: got=%s want=%s", kind, got, want)
		}
	}
}

func TestDialectEncodeNormalizesTimestamps(t *testing.T) {
	local := time.Date(2024, 8, 16, 21, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	got, ok := Dialect.Encode(table.KindTimestamp, local).(time.Time)
	if !ok {
		t.Fatalf("expected time.Time")
	}
	if got.Location() != time.UTC || got.Hour() != 19 {
		t.Fatalf("unexpected encoded time: %v", got)
	}
	if v := Dialect.Encode(table.KindInt, int64(3)); v != int64(3) {
		t.Fatalf("expected passthrough for ints, got %v", v)
	}
}
