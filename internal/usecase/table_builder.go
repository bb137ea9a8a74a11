package usecase

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/event"
	"github.com/riskibarqy/matchstats-etl/internal/domain/playerstats"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/domain/teamstats"
)

const booleanTrue = "true"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// BuildTable turns raw rows into a typed table. Columns are the union of all
// row keys in first-seen order; a key missing from a row is null in that row.
// Coercion never fails the table: a cell that cannot be parsed becomes null.
func BuildTable(name string, rows []table.Row, spec table.Spec) table.Table {
	out := table.Table{Name: name, Rows: len(rows)}
	if len(rows) == 0 {
		return out
	}

	index := make(map[string]int)
	var names []string
	var raw [][]*string
	for i, row := range rows {
		for _, field := range row {
			col, ok := index[field.Name]
			if !ok {
				col = len(names)
				index[field.Name] = col
				names = append(names, field.Name)
				raw = append(raw, make([]*string, len(rows)))
			}
			raw[col][i] = field.Value
		}
	}

	out.Columns = make([]table.Column, 0, len(names))
	for col, colName := range names {
		out.Columns = append(out.Columns, buildColumn(colName, raw[col], spec))
	}
	return out
}

func buildColumn(name string, cells []*string, spec table.Spec) table.Column {
	switch {
	case spec.IsBoolean(name):
		return table.Column{Name: name, Kind: table.KindBool, Values: coerceBooleans(cells)}
	case spec.IsTimestamp(name):
		return table.Column{Name: name, Kind: table.KindTimestamp, Values: coerceTimestamps(cells)}
	case spec.IsNonNumeric(name):
		return table.Column{Name: name, Kind: table.KindString, Values: keepStrings(cells)}
	default:
		kind, values := coerceNumbers(cells)
		return table.Column{Name: name, Kind: kind, Values: values}
	}
}

func keepStrings(cells []*string) []any {
	out := make([]any, len(cells))
	for i, cell := range cells {
		if cell != nil {
			out[i] = *cell
		}
	}
	return out
}

// coerceBooleans never yields null: an absent value is false.
func coerceBooleans(cells []*string) []any {
	out := make([]any, len(cells))
	for i, cell := range cells {
		out[i] = cell != nil && *cell == booleanTrue
	}
	return out
}

func coerceTimestamps(cells []*string) []any {
	out := make([]any, len(cells))
	for i, cell := range cells {
		if cell == nil {
			continue
		}
		if ts, ok := ParseTimestamp(*cell); ok {
			out[i] = ts
		}
	}
	return out
}

// coerceNumbers keeps a column integer when every non-null cell is an integer
// literal, otherwise every parsed cell becomes float64.
func coerceNumbers(cells []*string) (table.Kind, []any) {
	ints := make([]int64, len(cells))
	floats := make([]float64, len(cells))
	valid := make([]bool, len(cells))
	allInt := true
	anyValid := false

	for i, cell := range cells {
		if cell == nil {
			continue
		}
		text := strings.TrimSpace(*cell)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			ints[i], floats[i], valid[i] = n, float64(n), true
			anyValid = true
			continue
		}
		if hasHexPrefix(text) {
			continue
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		floats[i], valid[i] = f, true
		allInt = false
		anyValid = true
	}

	out := make([]any, len(cells))
	if anyValid && allInt {
		for i := range cells {
			if valid[i] {
				out[i] = ints[i]
			}
		}
		return table.KindInt, out
	}
	for i := range cells {
		if valid[i] {
			out[i] = floats[i]
		}
	}
	return table.KindFloat, out
}

// hasHexPrefix reports a 0x literal, optionally signed. ParseFloat would accept
// it as a hexadecimal float.
func hasHexPrefix(text string) bool {
	text = strings.TrimLeft(text, "+-")
	return len(text) >= 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X')
}

// ParseTimestamp accepts ISO 8601 date-times with or without offset and plain
// dates. Results are normalised to UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

type rowProducer interface {
	Row() table.Row
}

func recordRows[T rowProducer](records []T) []table.Row {
	out := make([]table.Row, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Row())
	}
	return out
}

func BuildEventsTable(records []event.Record) table.Table {
	return BuildTable(event.TableName, recordRows(records), event.TableSpec)
}

func BuildTeamStatisticsTable(records []teamstats.Record) table.Table {
	return BuildTable(teamstats.TableName, recordRows(records), teamstats.TableSpec)
}

func BuildPlayerStatisticsTable(records []playerstats.Record) table.Table {
	return BuildTable(playerstats.TableName, recordRows(records), playerstats.TableSpec)
}
