package table

import "time"

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Attr is one passthrough attribute copied verbatim from a statistics node.
type Attr struct {
	Name  string
	Value string
}

// Attrs keeps attribute order as it appeared in the source document.
type Attrs []Attr

func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (a Attrs) Names() []string {
	out := make([]string, 0, len(a))
	for _, attr := range a {
		out = append(out, attr.Name)
	}
	return out
}

// Field is one raw cell. A nil Value means the source had no such value.
type Field struct {
	Name  string
	Value *string
}

// Row is an ordered set of raw fields produced by one record.
type Row []Field

// Merge appends attrs after the fixed fields. Attributes whose name collides
// with an existing field are ignored so identity columns stay intact.
func (r Row) Merge(attrs Attrs) Row {
	out := make(Row, len(r), len(r)+len(attrs))
	copy(out, r)
	for _, attr := range attrs {
		if out.has(attr.Name) {
			continue
		}
		value := attr.Value
		out = append(out, Field{Name: attr.Name, Value: &value})
	}
	return out
}

func (r Row) Lookup(name string) (*string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Row) has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Column holds typed, row-aligned values. A nil entry is null; non-null
// entries are string, int64, float64, bool or time.Time depending on Kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

func (c Column) IsNull(i int) bool {
	return i < 0 || i >= len(c.Values) || c.Values[i] == nil
}

func (c Column) String(i int) (string, bool) {
	if c.IsNull(i) {
		return "", false
	}
	v, ok := c.Values[i].(string)
	return v, ok
}

func (c Column) Int(i int) (int64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	v, ok := c.Values[i].(int64)
	return v, ok
}

func (c Column) Float(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch v := c.Values[i].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (c Column) Bool(i int) (bool, bool) {
	if c.IsNull(i) {
		return false, false
	}
	v, ok := c.Values[i].(bool)
	return v, ok
}

func (c Column) Time(i int) (time.Time, bool) {
	if c.IsNull(i) {
		return time.Time{}, false
	}
	v, ok := c.Values[i].(time.Time)
	return v, ok
}

// Table is a named, column-oriented result set.
type Table struct {
	Name    string
	Columns []Column
	Rows    int
}

func (t Table) Empty() bool {
	return t.Rows == 0
}

func (t Table) ColumnNames() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, c.Name)
	}
	return out
}

func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row returns the values of row i in column order.
func (t Table) Row(i int) []any {
	out := make([]any, len(t.Columns))
	for c, col := range t.Columns {
		if i < len(col.Values) {
			out[c] = col.Values[i]
		}
	}
	return out
}

// Spec describes how raw row values become typed columns.
type Spec struct {
	// NonNumeric columns keep their raw string value.
	NonNumeric []string
	// Timestamps are parsed as points in time, invalid values become null.
	Timestamps []string
	// Booleans are true only when the raw value is exactly "true".
	Booleans []string
}

func (s Spec) IsNonNumeric(name string) bool {
	return contains(s.NonNumeric, name)
}

func (s Spec) IsTimestamp(name string) bool {
	return contains(s.Timestamps, name)
}

func (s Spec) IsBoolean(name string) bool {
	return contains(s.Booleans, name)
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
