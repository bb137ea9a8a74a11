package querybuilder

import (
	"fmt"
	"strings"
)

type columnDef struct {
	name     string
	typeName string
	extra    string
}

type CreateTableBuilder struct {
	table       string
	ifNotExists bool
	columns     []columnDef
	constraints []string
}

func CreateTable(table string) *CreateTableBuilder {
	return &CreateTableBuilder{table: table}
}

func (b *CreateTableBuilder) IfNotExists() *CreateTableBuilder {
	b.ifNotExists = true
	return b
}

// Column adds a column. name is quoted; typeName and extra are emitted as is.
func (b *CreateTableBuilder) Column(name, typeName string, extra ...string) *CreateTableBuilder {
	b.columns = append(b.columns, columnDef{
		name:     name,
		typeName: typeName,
		extra:    strings.TrimSpace(strings.Join(extra, " ")),
	})
	return b
}

func (b *CreateTableBuilder) Constraint(sql string) *CreateTableBuilder {
	b.constraints = append(b.constraints, strings.TrimSpace(sql))
	return b
}

func (b *CreateTableBuilder) ToSQL() (string, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", fmt.Errorf("create table name is required")
	}
	if len(b.columns) == 0 {
		return "", fmt.Errorf("create table %s requires columns", b.table)
	}

	var buf strings.Builder
	buf.WriteString("CREATE TABLE ")
	if b.ifNotExists {
		buf.WriteString("IF NOT EXISTS ")
	}
	buf.WriteString(QuoteIdent(b.table))
	buf.WriteString(" (")
	for i, c := range b.columns {
		if strings.TrimSpace(c.typeName) == "" {
			return "", fmt.Errorf("column %s has no type", c.name)
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(QuoteIdent(c.name))
		buf.WriteString(" ")
		buf.WriteString(c.typeName)
		if c.extra != "" {
			buf.WriteString(" ")
			buf.WriteString(c.extra)
		}
	}
	for _, c := range b.constraints {
		buf.WriteString(", ")
		buf.WriteString(c)
	}
	buf.WriteString(")")
	return buf.String(), nil
}

func DropTableIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + QuoteIdent(table)
}
