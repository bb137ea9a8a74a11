// Package sqltable writes typed tables into SQL databases through sqlx. The
// dialect decides column types, bind placeholders and value encoding.
package sqltable

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	qb "github.com/riskibarqy/matchstats-etl/internal/platform/querybuilder"
)

type Dialect struct {
	Name        string
	Placeholder qb.PlaceholderFormat
	// MaxParams bounds the bind parameters of one insert statement.
	MaxParams int
	TypeOf    func(kind table.Kind) string
	// Encode converts a non-null cell before binding. Nil keeps the value.
	Encode func(kind table.Kind, v any) any
}

// Sink replaces a database table with the content of each written table.
type Sink struct {
	db      *sqlx.DB
	dialect Dialect
	prefix  string
	logger  *logging.Logger
}

type Option func(*Sink)

// WithTablePrefix prepends prefix to every destination table name.
func WithTablePrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = strings.TrimSpace(prefix)
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSink(db *sqlx.DB, dialect Dialect, opts ...Option) *Sink {
	if dialect.MaxParams <= 0 {
		dialect.MaxParams = 999
	}
	s := &Sink{db: db, dialect: dialect, logger: logging.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Name() string {
	return s.dialect.Name
}

func (s *Sink) TableName(t table.Table) string {
	return s.prefix + t.Name
}

// Write drops and recreates the destination table, then inserts all rows in
// batches, inside one transaction.
func (s *Sink) Write(ctx context.Context, t table.Table) (err error) {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	name := s.TableName(t)

	createSQL, err := s.createTableSQL(name, t)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, qb.DropTableIfExists(name)); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	columns := qb.QuoteIdents(t.ColumnNames())
	batch := s.dialect.MaxParams / len(columns)
	if batch < 1 {
		batch = 1
	}
	for start := 0; start < t.Rows; start += batch {
		end := min(start+batch, t.Rows)
		insert := qb.InsertInto(qb.QuoteIdent(name)).
			Columns(columns...).
			PlaceholderFormat(s.dialect.Placeholder)
		for i := start; i < end; i++ {
			insert.Values(s.encodeRow(t, i)...)
		}
		query, args, buildErr := insert.ToSQL()
		if buildErr != nil {
			err = fmt.Errorf("build insert %s: %w", name, buildErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rows %d-%d into %s: %w", start, end-1, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit table %s: %w", name, err)
	}
	s.logger.DebugContext(ctx, "sql table replaced", "dialect", s.dialect.Name, "table", name, "rows", t.Rows)
	return nil
}

func (s *Sink) createTableSQL(name string, t table.Table) (string, error) {
	create := qb.CreateTable(name)
	for _, col := range t.Columns {
		create.Column(col.Name, s.dialect.TypeOf(col.Kind))
	}
	query, err := create.ToSQL()
	if err != nil {
		return "", fmt.Errorf("build create table %s: %w", name, err)
	}
	return query, nil
}

func (s *Sink) encodeRow(t table.Table, i int) []any {
	row := t.Row(i)
	if s.dialect.Encode == nil {
		return row
	}
	for c, v := range row {
		if v != nil {
			row[c] = s.dialect.Encode(t.Columns[c].Kind, v)
		}
	}
	return row
}
