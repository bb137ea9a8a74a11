package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/sqltable"
	qb "github.com/riskibarqy/matchstats-etl/internal/platform/querybuilder"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// SQLite caps bind variables per statement; stay well below the limit.
const maxParams = 30000

var Dialect = sqltable.Dialect{
	Name:        "sqlite",
	Placeholder: qb.Question,
	MaxParams:   maxParams,
	TypeOf: func(kind table.Kind) string {
		switch kind {
		case table.KindInt, table.KindBool:
			return "INTEGER"
		case table.KindFloat:
			return "REAL"
		default:
			return "TEXT"
		}
	},
	Encode: func(kind table.Kind, v any) any {
		switch val := v.(type) {
		case time.Time:
			return val.UTC().Format(time.RFC3339)
		case bool:
			if val {
				return int64(1)
			}
			return int64(0)
		default:
			return v
		}
	},
}

// Open opens (or creates) a database file and its parent directory.
// ":memory:" gives a private in-memory database bound to a single connection.
func Open(path string) (*sqlx.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir %s: %w", path, err)
		}
	}
	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite %s: %w", path, err)
		}
	}
	return db, nil
}

func NewTableSink(db *sqlx.DB, opts ...sqltable.Option) *sqltable.Sink {
	return sqltable.NewSink(db, Dialect, opts...)
}
