package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/infrastructure/repository/sqltable"
	qb "github.com/riskibarqy/matchstats-etl/internal/platform/querybuilder"
)

// Postgres accepts up to 65535 bind parameters per statement.
const maxParams = 60000

var Dialect = sqltable.Dialect{
	Name:        "postgres",
	Placeholder: qb.Dollar,
	MaxParams:   maxParams,
	TypeOf: func(kind table.Kind) string {
		switch kind {
		case table.KindInt:
			return "BIGINT"
		case table.KindFloat:
			return "DOUBLE PRECISION"
		case table.KindBool:
			return "BOOLEAN"
		case table.KindTimestamp:
			return "TIMESTAMPTZ"
		default:
			return "TEXT"
		}
	},
	Encode: func(_ table.Kind, v any) any {
		if ts, ok := v.(time.Time); ok {
			return ts.UTC()
		}
		return v
	},
}

func NewTableSink(db *sqlx.DB, opts ...sqltable.Option) *sqltable.Sink {
	return sqltable.NewSink(db, Dialect, opts...)
}
