package filesink

import (
	"bufio"
	"encoding/csv"

	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
)

// csvEncoder writes a header row and one record per row. Null is an empty
// field.
type csvEncoder struct{}

func (csvEncoder) name() string { return "csv" }
func (csvEncoder) ext() string  { return ".csv" }

func (csvEncoder) encode(w *bufio.Writer, t table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for i := 0; i < t.Rows; i++ {
		for c, v := range t.Row(i) {
			if v == nil {
				record[c] = ""
				continue
			}
			record[c] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
