package filesink

import (
	"bufio"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
)

// jsonLinesEncoder writes one JSON object per row, keys in column order.
type jsonLinesEncoder struct{}

func (jsonLinesEncoder) name() string { return "jsonl" }
func (jsonLinesEncoder) ext() string  { return ".jsonl" }

func (jsonLinesEncoder) encode(w *bufio.Writer, t table.Table) error {
	keys := make([][]byte, len(t.Columns))
	for c, col := range t.Columns {
		key, err := sonic.Marshal(col.Name)
		if err != nil {
			return err
		}
		keys[c] = key
	}

	for i := 0; i < t.Rows; i++ {
		_ = w.WriteByte('{')
		for c, v := range t.Row(i) {
			if c > 0 {
				_ = w.WriteByte(',')
			}
			_, _ = w.Write(keys[c])
			_ = w.WriteByte(':')

			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(time.RFC3339)
			}
			value, err := sonic.Marshal(v)
			if err != nil {
				return err
			}
			_, _ = w.Write(value)
		}
		_ = w.WriteByte('}')
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}
