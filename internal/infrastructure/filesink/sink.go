// Package filesink writes tables as files under an output directory, one
// file per table named after it.
package filesink

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchstats-etl/internal/domain/table"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
)

type encoder interface {
	name() string
	ext() string
	encode(w *bufio.Writer, t table.Table) error
}

type Sink struct {
	dir    string
	enc    encoder
	logger *logging.Logger
}

func NewCSV(dir string, logger *logging.Logger) *Sink {
	return newSink(dir, csvEncoder{}, logger)
}

func NewJSONLines(dir string, logger *logging.Logger) *Sink {
	return newSink(dir, jsonLinesEncoder{}, logger)
}

func newSink(dir string, enc encoder, logger *logging.Logger) *Sink {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sink{dir: strings.TrimSpace(dir), enc: enc, logger: logger}
}

func (s *Sink) Name() string {
	return s.enc.name()
}

// Path is the destination file of a table.
func (s *Sink) Path(tableName string) string {
	return filepath.Join(s.dir, tableName+s.enc.ext())
}

func (s *Sink) Write(ctx context.Context, t table.Table) (err error) {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("table name is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", s.dir, err)
	}

	path := s.Path(t.Name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := s.enc.encode(w, t); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	s.logger.InfoContext(ctx, "table written", "sink", s.Name(), "table", t.Name, "rows", t.Rows, "path", path)
	return nil
}

// formatCell renders a non-null cell as text.
func formatCell(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
