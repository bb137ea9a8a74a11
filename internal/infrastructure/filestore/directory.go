// Package filestore keeps match summaries as one XML file per event in a
// flat directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/riskibarqy/matchstats-etl/internal/domain/corpus"
)

const documentExt = ".xml"

type Directory struct {
	root string
}

func NewDirectory(root string) *Directory {
	return &Directory{root: strings.TrimSpace(root)}
}

func (d *Directory) Root() string {
	return d.root
}

// Documents reads every *.xml file of the directory, sorted by file name.
// Sub-directories are ignored.
func (d *Directory) Documents(ctx context.Context) ([]corpus.Document, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read games dir %s: %w", d.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), documentExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make([]corpus.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(filepath.Join(d.root, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		out = append(out, corpus.Document{ID: name, Raw: raw})
	}
	return out, nil
}

func (d *Directory) Has(_ context.Context, id string) (bool, error) {
	path, err := d.path(id)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat document %s: %w", id, err)
	}
}

// Put writes through a temporary file so a crash never leaves a truncated
// document behind.
func (d *Directory) Put(_ context.Context, id string, raw []byte) error {
	path, err := d.path(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("create games dir %s: %w", d.root, err)
	}

	tmp, err := os.CreateTemp(d.root, "."+id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document %s: %w", id, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write document %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename document %s: %w", id, err)
	}
	return nil
}

func (d *Directory) path(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return filepath.Join(d.root, id), nil
}
