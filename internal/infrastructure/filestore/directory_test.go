package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectory_DocumentsSortedXMLOnly(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for name, body := range map[string]string{
		"sr_sport_event_3.xml": "<c/>",
		"sr_sport_event_1.xml": "<a/>",
		"sr_sport_event_2.XML": "<b/>",
		"notes.txt":            "skip",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "nested.xml"), 0o755))

	docs, err := NewDirectory(root).Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "sr_sport_event_1.xml", docs[0].ID)
	require.Equal(t, "sr_sport_event_2.XML", docs[1].ID)
	require.Equal(t, "sr_sport_event_3.xml", docs[2].ID)
	require.Equal(t, "<a/>", string(docs[0].Raw))
}

func TestDirectory_DocumentsMissingDir(t *testing.T) {
	t.Parallel()

	_, err := NewDirectory(filepath.Join(t.TempDir(), "missing")).Documents(context.Background())
	require.Error(t, err)
}

func TestDirectory_DocumentsHonoursCancellation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.xml"), []byte("<a/>"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDirectory(root).Documents(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirectory_PutAndHas(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(filepath.Join(t.TempDir(), "games"))
	ctx := context.Background()

	ok, err := dir.Has(ctx, "sr_sport_event_1.xml")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, dir.Put(ctx, "sr_sport_event_1.xml", []byte("<summary/>")))

	ok, err = dir.Has(ctx, "sr_sport_event_1.xml")
	require.NoError(t, err)
	require.True(t, ok)

	raw, err := os.ReadFile(filepath.Join(dir.Root(), "sr_sport_event_1.xml"))
	require.NoError(t, err)
	require.Equal(t, "<summary/>", string(raw))

	entries, err := os.ReadDir(dir.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDirectory_RejectsPathIDs(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(t.TempDir())
	for _, id := range []string{"", "../x.xml", "a/b.xml", ".."} {
		require.Error(t, dir.Put(context.Background(), id, nil), id)
	}
}
