package imagestore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveSnapshotWritesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	store := NewFSStore(dir, newTestLogger())
	takenAt := time.Date(2026, 3, 14, 9, 30, 45, 0, time.Local)

	path, err := store.SaveSnapshot(context.Background(), takenAt, []byte("raw-bytes"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "oil_snapshot_20260314_093045.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("raw-bytes"), data)
}

func TestSaveProcessedUsesProcessedPrefix(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	store := NewFSStore(dir, newTestLogger())
	takenAt := time.Date(2026, 3, 14, 9, 30, 45, 0, time.Local)

	path, err := store.SaveProcessed(context.Background(), takenAt, []byte("processed"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "processed_20260314_093045.jpg"), path)
	require.FileExists(t, path)
}

func TestSaveCreatesImagesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "nested", "images")
	store := NewFSStore(dir, newTestLogger())

	_, err := store.SaveSnapshot(context.Background(), time.Now(), []byte("x"))
	require.NoError(t, err)
	require.DirExists(t, dir)
}

func TestSaveFailsOnUnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o555))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	store := NewFSStore(filepath.Join(parent, "images"), newTestLogger())
	_, err := store.SaveSnapshot(context.Background(), time.Now(), []byte("x"))
	require.Error(t, err)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	takenAt := time.Date(2026, 3, 14, 9, 30, 45, 0, time.Local)

	name, err := store.SaveSnapshot(context.Background(), takenAt, []byte("raw"))
	require.NoError(t, err)
	require.Equal(t, "oil_snapshot_20260314_093045.jpg", name)

	data, ok := store.Get(name)
	require.True(t, ok)
	require.Equal(t, []byte("raw"), data)
	require.Equal(t, 1, store.Len())
}
