package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
	"github.com/jgoulah/oil-notifier/pkg/util"
)

// FSStore writes snapshot artifacts into the images directory under
// deterministic timestamped names. Files are synced before the call
// returns; a path handed back always refers to durable bytes.
type FSStore struct {
	dir    string
	logger *slog.Logger
}

// NewFSStore constructs the store for one images directory.
func NewFSStore(dir string, logger *slog.Logger) *FSStore {
	return &FSStore{dir: dir, logger: logger.With("component", "imagestore.fs")}
}

// SaveSnapshot persists the raw camera frame.
func (s *FSStore) SaveSnapshot(_ context.Context, takenAt time.Time, data []byte) (string, error) {
	return s.save(fmt.Sprintf("oil_snapshot_%s.jpg", util.FileStamp(takenAt)), data)
}

// SaveProcessed persists the preprocessed frame kept for email and review.
func (s *FSStore) SaveProcessed(_ context.Context, takenAt time.Time, data []byte) (string, error) {
	return s.save(fmt.Sprintf("processed_%s.jpg", util.FileStamp(takenAt)), data)
}

func (s *FSStore) save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.Wrap("storage_error", "create images directory", err)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", apperrors.Wrap("storage_error", "create image file", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", apperrors.Wrap("storage_error", "write image file", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", apperrors.Wrap("storage_error", "sync image file", err)
	}
	if err := f.Close(); err != nil {
		return "", apperrors.Wrap("storage_error", "close image file", err)
	}

	s.logger.Debug("image saved", "path", path, "bytes", len(data))
	return path, nil
}

var _ monitor.ImageStore = (*FSStore)(nil)
