package alertstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
)

// FileStore remembers the last alert time in a small JSON file beside the
// reading log.
type FileStore struct {
	path string
}

type stateDoc struct {
	LastAlert time.Time `json:"lastAlert"`
}

// NewFileStore constructs the store for one state file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LastAlert returns the recorded alert time, or the zero time when no alert
// has ever been recorded.
func (s *FileStore) LastAlert(_ context.Context) (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read alert state: %w", err)
	}

	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return time.Time{}, fmt.Errorf("parse alert state: %w", err)
	}
	return doc.LastAlert, nil
}

// RecordAlert stores the alert time, replacing any previous value.
func (s *FileStore) RecordAlert(_ context.Context, at time.Time) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.Marshal(stateDoc{LastAlert: at})
	if err != nil {
		return fmt.Errorf("encode alert state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write alert state: %w", err)
	}
	return nil
}

var _ alert.StateStore = (*FileStore)(nil)
