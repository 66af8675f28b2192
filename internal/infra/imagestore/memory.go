package imagestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	"github.com/jgoulah/oil-notifier/pkg/util"
)

// MemoryStore keeps artifacts in memory. Useful for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// SaveSnapshot stores the raw frame under its timestamped name.
func (s *MemoryStore) SaveSnapshot(_ context.Context, takenAt time.Time, data []byte) (string, error) {
	return s.save(fmt.Sprintf("oil_snapshot_%s.jpg", util.FileStamp(takenAt)), data)
}

// SaveProcessed stores the processed frame under its timestamped name.
func (s *MemoryStore) SaveProcessed(_ context.Context, takenAt time.Time, data []byte) (string, error) {
	return s.save(fmt.Sprintf("processed_%s.jpg", util.FileStamp(takenAt)), data)
}

func (s *MemoryStore) save(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.files[name] = copied
	return name, nil
}

// Get returns a stored artifact by name.
func (s *MemoryStore) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	return data, ok
}

// Len reports how many artifacts are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

var _ monitor.ImageStore = (*MemoryStore)(nil)
