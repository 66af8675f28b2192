package readinglog

import (
	"context"
	"sync"

	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
)

// MemoryStore keeps readings in memory. Useful for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []gauge.Reading
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records one reading.
func (s *MemoryStore) Append(_ context.Context, reading gauge.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, reading)
	return nil
}

// Latest returns up to n readings ordered oldest to newest.
func (s *MemoryStore) Latest(_ context.Context, n int) ([]gauge.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]gauge.Reading, len(s.readings))
	copy(out, s.readings)
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

var _ gauge.ReadingStore = (*MemoryStore)(nil)
