package alertstate

import (
	"context"
	"sync"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
)

// MemoryStore keeps the last alert time in memory. Useful for tests.
type MemoryStore struct {
	mu   sync.Mutex
	last time.Time
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LastAlert returns the recorded alert time.
func (s *MemoryStore) LastAlert(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

// RecordAlert stores the alert time.
func (s *MemoryStore) RecordAlert(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = at
	return nil
}

var _ alert.StateStore = (*MemoryStore)(nil)
