package gauge

import "context"

// ReadingStore is the append-only home of every reading. Append is the only
// mutation; rows are never rewritten.
type ReadingStore interface {
	// Append durably records one reading before returning.
	Append(ctx context.Context, reading Reading) error
	// Latest returns up to n readings ordered oldest to newest.
	Latest(ctx context.Context, n int) ([]Reading, error)
}
