package monitor

import (
	"context"
	"time"
)

// SnapshotSource grabs one still frame of the gauge.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// CameraDirectory lists cameras known to the controller. Used by the
// discovery command when picking the camera to monitor.
type CameraDirectory interface {
	ListCameras(ctx context.Context) ([]CameraInfo, error)
}

// ImageStore persists snapshot artifacts under deterministic timestamped
// names and returns the stored path.
type ImageStore interface {
	SaveSnapshot(ctx context.Context, takenAt time.Time, data []byte) (string, error)
	SaveProcessed(ctx context.Context, takenAt time.Time, data []byte) (string, error)
}

// Archiver mirrors a stored artifact to off-host storage. Failures are
// surfaced as warnings, never as run failures.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte, contentType string) error
}
