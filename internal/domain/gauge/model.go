package gauge

import (
	"time"

	"github.com/jgoulah/oil-notifier/pkg/metrics"
)

// ConfidenceUnknown marks replies that carried no confidence line.
const ConfidenceUnknown = "Unknown"

// Reading is one timestamped gauge observation as it lands in the log.
// Percentage is nil when the model reply held no usable level; such
// readings are still recorded.
type Reading struct {
	Timestamp    time.Time
	Percentage   *int
	Confidence   string
	RawOutput    string
	SnapshotPath string
}

// HasPercentage reports whether the model produced a usable level.
func (r Reading) HasPercentage() bool {
	return r.Percentage != nil
}

// ParsedReading is the structured interpretation of one model reply. A nil
// Percentage means the reply was unparseable; the raw text is always kept.
type ParsedReading struct {
	Percentage *int
	Confidence string
	RawOutput  string
}

// Analysis bundles everything produced by a single inference pass.
type Analysis struct {
	Result ParsedReading
	// Processed is the frame actually sent for inference after the
	// rotate/crop/glare pass.
	Processed []byte
	// EmailImage is the downscaled copy embedded into notifications.
	EmailImage []byte
	Usage      metrics.TokenUsage
}
