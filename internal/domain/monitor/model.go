package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	"github.com/jgoulah/oil-notifier/pkg/metrics"
	"github.com/jgoulah/oil-notifier/pkg/util"
)

// Snapshot is one still frame fetched from the camera.
type Snapshot struct {
	Data        []byte
	ContentType string
}

// CameraInfo describes one camera known to the controller.
type CameraInfo struct {
	ID    string
	Name  string
	Model string
	State string
	MAC   string
}

// Report is the outcome of one completed check.
type Report struct {
	RunID     string
	Timestamp time.Time
	Reading   gauge.Reading
	Alert     alert.Outcome
	Usage     metrics.TokenUsage
	Warnings  []string
	Duration  time.Duration
}

// Summary renders the one-line human-readable result for the run.
func (r Report) Summary() string {
	var b strings.Builder

	if r.Reading.HasPercentage() {
		fmt.Fprintf(&b, "oil level %d%% (confidence %s)", *r.Reading.Percentage, r.Reading.Confidence)
	} else {
		b.WriteString("oil level unknown (reply had no usable percentage)")
	}
	fmt.Fprintf(&b, " at %s", util.FormatLogTime(r.Timestamp))

	switch {
	case r.Alert.Decision == alert.DecisionLowLevel && r.Alert.Sent:
		b.WriteString(", low level alert sent")
	case r.Alert.Decision == alert.DecisionLowLevel && r.Alert.Suppressed:
		b.WriteString(", low level alert suppressed by cooldown")
	case r.Alert.Decision == alert.DecisionLowLevel:
		b.WriteString(", low level alert not delivered")
	case r.Alert.Sent:
		b.WriteString(", status report sent")
	default:
		b.WriteString(", no alert")
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "; warning: %s", w)
	}
	return b.String()
}
