package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	"github.com/jgoulah/oil-notifier/internal/infra/config"
)

type stubMonitor struct {
	report   monitor.Report
	runErr   error
	cameras  []monitor.CameraInfo
	readings []gauge.Reading
}

func (m *stubMonitor) RunCheck(ctx context.Context) (monitor.Report, error) {
	return m.report, m.runErr
}

func (m *stubMonitor) ListCameras(ctx context.Context) ([]monitor.CameraInfo, error) {
	return m.cameras, nil
}

func (m *stubMonitor) History(ctx context.Context, n int) ([]gauge.Reading, error) {
	if n > 0 && n < len(m.readings) {
		return m.readings[len(m.readings)-n:], nil
	}
	return m.readings, nil
}

func newTestApp(svc monitor.Service) (*App, *bytes.Buffer) {
	cfg := &config.Config{Storage: config.StorageConfig{DataDir: "/data"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := NewApp(cfg, logger, svc)
	buf := &bytes.Buffer{}
	app.out = buf
	return app, buf
}

func TestRunCheckPrintsSummary(t *testing.T) {
	pct := 42
	svc := &stubMonitor{report: monitor.Report{
		Timestamp: time.Date(2026, 3, 14, 9, 30, 45, 0, time.Local),
		Reading:   gauge.Reading{Percentage: &pct, Confidence: "High"},
		Alert:     alert.Outcome{Decision: alert.DecisionNone},
	}}
	app, out := newTestApp(svc)

	require.NoError(t, app.RunCheck(context.Background()))
	require.Equal(t, "oil level 42% (confidence High) at 2026-03-14 09:30:45, no alert\n", out.String())
}

func TestRunCheckPropagatesError(t *testing.T) {
	svc := &stubMonitor{runErr: errors.New("camera offline")}
	app, out := newTestApp(svc)

	require.Error(t, app.RunCheck(context.Background()))
	require.Empty(t, out.String())
}

func TestListCamerasPrintsEach(t *testing.T) {
	svc := &stubMonitor{cameras: []monitor.CameraInfo{
		{ID: "6abc", Name: "Tank Cam", Model: "G4 Bullet", State: "CONNECTED", MAC: "AA:BB:CC:DD:EE:FF"},
		{ID: "7def", Name: "Driveway", Model: "G4 Pro", State: "DISCONNECTED", MAC: "11:22:33:44:55:66"},
	}}
	app, out := newTestApp(svc)

	require.NoError(t, app.ListCameras(context.Background()))
	text := out.String()
	require.Contains(t, text, "Found 2 camera(s):")
	require.Contains(t, text, "Name:  Tank Cam")
	require.Contains(t, text, "ID:    6abc")
	require.Contains(t, text, "State: DISCONNECTED")
	require.Contains(t, text, "Set CAMERA_ID")
}

func TestListCamerasEmpty(t *testing.T) {
	app, out := newTestApp(&stubMonitor{})

	require.NoError(t, app.ListCameras(context.Background()))
	require.Equal(t, "No cameras found.\n", out.String())
}

func TestHistoryPrintsRows(t *testing.T) {
	pct := 35
	svc := &stubMonitor{readings: []gauge.Reading{
		{
			Timestamp:    time.Date(2026, 3, 13, 8, 0, 0, 0, time.Local),
			Percentage:   &pct,
			Confidence:   "High",
			SnapshotPath: "/data/images/oil_snapshot_20260313_080000.jpg",
		},
		{
			Timestamp:    time.Date(2026, 3, 14, 8, 0, 0, 0, time.Local),
			Confidence:   gauge.ConfidenceUnknown,
			SnapshotPath: "/data/images/oil_snapshot_20260314_080000.jpg",
		},
	}}
	app, out := newTestApp(svc)

	require.NoError(t, app.History(context.Background(), 0))
	text := out.String()
	require.Contains(t, text, "TIMESTAMP")
	require.Contains(t, text, "2026-03-13 08:00:00")
	require.Contains(t, text, "35%")
	require.Contains(t, text, "n/a")
	require.Contains(t, text, "oil_snapshot_20260314_080000.jpg")
}

func TestHistoryEmpty(t *testing.T) {
	app, out := newTestApp(&stubMonitor{})

	require.NoError(t, app.History(context.Background(), 10))
	require.Contains(t, out.String(), "No readings recorded in /data/oil_level_log.csv yet.")
}
