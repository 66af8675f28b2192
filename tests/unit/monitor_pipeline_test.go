package unit

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	"github.com/jgoulah/oil-notifier/internal/infra/alertstate"
	"github.com/jgoulah/oil-notifier/internal/infra/archive"
	"github.com/jgoulah/oil-notifier/internal/infra/imagestore"
	"github.com/jgoulah/oil-notifier/internal/infra/readinglog"
	"github.com/jgoulah/oil-notifier/internal/infra/vision/anthropic"
)

var frameBytes = []byte("jpeg-frame-bytes")

func TestLowReadingTriggersAlert(t *testing.T) {
	p := newPipeline(t, "Percentage: 18%\nConfidence: High", alert.Config{
		Threshold: 25,
		Recipient: "homeowner@example.com",
	})

	report, err := p.svc.RunCheck(context.Background())
	require.NoError(t, err)
	require.Equal(t, 18, *report.Reading.Percentage)
	require.Equal(t, "High", report.Reading.Confidence)

	// The model saw the captured frame.
	require.Equal(t, "test-model", p.vision.lastRequest.Model)
	blocks := p.vision.lastRequest.Messages[0].Content
	require.Equal(t, "image", blocks[0].Type)
	require.Equal(t, base64.StdEncoding.EncodeToString(frameBytes), blocks[0].Source.Data)

	// The reading landed in the log.
	rows, err := p.readings.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Contains(t, rows[0].SnapshotPath, "oil_snapshot_")

	// The warning went out and the cooldown clock started.
	require.Len(t, p.mailer.sent, 1)
	msg := p.mailer.sent[0]
	require.Equal(t, "homeowner@example.com", msg.To)
	require.Equal(t, "LOW OIL WARNING: 18% Remaining", msg.Subject)
	require.NotEmpty(t, msg.InlineJPEG)
	last, err := p.state.LastAlert(context.Background())
	require.NoError(t, err)
	require.False(t, last.IsZero())

	require.Contains(t, report.Summary(), "low level alert sent")
}

func TestHealthyReadingStaysQuiet(t *testing.T) {
	p := newPipeline(t, "Percentage: 80%\nConfidence: High", alert.Config{
		Threshold: 25,
		Recipient: "homeowner@example.com",
	})

	report, err := p.svc.RunCheck(context.Background())
	require.NoError(t, err)
	require.Equal(t, 80, *report.Reading.Percentage)

	require.Empty(t, p.mailer.sent)
	rows, err := p.readings.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	last, err := p.state.LastAlert(context.Background())
	require.NoError(t, err)
	require.True(t, last.IsZero())
	require.Contains(t, report.Summary(), "no alert")
}

func TestUnreadableReplyStillLogged(t *testing.T) {
	p := newPipeline(t, "The gauge is obscured by condensation.", alert.Config{
		Threshold: 25,
		Recipient: "homeowner@example.com",
	})

	report, err := p.svc.RunCheck(context.Background())
	require.NoError(t, err)
	require.Nil(t, report.Reading.Percentage)

	rows, err := p.readings.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "The gauge is obscured by condensation.", rows[0].RawOutput)

	require.Empty(t, p.mailer.sent)
	require.Contains(t, report.Summary(), "unknown")
}

func TestCooldownSuppressesRepeatAlert(t *testing.T) {
	p := newPipeline(t, "Percentage: 18%\nConfidence: High", alert.Config{
		Threshold: 25,
		Recipient: "homeowner@example.com",
		Cooldown:  time.Hour,
	})
	require.NoError(t, p.state.RecordAlert(context.Background(), time.Now().Add(-10*time.Minute)))

	report, err := p.svc.RunCheck(context.Background())
	require.NoError(t, err)
	require.Empty(t, p.mailer.sent)
	require.True(t, report.Alert.Suppressed)
	require.Contains(t, report.Summary(), "suppressed by cooldown")

	// The reading is still recorded.
	rows, err := p.readings.Latest(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRangeReplyUsesUpperBound(t *testing.T) {
	p := newPipeline(t, "Percentage: 30-40%\nConfidence: Medium", alert.Config{
		Threshold: 25,
		Recipient: "homeowner@example.com",
	})

	report, err := p.svc.RunCheck(context.Background())
	require.NoError(t, err)
	require.Equal(t, 40, *report.Reading.Percentage)
	require.Empty(t, p.mailer.sent)
}

type pipeline struct {
	vision   *stubVisionClient
	mailer   *recordingMailer
	readings *readinglog.MemoryStore
	images   *imagestore.MemoryStore
	state    *alertstate.MemoryStore
	svc      monitor.Service
}

func newPipeline(t *testing.T, reply string, alertCfg alert.Config) *pipeline {
	t.Helper()

	p := &pipeline{
		vision:   &stubVisionClient{reply: reply},
		mailer:   &recordingMailer{},
		readings: readinglog.NewMemoryStore(),
		images:   imagestore.NewMemoryStore(),
		state:    alertstate.NewMemoryStore(),
	}

	logger := newTestLogger()
	gaugeSvc := gauge.NewService(gauge.Config{
		Model:     "test-model",
		MaxTokens: 256,
		Prompt:    "Read the gauge.",
	}, p.vision, passthroughPreprocessor{}, logger)
	alertSvc := alert.NewService(alertCfg, p.mailer, p.state, logger)

	p.svc = monitor.NewService(
		&stubSnapshotSource{data: frameBytes},
		&stubDirectory{},
		gaugeSvc,
		p.images,
		p.readings,
		alertSvc,
		archive.Nop{},
		logger,
	)
	return p
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubVisionClient struct {
	reply       string
	err         error
	lastRequest anthropic.MessageRequest
}

func (s *stubVisionClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (anthropic.MessageResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return anthropic.MessageResponse{}, s.err
	}
	return anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.reply}},
		Usage:   anthropic.Usage{InputTokens: 1200, OutputTokens: 30},
	}, nil
}

type stubSnapshotSource struct {
	data []byte
}

func (s *stubSnapshotSource) Snapshot(ctx context.Context) (monitor.Snapshot, error) {
	return monitor.Snapshot{Data: s.data, ContentType: "image/jpeg"}, nil
}

type stubDirectory struct{}

func (stubDirectory) ListCameras(ctx context.Context) ([]monitor.CameraInfo, error) {
	return nil, nil
}

type passthroughPreprocessor struct {
	prepareErr error
}

func (p passthroughPreprocessor) Prepare(raw []byte) ([]byte, error) {
	if p.prepareErr != nil {
		return nil, p.prepareErr
	}
	return raw, nil
}

func (p passthroughPreprocessor) Downscale(processed []byte) ([]byte, error) {
	return processed, nil
}

type recordingMailer struct {
	sent []alert.EmailMessage
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg alert.EmailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
