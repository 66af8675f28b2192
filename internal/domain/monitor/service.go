package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

// Service runs the monitoring pipeline end to end: capture, analyze, record,
// notify. It also backs the discovery and history commands.
type Service interface {
	RunCheck(ctx context.Context) (Report, error)
	ListCameras(ctx context.Context) ([]CameraInfo, error)
	History(ctx context.Context, n int) ([]gauge.Reading, error)
}

type service struct {
	camera    SnapshotSource
	directory CameraDirectory
	analyzer  gauge.Service
	images    ImageStore
	store     gauge.ReadingStore
	alerts    alert.Service
	archiver  Archiver
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the monitoring pipeline.
func NewService(
	camera SnapshotSource,
	directory CameraDirectory,
	analyzer gauge.Service,
	images ImageStore,
	store gauge.ReadingStore,
	alerts alert.Service,
	archiver Archiver,
	logger *slog.Logger,
) Service {
	return &service{
		camera:    camera,
		directory: directory,
		analyzer:  analyzer,
		images:    images,
		store:     store,
		alerts:    alerts,
		archiver:  archiver,
		logger:    logger.With("component", "monitor.service"),
		now:       time.Now,
	}
}

// RunCheck performs one complete check. The reading is appended to the log
// even when the reply held no usable percentage; only capture, analysis and
// persistence failures abort the run. Everything after the reading is on
// disk degrades to warnings.
func (s *service) RunCheck(ctx context.Context) (Report, error) {
	wallStart := time.Now()
	startedAt := s.now()
	runID := uuid.NewString()
	log := s.logger.With("run_id", runID)
	log.Info("check started")

	snap, err := s.camera.Snapshot(ctx)
	if err != nil {
		return Report{}, apperrors.Wrap("capture_failed", "fetch camera snapshot", err)
	}
	log.Debug("snapshot captured", "size", len(snap.Data), "content_type", snap.ContentType)

	rawPath, err := s.images.SaveSnapshot(ctx, startedAt, snap.Data)
	if err != nil {
		return Report{}, apperrors.Wrap("persistence_failed", "persist raw snapshot", err)
	}

	analysis, err := s.analyzer.Analyze(ctx, snap.Data)
	if err != nil {
		return Report{}, apperrors.Wrap("analysis_failed", "analyze gauge frame", err)
	}

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		log.Warn(msg)
	}

	if len(analysis.EmailImage) > 0 {
		if _, err := s.images.SaveProcessed(ctx, startedAt, analysis.EmailImage); err != nil {
			warn("processed image not saved: %v", err)
		}
	}

	reading := gauge.Reading{
		Timestamp:    startedAt,
		Percentage:   analysis.Result.Percentage,
		Confidence:   analysis.Result.Confidence,
		RawOutput:    analysis.Result.RawOutput,
		SnapshotPath: rawPath,
	}
	if err := s.store.Append(ctx, reading); err != nil {
		return Report{}, apperrors.Wrap("persistence_failed", "append reading to log", err)
	}
	log.Info("reading recorded", "snapshot", rawPath)

	if err := s.archiver.Archive(ctx, filepath.Base(rawPath), snap.Data, snap.ContentType); err != nil {
		warn("snapshot not archived: %v", err)
	}

	outcome, err := s.alerts.Notify(ctx, reading, analysis.EmailImage)
	if err != nil {
		warn("notification not delivered: %v", err)
	}

	elapsed := time.Since(wallStart)
	log.Info("check finished",
		"duration", elapsed,
		"total_tokens", analysis.Usage.Total(),
		"warnings", len(warnings))

	return Report{
		RunID:     runID,
		Timestamp: startedAt,
		Reading:   reading,
		Alert:     outcome,
		Usage:     analysis.Usage,
		Warnings:  warnings,
		Duration:  elapsed,
	}, nil
}

// ListCameras returns the cameras the controller knows about.
func (s *service) ListCameras(ctx context.Context) ([]CameraInfo, error) {
	cameras, err := s.directory.ListCameras(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cameras listed", "count", len(cameras))
	return cameras, nil
}

// History returns the most recent readings, oldest first. n <= 0 returns
// everything.
func (s *service) History(ctx context.Context, n int) ([]gauge.Reading, error) {
	return s.store.Latest(ctx, n)
}
