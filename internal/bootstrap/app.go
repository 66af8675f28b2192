package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	"github.com/jgoulah/oil-notifier/internal/infra/config"
	"github.com/jgoulah/oil-notifier/pkg/util"
)

// App ties the assembled pipeline to the command line. Log lines go to
// stderr through the structured logger; everything here writes the
// human-facing result to stdout.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	monitor monitor.Service
	out     io.Writer
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, svc monitor.Service) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		monitor: svc,
		out:     os.Stdout,
	}
}

// RunCheck executes one monitoring pass and prints the outcome.
func (a *App) RunCheck(ctx context.Context) error {
	report, err := a.monitor.RunCheck(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, report.Summary())
	return nil
}

// ListCameras prints every camera the controller reports, so the right
// camera id can be picked for the monitoring config.
func (a *App) ListCameras(ctx context.Context) error {
	cameras, err := a.monitor.ListCameras(ctx)
	if err != nil {
		return err
	}
	if len(cameras) == 0 {
		fmt.Fprintln(a.out, "No cameras found.")
		return nil
	}

	divider := strings.Repeat("-", 80)
	fmt.Fprintf(a.out, "Found %d camera(s):\n\n", len(cameras))
	fmt.Fprintln(a.out, divider)
	for _, cam := range cameras {
		fmt.Fprintf(a.out, "Name:  %s\n", cam.Name)
		fmt.Fprintf(a.out, "ID:    %s\n", cam.ID)
		fmt.Fprintf(a.out, "Model: %s\n", cam.Model)
		fmt.Fprintf(a.out, "State: %s\n", cam.State)
		fmt.Fprintf(a.out, "MAC:   %s\n", cam.MAC)
		fmt.Fprintln(a.out, divider)
	}
	fmt.Fprintln(a.out, "\nSet CAMERA_ID to the id of the camera pointed at the gauge.")
	return nil
}

// History prints the most recent readings, oldest first.
func (a *App) History(ctx context.Context, n int) error {
	readings, err := a.monitor.History(ctx, n)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		fmt.Fprintf(a.out, "No readings recorded in %s yet.\n", a.cfg.Storage.LogPath())
		return nil
	}

	fmt.Fprintf(a.out, "%-19s  %5s  %-10s  %s\n", "TIMESTAMP", "LEVEL", "CONFIDENCE", "SNAPSHOT")
	for _, r := range readings {
		fmt.Fprintf(a.out, "%-19s  %5s  %-10s  %s\n",
			util.FormatLogTime(r.Timestamp),
			levelColumn(r),
			r.Confidence,
			filepath.Base(r.SnapshotPath))
	}
	return nil
}

func levelColumn(r gauge.Reading) string {
	if !r.HasPercentage() {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", *r.Percentage)
}
