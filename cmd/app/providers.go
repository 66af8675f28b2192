package main

import (
	"log/slog"
	"strings"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	"github.com/jgoulah/oil-notifier/internal/infra/alertstate"
	"github.com/jgoulah/oil-notifier/internal/infra/archive"
	"github.com/jgoulah/oil-notifier/internal/infra/camera/unifi"
	"github.com/jgoulah/oil-notifier/internal/infra/config"
	"github.com/jgoulah/oil-notifier/internal/infra/imageproc"
	"github.com/jgoulah/oil-notifier/internal/infra/imagestore"
	"github.com/jgoulah/oil-notifier/internal/infra/mailer"
	"github.com/jgoulah/oil-notifier/internal/infra/readinglog"
	"github.com/jgoulah/oil-notifier/internal/infra/vision/anthropic"
	"github.com/jgoulah/oil-notifier/pkg/logger"
)

func provideLoggerOptions(cfg *config.Config) logger.Options {
	return logger.Options{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.JSON,
	}
}

func provideGaugeConfig(cfg *config.Config) gauge.Config {
	return gauge.Config{
		Model:       cfg.Vision.Model,
		MaxTokens:   cfg.Vision.MaxTokens,
		Temperature: cfg.Vision.Temperature,
		Prompt:      cfg.Vision.Prompt,
	}
}

func provideAlertConfig(cfg *config.Config) alert.Config {
	return alert.Config{
		Threshold:     cfg.Alert.Threshold,
		Recipient:     cfg.Alert.Recipient,
		Cooldown:      cfg.Alert.Cooldown,
		SendOKReports: cfg.Alert.SendOKReports,
	}
}

func provideImageOptions(cfg *config.Config) imageproc.Options {
	return imageproc.Options{
		RotateDegrees:     cfg.Image.RotateDegrees,
		CropLeft:          cfg.Image.Crop.Left,
		CropTop:           cfg.Image.Crop.Top,
		CropRight:         cfg.Image.Crop.Right,
		CropBottom:        cfg.Image.Crop.Bottom,
		ReduceGlare:       cfg.Image.ReduceGlare,
		Enhance:           cfg.Image.Enhance,
		EmailScalePercent: cfg.Image.EmailScalePercent,
	}
}

func provideCameraClient(cfg *config.Config) (*unifi.Client, error) {
	return unifi.NewClient(cfg.Camera.Host, cfg.Camera.APIKey, cfg.Camera.CameraID, cfg.Camera.Timeout, cfg.Camera.VerifyTLS)
}

func provideVisionClient(cfg *config.Config) (*anthropic.Client, error) {
	return anthropic.NewClient(cfg.Vision.APIKey, cfg.Vision.BaseURL, cfg.Vision.Timeout)
}

func provideImageStore(cfg *config.Config, logger *slog.Logger) *imagestore.FSStore {
	return imagestore.NewFSStore(cfg.Storage.ImagesDir(), logger)
}

func provideReadingStore(cfg *config.Config, logger *slog.Logger) *readinglog.CSVStore {
	return readinglog.NewCSVStore(cfg.Storage.LogPath(), logger)
}

func provideAlertStateStore(cfg *config.Config) *alertstate.FileStore {
	return alertstate.NewFileStore(cfg.Storage.AlertStatePath())
}

// provideMailer falls back to a disabled transport when SMTP settings are
// incomplete, so discovery and history commands work on a fresh install.
func provideMailer(cfg *config.Config, logger *slog.Logger) alert.Mailer {
	sender := cfg.Mail.Sender()
	if strings.TrimSpace(cfg.Alert.Recipient) == "" || strings.TrimSpace(sender) == "" {
		logger.Info("mail transport not configured, notifications disabled")
		return mailer.Disabled{}
	}
	m, err := mailer.NewSMTPMailer(cfg.Mail.Server, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, sender, logger)
	if err != nil {
		logger.Error("smtp transport unavailable, notifications disabled", "error", err)
		return mailer.Disabled{}
	}
	return m
}

func provideArchiver(cfg *config.Config, logger *slog.Logger) monitor.Archiver {
	if !cfg.Archive.Enabled {
		return archive.Nop{}
	}
	a, err := archive.NewS3Archiver(
		cfg.Archive.Endpoint,
		cfg.Archive.AccessKey,
		cfg.Archive.SecretKey,
		cfg.Archive.Bucket,
		cfg.Archive.Prefix,
		cfg.Archive.Region,
		logger,
	)
	if err != nil {
		logger.Error("archive endpoint unavailable, mirroring disabled", "error", err)
		return archive.Nop{}
	}
	logger.Info("snapshot archive enabled", "bucket", cfg.Archive.Bucket)
	return a
}
