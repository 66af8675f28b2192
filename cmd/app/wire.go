//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/jgoulah/oil-notifier/internal/bootstrap"
	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	"github.com/jgoulah/oil-notifier/internal/infra/alertstate"
	"github.com/jgoulah/oil-notifier/internal/infra/camera/unifi"
	"github.com/jgoulah/oil-notifier/internal/infra/config"
	"github.com/jgoulah/oil-notifier/internal/infra/imageproc"
	"github.com/jgoulah/oil-notifier/internal/infra/imagestore"
	"github.com/jgoulah/oil-notifier/internal/infra/readinglog"
	"github.com/jgoulah/oil-notifier/internal/infra/vision/anthropic"
	"github.com/jgoulah/oil-notifier/pkg/logger"
)

func initializeApp(overrides config.Overrides) (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		provideLoggerOptions,
		logger.New,
		provideGaugeConfig,
		provideAlertConfig,
		provideImageOptions,
		provideCameraClient,
		provideVisionClient,
		provideImageStore,
		provideReadingStore,
		provideAlertStateStore,
		provideMailer,
		provideArchiver,
		imageproc.New,
		gauge.NewService,
		alert.NewService,
		monitor.NewService,
		wire.Bind(new(gauge.VisionClient), new(*anthropic.Client)),
		wire.Bind(new(gauge.Preprocessor), new(*imageproc.Processor)),
		wire.Bind(new(monitor.SnapshotSource), new(*unifi.Client)),
		wire.Bind(new(monitor.CameraDirectory), new(*unifi.Client)),
		wire.Bind(new(monitor.ImageStore), new(*imagestore.FSStore)),
		wire.Bind(new(gauge.ReadingStore), new(*readinglog.CSVStore)),
		wire.Bind(new(alert.StateStore), new(*alertstate.FileStore)),
		bootstrap.NewApp,
	)
	return nil, nil
}
