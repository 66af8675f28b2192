package gauge

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jgoulah/oil-notifier/internal/infra/vision/anthropic"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
	"github.com/jgoulah/oil-notifier/pkg/metrics"
)

// Config carries the inference settings for gauge analysis.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Prompt      string
}

// Service turns a raw camera frame into a structured gauge reading.
type Service interface {
	Analyze(ctx context.Context, frame []byte) (Analysis, error)
}

// VisionClient sends one request to the inference service.
type VisionClient interface {
	CreateMessage(ctx context.Context, req anthropic.MessageRequest) (anthropic.MessageResponse, error)
}

// Preprocessor shapes raw frames before they reach the model and produces
// the smaller copy used for email embedding.
type Preprocessor interface {
	Prepare(raw []byte) ([]byte, error)
	Downscale(processed []byte) ([]byte, error)
}

type service struct {
	cfg    Config
	client VisionClient
	prep   Preprocessor
	logger *slog.Logger
}

// NewService wires up the gauge reading domain.
func NewService(cfg Config, client VisionClient, prep Preprocessor, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		prep:   prep,
		logger: logger.With("component", "gauge.service"),
	}
}

// Analyze preprocesses the frame, asks the model to read the gauge and
// parses the reply. Only inference transport problems surface as errors; a
// reply the parser cannot use becomes a nil-percentage result so the caller
// still records the observation.
func (s *service) Analyze(ctx context.Context, frame []byte) (Analysis, error) {
	var analysis Analysis

	processed, err := s.prep.Prepare(frame)
	if err != nil {
		// Fall back to the raw frame; an uncropped image often still reads.
		s.logger.Warn("frame preprocessing failed, sending raw frame", "error", err)
		processed = frame
	}
	analysis.Processed = processed

	if email, err := s.prep.Downscale(processed); err != nil {
		s.logger.Warn("email copy downscale failed", "error", err)
	} else {
		analysis.EmailImage = email
	}

	req := anthropic.MessageRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []anthropic.Message{
			anthropic.NewVisionMessage(http.DetectContentType(processed), processed, s.cfg.Prompt),
		},
	}

	resp, err := s.client.CreateMessage(ctx, req)
	if err != nil {
		return analysis, err
	}
	analysis.Usage = metrics.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return analysis, apperrors.Wrap("vision_transport", "inference service returned an empty reply", nil)
	}

	analysis.Result = parseReply(text)
	if analysis.Result.Percentage == nil {
		s.logger.Warn("reply held no usable percentage",
			"confidence", analysis.Result.Confidence,
			"reply_bytes", len(text))
	} else {
		s.logger.Info("gauge read",
			"percentage", *analysis.Result.Percentage,
			"confidence", analysis.Result.Confidence,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens)
	}
	return analysis, nil
}
