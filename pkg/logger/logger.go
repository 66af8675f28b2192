package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Options selects verbosity and output format for the process logger.
type Options struct {
	Level string
	JSON  bool
}

// New constructs the process-wide slog logger. Structured output goes to
// stderr so the per-run summary on stdout stays machine-greppable.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler).With("service", "oil-notifier")
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
