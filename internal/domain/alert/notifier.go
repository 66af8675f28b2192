package alert

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
)

// Config drives the notification policy for one run.
type Config struct {
	Threshold     int
	Recipient     string
	Cooldown      time.Duration
	SendOKReports bool
}

// Outcome reports what the notifier decided and did for one reading.
type Outcome struct {
	Decision   Decision
	Sent       bool
	Suppressed bool
	Recipient  string
}

// EmailMessage is a composed notification ready for transport.
type EmailMessage struct {
	To         string
	Subject    string
	TextBody   string
	HTMLBody   string
	InlineJPEG []byte
}

// Mailer delivers one composed message.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// StateStore remembers when the last low-level alert went out so repeats can
// be held back during the cooldown window.
type StateStore interface {
	LastAlert(ctx context.Context) (time.Time, error)
	RecordAlert(ctx context.Context, at time.Time) error
}

// Service decides whether a reading warrants a notification and delivers it.
// Notification failures never fail the surrounding run; callers surface the
// returned error as a warning.
type Service interface {
	Notify(ctx context.Context, reading gauge.Reading, gaugeImage []byte) (Outcome, error)
}

type service struct {
	cfg    Config
	mailer Mailer
	state  StateStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the alert domain.
func NewService(cfg Config, mailer Mailer, state StateStore, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		mailer: mailer,
		state:  state,
		logger: logger.With("component", "alert.service"),
		now:    time.Now,
	}
}

func (s *service) Notify(ctx context.Context, reading gauge.Reading, gaugeImage []byte) (Outcome, error) {
	decision := Evaluate(reading.Percentage, s.cfg.Threshold)
	outcome := Outcome{Decision: decision}

	// An unknown level sends nothing, not even a status report.
	if !reading.HasPercentage() {
		return outcome, nil
	}

	warning := decision == DecisionLowLevel
	if !warning && !s.cfg.SendOKReports {
		return outcome, nil
	}

	if warning && s.withinCooldown(ctx) {
		outcome.Suppressed = true
		s.logger.Info("low level alert suppressed by cooldown", "cooldown", s.cfg.Cooldown)
		return outcome, nil
	}

	if strings.TrimSpace(s.cfg.Recipient) == "" {
		return outcome, errors.New("no alert recipient configured")
	}
	outcome.Recipient = s.cfg.Recipient

	subject, text, html := composeEmail(s.cfg, *reading.Percentage, s.now(), len(gaugeImage) > 0, warning)
	msg := EmailMessage{
		To:         s.cfg.Recipient,
		Subject:    subject,
		TextBody:   text,
		HTMLBody:   html,
		InlineJPEG: gaugeImage,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return outcome, err
	}
	outcome.Sent = true
	s.logger.Info("notification sent", "recipient", s.cfg.Recipient, "warning", warning)

	if warning {
		if err := s.state.RecordAlert(ctx, s.now()); err != nil {
			s.logger.Warn("failed to record alert time", "error", err)
		}
	}
	return outcome, nil
}

// withinCooldown reports whether a previous alert is still fresh enough to
// hold this one back. Reading the state is best-effort: when it fails we
// alert anyway rather than risk staying silent on a low tank.
func (s *service) withinCooldown(ctx context.Context) bool {
	if s.cfg.Cooldown <= 0 {
		return false
	}
	last, err := s.state.LastAlert(ctx)
	if err != nil {
		s.logger.Warn("failed to read last alert time", "error", err)
		return false
	}
	if last.IsZero() {
		return false
	}
	return s.now().Sub(last) < s.cfg.Cooldown
}
