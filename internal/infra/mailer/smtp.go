package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

// SMTPMailer delivers notifications through an SMTP relay over STARTTLS.
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger *slog.Logger
}

// NewSMTPMailer builds the transport. Credentials are optional; without
// them the relay is spoken to unauthenticated.
func NewSMTPMailer(server string, port int, username, password, from string, logger *slog.Logger) (*SMTPMailer, error) {
	if strings.TrimSpace(server) == "" {
		return nil, errors.New("smtp server cannot be empty")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("sender address cannot be empty")
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(30 * time.Second),
	}
	if username != "" && password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(server, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   from,
		logger: logger.With("component", "mailer.smtp"),
	}, nil
}

// Send delivers one composed notification.
func (m *SMTPMailer) Send(ctx context.Context, msg alert.EmailMessage) error {
	email := mail.NewMsg()
	if err := email.From(m.from); err != nil {
		return apperrors.Wrap("mail_rejected", "invalid sender address", err)
	}
	if err := email.To(msg.To); err != nil {
		return apperrors.Wrap("mail_rejected", "invalid recipient address", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		email.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	if len(msg.InlineJPEG) > 0 {
		if err := email.EmbedReader(alert.InlineImageName, bytes.NewReader(msg.InlineJPEG)); err != nil {
			return apperrors.Wrap("mail_rejected", "embed gauge image", err)
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return apperrors.Wrap(classifySendError(err), "send notification", err)
	}
	m.logger.Info("mail delivered", "to", msg.To, "subject", msg.Subject)
	return nil
}

// classifySendError buckets SMTP failures into connect, auth and rejection
// problems. The SMTP client flattens causes into message text, so this works
// off the wording.
func classifySendError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "auth"):
		return "mail_auth"
	case strings.Contains(msg, "dial"), strings.Contains(msg, "connect"), strings.Contains(msg, "timeout"):
		return "mail_connect"
	default:
		return "mail_rejected"
	}
}

// Disabled stands in when no usable SMTP settings are configured; every
// send fails with a clear explanation instead of silently dropping mail.
type Disabled struct{}

// Send always fails.
func (Disabled) Send(context.Context, alert.EmailMessage) error {
	return errors.New("mail transport not configured")
}

var (
	_ alert.Mailer = (*SMTPMailer)(nil)
	_ alert.Mailer = Disabled{}
)
