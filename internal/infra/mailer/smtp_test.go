package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgoulah/oil-notifier/internal/domain/alert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSMTPMailerRequiresServer(t *testing.T) {
	_, err := NewSMTPMailer("", 587, "", "", "monitor@example.com", testLogger())
	require.Error(t, err)
}

func TestNewSMTPMailerRequiresSender(t *testing.T) {
	_, err := NewSMTPMailer("smtp.example.com", 587, "", "", "  ", testLogger())
	require.Error(t, err)
}

func TestNewSMTPMailerWithoutCredentials(t *testing.T) {
	m, err := NewSMTPMailer("smtp.example.com", 587, "", "", "monitor@example.com", testLogger())
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestClassifySendError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth failure", errors.New("535 5.7.8 authentication credentials invalid"), "mail_auth"},
		{"dial failure", errors.New("dial tcp 10.0.0.1:587: i/o timeout"), "mail_connect"},
		{"refused connection", errors.New("connect: connection refused"), "mail_connect"},
		{"rejected recipient", errors.New("550 5.1.1 user unknown"), "mail_rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, classifySendError(tt.err))
		})
	}
}

func TestDisabledMailerAlwaysFails(t *testing.T) {
	err := Disabled{}.Send(context.Background(), alert.EmailMessage{To: "a@example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not configured")
}
