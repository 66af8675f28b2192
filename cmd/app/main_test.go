package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "capture failure",
			err:  apperrors.Wrap("capture_failed", "camera snapshot failed", errors.New("dial tcp: connection refused")),
			want: exitCapture,
		},
		{
			name: "analysis failure keeps the stage code over the cause",
			err:  apperrors.Wrap("analysis_failed", "gauge analysis failed", apperrors.Wrap("vision_quota", "quota exceeded", nil)),
			want: exitAnalysis,
		},
		{
			name: "persistence failure",
			err:  apperrors.Wrap("persistence_failed", "record reading", nil),
			want: exitPersistence,
		},
		{
			name: "plain error maps to the config exit",
			err:  errors.New("invalid config: alert.threshold must be within [0, 100]"),
			want: exitConfig,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, exitCodeFor(tc.err))
		})
	}
}
