package archive

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSanitizeEndpoint(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://abc123.r2.cloudflarestorage.com", "abc123.r2.cloudflarestorage.com"},
		{"http://minio.local:9000", "minio.local:9000"},
		{"minio.local:9000/extra/path", "minio.local:9000"},
		{"  s3.us-east-1.amazonaws.com  ", "s3.us-east-1.amazonaws.com"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, sanitizeEndpoint(tt.raw))
	}
}

func TestNewS3ArchiverRejectsEmptyEndpoint(t *testing.T) {
	_, err := NewS3Archiver("", "ak", "sk", "oil-snapshots", "", "auto", testLogger())
	require.Error(t, err)
}

func TestNewS3ArchiverBuildsClient(t *testing.T) {
	a, err := NewS3Archiver("https://minio.local:9000", "ak", "sk", "oil-snapshots", "/gauge/", "auto", testLogger())
	require.NoError(t, err)
	require.Equal(t, "gauge", a.prefix)
}

func TestObjectKey(t *testing.T) {
	a := &S3Archiver{prefix: "gauge"}
	require.Equal(t, "gauge/oil_snapshot_20260314_093045.jpg", a.objectKey("oil_snapshot_20260314_093045.jpg"))

	bare := &S3Archiver{}
	require.Equal(t, "oil_snapshot_20260314_093045.jpg", bare.objectKey("/oil_snapshot_20260314_093045.jpg"))
}

func TestNopArchiverAcceptsAnything(t *testing.T) {
	require.NoError(t, Nop{}.Archive(context.Background(), "x.jpg", []byte{0xff}, "image/jpeg"))
}
