package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jgoulah/oil-notifier/internal/domain/monitor"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
)

// S3Archiver mirrors snapshots to an S3-compatible bucket so the history
// survives the monitoring host. Uploads are fire-and-forget from the
// pipeline's point of view; a failed upload never blocks a reading.
type S3Archiver struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Archiver constructs the archiver against any S3-compatible endpoint.
func NewS3Archiver(endpoint, accessKey, secretKey, bucket, prefix, region string, logger *slog.Logger) (*S3Archiver, error) {
	cleanEndpoint := sanitizeEndpoint(endpoint)
	if cleanEndpoint == "" {
		return nil, fmt.Errorf("archive endpoint cannot be empty")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(endpoint), "http://")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With("component", "archive.s3"),
	}, nil
}

func (a *S3Archiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err == nil && exists {
		return nil
	}
	err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Archive uploads one artifact under the configured key prefix.
func (a *S3Archiver) Archive(ctx context.Context, name string, data []byte, contentType string) error {
	if err := a.ensureBucket(ctx); err != nil {
		return apperrors.Wrap("storage_error", "ensure archive bucket", err)
	}
	key := a.objectKey(name)
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024, // snapshots stay well under one part
	})
	if err != nil {
		return apperrors.Wrap("storage_error", fmt.Sprintf("upload %s", key), err)
	}
	a.logger.Debug("snapshot archived", "key", key, "size", info.Size)
	return nil
}

func (a *S3Archiver) objectKey(name string) string {
	name = strings.TrimPrefix(name, "/")
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}

// sanitizeEndpoint strips schemes and paths down to the host the client wants.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.IndexByte(raw, '/'); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

// Nop is the archiver used when mirroring is disabled.
type Nop struct{}

// Archive discards the artifact.
func (Nop) Archive(context.Context, string, []byte, string) error { return nil }

var (
	_ monitor.Archiver = (*S3Archiver)(nil)
	_ monitor.Archiver = Nop{}
)
