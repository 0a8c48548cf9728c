package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/SAP-F-2025/logic-quiz-service/internal/config"
)

// ImageResolver turns a stored image reference into a URL a browser can load
type ImageResolver interface {
	Resolve(ctx context.Context, ref *string) *string
}

// PassthroughResolver returns references unchanged
type PassthroughResolver struct{}

func (PassthroughResolver) Resolve(ctx context.Context, ref *string) *string {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil
	}
	return ref
}

// MinioImageResolver presigns object keys stored in a MinIO bucket.
// Absolute URLs and root-relative paths are passed through.
type MinioImageResolver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger *slog.Logger
}

func NewMinioImageResolver(cfg config.MinioConfig, expiry time.Duration, logger *slog.Logger) (*MinioImageResolver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioImageResolver{
		client: client,
		bucket: cfg.Bucket,
		expiry: expiry,
		logger: logger,
	}, nil
}

func (r *MinioImageResolver) Resolve(ctx context.Context, ref *string) *string {
	if ref == nil {
		return nil
	}
	key := strings.TrimSpace(*ref)
	if key == "" {
		return nil
	}
	if isDirectURL(key) {
		return &key
	}

	presigned, err := r.client.PresignedGetObject(ctx, r.bucket, strings.TrimPrefix(key, r.bucket+"/"), r.expiry, url.Values{})
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to presign image", "key", key, "error", err)
		return &key
	}

	resolved := presigned.String()
	return &resolved
}

func isDirectURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "/")
}
