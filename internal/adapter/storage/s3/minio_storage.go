package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStorage stores listing images in a MinIO (or any S3-compatible) bucket.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *logger.Logger
}

func NewMinioStorage(cfg Config, log *logger.Logger) (*MinioStorage, error) {
	log = log.Named("MinioStorage")
	log.Info("Initializing MinIO storage", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket), zap.Bool("use_ssl", cfg.UseSSL))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		log.Error("Failed to create MinIO client", zap.String("endpoint", cfg.Endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}
	return &MinioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:    log,
	}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err == nil {
		s.logger.Info("Bucket created", zap.String("bucket", s.bucket))
		return nil
	}
	exists, errExists := s.client.BucketExists(ctx, s.bucket)
	if errExists == nil && exists {
		s.logger.Info("Bucket already exists", zap.String("bucket", s.bucket))
		return nil
	}
	s.logger.Error("Failed to make or verify bucket", zap.String("bucket", s.bucket), zap.NamedError("make_bucket_error", err), zap.NamedError("check_exists_error", errExists))
	return fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", s.bucket, err, errExists)
}

func (s *MinioStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return s.objectURL(key), nil
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

// objectURL is http(s)://<endpoint>/<bucket>/<key> unless a public base URL is configured.
func (s *MinioStorage) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
}
