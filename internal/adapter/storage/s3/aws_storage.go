package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// AWSStorage stores listing images through the AWS SDK. A custom endpoint targets
// S3-compatible providers (R2, MinIO) with path-style addressing.
type AWSStorage struct {
	client    *awss3.Client
	bucket    string
	region    string
	endpoint  string
	publicURL string
	logger    *logger.Logger
}

func NewAWSStorage(ctx context.Context, cfg Config, log *logger.Logger) (*AWSStorage, error) {
	log = log.Named("AWSStorage")

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	log.Info("Initialized AWS S3 storage", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region), zap.String("endpoint", endpoint))

	return &AWSStorage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  endpoint,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:    log,
	}, nil
}

func (s *AWSStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	return s.objectURL(key), nil
}

func (s *AWSStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

func (s *AWSStorage) objectURL(key string) string {
	switch {
	case s.publicURL != "":
		return s.publicURL + "/" + key
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
}

func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/")
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
