package s3

import (
	"context"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
)

// Config describes the blob store holding listing images.
type Config struct {
	Backend   string // minio | s3 | none
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// NewStorageFromConfig returns nil storage for the "none" backend; image uploads are then refused.
func NewStorageFromConfig(ctx context.Context, cfg Config, log *logger.Logger) (domain.ImageStorage, error) {
	switch cfg.Backend {
	case "minio":
		s, err := NewMinioStorage(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewAWSStorage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "none", "":
		log.Info("Blob storage disabled, image uploads will be refused")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", cfg.Backend)
	}
}
