package storage

import (
	"context"
	"fmt"

	appconfig "github.com/prashanttechie/portfolio-project/internal/config"
)

type FactoryResult struct {
	Driver  string
	Storage Storage // nil when archiving is off
}

func FromConfig(ctx context.Context, cfg appconfig.StorageConfig) (FactoryResult, error) {
	switch cfg.Driver {
	case "", "none":
		return FactoryResult{Driver: "none"}, nil

	case "local":
		return FactoryResult{Driver: "local", Storage: NewLocal(cfg.LocalDir)}, nil

	case "s3":
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			return FactoryResult{}, fmt.Errorf("S3 config missing: S3_REGION, S3_BUCKET required")
		}
		s, err := NewS3(ctx, S3Config{
			Region: cfg.S3Region,
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
		})
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "s3", Storage: s}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.Driver)
	}
}
