package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/blob"
	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/logger"
	"github.com/gatherly/gatherly-server/internal/media/images"
)

// BlobHandle holds the configured blob store.
// Store is nil when uploads are disabled. Local is set only for the local
// backend, whose files this process serves itself.
type BlobHandle struct {
	Store blob.Store
	Local *blob.Local
}

// ProvideBlobStore provides the uploaded file store.
func ProvideBlobStore(i do.Injector) (*BlobHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Blob.Configured() {
		log.Warn("Blob storage not configured, file fields are disabled", "backend", cfg.Blob.Backend)
		return &BlobHandle{}, nil
	}

	switch cfg.Blob.Backend {
	case config.BlobBackendS3:
		client, err := newS3Client(cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		log.Info("Blob storage initialized", "backend", "s3", "bucket", cfg.Blob.Bucket, "region", cfg.Blob.Region)
		return &BlobHandle{Store: blob.NewS3(client, cfg.Blob.Bucket, cfg.Blob.PublicURL)}, nil

	default:
		local, err := blob.NewLocal(cfg.Blob.LocalPath, cfg.Blob.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("local blob storage: %w", err)
		}
		log.Info("Blob storage initialized", "backend", "local", "path", cfg.Blob.LocalPath)
		return &BlobHandle{Store: local, Local: local}, nil
	}
}

func newS3Client(cfg config.BlobConfig) (*s3.Client, error) {
	accessKeyID, secretAccessKey, _ := cfg.Credentials()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ProvideImageAnalyzer provides the blur hash analyzer for uploaded images.
func ProvideImageAnalyzer(i do.Injector) (*images.Analyzer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewAnalyzer(cfg.Images.BlurhashTimeout, log.Logger), nil
}
