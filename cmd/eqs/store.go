package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/born-ml/equistore/blobstore"
	minioblob "github.com/born-ml/equistore/blobstore/minio"
	s3blob "github.com/born-ml/equistore/blobstore/s3"
)

// openStore builds the blob store described by cfg.
func openStore(ctx context.Context, cfg *Config) (blobstore.BlobStore, error) {
	store, err := newStore(ctx, &cfg.Store)
	if err != nil {
		return nil, err
	}
	if cfg.IOLimit > 0 {
		return blobstore.NewThrottled(store, cfg.IOLimit), nil
	}
	return store, nil
}

func newStore(ctx context.Context, cfg *StoreConfig) (blobstore.BlobStore, error) {
	switch cfg.Kind {
	case "local", "":
		store, err := blobstore.NewLocalStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "minio":
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("minio store needs an endpoint and a bucket")
		}
		creds := credentials.NewEnvMinio()
		if cfg.AccessKey != "" {
			creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
		}
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  creds,
			Secure: cfg.Secure,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return minioblob.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 store needs a bucket")
		}
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3blob.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}
