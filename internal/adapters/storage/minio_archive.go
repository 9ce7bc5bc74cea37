// Package storage keeps raw statement files in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioArchive implements ports.StatementArchive on one bucket.
type MinioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioArchive connects to endpoint and makes sure the bucket exists.
func NewMinioArchive(endpoint, accessKey, secretKey string, secure bool, bucket string) (*MinioArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO server: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", bucket, err)
		}
		slog.Info("Created statement archive bucket", slog.String("bucket", bucket))
	}

	return &MinioArchive{client: client, bucket: bucket}, nil
}

var _ ports.StatementArchive = (*MinioArchive)(nil)

func (a *MinioArchive) Store(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return a.bucket + "/" + key, nil
}
