// Package storage holds the external storage collaborators: the S3-compatible
// object store the raw reports are pulled from, and the Redis store the
// computed recommendations are written to.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore reads raw report objects from blob storage.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// MinioObjectStore is the S3-compatible ObjectStore implementation.
type MinioObjectStore struct {
	client *minio.Client
}

// NewMinioObjectStore connects to an S3-compatible endpoint.
func NewMinioObjectStore(endpoint, accessKey, secretKey string, useSSL bool) (*MinioObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &MinioObjectStore{client: client}, nil
}

// Get downloads one object in full.
func (s *MinioObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// BucketReachable checks the configured bucket, used by the extended health check.
func (s *MinioObjectStore) BucketReachable(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", bucket)
	}
	return nil
}
