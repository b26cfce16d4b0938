package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage issues pre-signed PUT URLs against any S3-compatible endpoint
type MinIOStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

var _ ObjectStorage = (*MinIOStorage)(nil)

// NewMinIOStorage creates a MinIO client for the configured endpoint.
// No request is made until a URL is signed or EnsureBucket is called.
func NewMinIOStorage(config *StorageConfig) (*MinIOStorage, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	region := config.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicBase := config.PublicBaseURL
	if publicBase == "" {
		// Path-style URL served by the endpoint itself
		publicBase = client.EndpointURL().String() + "/" + config.Bucket
	}

	return &MinIOStorage{
		client:     client,
		bucket:     config.Bucket,
		publicBase: publicBase,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return NewStorageError("EnsureBucket", "", errors.Join(ErrStorageUnavailable, err))
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return NewStorageError("EnsureBucket", "", fmt.Errorf("create bucket %q: %w", s.bucket, err))
	}
	return nil
}

// PresignUpload signs a PUT request for key valid for expiry
func (s *MinIOStorage) PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validateUpload(key, expiry); err != nil {
		return "", err
	}

	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", NewStorageError("PresignUpload", key, classifyMinIOError(err))
	}

	return u.String(), nil
}

// PublicURL implements ObjectStorage.PublicURL
func (s *MinIOStorage) PublicURL(key string) string {
	return joinPublicURL(s.publicBase, key)
}

// Close implements ObjectStorage.Close
func (s *MinIOStorage) Close() error {
	return nil
}

func classifyMinIOError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errors.Join(ErrPermissionDenied, err)
	}
	return errors.Join(ErrStorageUnavailable, err)
}
