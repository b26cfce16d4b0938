package storage

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// ObjectStorage issues upload URLs for attachment objects.
// Objects are written by clients directly, never by this service.
type ObjectStorage interface {
	// PresignUpload returns a time-limited URL that permits a single PUT of key
	PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error)

	// PublicURL returns the permanent, unsigned URL an object is served from
	PublicURL(key string) string

	// Close cleans up any resources used by the storage implementation
	Close() error
}

// StorageConfig represents configuration for storage providers
type StorageConfig struct {
	Type          string // "s3", "minio" or "mock"
	Bucket        string
	Region        string
	Endpoint      string // S3 endpoint override or MinIO host:port
	UsePathStyle  bool
	PublicBaseURL string // overrides the default public URL prefix
	AccessKey     string // MinIO only
	SecretKey     string // MinIO only
	UseSSL        bool   // MinIO only
}

// DefaultPublicBaseURL returns the virtual-hosted S3 URL prefix for bucket
func DefaultPublicBaseURL(bucket string) string {
	return "https://" + bucket + ".s3.amazonaws.com"
}

// joinPublicURL appends key to base as a single escaped path segment
func joinPublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(key)
}

func validateUpload(key string, expiry time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return NewStorageError("PresignUpload", key, ErrInvalidKey)
	}
	if expiry <= 0 {
		return NewStorageError("PresignUpload", key, ErrInvalidExpiry)
	}
	return nil
}
