package storage

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageType represents the type of storage implementation
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinIO StorageType = "minio"
	StorageTypeMock  StorageType = "mock"
)

// Factory creates ObjectStorage instances based on configuration
type Factory struct {
	awsConfig aws.Config
}

// NewFactory creates a new storage factory. awsConfig is only used for S3.
func NewFactory(awsConfig aws.Config) *Factory {
	return &Factory{
		awsConfig: awsConfig,
	}
}

// Create creates an ObjectStorage instance based on the provided configuration
func (f *Factory) Create(config *StorageConfig) (ObjectStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	storageType := StorageType(strings.ToLower(config.Type))

	var storage ObjectStorage
	var err error

	switch storageType {
	case StorageTypeS3:
		storage, err = f.createS3Storage(config)
	case StorageTypeMinIO:
		storage, err = NewMinIOStorage(config)
	case StorageTypeMock:
		storage = NewMockObjectStorage(config.Bucket, config.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}

	return storage, nil
}

// createS3Storage creates an AWS S3 storage implementation
func (f *Factory) createS3Storage(config *StorageConfig) (ObjectStorage, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client := s3.NewFromConfig(f.awsConfig, func(o *s3.Options) {
		if config.Region != "" {
			o.Region = config.Region
		}
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = config.UsePathStyle
	})

	return NewS3Storage(client, config.Bucket, config.PublicBaseURL), nil
}
