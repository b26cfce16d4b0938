package storage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// PutObjectPresigner is the subset of s3.PresignClient used to sign uploads
type PutObjectPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage issues SigV4 pre-signed PUT URLs for an S3 bucket
type S3Storage struct {
	presigner  PutObjectPresigner
	bucket     string
	publicBase string
}

var _ ObjectStorage = (*S3Storage)(nil)

// NewS3Storage creates S3 storage for bucket. An empty publicBase selects
// the bucket's virtual-hosted URL.
func NewS3Storage(client *s3.Client, bucket, publicBase string) *S3Storage {
	return NewS3StorageWithPresigner(s3.NewPresignClient(client), bucket, publicBase)
}

// NewS3StorageWithPresigner creates S3 storage around an existing presigner
func NewS3StorageWithPresigner(presigner PutObjectPresigner, bucket, publicBase string) *S3Storage {
	if publicBase == "" {
		publicBase = DefaultPublicBaseURL(bucket)
	}
	return &S3Storage{
		presigner:  presigner,
		bucket:     bucket,
		publicBase: publicBase,
	}
}

// PresignUpload signs a PUT request for key valid for expiry
func (s *S3Storage) PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validateUpload(key, expiry); err != nil {
		return "", err
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", NewStorageError("PresignUpload", key, classifyS3Error(err))
	}

	if req.Method != http.MethodPut {
		return "", NewStorageError("PresignUpload", key, errors.New("presigned request is not a PUT"))
	}

	return req.URL, nil
}

// PublicURL implements ObjectStorage.PublicURL
func (s *S3Storage) PublicURL(key string) string {
	return joinPublicURL(s.publicBase, key)
}

// Close implements ObjectStorage.Close
func (s *S3Storage) Close() error {
	return nil
}

func classifyS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errors.Join(ErrPermissionDenied, err)
		case "SlowDown", "ServiceUnavailable", "InternalError":
			return errors.Join(ErrStorageUnavailable, err)
		}
	}
	return errors.Join(ErrStorageUnavailable, err)
}
