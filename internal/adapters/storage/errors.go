package storage

import (
	"errors"
	"fmt"
)

// Common storage error types
var (
	ErrInvalidKey         = errors.New("invalid storage key")
	ErrInvalidExpiry      = errors.New("invalid URL expiry")
	ErrStorageUnavailable = errors.New("storage service unavailable")
	ErrPermissionDenied   = errors.New("permission denied")
)

// StorageError represents a storage operation error with additional context
type StorageError struct {
	Op  string // Operation that failed (e.g., "PresignUpload")
	Key string // Object key involved in the operation
	Err error  // Underlying error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s operation failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s operation failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

// IsUnavailable returns true if the object store could not serve the request
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsInvalidInput returns true if the request was rejected before reaching the store
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrInvalidExpiry)
}
