package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// MockObjectStorage is an in-memory implementation of ObjectStorage for testing.
// It signs nothing; issued URLs are deterministic and recorded.
type MockObjectStorage struct {
	mu         sync.RWMutex
	bucket     string
	publicBase string
	issued     []IssuedUpload
	now        func() time.Time
	err        error
}

// IssuedUpload records a single PresignUpload call
type IssuedUpload struct {
	Key     string
	URL     string
	Expires time.Time
}

var _ ObjectStorage = (*MockObjectStorage)(nil)

// NewMockObjectStorage creates a new MockObjectStorage instance
func NewMockObjectStorage(bucket, publicBase string) *MockObjectStorage {
	if bucket == "" {
		bucket = "mock-bucket"
	}
	if publicBase == "" {
		publicBase = DefaultPublicBaseURL(bucket)
	}
	return &MockObjectStorage{
		bucket:     bucket,
		publicBase: publicBase,
		now:        time.Now,
	}
}

// FailWith makes every following PresignUpload call return err
func (m *MockObjectStorage) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// PresignUpload implements ObjectStorage.PresignUpload
func (m *MockObjectStorage) PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validateUpload(key, expiry); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", NewStorageError("PresignUpload", key, m.err)
	}

	expires := m.now().Add(expiry)
	query := url.Values{}
	query.Set("X-Mock-Method", "PUT")
	query.Set("X-Mock-Expires", fmt.Sprintf("%d", int(expiry.Seconds())))
	query.Set("X-Mock-Signature", fmt.Sprintf("%d", len(m.issued)+1))

	signed := joinPublicURL(m.publicBase, key) + "?" + query.Encode()
	m.issued = append(m.issued, IssuedUpload{Key: key, URL: signed, Expires: expires})

	return signed, nil
}

// PublicURL implements ObjectStorage.PublicURL
func (m *MockObjectStorage) PublicURL(key string) string {
	return joinPublicURL(m.publicBase, key)
}

// Issued returns every upload URL handed out so far
func (m *MockObjectStorage) Issued() []IssuedUpload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]IssuedUpload(nil), m.issued...)
}

// Close implements ObjectStorage.Close
func (m *MockObjectStorage) Close() error {
	return nil
}
