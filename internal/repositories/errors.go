package repositories

import (
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrNotFound is returned when no item exists for the given key
	ErrNotFound = errors.New("todo not found")

	// ErrInvalidID is returned when an owner or todo ID is empty
	ErrInvalidID = errors.New("invalid ID")

	// ErrValidation is returned when an item fails validation before a write
	ErrValidation = errors.New("validation error")

	// ErrConnection is returned when the table cannot be reached or opened
	ErrConnection = errors.New("table connection error")

	// ErrUnavailable is returned when the table rejects a request for
	// capacity or throttling reasons
	ErrUnavailable = errors.New("table unavailable")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op      string // Operation that failed
	Table   string // Table or index the operation ran against
	Key     string // Item key (if applicable)
	TodoID  string // Todo ID of the missing item (not found errors only)
	Err     error  // Underlying error
	Message string // Human-readable message
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Key != "" {
		return fmt.Sprintf("%s on %s failed for %s: %v", e.Op, e.Table, e.Key, e.Err)
	}

	return fmt.Sprintf("%s on %s failed: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(op, table, key string, err error) *RepositoryError {
	return &RepositoryError{
		Op:    op,
		Table: table,
		Key:   key,
		Err:   err,
	}
}

// ItemKey renders the composite key of an item for error messages and logs
func ItemKey(userID, todoID string) string {
	return fmt.Sprintf("userId=%s,todoId=%s", userID, todoID)
}

// NotFoundError creates a "not found" repository error for a composite key
func NotFoundError(op, table, userID, todoID string) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Table:   table,
		Key:     ItemKey(userID, todoID),
		TodoID:  todoID,
		Err:     ErrNotFound,
		Message: fmt.Sprintf("todo %s not found for user %s", todoID, userID),
	}
}

// ValidationError creates a "validation" repository error
func ValidationError(op, table string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Table:   table,
		Err:     fmt.Errorf("%w: %v", ErrValidation, err),
		Message: fmt.Sprintf("validation failed for %s: %v", op, err),
	}
}

// ConnectionError creates a "connection" repository error
func ConnectionError(table string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      "connect",
		Table:   table,
		Err:     fmt.Errorf("%w: %v", ErrConnection, err),
		Message: fmt.Sprintf("table %s connection failed: %v", table, err),
	}
}

// RequireKey returns ErrInvalidID when either half of the composite key is empty
func RequireKey(userID, todoID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is empty", ErrInvalidID)
	}
	if todoID == "" {
		return fmt.Errorf("%w: todo ID is empty", ErrInvalidID)
	}
	return nil
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a "validation" error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidID)
}

// IsUnavailable checks if an error means the table could not serve the request
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConnection)
}
