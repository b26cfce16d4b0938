package repositories

import (
	"context"

	"todo-api/internal/models"
)

// TodoUpdate carries the mutable fields of a to-do item
type TodoUpdate struct {
	Name    string
	DueDate string
	Done    bool
}

// TodoRepository defines the key-value table operations for to-do items.
// Items are keyed by (userId, todoId).
type TodoRepository interface {
	// ListByOwner returns every item owned by userID in storage order.
	// An owner without items yields an empty, non-nil slice.
	ListByOwner(ctx context.Context, userID string) ([]*models.TodoItem, error)

	// Get retrieves a single item by its composite key
	Get(ctx context.Context, userID, todoID string) (*models.TodoItem, error)

	// Put writes the full item, replacing any existing item with the same key
	Put(ctx context.Context, item *models.TodoItem) error

	// Update sets name, dueDate and done on an existing item.
	// Returns ErrNotFound when the key does not exist.
	Update(ctx context.Context, userID, todoID string, update TodoUpdate) error

	// Delete removes an item. Returns ErrNotFound when the key does not exist.
	Delete(ctx context.Context, userID, todoID string) error

	// SetAttachmentURL records the public attachment URL on an existing item.
	// Returns ErrNotFound when the key does not exist.
	SetAttachmentURL(ctx context.Context, userID, todoID, url string) error
}
