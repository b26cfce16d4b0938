package services

import (
	"context"

	"todo-api/internal/gateway"
	"todo-api/internal/models"
)

// TodoGateway is the storage surface the todo service depends on
type TodoGateway interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*models.TodoItem, error)
	Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error)
	Update(ctx context.Context, ownerID, todoID, name, dueDate string, done bool) error
	Delete(ctx context.Context, ownerID, todoID string) error
	GenerateUploadURL(ctx context.Context, ownerID, todoID string) (*gateway.UploadURLs, error)
}

var _ TodoGateway = (*gateway.Gateway)(nil)

// TodoService defines the interface for to-do business logic operations.
// ownerID is the authenticated caller; every operation is scoped to it.
type TodoService interface {
	ListTodos(ctx context.Context, ownerID string) ([]*models.TodoItem, error)
	CreateTodo(ctx context.Context, ownerID string, req *CreateTodoRequest) (*models.TodoItem, error)
	UpdateTodo(ctx context.Context, ownerID, todoID string, req *UpdateTodoRequest) error
	DeleteTodo(ctx context.Context, ownerID, todoID string) error
	GenerateUploadURL(ctx context.Context, ownerID, todoID string) (*gateway.UploadURLs, error)
}

// CreateTodoRequest represents a request to create a new to-do item
type CreateTodoRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=255"`
	DueDate string `json:"dueDate" validate:"required,isodate"`
}

// UpdateTodoRequest represents a full replacement of an item's mutable fields.
// Done is a pointer so that a missing value can be told apart from false.
type UpdateTodoRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=255"`
	DueDate string `json:"dueDate" validate:"required,isodate"`
	Done    *bool  `json:"done" validate:"required"`
}
