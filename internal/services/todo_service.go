package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"todo-api/internal/gateway"
	"todo-api/internal/models"
)

// todoService implements the TodoService interface
type todoService struct {
	gateway   TodoGateway
	validator *validator.Validate
	logger    *logrus.Logger
	now       func() time.Time
}

// Option configures a todo service
type Option func(*todoService)

// WithClock replaces the clock used to stamp createdAt
func WithClock(now func() time.Time) Option {
	return func(s *todoService) {
		s.now = now
	}
}

// NewTodoService creates a new todo service instance
func NewTodoService(gw TodoGateway, logger *logrus.Logger, opts ...Option) TodoService {
	if logger == nil {
		logger = logrus.New()
	}

	s := &todoService{
		gateway:   gw,
		validator: newValidator(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTodos returns every to-do item owned by the caller
func (s *todoService) ListTodos(ctx context.Context, ownerID string) ([]*models.TodoItem, error) {
	s.log("list", ownerID, "").Info("Listing todos")

	if ownerID == "" {
		return nil, fieldValidationError("userId", "required", "caller identity is required")
	}

	items, err := s.gateway.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return items, nil
}

// CreateTodo creates a new to-do item owned by the caller
func (s *todoService) CreateTodo(ctx context.Context, ownerID string, req *CreateTodoRequest) (*models.TodoItem, error) {
	s.log("create", ownerID, "").Info("Creating todo")

	if ownerID == "" {
		return nil, fieldValidationError("userId", "required", "caller identity is required")
	}
	if req == nil {
		return nil, &ValidationError{Err: fmt.Errorf("create todo request cannot be nil")}
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	item := models.NewTodoItem(ownerID, req.Name, strings.TrimSpace(req.DueDate), s.now())

	created, err := s.gateway.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return created, nil
}

// UpdateTodo replaces name, dueDate and done on one of the caller's items
func (s *todoService) UpdateTodo(ctx context.Context, ownerID, todoID string, req *UpdateTodoRequest) error {
	s.log("update", ownerID, todoID).Info("Updating todo")

	if err := requireIDs(ownerID, todoID); err != nil {
		return err
	}
	if req == nil {
		return &ValidationError{Err: fmt.Errorf("update todo request cannot be nil")}
	}

	if err := s.validator.Struct(req); err != nil {
		return toValidationError(err)
	}

	if err := s.gateway.Update(ctx, ownerID, todoID, req.Name, strings.TrimSpace(req.DueDate), *req.Done); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

// DeleteTodo removes one of the caller's items
func (s *todoService) DeleteTodo(ctx context.Context, ownerID, todoID string) error {
	s.log("delete", ownerID, todoID).Info("Deleting todo")

	if err := requireIDs(ownerID, todoID); err != nil {
		return err
	}

	if err := s.gateway.Delete(ctx, ownerID, todoID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

// GenerateUploadURL issues an attachment upload URL for one of the caller's items
func (s *todoService) GenerateUploadURL(ctx context.Context, ownerID, todoID string) (*gateway.UploadURLs, error) {
	s.log("generate_upload_url", ownerID, todoID).Info("Generating upload URL")

	if err := requireIDs(ownerID, todoID); err != nil {
		return nil, err
	}

	urls, err := s.gateway.GenerateUploadURL(ctx, ownerID, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return urls, nil
}

func (s *todoService) log(op, ownerID, todoID string) *logrus.Entry {
	fields := logrus.Fields{
		"component": "todos",
		"operation": op,
		"user_id":   ownerID,
	}
	if todoID != "" {
		fields["todo_id"] = todoID
	}
	return s.logger.WithFields(fields)
}

func requireIDs(ownerID, todoID string) error {
	if ownerID == "" {
		return fieldValidationError("userId", "required", "caller identity is required")
	}
	if todoID == "" {
		return fieldValidationError("todoId", "required", "todoId is required")
	}
	return nil
}
