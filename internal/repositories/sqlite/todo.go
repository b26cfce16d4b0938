package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-api/internal/models"
	"todo-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// TodoRepository implements the TodoRepository interface for SQLite
type TodoRepository struct {
	baseRepository
}

var _ repositories.TodoRepository = (*TodoRepository)(nil)

// NewTodoRepository creates a new SQLite todo repository
func NewTodoRepository(db *sql.DB, logger *logrus.Logger) *TodoRepository {
	return &TodoRepository{
		baseRepository: newBaseRepository(db, "todos", logger),
	}
}

const todoColumns = `user_id, todo_id, created_at, name, due_date, done, attachment_url`

// createdAtLayout is fixed width so created_at sorts lexically in time order
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ListByOwner retrieves every todo owned by userID
func (r *TodoRepository) ListByOwner(ctx context.Context, userID string) ([]*models.TodoItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is empty", repositories.ErrInvalidID)
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? ORDER BY created_at, todo_id`

	rows, err := r.executeQuery(ctx, "list_by_owner", query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.TodoItem, 0)
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list_by_owner", r.table, "", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_by_owner", r.table, "", err)
	}

	return items, nil
}

// Get retrieves a todo by its composite key
func (r *TodoRepository) Get(ctx context.Context, userID, todoID string) (*models.TodoItem, error) {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return nil, err
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? AND todo_id = ?`

	item, err := scanTodo(r.executeQueryRow(ctx, "get", query, userID, todoID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("get", r.table, userID, todoID)
		}
		return nil, repositories.NewRepositoryError("get", r.table, repositories.ItemKey(userID, todoID), err)
	}

	return item, nil
}

// Put inserts the todo or replaces an existing one with the same key
func (r *TodoRepository) Put(ctx context.Context, item *models.TodoItem) error {
	if err := item.Validate(); err != nil {
		return repositories.ValidationError("put", r.table, err)
	}

	query := `INSERT OR REPLACE INTO todos (` + todoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "put", repositories.ItemKey(item.UserID, item.TodoID), query,
		item.UserID,
		item.TodoID,
		item.CreatedAt.UTC().Format(createdAtLayout),
		item.Name,
		item.DueDate,
		item.Done,
		item.AttachmentURL,
	)
	return err
}

// Update sets name, due date and done on an existing todo
func (r *TodoRepository) Update(ctx context.Context, userID, todoID string, update repositories.TodoUpdate) error {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return err
	}

	query := `UPDATE todos SET name = ?, due_date = ?, done = ? WHERE user_id = ? AND todo_id = ?`

	result, err := r.executeExec(ctx, "update", repositories.ItemKey(userID, todoID), query,
		update.Name, update.DueDate, update.Done, userID, todoID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", userID, todoID)
}

// SetAttachmentURL records the attachment URL on an existing todo
func (r *TodoRepository) SetAttachmentURL(ctx context.Context, userID, todoID, url string) error {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return err
	}

	query := `UPDATE todos SET attachment_url = ? WHERE user_id = ? AND todo_id = ?`

	result, err := r.executeExec(ctx, "set_attachment_url", repositories.ItemKey(userID, todoID), query,
		url, userID, todoID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "set_attachment_url", userID, todoID)
}

// Delete removes a todo by its composite key
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return err
	}

	query := `DELETE FROM todos WHERE user_id = ? AND todo_id = ?`

	result, err := r.executeExec(ctx, "delete", repositories.ItemKey(userID, todoID), query, userID, todoID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", userID, todoID)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(s scanner) (*models.TodoItem, error) {
	var (
		item      models.TodoItem
		createdAt string
	)

	err := s.Scan(
		&item.UserID,
		&item.TodoID,
		&createdAt,
		&item.Name,
		&item.DueDate,
		&item.Done,
		&item.AttachmentURL,
	)
	if err != nil {
		return nil, err
	}

	item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	return &item, nil
}
