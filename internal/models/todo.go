package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoItem represents a single entry in a user's to-do list
type TodoItem struct {
	UserID        string    `json:"userId" dynamodbav:"userId" db:"user_id"`
	TodoID        string    `json:"todoId" dynamodbav:"todoId" db:"todo_id"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"createdAt" db:"created_at"`
	Name          string    `json:"name" dynamodbav:"name" db:"name"`
	DueDate       string    `json:"dueDate" dynamodbav:"dueDate" db:"due_date"`
	Done          bool      `json:"done" dynamodbav:"done" db:"done"`
	AttachmentURL string    `json:"attachmentUrl" dynamodbav:"attachmentUrl" db:"attachment_url"`
}

// NewTodoItem creates a new, not yet done item owned by userID.
// The creation timestamp is taken from now and stored in UTC.
func NewTodoItem(userID, name, dueDate string, now time.Time) *TodoItem {
	return &TodoItem{
		UserID:        userID,
		TodoID:        uuid.New().String(),
		CreatedAt:     now.UTC(),
		Name:          name,
		DueDate:       dueDate,
		Done:          false,
		AttachmentURL: "",
	}
}

// Validate validates the item before it is persisted
func (t *TodoItem) Validate() error {
	if err := ValidateRequired(t.UserID, "user ID"); err != nil {
		return err
	}

	if err := ValidateRequired(t.TodoID, "todo ID"); err != nil {
		return err
	}

	if err := ValidateRequired(t.Name, "name"); err != nil {
		return err
	}

	if err := ValidateStringLength(t.Name, "name", 0, MaxNameLength); err != nil {
		return err
	}

	if err := ValidateDueDate(t.DueDate, "dueDate"); err != nil {
		return err
	}

	if t.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Message: "todo creation time is required"}
	}

	return nil
}
