package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTodoItem(t *testing.T) {
	now := time.Date(2024, 1, 1, 15, 4, 5, 123, time.FixedZone("AEST", 10*3600))

	item := NewTodoItem("U1", "Buy milk", "2024-01-01", now)

	assert.Equal(t, "U1", item.UserID)
	assert.NotEmpty(t, item.TodoID)
	assert.Equal(t, "Buy milk", item.Name)
	assert.Equal(t, "2024-01-01", item.DueDate)
	assert.False(t, item.Done)
	assert.Empty(t, item.AttachmentURL)

	// Full precision is kept, only the location changes.
	assert.True(t, item.CreatedAt.Equal(now))
	assert.Equal(t, time.UTC, item.CreatedAt.Location())

	require.NoError(t, item.Validate())
}

func TestNewTodoItemGeneratesDistinctIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		item := NewTodoItem("U1", "task", "2024-01-01", time.Now())
		_, dup := seen[item.TodoID]
		require.False(t, dup, "duplicate todo ID %s", item.TodoID)
		seen[item.TodoID] = struct{}{}
	}
}

func TestTodoItemValidate(t *testing.T) {
	valid := func() *TodoItem {
		return NewTodoItem("U1", "Buy milk", "2024-01-01", time.Now())
	}

	tests := []struct {
		name    string
		mutate  func(*TodoItem)
		wantErr string
	}{
		{name: "valid", mutate: func(*TodoItem) {}},
		{name: "missing user", mutate: func(t *TodoItem) { t.UserID = " " }, wantErr: "user ID is required"},
		{name: "missing todo id", mutate: func(t *TodoItem) { t.TodoID = "" }, wantErr: "todo ID is required"},
		{name: "missing name", mutate: func(t *TodoItem) { t.Name = "" }, wantErr: "name is required"},
		{name: "bad due date", mutate: func(t *TodoItem) { t.DueDate = "tomorrow" }, wantErr: "invalid due date"},
		{name: "name too long", mutate: func(t *TodoItem) { t.Name = strings.Repeat("x", MaxNameLength+1) }, wantErr: "cannot exceed 255"},
		{name: "multibyte name at limit", mutate: func(t *TodoItem) { t.Name = strings.Repeat("é", MaxNameLength) }},
		{name: "zero created at", mutate: func(t *TodoItem) { t.CreatedAt = time.Time{} }, wantErr: "creation time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)

			err := item.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestIsValidDueDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2024-01-01", true},
		{" 2024-12-31 ", true},
		{"2024-01-01T10:00:00Z", true},
		{"2024-01-01T10:00:00.123+02:00", true},
		{"2024-13-01", false},
		{"01/01/2024", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidDueDate(tt.input))
		})
	}
}
