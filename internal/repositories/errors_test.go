package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepositoryErrorMessage(t *testing.T) {
	err := NewRepositoryError("put", "Todos", ItemKey("U1", "T1"), errors.New("boom"))
	assert.Equal(t, "put on Todos failed for userId=U1,todoId=T1: boom", err.Error())

	err = NewRepositoryError("query", "UserIdIndex", "", errors.New("boom"))
	assert.Equal(t, "query on UserIdIndex failed: boom", err.Error())

	notFound := NotFoundError("update", "Todos", "U1", "T1")
	assert.Equal(t, "todo T1 not found for user U1", notFound.Error())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		validation  bool
		unavailable bool
	}{
		{name: "not found", err: NotFoundError("delete", "Todos", "U1", "T1"), notFound: true},
		{name: "wrapped not found", err: fmt.Errorf("gateway: %w", NotFoundError("delete", "Todos", "U1", "T1")), notFound: true},
		{name: "validation", err: ValidationError("put", "Todos", errors.New("name is required")), validation: true},
		{name: "invalid id", err: RequireKey("", "T1"), validation: true},
		{name: "connection", err: ConnectionError("todos.db", errors.New("disk I/O error")), unavailable: true},
		{name: "throttled", err: NewRepositoryError("query", "Todos", "", ErrUnavailable), unavailable: true},
		{name: "generic", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.unavailable, IsUnavailable(tt.err))
		})
	}
}

func TestRequireKey(t *testing.T) {
	assert.NoError(t, RequireKey("U1", "T1"))
	assert.ErrorIs(t, RequireKey("", "T1"), ErrInvalidID)
	assert.ErrorIs(t, RequireKey("U1", ""), ErrInvalidID)
}
