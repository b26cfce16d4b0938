package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todo-api/internal/adapters/storage"
	"todo-api/internal/gateway"
	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
	"todo-api/pkg/lambda"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockTodoService struct {
	mock.Mock
}

var _ services.TodoService = (*mockTodoService)(nil)

func (m *mockTodoService) ListTodos(ctx context.Context, ownerID string) ([]*models.TodoItem, error) {
	args := m.Called(ctx, ownerID)
	items, _ := args.Get(0).([]*models.TodoItem)
	return items, args.Error(1)
}

func (m *mockTodoService) CreateTodo(ctx context.Context, ownerID string, req *services.CreateTodoRequest) (*models.TodoItem, error) {
	args := m.Called(ctx, ownerID, req)
	item, _ := args.Get(0).(*models.TodoItem)
	return item, args.Error(1)
}

func (m *mockTodoService) UpdateTodo(ctx context.Context, ownerID, todoID string, req *services.UpdateTodoRequest) error {
	return m.Called(ctx, ownerID, todoID, req).Error(0)
}

func (m *mockTodoService) DeleteTodo(ctx context.Context, ownerID, todoID string) error {
	return m.Called(ctx, ownerID, todoID).Error(0)
}

func (m *mockTodoService) GenerateUploadURL(ctx context.Context, ownerID, todoID string) (*gateway.UploadURLs, error) {
	args := m.Called(ctx, ownerID, todoID)
	urls, _ := args.Get(0).(*gateway.UploadURLs)
	return urls, args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("test"))
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestRouter(svc services.TodoService) *gin.Engine {
	return NewRouter(&RouterConfig{
		TodoHandler: NewTodoHandler(svc, quietLogger()),
		Logger:      quietLogger(),
		Gatherer:    prometheus.NewRegistry(),
		Version:     "test",
	})
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body, user string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", bearer(t, user))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleItem() *models.TodoItem {
	return &models.TodoItem{
		UserID:    "U1",
		TodoID:    "T1",
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Name:      "Buy milk",
		DueDate:   "2024-01-01",
	}
}

func notFound(op string) error {
	return fmt.Errorf("failed to %s todo: %w", op, repositories.NotFoundError(op, "Todos", "U1", "T1"))
}

func TestListTodos(t *testing.T) {
	t.Run("returns caller items", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("ListTodos", mock.Anything, "U1").Return([]*models.TodoItem{sampleItem()}, nil)

		w := doRequest(t, newTestRouter(svc), http.MethodGet, "/todos", "", "U1")

		require.Equal(t, http.StatusOK, w.Code)
		var resp ListTodosResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "T1", resp.Items[0].TodoID)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		svc.AssertExpectations(t)
	})

	t.Run("empty list serialises as array", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("ListTodos", mock.Anything, "U2").Return(nil, nil)

		w := doRequest(t, newTestRouter(svc), http.MethodGet, "/todos", "", "U2")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[]}`, w.Body.String())
	})

	t.Run("missing identity", func(t *testing.T) {
		svc := new(mockTodoService)

		w := doRequest(t, newTestRouter(svc), http.MethodGet, "/todos", "", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "ListTodos", mock.Anything, mock.Anything)
	})

	t.Run("storage failure hides details", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("ListTodos", mock.Anything, "U1").Return(nil, errors.New("dynamodb exploded"))

		w := doRequest(t, newTestRouter(svc), http.MethodGet, "/todos", "", "U1")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "exploded")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCreateTodo(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("CreateTodo", mock.Anything, "U1", &services.CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"}).
			Return(sampleItem(), nil)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, "/todos", `{"name":"Buy milk","dueDate":"2024-01-01"}`, "U1")

		require.Equal(t, http.StatusCreated, w.Code)
		var resp TodoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Buy milk", resp.Item.Name)
		assert.False(t, resp.Item.Done)
		assert.Empty(t, resp.Item.AttachmentURL)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(mockTodoService)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, "/todos", `{"name":`, "U1")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
		svc.AssertNotCalled(t, "CreateTodo", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := new(mockTodoService)
		verr := &services.ValidationError{Fields: []services.FieldError{
			{Field: "name", Tag: "required", Message: "name is required"},
		}}
		svc.On("CreateTodo", mock.Anything, "U1", mock.Anything).Return(nil, verr)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, "/todos", `{"name":"","dueDate":"2024-01-01"}`, "U1")

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Validation failed", resp.Error)
		require.Len(t, resp.ValidationErrors, 1)
		assert.Equal(t, "name", resp.ValidationErrors[0].Field)
		assert.NotEmpty(t, resp.RequestID)
	})
}

func TestUpdateTodo(t *testing.T) {
	done := true
	body := `{"name":"Buy oat milk","dueDate":"2024-01-02","done":true}`
	want := &services.UpdateTodoRequest{Name: "Buy oat milk", DueDate: "2024-01-02", Done: &done}

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		t.Run(method, func(t *testing.T) {
			svc := new(mockTodoService)
			svc.On("UpdateTodo", mock.Anything, "U1", "T1", want).Return(nil)

			w := doRequest(t, newTestRouter(svc), method, "/todos/T1", body, "U1")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"message":"todo updated"}`, w.Body.String())
			svc.AssertExpectations(t)
		})
	}

	t.Run("unknown todo", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("UpdateTodo", mock.Anything, "U1", "T1", mock.Anything).Return(notFound("update"))

		w := doRequest(t, newTestRouter(svc), http.MethodPatch, "/todos/T1", body, "U1")

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Todo not found", resp.Error)
		assert.Equal(t, "todo T1 not found", resp.Message)
	})
}

func TestDeleteTodo(t *testing.T) {
	svc := new(mockTodoService)
	svc.On("DeleteTodo", mock.Anything, "U1", "T1").Return(nil)
	svc.On("DeleteTodo", mock.Anything, "U1", "T2").Return(notFound("delete"))
	router := newTestRouter(svc)

	w := doRequest(t, router, http.MethodDelete, "/todos/T1", "", "U1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"todo deleted"}`, w.Body.String())

	w = doRequest(t, router, http.MethodDelete, "/todos/T2", "", "U1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateUploadURL(t *testing.T) {
	svc := new(mockTodoService)
	svc.On("GenerateUploadURL", mock.Anything, "U1", "T1").Return(&gateway.UploadURLs{
		UploadURL:     "https://todo-images.s3.amazonaws.com/T1?X-Amz-Signature=abc",
		AttachmentURL: "https://todo-images.s3.amazonaws.com/T1",
	}, nil)

	w := doRequest(t, newTestRouter(svc), http.MethodPost, "/todos/T1/attachment", "", "U1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"uploadUrl": "https://todo-images.s3.amazonaws.com/T1?X-Amz-Signature=abc",
		"attachmentUrl": "https://todo-images.s3.amazonaws.com/T1"
	}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(new(mockTodoService))

	w := doRequest(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = doRequest(t, router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"service validation", &services.ValidationError{Err: errors.New("bad")}, http.StatusBadRequest},
		{"repository validation", repositories.ValidationError("put", "Todos", errors.New("bad")), http.StatusBadRequest},
		{"not found", notFound("delete"), http.StatusNotFound},
		{"table unavailable", repositories.ConnectionError("Todos", errors.New("down")), http.StatusServiceUnavailable},
		{"table throttled", repositories.NewRepositoryError("query", "Todos", "", repositories.ErrUnavailable), http.StatusServiceUnavailable},
		{"object store unavailable", storage.NewStorageError("PresignUpload", "T1", storage.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"invalid object key", storage.NewStorageError("PresignUpload", "", storage.ErrInvalidKey), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := errorResponse(tt.err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestErrorResponseBodies(t *testing.T) {
	t.Run("not found names only the todo", func(t *testing.T) {
		_, body := errorResponse(notFound("delete"))
		assert.Equal(t, "Todo not found", body.Error)
		assert.Equal(t, "todo T1 not found", body.Message)
	})

	t.Run("bare not found", func(t *testing.T) {
		_, body := errorResponse(fmt.Errorf("update: %w", repositories.ErrNotFound))
		assert.Equal(t, "todo not found", body.Message)
	})

	t.Run("unavailable hides details", func(t *testing.T) {
		_, body := errorResponse(repositories.ConnectionError("Todos", errors.New("dial tcp 10.0.0.1")))
		assert.NotContains(t, body.Message, "10.0.0.1")
	})

	t.Run("validation carries fields", func(t *testing.T) {
		verr := &services.ValidationError{Fields: []services.FieldError{{Field: "dueDate", Tag: "isodate", Message: "bad date"}}}
		_, body := errorResponse(fmt.Errorf("failed to create todo: %w", verr))
		require.Len(t, body.ValidationErrors, 1)
		assert.Equal(t, "dueDate", body.ValidationErrors[0].Field)
	})
}

func lambdaRequest(body string, authorizer map[string]interface{}, pathParams map[string]string) *lambda.Request {
	return &lambda.Request{
		Body:       []byte(body),
		Authorizer: authorizer,
		PathParams: pathParams,
		RequestID:  "req-1",
	}
}

func TestLambdaHandlers(t *testing.T) {
	ctx := context.Background()
	principal := map[string]interface{}{"principalId": "U1"}

	t.Run("list", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("ListTodos", ctx, "U1").Return([]*models.TodoItem{sampleItem()}, nil)
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleList(ctx, lambdaRequest("", principal, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(resp.Body), `"items":[`)
	})

	t.Run("create", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("CreateTodo", ctx, "U1", &services.CreateTodoRequest{Name: "Buy milk", DueDate: "2024-01-01"}).
			Return(sampleItem(), nil)
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleCreate(ctx, lambdaRequest(`{"name":"Buy milk","dueDate":"2024-01-01"}`, principal, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Contains(t, string(resp.Body), `"item":{`)
	})

	t.Run("create with bad body", func(t *testing.T) {
		h := NewTodoHandler(new(mockTodoService), quietLogger())

		resp, err := h.HandleCreate(ctx, lambdaRequest(`not json`, principal, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("update", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("UpdateTodo", ctx, "U1", "T1", mock.AnythingOfType("*services.UpdateTodoRequest")).Return(nil)
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleUpdate(ctx, lambdaRequest(`{"name":"n","dueDate":"2024-01-02","done":false}`, principal,
			map[string]string{"todoId": "T1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"message":"todo updated"}`, string(resp.Body))
	})

	t.Run("delete not found", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("DeleteTodo", ctx, "U1", "T1").Return(notFound("delete"))
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleDelete(ctx, lambdaRequest("", principal, map[string]string{"todoId": "T1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(resp.Body), `"request_id":"req-1"`)
	})

	t.Run("upload", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("GenerateUploadURL", ctx, "U1", "T1").Return(&gateway.UploadURLs{
			UploadURL:     "https://b.s3.amazonaws.com/T1?sig",
			AttachmentURL: "https://b.s3.amazonaws.com/T1",
		}, nil)
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleUpload(ctx, lambdaRequest("", principal, map[string]string{"todoId": "T1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(resp.Body), `"attachmentUrl":"https://b.s3.amazonaws.com/T1"`)
	})

	t.Run("upload with store down", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("GenerateUploadURL", ctx, "U1", "T1").
			Return(nil, storage.NewStorageError("PresignUpload", "T1", storage.ErrStorageUnavailable))
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleUpload(ctx, lambdaRequest("", principal, map[string]string{"todoId": "T1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "*", lambda.ToAPIGateway(resp).Headers["Access-Control-Allow-Origin"])
	})

	t.Run("bearer fallback", func(t *testing.T) {
		svc := new(mockTodoService)
		svc.On("ListTodos", ctx, "U7").Return(nil, nil)
		h := NewTodoHandler(svc, quietLogger())

		req := lambdaRequest("", nil, nil)
		req.Headers = map[string]string{"authorization": bearer(t, "U7")}
		resp, err := h.HandleList(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"items":[]}`, string(resp.Body))
	})

	t.Run("no identity", func(t *testing.T) {
		svc := new(mockTodoService)
		h := NewTodoHandler(svc, quietLogger())

		resp, err := h.HandleList(ctx, lambdaRequest("", nil, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		svc.AssertNotCalled(t, "ListTodos", mock.Anything, mock.Anything)
	})
}
