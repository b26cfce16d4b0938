package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-api/internal/middleware"
	"todo-api/internal/models"
	"todo-api/internal/services"
	"todo-api/pkg/lambda"
)

// ListTodosResponse is the body of a successful list call
type ListTodosResponse struct {
	Items []*models.TodoItem `json:"items"`
}

// TodoResponse wraps a single created item
type TodoResponse struct {
	Item *models.TodoItem `json:"item"`
}

// TodoHandler handles to-do HTTP requests for both gin and Lambda
type TodoHandler struct {
	todoService services.TodoService
	logger      *logrus.Logger
}

// NewTodoHandler creates a new to-do handler
func NewTodoHandler(todoService services.TodoService, logger *logrus.Logger) *TodoHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &TodoHandler{
		todoService: todoService,
		logger:      logger,
	}
}

// @Summary List todos
// @Description Get every to-do item owned by the caller
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListTodosResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) ListTodos(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	items, err := h.todoService.ListTodos(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "list", err)
		return
	}

	c.JSON(http.StatusOK, listResponse(items))
}

// @Summary Create a todo
// @Description Create a new to-do item owned by the caller
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param todo body services.CreateTodoRequest true "Todo data"
// @Success 201 {object} TodoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	var req services.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, invalidBodyResponse(err))
		return
	}

	item, err := h.todoService.CreateTodo(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, "create", err)
		return
	}

	c.JSON(http.StatusCreated, TodoResponse{Item: item})
}

// @Summary Update a todo
// @Description Replace name, dueDate and done on one of the caller's items
// @Tags todos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param todoId path string true "Todo ID"
// @Param todo body services.UpdateTodoRequest true "Updated fields"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /todos/{todoId} [patch]
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	var req services.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, invalidBodyResponse(err))
		return
	}

	if err := h.todoService.UpdateTodo(c.Request.Context(), userID, c.Param("todoId"), &req); err != nil {
		h.writeError(c, "update", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "todo updated"})
}

// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param todoId path string true "Todo ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /todos/{todoId} [delete]
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), userID, c.Param("todoId")); err != nil {
		h.writeError(c, "delete", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "todo deleted"})
}

// @Summary Generate an attachment upload URL
// @Description Issue a pre-signed PUT URL and record the attachment URL on the item
// @Tags todos
// @Produce json
// @Security BearerAuth
// @Param todoId path string true "Todo ID"
// @Success 200 {object} gateway.UploadURLs
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /todos/{todoId}/attachment [post]
func (h *TodoHandler) GenerateUploadURL(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, unauthorizedResponse())
		return
	}

	urls, err := h.todoService.GenerateUploadURL(c.Request.Context(), userID, c.Param("todoId"))
	if err != nil {
		h.writeError(c, "generate_upload_url", err)
		return
	}

	c.JSON(http.StatusOK, urls)
}

func (h *TodoHandler) writeError(c *gin.Context, op string, err error) {
	status, body := errorResponse(err)
	body.RequestID = c.GetString(middleware.RequestIDKey)
	h.logFailure(op, status, body.RequestID, err)

	_ = c.Error(err)
	c.JSON(status, body)
}

// Lambda-compatible handler methods

// HandleList handles todo listing for Lambda
func (h *TodoHandler) HandleList(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	userID, resp := h.callerID(req)
	if resp != nil {
		return resp, nil
	}

	items, err := h.todoService.ListTodos(ctx, userID)
	if err != nil {
		return h.lambdaError(req, "list", err)
	}

	return lambda.JSON(http.StatusOK, listResponse(items))
}

// HandleCreate handles todo creation for Lambda
func (h *TodoHandler) HandleCreate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	userID, resp := h.callerID(req)
	if resp != nil {
		return resp, nil
	}

	var createReq services.CreateTodoRequest
	if err := json.Unmarshal(req.Body, &createReq); err != nil {
		return lambda.JSON(http.StatusBadRequest, invalidBodyResponse(err))
	}

	item, err := h.todoService.CreateTodo(ctx, userID, &createReq)
	if err != nil {
		return h.lambdaError(req, "create", err)
	}

	return lambda.JSON(http.StatusCreated, TodoResponse{Item: item})
}

// HandleUpdate handles todo update for Lambda
func (h *TodoHandler) HandleUpdate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	userID, resp := h.callerID(req)
	if resp != nil {
		return resp, nil
	}

	var updateReq services.UpdateTodoRequest
	if err := json.Unmarshal(req.Body, &updateReq); err != nil {
		return lambda.JSON(http.StatusBadRequest, invalidBodyResponse(err))
	}

	if err := h.todoService.UpdateTodo(ctx, userID, req.PathParams["todoId"], &updateReq); err != nil {
		return h.lambdaError(req, "update", err)
	}

	return lambda.JSON(http.StatusOK, MessageResponse{Message: "todo updated"})
}

// HandleDelete handles todo deletion for Lambda
func (h *TodoHandler) HandleDelete(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	userID, resp := h.callerID(req)
	if resp != nil {
		return resp, nil
	}

	if err := h.todoService.DeleteTodo(ctx, userID, req.PathParams["todoId"]); err != nil {
		return h.lambdaError(req, "delete", err)
	}

	return lambda.JSON(http.StatusOK, MessageResponse{Message: "todo deleted"})
}

// HandleUpload handles upload URL generation for Lambda
func (h *TodoHandler) HandleUpload(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	userID, resp := h.callerID(req)
	if resp != nil {
		return resp, nil
	}

	urls, err := h.todoService.GenerateUploadURL(ctx, userID, req.PathParams["todoId"])
	if err != nil {
		return h.lambdaError(req, "generate_upload_url", err)
	}

	return lambda.JSON(http.StatusOK, urls)
}

// callerID resolves the caller identity, or returns the 401 response to send
func (h *TodoHandler) callerID(req *lambda.Request) (string, *lambda.Response) {
	userID, err := middleware.ResolveIdentity(req.Authorizer, req.Header("Authorization"))
	if err == nil {
		return userID, nil
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"path":       req.Path,
		"error":      err.Error(),
	}).Warn("Caller identity missing")

	body := unauthorizedResponse()
	body.RequestID = req.RequestID
	resp, jsonErr := lambda.JSON(http.StatusUnauthorized, body)
	if jsonErr != nil {
		return "", &lambda.Response{StatusCode: http.StatusUnauthorized}
	}
	return "", resp
}

func (h *TodoHandler) lambdaError(req *lambda.Request, op string, err error) (*lambda.Response, error) {
	status, body := errorResponse(err)
	body.RequestID = req.RequestID
	h.logFailure(op, status, body.RequestID, err)

	return lambda.JSON(status, body)
}

func (h *TodoHandler) logFailure(op string, status int, requestID string, err error) {
	entry := h.logger.WithFields(logrus.Fields{
		"component":  "todos",
		"operation":  op,
		"status":     status,
		"request_id": requestID,
	}).WithError(err)

	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
		return
	}
	entry.Warn("Request rejected")
}

func listResponse(items []*models.TodoItem) ListTodosResponse {
	if items == nil {
		items = []*models.TodoItem{}
	}
	return ListTodosResponse{Items: items}
}
