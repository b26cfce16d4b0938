package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"todo-api/internal/adapters/storage"
	"todo-api/internal/repositories"
	"todo-api/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error            string                `json:"error"`
	Message          string                `json:"message"`
	ValidationErrors []services.FieldError `json:"validation_errors,omitempty"`
	RequestID        string                `json:"request_id,omitempty"`
}

// MessageResponse is returned by operations that have no resource to echo
type MessageResponse struct {
	Message string `json:"message"`
}

// errorResponse maps a service error onto a status code and body. Internal
// details are only exposed for client errors.
func errorResponse(err error) (int, ErrorResponse) {
	switch {
	case services.IsValidation(err):
		body := ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		}
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			body.Message = verr.Error()
			body.ValidationErrors = verr.Fields
		}
		return http.StatusBadRequest, body
	case repositories.IsValidation(err), storage.IsInvalidInput(err):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		}
	case repositories.IsNotFound(err):
		return http.StatusNotFound, ErrorResponse{
			Error:   "Todo not found",
			Message: notFoundMessage(err),
		}
	case repositories.IsUnavailable(err), storage.IsUnavailable(err):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Service unavailable",
			Message: "storage is temporarily unavailable, retry later",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Message: "an unexpected error occurred",
		}
	}
}

func notFoundMessage(err error) string {
	var rerr *repositories.RepositoryError
	if errors.As(err, &rerr) && rerr.TodoID != "" {
		return fmt.Sprintf("todo %s not found", rerr.TodoID)
	}
	return repositories.ErrNotFound.Error()
}

func unauthorizedResponse() ErrorResponse {
	return ErrorResponse{
		Error:   "Unauthorized",
		Message: "caller identity is required",
	}
}

func invalidBodyResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	}
}
