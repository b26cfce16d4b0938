package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"todo-api/internal/models"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation failed")

// FieldError describes a single rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationError is returned when a request is rejected before storage is reached
type ValidationError struct {
	Fields []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Err != nil {
			return fmt.Sprintf("validation failed: %v", e.Err)
		}
		return ErrValidation.Error()
	}

	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as matching
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation checks if an error is a request validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func fieldValidationError(field, tag, message string) *ValidationError {
	return &ValidationError{
		Fields: []FieldError{{Field: field, Tag: tag, Message: message}},
	}
}

// newValidator returns a validator that reports JSON field names and knows
// the notblank and isodate tags
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return models.IsValidDueDate(fl.Field().String())
	})

	return v
}

// toValidationError converts validator output into a *ValidationError
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Err: err}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}

	return &ValidationError{Fields: fields, Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "isodate":
		return fmt.Sprintf("%s must be an ISO date (YYYY-MM-DD) or RFC3339 timestamp", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
