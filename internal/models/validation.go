package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest item name accepted, in characters
const MaxNameLength = 255

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// ValidateRequired checks if a required string field is not blank
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}
	return nil
}

// ValidateStringLength validates string length constraints in characters
func ValidateStringLength(value, fieldName string, minLength, maxLength int) error {
	length := utf8.RuneCountInString(strings.TrimSpace(value))

	if minLength > 0 && length < minLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least %d characters", fieldName, minLength),
			Value:   value,
		}
	}

	if maxLength > 0 && length > maxLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength),
			Value:   value,
		}
	}

	return nil
}

// ValidateDueDate checks that value is an ISO date or timestamp
func ValidateDueDate(value, fieldName string) error {
	if !IsValidDueDate(value) {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid due date format: %s", value),
			Value:   value,
		}
	}
	return nil
}
