package models

import (
	"strings"
	"time"
)

// DueDateLayout is the calendar date format accepted for due dates
const DueDateLayout = "2006-01-02"

// dueDateLayouts lists every layout a due date may be written in.
// Clients either send a plain calendar date or a full ISO-8601 timestamp.
var dueDateLayouts = []string{
	DueDateLayout,
	time.RFC3339,
	time.RFC3339Nano,
}

// IsValidDueDate reports whether s is an ISO date or timestamp
func IsValidDueDate(s string) bool {
	_, err := ParseDueDate(s)
	return err == nil
}

// ParseDueDate parses a due date in any of the accepted layouts
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
