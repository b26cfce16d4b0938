package lambda

import (
	"context"
	"strings"
)

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method      string                 `json:"method"`
	Path        string                 `json:"path"`
	Headers     map[string]string      `json:"headers"`
	QueryParams map[string]string      `json:"query_params"`
	Body        []byte                 `json:"body"`
	PathParams  map[string]string      `json:"path_params"`
	Authorizer  map[string]interface{} `json:"authorizer,omitempty"`
	RequestID   string                 `json:"request_id,omitempty"`
}

// Header returns the value of a header, matching the name case-insensitively
func (r *Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}

// HandlerFunc is a framework-agnostic handler interface
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)
