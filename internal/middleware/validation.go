package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrorResponse is the body written by middleware that aborts a request
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func abortWith(c *gin.Context, status int, errMsg, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     errMsg,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// RateLimiter implements rate limiting middleware
func RateLimiter(requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logrus.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"user_agent": c.Request.UserAgent(),
				"request_id": c.GetString(RequestIDKey),
			}).Warn("Rate limit exceeded")

			abortWith(c, http.StatusTooManyRequests, "Rate limit exceeded",
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// ContentTypeValidation rejects request bodies with an unexpected content type.
// Requests without a body pass through, since the upload-url route takes none.
func ContentTypeValidation(allowedTypes ...string) gin.HandlerFunc {
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"application/json"}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		if contentType == "" {
			abortWith(c, http.StatusBadRequest, "Missing Content-Type header", "Content-Type header is required")
			return
		}

		mainType := strings.TrimSpace(strings.Split(contentType, ";")[0])
		for _, allowedType := range allowedTypes {
			if strings.EqualFold(mainType, allowedType) {
				c.Next()
				return
			}
		}

		abortWith(c, http.StatusUnsupportedMediaType, "Unsupported Content-Type",
			fmt.Sprintf("Content-Type '%s' is not supported. Allowed types: %v", mainType, allowedTypes))
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			abortWith(c, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
