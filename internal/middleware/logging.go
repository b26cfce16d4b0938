package middleware

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// maxLoggedBody caps request and response bodies attached to debug logs
const maxLoggedBody = 1024

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging with request context
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		var requestBody []byte
		if logger.IsLevelEnabled(logrus.DebugLevel) && c.Request.Body != nil &&
			c.Request.ContentLength > 0 && c.Request.ContentLength < maxLoggedBody {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		bodyWriter := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBufferString(""),
		}
		c.Writer = bodyWriter

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logrus.Fields{
			"request_id":    c.GetString(RequestIDKey),
			"method":        c.Request.Method,
			"path":          path,
			"status_code":   status,
			"latency_ms":    float64(latency.Nanoseconds()) / 1000000,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"response_size": c.Writer.Size(),
		}

		if raw != "" {
			fields["query"] = raw
		}
		if userID := c.GetString(UserIDKey); userID != "" {
			fields["user_id"] = userID
		}
		if len(requestBody) > 0 {
			fields["request_body"] = string(requestBody)
		}
		if status >= 400 && logger.IsLevelEnabled(logrus.DebugLevel) {
			fields["response_body"] = bodyWriter.body.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// ErrorTracker logs errors attached to the gin context by handlers
func ErrorTracker(logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			fields := logrus.Fields{
				"error_tracking": true,
				"request_id":     c.GetString(RequestIDKey),
				"user_id":        c.GetString(UserIDKey),
				"method":         c.Request.Method,
				"path":           c.Request.URL.Path,
				"error_type":     fmt.Sprintf("%d", err.Type),
				"status_code":    c.Writer.Status(),
			}

			logger.WithFields(fields).WithError(err.Err).Error("Error tracked")
		}
	}
}
