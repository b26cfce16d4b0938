package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-api/pkg/lambda"
)

// CORS allows any origin. The allow-origin header is set on every response,
// not only on requests carrying an Origin header, so the local server answers
// exactly like the Lambda functions.
func CORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	preflight := cors.New(corsConfig)

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", lambda.CORSOrigin)
		preflight(c)
	}
}

// Recovery turns panics into a logged 500 response
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("Recovered from panic")

		abortWith(c, http.StatusInternalServerError, "Internal server error", "an unexpected error occurred")
	})
}
