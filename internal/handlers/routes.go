package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"todo-api/internal/middleware"
)

// maxRequestBody bounds todo payloads; names are capped at 255 characters
const maxRequestBody = 64 * 1024

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	TodoHandler *TodoHandler
	Logger      *logrus.Logger
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil
	Gatherer prometheus.Gatherer
	// RequestsPerSecond and Burst configure the global rate limiter
	RequestsPerSecond float64
	Burst             int
	Version           string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "todo-api",
			"version": config.Version,
		})
	})

	todos := router.Group("/todos")
	todos.Use(middleware.Identity())
	{
		h := config.TodoHandler
		todos.GET("", h.ListTodos)
		todos.POST("", h.CreateTodo)
		todos.PATCH("/:todoId", h.UpdateTodo)
		todos.PUT("/:todoId", h.UpdateTodo)
		todos.DELETE("/:todoId", h.DeleteTodo)
		todos.POST("/:todoId/attachment", h.GenerateUploadURL)
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(maxRequestBody))
	router.Use(middleware.ContentTypeValidation("application/json"))

	if config.RequestsPerSecond > 0 && config.Burst > 0 {
		router.Use(middleware.RateLimiter(config.RequestsPerSecond, config.Burst))
	}

	router.Use(middleware.StructuredLogger(config.Logger))
	router.Use(middleware.ErrorTracker(config.Logger))
}

// NewRouter builds a gin engine with middleware and routes installed
func NewRouter(config *RouterConfig) *gin.Engine {
	router := gin.New()
	SetupMiddleware(router, config)
	SetupRoutes(router, config)
	return router
}
