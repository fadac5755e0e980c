package routes

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
	"github.com/ShakirYasin/exact-sol-test/internal/api/handlers"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/pkg/security/auth"
)

// TaskRoutes handles the setup of task-related routes
type TaskRoutes struct {
	handler   *handlers.TaskHandler
	jwtSecret string
	blacklist *auth.TokenBlacklist
	cache     middleware.ResponseCache
}

// NewTaskRoutes creates a new TaskRoutes instance
func NewTaskRoutes(handler *handlers.TaskHandler, jwtSecret string, blacklist *auth.TokenBlacklist, cache middleware.ResponseCache) *TaskRoutes {
	return &TaskRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		blacklist: blacklist,
		cache:     cache,
	}
}

// RegisterRoutes registers all task-related routes
func (tr *TaskRoutes) RegisterRoutes(router *gin.Engine) {
	metrics := middleware.NewMetricsMiddleware()
	validation := middleware.NewValidationMiddleware()
	responseCache := middleware.NewCacheMiddleware(tr.cache, 5*time.Minute)

	tasks := router.Group("/api/tasks")
	tasks.Use(middleware.NewAuthMiddleware(tr.jwtSecret, tr.blacklist))
	tasks.Use(metrics.CollectMetrics())
	{
		// Compress the list response, it grows with the task count
		tasks.GET("", gzip.Gzip(gzip.DefaultCompression), tr.handler.ListTasks)
		tasks.GET("/:id", responseCache.CacheResponse(), tr.handler.GetTask)
		tasks.POST("", validation.ValidateRequest(&dto.CreateTaskRequest{}), tr.handler.CreateTask)
		tasks.PATCH("/:id", responseCache.CacheInvalidate(), validation.ValidateRequest(&dto.UpdateTaskRequest{}), tr.handler.UpdateTask)
		tasks.DELETE("/:id", responseCache.CacheInvalidate(), tr.handler.DeleteTask)
		tasks.PATCH("/:id/assign", middleware.RequireAdmin(), responseCache.CacheInvalidate(), validation.ValidateRequest(&dto.AssignTaskRequest{}), tr.handler.AssignTask)
	}
}
