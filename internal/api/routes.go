package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	// Health, readiness and metrics
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		tasks := v1.Group("/tasks")
		{
			tasks.POST("", handler.CreateTask)          // POST /api/v1/tasks
			tasks.GET("", handler.ListTasks)            // GET /api/v1/tasks
			tasks.GET("/:task_id", handler.GetTask)     // GET /api/v1/tasks/:task_id
			tasks.DELETE("/:task_id", handler.StopTask) // DELETE /api/v1/tasks/:task_id
		}
	}
}
