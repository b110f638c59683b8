package routes

import (
	"github.com/gin-gonic/gin"

	"taskhive/internal/api/handlers"
	"taskhive/internal/api/middleware"
	"taskhive/internal/domain/audit"
)

// TaskRoutes handles the setup of task-related routes
type TaskRoutes struct {
	handler   *handlers.TaskHandler
	audits    *middleware.AuditMiddleware
	jwtSecret string
}

func NewTaskRoutes(handler *handlers.TaskHandler, audits *middleware.AuditMiddleware, jwtSecret string) *TaskRoutes {
	return &TaskRoutes{handler: handler, audits: audits, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all task-related routes
func (r *TaskRoutes) RegisterRoutes(router *gin.Engine) {
	metrics := middleware.NewMetricsMiddleware()

	tasks := router.Group("/api/tasks")
	tasks.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	tasks.Use(metrics.CollectMetrics())

	tasks.GET("", r.handler.ListTasks)
	tasks.GET("/dashboard", r.handler.Dashboard)
	tasks.GET("/export/:format", r.audits.LogAction(audit.ActionTaskExport), r.handler.ExportTasks)
	tasks.GET("/:id", r.handler.GetTask)

	tasks.POST("", r.audits.LogAction(audit.ActionTaskCreate), r.handler.CreateTask)
	tasks.PUT("/:id", r.audits.LogAction(audit.ActionTaskUpdate), r.handler.UpdateTask)
	tasks.DELETE("/:id", r.audits.LogAction(audit.ActionTaskDelete), r.handler.DeleteTask)

	tasks.POST("/:id/complete", r.audits.LogAction(audit.ActionTaskTransition), r.handler.CompleteTask)
	tasks.POST("/:id/cancel", r.audits.LogAction(audit.ActionTaskTransition), r.handler.CancelTask)
	tasks.POST("/:id/notes", r.handler.AddNote)
	tasks.POST("/:id/reminders", r.handler.AddReminder)
}
