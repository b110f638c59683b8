package routes

import (
	"github.com/gin-gonic/gin"

	"taskhive/internal/api/handlers"
	"taskhive/internal/api/middleware"
	"taskhive/internal/domain/audit"
)

// AdminRoutes handles the setup of the admin surface
type AdminRoutes struct {
	handler   *handlers.AdminHandler
	audits    *middleware.AuditMiddleware
	jwtSecret string
}

func NewAdminRoutes(handler *handlers.AdminHandler, audits *middleware.AuditMiddleware, jwtSecret string) *AdminRoutes {
	return &AdminRoutes{handler: handler, audits: audits, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all admin routes
func (r *AdminRoutes) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/admin")
	group.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	group.Use(middleware.RequireAdmin())

	group.GET("/stats", r.handler.Stats)

	group.GET("/users", r.handler.ListUsers)
	group.GET("/users/:id", r.handler.GetUser)
	group.PUT("/users/:id/role", r.audits.LogAction(audit.ActionAdminUserUpdate), r.handler.SetRole)
	group.PUT("/users/:id/activate", r.audits.LogAction(audit.ActionAdminUserUpdate), r.handler.Activate)
	group.PUT("/users/:id/deactivate", r.audits.LogAction(audit.ActionAdminUserUpdate), r.handler.Deactivate)
	group.DELETE("/users/:id", r.audits.LogAction(audit.ActionAdminUserDelete), r.handler.DeleteUser)
	group.GET("/users/:id/audit", r.handler.UserAudit)

	group.GET("/tasks", r.handler.ListTasks)
	group.GET("/audit", r.handler.Audit)
}
