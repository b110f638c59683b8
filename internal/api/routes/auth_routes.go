package routes

import (
	"github.com/gin-gonic/gin"

	"taskhive/internal/api/handlers"
	"taskhive/internal/api/middleware"
	"taskhive/internal/domain/audit"
)

// AuthRoutes handles the setup of authentication routes
type AuthRoutes struct {
	handler   *handlers.AuthHandler
	audits    *middleware.AuditMiddleware
	jwtSecret string
}

func NewAuthRoutes(handler *handlers.AuthHandler, audits *middleware.AuditMiddleware, jwtSecret string) *AuthRoutes {
	return &AuthRoutes{handler: handler, audits: audits, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all authentication routes
func (r *AuthRoutes) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/auth")

	group.POST("/register", r.handler.Register)
	group.POST("/login", r.handler.Login)

	authed := group.Group("")
	authed.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	authed.GET("/me", r.handler.Me)
	authed.PUT("/me", r.handler.UpdateProfile)
	authed.PUT("/me/password", r.handler.ChangePassword)
	authed.POST("/logout", r.audits.LogAction(audit.ActionUserLogout), r.handler.Logout)
}
