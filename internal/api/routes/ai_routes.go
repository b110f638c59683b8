package routes

import (
	"github.com/gin-gonic/gin"

	"taskhive/internal/api/handlers"
	"taskhive/internal/api/middleware"
	"taskhive/internal/domain/audit"
)

// AIRoutes handles the setup of AI collaborator routes
type AIRoutes struct {
	handler   *handlers.AIHandler
	audits    *middleware.AuditMiddleware
	jwtSecret string
}

func NewAIRoutes(handler *handlers.AIHandler, audits *middleware.AuditMiddleware, jwtSecret string) *AIRoutes {
	return &AIRoutes{handler: handler, audits: audits, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all AI collaborator routes
func (r *AIRoutes) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/ai")
	group.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	group.POST("/predict-category", r.audits.LogAction(audit.ActionAISuggest), r.handler.PredictCategory)
	group.POST("/generate-description", r.audits.LogAction(audit.ActionAIDescribe), r.handler.GenerateDescription)
	group.GET("/admin-report", middleware.RequireAdmin(), r.handler.AdminReport)
}
