package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskhive/internal/infrastructure/persistence/mongodb"
)

// HealthRoutes exposes liveness, readiness and metrics endpoints
type HealthRoutes struct {
	db *mongodb.Database
}

func NewHealthRoutes(db *mongodb.Database) *HealthRoutes {
	return &HealthRoutes{db: db}
}

// RegisterRoutes registers the health and metrics endpoints
func (r *HealthRoutes) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", r.live)
	router.GET("/health/ready", r.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *HealthRoutes) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// ready reports not-ready when the database cannot be reached; load balancers
// use this to pull the instance out of rotation.
func (r *HealthRoutes) ready(c *gin.Context) {
	if err := r.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
