package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"notaria/internal/domain"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db        Pinger
	providers func() []domain.AIModel
}

// NewHealthHandler creates a new HealthHandler. providers reports the AI
// providers with credentials; readiness requires at least one.
func NewHealthHandler(db Pinger, providers func() []domain.AIModel) *HealthHandler {
	return &HealthHandler{db: db, providers: providers}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	available := h.providers()
	if len(available) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no AI provider configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "providers": available})
}
