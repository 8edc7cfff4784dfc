package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by database.DB
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports liveness and, when a database is attached, whether it
// answers a ping.
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{db: db, logger: logger, now: time.Now}
}

// RegisterRoutes mounts /health and /api/v1/healthcheck
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/api/v1/healthcheck", h.HealthCheck)
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			body["status"] = "unavailable"
			body["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}

	c.JSON(http.StatusOK, body)
}
