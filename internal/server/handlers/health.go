package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Pinger is implemented by the preference storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	logger    *zap.Logger
	storage   Pinger
	startTime time.Time
}

func NewHealthHandler(storage Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		storage:   storage,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

// Readiness reports unavailable while preference storage cannot be reached.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.storage != nil {
		ctx, cancel := context.WithTimeout(utils.GetContextFromGinContext(c), readinessTimeout)
		defer cancel()

		if err := h.storage.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Uptime: time.Since(h.startTime).String(),
				Error:  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
