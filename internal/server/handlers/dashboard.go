package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/dashboard"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"github.com/vzahanych/weather-dashboard/internal/validation"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"go.uber.org/zap"
)

// Dashboard is the session controller as seen by the HTTP surface.
type Dashboard interface {
	State() dashboard.State
	Submit(ctx context.Context, city string) error
	ToggleUnits(ctx context.Context) (weather.Units, error)
	Refresh(ctx context.Context) error
	Subscribe() (<-chan dashboard.State, func())
}

type DashboardHandler struct {
	dashboard Dashboard
	logger    *zap.Logger
}

func NewDashboardHandler(d Dashboard, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: d,
		logger:    logger,
	}
}

func (h *DashboardHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, newDashboardResponse(h.dashboard.State()))
}

func (h *DashboardHandler) Search(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := logger.FromContext(ctx, h.logger)

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reqLogger.Warn("Invalid search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}

	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		reqLogger.Warn("Search request failed validation", zap.Any("errors", errs))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: validation.Summarize(errs),
		})
		return
	}

	if err := h.dashboard.Submit(ctx, req.City); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDashboardResponse(h.dashboard.State()))
}

func (h *DashboardHandler) ToggleUnits(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)

	units, err := h.dashboard.ToggleUnits(ctx)
	if err != nil && !errors.Is(err, dashboard.ErrSearchInFlight) {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, UnitsResponse{
		Units:             string(units),
		DashboardResponse: newDashboardResponse(h.dashboard.State()),
	})
}

func (h *DashboardHandler) Refresh(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)

	if err := h.dashboard.Refresh(ctx); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDashboardResponse(h.dashboard.State()))
}

func (h *DashboardHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, HistoryResponse{History: h.dashboard.State().History.Clone()})
}

// Events streams every state change as a server-sent "state" event until
// the client disconnects or the dashboard shuts down.
func (h *DashboardHandler) Events(c *gin.Context) {
	updates, cancel := h.dashboard.Subscribe()
	defer cancel()

	reqLogger := logger.FromContext(c.Request.Context(), h.logger)
	reqLogger.Debug("Event stream opened")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case st, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", newDashboardResponse(st))
			return true
		}
	})

	reqLogger.Debug("Event stream closed")
}

func (h *DashboardHandler) writeError(c *gin.Context, err error) {
	status, code, message := statusFor(err)

	reqLogger := logger.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		reqLogger.Error("Dashboard request failed", zap.Int("status", status), zap.Error(err))
	} else {
		reqLogger.Info("Dashboard request rejected", zap.Int("status", status), zap.Error(err))
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// statusFor maps controller guards and provider failures to HTTP status,
// error code and user message. An invalid API key surfaces as 502.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, dashboard.ErrEmptyQuery):
		return http.StatusBadRequest, "EMPTY_QUERY", err.Error()
	case errors.Is(err, dashboard.ErrSearchInFlight):
		return http.StatusConflict, "SEARCH_IN_FLIGHT", err.Error()
	case errors.Is(err, dashboard.ErrNotReady):
		return http.StatusConflict, "NOT_READY", err.Error()
	}

	kind := weather.KindOf(err)
	code := strings.ToUpper(kind.String())
	switch kind {
	case weather.KindNotFound:
		return http.StatusNotFound, code, kind.Message()
	case weather.KindUnauthorized:
		return http.StatusBadGateway, code, kind.Message()
	default:
		return http.StatusServiceUnavailable, code, kind.Message()
	}
}
