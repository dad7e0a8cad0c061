package handlers

import (
	"github.com/vzahanych/weather-dashboard/internal/dashboard"
)

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	City string `json:"city" binding:"required" validate:"city"`
}

// DashboardResponse carries the raw session state together with its
// rendered display form.
type DashboardResponse struct {
	State dashboard.State `json:"state"`
	View  dashboard.View  `json:"view"`
}

func newDashboardResponse(s dashboard.State) DashboardResponse {
	return DashboardResponse{State: s, View: dashboard.Render(s)}
}

// UnitsResponse is returned by the unit toggle.
type UnitsResponse struct {
	Units string `json:"units"`
	DashboardResponse
}

type HistoryResponse struct {
	History []string `json:"history"`
}

// ErrorResponse represents an error response with validation
type ErrorResponse struct {
	Error   string `json:"error" validate:"required,min=1,max=500"`
	Code    string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details string `json:"details,omitempty" validate:"omitempty,max=1000"`
}

// HealthResponse represents health check response with validation
type HealthResponse struct {
	Status    string `json:"status" validate:"required,oneof=ok alive ready unavailable"`
	Uptime    string `json:"uptime" validate:"required"`
	Timestamp string `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Error     string `json:"error,omitempty"`
}
