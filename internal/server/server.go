package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/observability"
	"github.com/vzahanych/weather-dashboard/internal/server/handlers"
	"github.com/vzahanych/weather-dashboard/internal/server/middlewares"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.uber.org/zap"
)

// Dependencies are the components the HTTP surface exposes.
type Dependencies struct {
	Dashboard handlers.Dashboard
	Storage   handlers.Pinger
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
	Tele      *telemetry.Telemetry
}

type Server struct {
	cfg    config.ServerConfig
	engine *gin.Engine
	server *http.Server
	deps   Dependencies
	logger *zap.Logger
}

func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(deps.Logger, "/health", "/health/live", "/health/ready", "/metrics"))
	engine.Use(middlewares.RecoveryMiddleware(deps.Logger, true))
	engine.Use(middlewares.TelemetryMiddleware(deps.Logger, deps.Tele))
	if deps.Metrics != nil {
		engine.Use(middlewares.MetricsMiddleware(deps.Metrics))
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		deps:   deps,
		logger: deps.Logger,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	dash := handlers.NewDashboardHandler(s.deps.Dashboard, s.logger)

	api := s.engine.Group("/api")
	api.GET("/dashboard", dash.GetState)
	api.POST("/search", dash.Search)
	api.POST("/units/toggle", dash.ToggleUnits)
	api.POST("/refresh", dash.Refresh)
	api.GET("/history", dash.History)
	api.GET("/events", dash.Events)

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.deps.Storage, s.logger)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	s.engine.GET("/metrics", handlers.NewMetricsHandler(s.deps.Gatherer, s.logger).ServeMetrics)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
