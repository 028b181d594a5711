package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/pipeline"
	"github.com/vzahanych/weather-search-app/internal/server/handlers"
	"github.com/vzahanych/weather-search-app/internal/server/middlewares"
	"github.com/vzahanych/weather-search-app/internal/weather"
	"github.com/vzahanych/weather-search-app/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	server   *http.Server
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  *handlers.MetricsHandler
}

// NewServer builds the HTTP front end for one shared pipeline. Every client sees
// and replaces the same view.
func NewServer(cfg *config.Config, p *pipeline.Pipeline, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	httpMetrics := middlewares.NewMetricsMiddleware()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, "/health", "/health/live", "/health/ready", "/metrics"))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(httpMetrics.Handler())

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		pipeline: p,
		logger:   logger,
		tele:     tele,
		metrics:  handlers.NewMetricsHandler(logger, httpMetrics),
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	p.SetMetricsRecorder(s.metrics)
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	weatherHandler := handlers.NewWeatherHandler(s.pipeline, &s.cfg.Display, s.logger)
	healthHandler := handlers.NewHealthHandler(s.logger, func() bool {
		return s.pipeline.State().Status != weather.StatusIdle
	})

	// Business endpoints
	s.engine.GET("/weather", weatherHandler.GetWeather)
	s.engine.POST("/search", weatherHandler.Search)

	// Health endpoints (Kubernetes friendly)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/health/live", healthHandler.Liveness)
	s.engine.GET("/health/ready", healthHandler.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", s.metrics.ServeMetrics)
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
