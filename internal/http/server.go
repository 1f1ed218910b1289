// Package http provides the HTTP server, its middleware stack and the
// health and readiness endpoints.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/icarushq/icarus/internal/metrics"
)

// RouteRegistrar registers a handler's routes on the API route group.
// Handlers in the auth and user packages implement this so the server
// stays unaware of individual endpoints.
type RouteRegistrar interface {
	RegisterRoutes(group *gin.RouterGroup)
}

// RouterConfig holds the cross-cutting options applied when building the
// router.
type RouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server represents the main API HTTP server.
type Server struct {
	db     *sql.DB
	host   string
	port   int
	logger *slog.Logger
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		host:   host,
		port:   port,
		logger: logger,
	}
}

// SetupRouter builds the Gin router with the middleware stack and registers
// health endpoints plus every registrar's routes under /v1.
func (s *Server) SetupRouter(cfg RouterConfig, registrars ...RouteRegistrar) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	for _, registrar := range registrars {
		registrar.RegisterRoutes(v1)
	}

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The
// database is the only hard dependency, so readiness is its ping.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		s.SetupRouter(RouterConfig{})
	}
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.SetupRouter(RouterConfig{})
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
