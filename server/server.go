// Package server wires the HTTP router, middleware and lifecycle of the vetref service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giygas/vetref/config"
	"github.com/giygas/vetref/data"
	"github.com/giygas/vetref/handlers"
	"github.com/giygas/vetref/health"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/metrics"
	"github.com/giygas/vetref/render"
	"github.com/giygas/vetref/validation"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        chi.Router
	dataContainer *data.DataContainer
	config        *config.Config
	httpHandler   interfaces.HTTPHandler
	healthChecker interfaces.HealthChecker
	rateLimiter   *RateLimiter
}

// NewServer creates a new server instance. sender may be nil, in which case issue
// reports are answered with 503.
func NewServer(cfg *config.Config, dataContainer *data.DataContainer, sender interfaces.ReportSender) *Server {
	router := chi.NewRouter()

	healthChecker := health.NewHealthChecker(dataContainer, cfg.RefreshAt)
	httpHandler := handlers.NewHTTPHandler(
		dataContainer,
		validation.NewDataValidator(),
		render.NewRenderer(dataContainer),
		healthChecker,
		sender,
	)

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second, // the first rendering may wait for the monograph corpus
			IdleTimeout:  60 * time.Second,
		},
		router:        router,
		dataContainer: dataContainer,
		config:        cfg,
		httpHandler:   httpHandler,
		healthChecker: healthChecker,
		rateLimiter:   NewRateLimiter(30 * time.Minute),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router exposes the handler for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware) // before RealIPMiddleware to see the original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(requestLogger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.Compress(5, "application/json", "text/html"))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Middleware)
}

func requestLogger() *slog.Logger {
	if logging.DefaultLoggingService != nil && logging.DefaultLoggingService.Logger != nil {
		return logging.DefaultLoggingService.Logger
	}
	return slog.Default()
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.httpHandler.Search)
		r.Get("/drugs/{key}", s.httpHandler.ShowDrug)
		r.Get("/monographs", s.httpHandler.FindMonographs)
		r.Post("/report", s.httpHandler.Report)
	})

	s.router.Get("/health", s.httpHandler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.rateLimiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
