package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/osa911/userconsole/internal/api/handlers"
	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/config"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/server/routes"
	"github.com/osa911/userconsole/internal/service"
	"github.com/osa911/userconsole/internal/telemetry"
	"github.com/osa911/userconsole/internal/version"
	"github.com/osa911/userconsole/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceName identifies the console in traces and user agents
const ServiceName = "userconsole"

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	logger   *logging.Logger
	registry *prometheus.Registry
}

// Options are the collaborators a Server is built from
type Options struct {
	Config *config.Config
	Logger *logging.Logger
	Users  interfaces.UserAPI
	// APIURL is shown in the page footer and the health report
	APIURL string
	// Registry receives the Go runtime collectors and backs /metrics
	Registry *prometheus.Registry
}

// NewServer creates a new server instance
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Users == nil {
		return nil, fmt.Errorf("server needs a config and a users API")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Release mode, and Gin's own logger is replaced by ours
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()
	gin.DefaultWriter = io.Discard

	router := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	routes.SetupGlobalMiddleware(router, logger, routes.Middleware{
		ServiceName:    ServiceName,
		RateLimitRPS:   opts.Config.RateLimitRPS,
		RateLimitBurst: opts.Config.RateLimitBurst,
	})
	routes.Setup(router, &routes.Handlers{
		Console: handlers.NewConsoleHandler(opts.Users, opts.APIURL, logger),
		Health:  handlers.NewHealthHandler(opts.Users, opts.APIURL),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Static:  web.Static(),
	})

	return &Server{
		router:   router,
		cfg:      opts.Config,
		logger:   logger,
		registry: registry,
	}, nil
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("User console listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return logging.WrapError(err, "server stopped")
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down user console...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return logging.WrapError(err, "graceful shutdown failed")
	}
	return nil
}

// Run wires the console from cfg and serves until ctx is cancelled
func Run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    ServiceName,
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		SampleRate:     1,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush traces: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	apiURL := cfg.BaseURL()
	users := service.NewUserService(client.New(client.Config{
		BaseURL:   apiURL,
		Timeout:   cfg.APITimeout,
		Logger:    logger,
		Metrics:   client.NewMetrics(registry),
		UserAgent: version.UserAgent(ServiceName),
	}))
	logger.Info("Using users API at %s", apiURL)

	srv, err := NewServer(Options{
		Config:   cfg,
		Logger:   logger,
		Users:    users,
		APIURL:   apiURL,
		Registry: registry,
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
