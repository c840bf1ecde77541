package routes

import (
	"net/http"
	"strings"

	"github.com/osa911/userconsole/internal/api/middleware"
	"github.com/osa911/userconsole/internal/logging"
	basemw "github.com/osa911/userconsole/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Setup configures all routes
func Setup(router *gin.Engine, h *Handlers) {
	logger := logging.GetGlobalLogger()

	SetupHealthRoutes(router, h.Health)
	SetupConsoleRoutes(router, h.Console)

	router.GET("/metrics", gin.WrapH(h.Metrics))
	router.StaticFS("/static", h.Static)

	logger.Debug("All routes have been set up successfully")
}

// SetupGlobalMiddleware configures middleware that applies to all routes
func SetupGlobalMiddleware(router *gin.Engine, logger *logging.Logger, m Middleware) {
	router.Use(basemw.Recovery(logger))
	router.Use(basemw.RequestID())
	router.Use(otelgin.Middleware(m.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !untraced(r.URL.Path)
	})))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		RPS:   m.RateLimitRPS,
		Burst: m.RateLimitBurst,
	}))
}

// untraced skips scrape and asset traffic
func untraced(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/static/")
}
