package routes

import (
	"net/http"

	"github.com/osa911/userconsole/internal/api/handlers"
)

// Handlers contains all the route handlers
type Handlers struct {
	Console *handlers.ConsoleHandler
	Health  *handlers.HealthHandler
	// Metrics serves the Prometheus exposition
	Metrics http.Handler
	// Static serves the embedded stylesheet
	Static http.FileSystem
}

// Middleware configures the global middleware stack
type Middleware struct {
	ServiceName    string
	RateLimitRPS   int
	RateLimitBurst int
}
