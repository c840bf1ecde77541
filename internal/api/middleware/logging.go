package middleware

import (
	"time"

	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request through logger.LogHTTPRequest.
// It is a no-op unless the logger has request logging enabled (LOG_REQUESTS).
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	logger.Debug("RequestLogger middleware initialized (enabled=%v)", logger.RequestsEnabled())

	if !logger.RequestsEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		logger.LogHTTPRequest(
			c.Request.Method,
			path,
			utils.GetRealIP(c),
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).String(),
		)
	}
}
