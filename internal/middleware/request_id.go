package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/osa911/userconsole/internal/api/constants"
	"github.com/osa911/userconsole/internal/client"
)

// RequestID tags each request with an id, reusing the caller's X-Request-ID.
// The id is echoed in the response and forwarded on every users API call
// made with the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(client.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(client.HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(client.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
