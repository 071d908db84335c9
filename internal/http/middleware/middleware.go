// Package middleware holds gin middleware that is specific to this server.
package middleware

import (
	"casting_ops_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

const requestLoggerKey = "requestLogger"

// RequestID tags every request with an id, reusing the caller's when it is a
// valid UUID, and stores a logger scoped to it on the context.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(requestLoggerKey, log.WithRequestID(id))
		c.Next()
	}
}

// Logger returns the request-scoped logger, or fallback outside RequestID.
func Logger(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return fallback
}
