package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockdesk/internal/logger"
	"stockdesk/internal/uuid"
)

const requestIDKey = "requestID"

// RequestLogging tags each request with a time-ordered id, echoed in
// X-Request-ID, and logs one line per request once the handler chain is done.
// The line names the desk user and role resolved by AuthMiddleware, if any.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.FromHeader(c.GetHeader("X-Request-ID"))
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		id := Identity(c)
		requestLogger(c).Infow("desk request",
			"role", string(id.Role),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequestID returns the id assigned to the current request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func requestLogger(c *gin.Context) *zap.SugaredLogger {
	return logger.ForRequest(RequestID(c), Identity(c).Username)
}
