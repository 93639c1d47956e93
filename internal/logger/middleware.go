package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// header carrying the request id back to the client
const RequestIDHeader = "X-Request-ID"

// attaches a request-scoped logger to the request context and logs completion
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		log := defaultLogger.With(
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if userID := c.GetString("user_id"); userID != "" {
			args = append(args, "user_id", userID)
		}

		if status >= 500 {
			log.Warn("request completed", args...)
			return
		}

		log.Debug("request completed", args...)
	}
}
