package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id assigned to each request
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key holding the request id
const requestIDKey = "request_id"

// RequestID returns the id assigned to the request by StructuredLogging
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// StructuredLogging logs each request with its query, latency and a request
// id, and records it in metrics when metrics is non-nil. An incoming
// X-Request-ID is reused; otherwise a new one is generated.
func StructuredLogging(logger *slog.Logger, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		log := logger.With("request_id", requestID)
		log.Debug("request started",
			"method", method,
			"path", path,
			"query_params", c.Request.URL.Query().Encode(),
			"remote_addr", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if metrics != nil {
			metrics.Record(method+" "+route, statusCode, latency)
		}

		log.Info("request completed",
			"method", method,
			"path", path,
			"route", route,
			"status_code", statusCode,
			"latency_ms", latency.Milliseconds(),
			"bytes_written", c.Writer.Size(),
		)

		for _, err := range c.Errors {
			log.Error("request error",
				"method", method,
				"path", path,
				"error", err.Error(),
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}
