package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// ContextKeyRequestID is the gin context key for the request id
const ContextKeyRequestID = "request_id"

// RequestID reuses an incoming X-Request-ID or generates one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(RequestIDHeader, requestID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID
func GetRequestID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyRequestID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// AccessLogConfig holds configuration for the access log middleware
type AccessLogConfig struct {
	// Logger receives one entry per request; nil means the global logger
	Logger *logger.Logger
	// SkipPaths are not logged
	SkipPaths []string
}

// DefaultAccessLogConfig skips the health check
func DefaultAccessLogConfig() *AccessLogConfig {
	return &AccessLogConfig{
		SkipPaths: []string{"/health"},
	}
}

// AccessLog writes one structured entry per request. 5xx log at error,
// 4xx at warn, the rest at info.
func AccessLog(config *AccessLogConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultAccessLogConfig()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		l := config.Logger
		if l == nil {
			l = logger.Get()
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		entry := l.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			entry.Error("request failed", fields...)
		case status >= 400:
			entry.Warn("request rejected", fields...)
		default:
			entry.Info("request completed", fields...)
		}
	}
}
