package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/eventmart/internal/gateway"
)

// RequestLogger logs incoming requests using slog. The request's correlation
// id, taken from the inbound header or generated, is propagated to every
// outbound service call made while handling it.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(gateway.CorrelationHeader)
		if correlationID == "" {
			correlationID = gateway.CorrelationID(c.Request.Context())
		}
		ctx := gateway.WithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(gateway.CorrelationHeader, correlationID)

		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelWarn
		}
		logger.LogAttrs(ctx, level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("correlation_id", correlationID),
		)
	}
}
