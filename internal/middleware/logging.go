package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessLog writes one structured line per request, at warn for 4xx and
// error for 5xx.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Float64("duration_ms", float64(time.Since(start).Nanoseconds())/float64(time.Millisecond)),
			slog.String("client_ip", c.ClientIP()),
		}
		if uid := IdentityFrom(c).UserID(); uid != nil {
			attrs = append(attrs, slog.Uint64("user_id", uint64(*uid)))
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		logger.Log(c.Request.Context(), level, "http_request", attrs...)
	}
}
