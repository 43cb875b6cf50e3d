package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
)

// Recovery turns a panic into a 500 with the usual error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				httperr.Internal(c, "internal_error", "Error interno.")
			}
		}()
		c.Next()
	}
}
