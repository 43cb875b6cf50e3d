package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
)

func Metrics(rec metrics.Recorder) gin.HandlerFunc {
	rec = metrics.OrNop(rec)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.RecordHTTPRequest(c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
