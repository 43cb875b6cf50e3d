package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const corsPreflightMaxAge = "600"

// CORSMiddleware allows credentialed requests from the comma-separated
// origins in allowed. An empty list reflects any origin, which is how the
// single-page frontend is served in development.
func CORSMiddleware(allowed string) gin.HandlerFunc {
	origins := map[string]bool{}
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		ok := origin != "" && (len(origins) == 0 || origins[origin])

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		if ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		// pre-flight
		if ok {
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Max-Age", corsPreflightMaxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
