package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-turnos/internal/auth"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
)

const (
	SessionCookie     = "session"
	LegacyAdminCookie = "admin"

	ContextIdentity = "identity"
)

// Identity resolves both auth lanes for every request and stores the
// result under ContextIdentity. It never rejects a request by itself; a
// failing session store leaves the caller anonymous.
func Identity(gw *auth.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id auth.Identity

		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			u, err := gw.Authenticate(c.Request.Context(), token)
			if err != nil {
				// guarded routes still answer 401 for an anonymous caller
				slog.Warn("session lookup failed, continuing anonymous",
					slog.String("path", c.Request.URL.Path),
					slog.String("error", err.Error()),
				)
			}
			id.User = u
		}

		if raw, err := c.Cookie(LegacyAdminCookie); err == nil {
			id.LegacyAdmin = gw.VerifyLegacyAdmin(raw)
		}

		c.Set(ContextIdentity, id)
		c.Next()
	}
}

// IdentityFrom returns the caller resolved by Identity, anonymous if none.
func IdentityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(ContextIdentity); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireUser(IdentityFrom(c)); err != nil {
			httperr.FromError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin admits administrator sessions, and the legacy admin cookie
// when allowLegacy is set.
func RequireAdmin(allowLegacy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireAdmin(IdentityFrom(c), allowLegacy); err != nil {
			httperr.FromError(c, err)
			return
		}
		c.Next()
	}
}
