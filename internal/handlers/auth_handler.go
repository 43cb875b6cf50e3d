package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-turnos/internal/audit"
	"github.com/BruksfildServices01/barber-turnos/internal/auth"
	"github.com/BruksfildServices01/barber-turnos/internal/dto"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/httpresp"
	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
	"github.com/BruksfildServices01/barber-turnos/internal/middleware"
)

type AuthHandler struct {
	gateway      *auth.Gateway
	audit        *audit.Dispatcher
	metrics      metrics.Recorder
	sessionTTL   time.Duration
	cookieSecure bool
}

func NewAuthHandler(
	gateway *auth.Gateway,
	audit *audit.Dispatcher,
	rec metrics.Recorder,
	sessionTTL time.Duration,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		gateway:      gateway,
		audit:        audit,
		metrics:      metrics.OrNop(rec),
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// --------- General lane ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Datos inválidos.")
		return
	}

	token, u, err := h.gateway.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.loginFailed(req.Username, err)
		httperr.FromError(c, err)
		return
	}

	h.loginSucceeded(u.ID, "session")

	maxAge := 0
	if h.sessionTTL > 0 {
		maxAge = int(h.sessionTTL.Seconds())
	}
	h.setCookie(c, middleware.SessionCookie, token, maxAge)

	httpresp.OK(c, dto.NewIdentityDTO(u))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := h.gateway.Logout(c.Request.Context(), token); err != nil {
			httperr.FromError(c, err)
			return
		}
	}

	h.setCookie(c, middleware.SessionCookie, "", -1)
	httpresp.OK(c, gin.H{"ok": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	httpresp.OK(c, dto.NewIdentityDTO(middleware.IdentityFrom(c).User))
}

// --------- Legacy admin lane ---------

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Datos inválidos.")
		return
	}

	cookie, err := h.gateway.IssueLegacyAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.loginFailed(req.Username, err)
		httperr.FromError(c, err)
		return
	}

	h.loginSucceeded(0, "legacy_admin")
	h.setCookie(c, middleware.LegacyAdminCookie, cookie, 0)
	httpresp.OK(c, gin.H{"ok": true})
}

func (h *AuthHandler) AdminLogout(c *gin.Context) {
	h.setCookie(c, middleware.LegacyAdminCookie, "", -1)
	httpresp.OK(c, gin.H{"ok": true})
}

// --------- Helpers ---------

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) loginSucceeded(userID uint, lane string) {
	h.metrics.RecordLogin(metrics.LoginSucceeded)

	ev := audit.Event{
		Action:   audit.ActionLoginSucceeded,
		Entity:   audit.EntityUser,
		Metadata: map[string]string{"lane": lane},
	}
	if userID != 0 {
		ev.UserID = &userID
	}
	h.audit.Dispatch(ev)
}

func (h *AuthHandler) loginFailed(username string, err error) {
	if !httperr.IsKind(err, httperr.KindUnauthenticated) {
		return
	}
	h.metrics.RecordLogin(metrics.LoginFailed)
	h.audit.Dispatch(audit.Event{
		Action:   audit.ActionLoginFailed,
		Entity:   audit.EntityUser,
		Metadata: map[string]string{"username": username},
	})
}
