// Package auth resolves who is calling and decides whether they may.
//
// Two independent lanes exist. The general lane is an opaque session token
// mapped to a user by the session store. The legacy lane is a signed cookie
// that only asserts "administrator"; it predates user accounts and is
// honoured by the endpoints that existed back then.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/barber-turnos/internal/domain/user"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
	"github.com/BruksfildServices01/barber-turnos/internal/session"
)

const legacyTTL = 24 * time.Hour

var ErrBadToken = errors.New("invalid token")

// Identity is the resolved caller of one request.
type Identity struct {
	User        *models.User
	LegacyAdmin bool
}

func (id Identity) Authenticated() bool {
	return id.User != nil
}

func (id Identity) IsAdmin() bool {
	return id.User != nil && id.User.IsAdmin
}

// UserID is nil for anonymous callers.
func (id Identity) UserID() *uint {
	if id.User == nil {
		return nil
	}
	uid := id.User.ID
	return &uid
}

type legacyClaims struct {
	Admin bool `json:"adm"`
	jwt.RegisteredClaims
}

type Gateway struct {
	users    user.Directory
	sessions session.Store
	secret   []byte
	now      func() time.Time
}

func NewGateway(users user.Directory, sessions session.Store, secret string) *Gateway {
	return &Gateway{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		now:      time.Now,
	}
}

// ======================================================
// GENERAL LANE
// ======================================================

// Login checks the credential and opens a session. Unknown users and wrong
// credentials fail identically.
func (g *Gateway) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, err := g.checkCredentials(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := g.sessions.CreateSession(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (g *Gateway) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return g.sessions.DestroySession(ctx, token)
}

// Authenticate maps a session token to its user. It returns nil, nil for
// anonymous callers. A token whose user no longer exists is destroyed.
func (g *Gateway) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, ok, err := g.sessions.ResolveSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	u, err := g.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if u == nil {
		slog.Warn("session references missing user, destroying", "user_id", userID)
		if err := g.sessions.DestroySession(ctx, token); err != nil {
			return nil, fmt.Errorf("destroy orphan session: %w", err)
		}
		return nil, nil
	}
	return u, nil
}

func (g *Gateway) checkCredentials(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, httperr.Validation("missing_username")
	}

	u, err := g.users.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !user.CheckCredential(u.Credential, password) {
		return nil, httperr.Unauthenticated("invalid_credentials")
	}
	return u, nil
}

// ======================================================
// CAPABILITY CHECKS
// ======================================================

func RequireUser(id Identity) error {
	if !id.Authenticated() {
		return httperr.Unauthenticated("not_authenticated")
	}
	return nil
}

// RequireAdmin accepts an administrator session, or the legacy cookie when
// allowLegacy is set. A known non-admin caller is unauthorized; nobody at
// all is unauthenticated.
func RequireAdmin(id Identity, allowLegacy bool) error {
	if id.IsAdmin() {
		return nil
	}
	if allowLegacy && id.LegacyAdmin {
		return nil
	}
	if id.Authenticated() {
		return httperr.Unauthorized("admin_required")
	}
	return httperr.Unauthenticated("not_authenticated")
}

// ======================================================
// LEGACY LANE
// ======================================================

// IssueLegacyAdmin checks administrator credentials and returns a signed
// admin cookie value.
func (g *Gateway) IssueLegacyAdmin(ctx context.Context, username, password string) (string, error) {
	u, err := g.checkCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !u.IsAdmin {
		return "", httperr.Unauthenticated("invalid_credentials")
	}

	now := g.now()
	c := legacyClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(legacyTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(g.secret)
}

// VerifyLegacyAdmin reports whether raw is a valid, unexpired admin cookie.
func (g *Gateway) VerifyLegacyAdmin(raw string) bool {
	if raw == "" {
		return false
	}

	tok, err := jwt.ParseWithClaims(raw, &legacyClaims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		return false
	}

	c, ok := tok.Claims.(*legacyClaims)
	return ok && tok.Valid && c.Admin
}
