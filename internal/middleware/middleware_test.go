package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-turnos/internal/auth"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
	"github.com/BruksfildServices01/barber-turnos/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockDirectory struct {
	users []*models.User
}

func (d *mockDirectory) FindUserByUsername(_ context.Context, name string) (*models.User, error) {
	for _, u := range d.users {
		if u.Username == name {
			return u, nil
		}
	}
	return nil, nil
}

func (d *mockDirectory) FindUserByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (d *mockDirectory) EnsureUser(_ context.Context, u *models.User) (*models.User, error) {
	return u, nil
}

func newGateway() *auth.Gateway {
	dir := &mockDirectory{users: []*models.User{
		{ID: 1, Username: "admin", Credential: "admin123", IsAdmin: true},
		{ID: 2, Username: "juan", Credential: "juan123"},
	}}
	return auth.NewGateway(dir, session.NewMemoryStore(0), "secret")
}

func newRouter(gw *auth.Gateway, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Identity(gw))
	r.GET("/guarded", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": IdentityFrom(c).IsAdmin()})
	})
	return r
}

func do(r http.Handler, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, gw *auth.Gateway, name, pass string) *http.Cookie {
	t.Helper()
	token, _, err := gw.Login(context.Background(), name, pass)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: token}
}

func TestRequireUser(t *testing.T) {
	gw := newGateway()
	r := newRouter(gw, RequireUser())

	if w := do(r); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", w.Code)
	}
	if w := do(r, &http.Cookie{Name: SessionCookie, Value: "bogus"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: status = %d, want 401", w.Code)
	}
	if w := do(r, login(t, gw, "juan", "juan123")); w.Code != http.StatusOK {
		t.Errorf("user: status = %d, want 200", w.Code)
	}
}

type failingSessions struct{}

func (failingSessions) CreateSession(context.Context, uint) (string, error) {
	return "", errors.New("redis: connection refused")
}

func (failingSessions) ResolveSession(context.Context, string) (uint, bool, error) {
	return 0, false, errors.New("redis: connection refused")
}

func (failingSessions) DestroySession(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestIdentity_SessionStoreDownIsAnonymous(t *testing.T) {
	gw := auth.NewGateway(&mockDirectory{}, failingSessions{}, "secret")

	r := gin.New()
	r.Use(Identity(gw))
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": IdentityFrom(c).Authenticated()})
	})
	r.GET("/guarded", RequireUser(), func(c *gin.Context) { c.Status(http.StatusOK) })

	cookie := &http.Cookie{Name: SessionCookie, Value: "some-token"}

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"authenticated":false`) {
		t.Errorf("public route: %d %s", w.Code, w.Body)
	}

	if w := do(r, cookie); w.Code != http.StatusUnauthorized {
		t.Errorf("guarded route: status = %d, want 401", w.Code)
	}
}

func TestRequireAdmin_GeneralLaneOnly(t *testing.T) {
	gw := newGateway()
	r := newRouter(gw, RequireAdmin(false))

	legacy, err := gw.IssueLegacyAdmin(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("IssueLegacyAdmin: %v", err)
	}

	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", []*http.Cookie{login(t, gw, "juan", "juan123")}, http.StatusForbidden},
		{"admin", []*http.Cookie{login(t, gw, "admin", "admin123")}, http.StatusOK},
		{"legacy only", []*http.Cookie{{Name: LegacyAdminCookie, Value: legacy}}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, tt.cookies...); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireAdmin_LegacyLane(t *testing.T) {
	gw := newGateway()
	r := newRouter(gw, RequireAdmin(true))

	legacy, err := gw.IssueLegacyAdmin(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("IssueLegacyAdmin: %v", err)
	}

	if w := do(r, &http.Cookie{Name: LegacyAdminCookie, Value: legacy}); w.Code != http.StatusOK {
		t.Errorf("legacy cookie: status = %d, want 200", w.Code)
	}
	if w := do(r, &http.Cookie{Name: LegacyAdminCookie, Value: "1"}); w.Code != http.StatusUnauthorized {
		t.Errorf("forged legacy cookie: status = %d, want 401", w.Code)
	}

	var body map[string]any
	w := do(r, &http.Cookie{Name: LegacyAdminCookie, Value: legacy})
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["admin"] != false {
		t.Errorf("legacy lane must not mark the general identity as admin: %v", body)
	}
}

func TestErrorBodyShape(t *testing.T) {
	r := newRouter(newGateway(), RequireUser())
	w := do(r)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["error_code"] != "not_authenticated" || body["message"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.POST("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send("10.0.0.1"); w.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	w := send("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q, want 30", w.Header().Get("Retry-After"))
	}

	if w := send("10.0.0.2"); w.Code != http.StatusCreated {
		t.Errorf("other client limited: %d", w.Code)
	}
	if rl.count() != 2 {
		t.Errorf("count() = %d, want 2", rl.count())
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.count() != 0 {
		t.Errorf("count() after cleanup = %d, want 0", rl.count())
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://turnos.example"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://turnos.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://turnos.example" {
		t.Errorf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("foreign origin got CORS headers")
	}
	if w.Code != http.StatusOK {
		t.Errorf("simple request status = %d, want 200", w.Code)
	}
}

func TestCORSMiddleware_OriginList(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(" https://a.example/ , https://b.example"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for origin, want := range map[string]bool{
		"https://a.example": true,
		"https://b.example": true,
		"https://c.example": false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin") == origin; got != want {
			t.Errorf("origin %s allowed = %v, want %v", origin, got, want)
		}
	}
}

func TestCORSMiddleware_AnyOriginWhenUnset(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(""))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Max-Age") == "" {
		t.Error("preflight without max-age")
	}
}

func TestAccessLogAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(AccessLog(logger), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	line := buf.String()
	if !strings.Contains(line, `"msg":"http_request"`) || !strings.Contains(line, `"status":500`) || !strings.Contains(line, `"level":"ERROR"`) {
		t.Errorf("access log = %s", line)
	}
}
