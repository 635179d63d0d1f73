package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	redrepo "github.com/Krunal123456/Bari/internal/repo/redis"
	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
)

func TestRequireRoleAllowsAdmin(t *testing.T) {
	mw := RequireRole(enums.RoleAdmin, enums.RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: "u-1",
		SID:    "sid-1",
		Role:   enums.RoleAdmin,
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsMember(t *testing.T) {
	mw := RequireRole(enums.RoleAdmin, enums.RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: "u-2",
		SID:    "sid-2",
		Role:   enums.RoleMember,
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for forbidden role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireRoleSuperAdminOnly(t *testing.T) {
	mw := RequireRole(enums.RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users/u-9/promote", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: "u-3",
		Role:   enums.RoleAdmin,
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("admin must not reach super admin route")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	mw := RequireRole(enums.RoleAdmin)

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareUnavailableWithoutService(t *testing.T) {
	rr := httptest.NewRecorder()
	AuthMiddleware(nil, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestAuthMiddlewareValidatesSession(t *testing.T) {
	svc, jwt := newTestAuth(t)
	token, _, err := jwt.GenerateAccessToken("u-1", "sid-1", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	mw := AuthMiddleware(svc, zap.NewNop())

	t.Run("missing bearer", func(t *testing.T) {
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			t.Fatalf("handler must not be called")
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
		}
	})

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authsvc.IdentityFromContext(r.Context())
			if !ok {
				t.Fatalf("identity missing in context")
			}
			if identity.UserID != "u-1" || identity.Role != enums.RoleAdmin {
				t.Fatalf("unexpected identity: %+v", identity)
			}
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		if err := svc.RevokeUser(context.Background(), "u-1"); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			t.Fatalf("handler must not be called after revoke")
		})).ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
		}
	})
}

func TestOptionalAuthPassesAnonymousAndQueryToken(t *testing.T) {
	svc, jwt := newTestAuth(t)
	token, _, err := jwt.GenerateAccessToken("u-1", "sid-1", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var seen []bool
	h := OptionalAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := authsvc.IdentityFromContext(r.Context())
		seen = append(seen, ok)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/posts", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/posts/live?token="+token, nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/posts/live?token=garbage", nil))

	want := []bool{false, true, false}
	if len(seen) != len(want) {
		t.Fatalf("unexpected calls: got %d want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("request %d identity: got %v want %v", i, seen[i], want[i])
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		in    string
		token string
		ok    bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := extractBearerToken(tt.in)
		if token != tt.token || ok != tt.ok {
			t.Fatalf("extractBearerToken(%q): got (%q, %v) want (%q, %v)", tt.in, token, ok, tt.token, tt.ok)
		}
	}
}

func newTestAuth(t *testing.T) (*authsvc.Service, *authsvc.JWTManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := redrepo.NewSessionRepo(client)
	if err := sessions.Create(context.Background(), authsvc.SessionRecord{
		SID:       "sid-1",
		UserID:    "u-1",
		Role:      "admin",
		ExpiresAt: time.Now().Add(time.Hour),
	}, "refresh-1"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	jwt := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	return authsvc.NewService(jwt, sessions, nil, time.Hour), jwt
}
