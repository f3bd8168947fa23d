package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/auth/session"
	"github.com/triplethreads/hubstock-backend/pkg/config"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
)

type stubVerifier struct {
	ok  bool
	err error
}

func (s stubVerifier) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "hubstock-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.Role, homeHub string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "fox",
		Role:     role,
		HomeHub:  homeHub,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), stubVerifier{ok: true}, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run without credentials")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), stubVerifier{ok: true}, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run with a bad token")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, stubVerifier{ok: false}, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run with a revoked session")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.RoleHubManager, "Hub 2"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSeedsActor(t *testing.T) {
	cfg := testJWTConfig()
	var got pkgAuth.Actor
	var gotAccessID string
	handler := Auth(cfg, stubVerifier{ok: true}, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				t.Fatal("actor missing from context")
			}
			got = actor
			gotAccessID = AccessIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.RoleHubManager, "Hub 2"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Username != "fox" {
		t.Fatalf("unexpected username %q", got.Username)
	}
	if got.Role != enums.RoleHubManager || got.HomeHub != "Hub 2" {
		t.Fatalf("unexpected actor %+v", got)
	}
	if gotAccessID == "" {
		t.Fatal("expected access id in context")
	}
}

func TestRequireAnyRole(t *testing.T) {
	cfg := testJWTConfig()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(cfg, stubVerifier{ok: true}, testLogger())(
		RequireAnyRole(testLogger(), enums.RoleAdmin, enums.RoleHubManager)(next),
	)

	cases := []struct {
		role enums.Role
		hub  string
		want int
	}{
		{enums.RoleAdmin, "", http.StatusOK},
		{enums.RoleHubManager, "Hub 2", http.StatusOK},
		{enums.RoleRetail, "Retail", http.StatusForbidden},
		{enums.RoleSupplier, "", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, tc.role, tc.hub))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("role %s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}
