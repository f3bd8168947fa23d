package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/auth/session"
	"github.com/triplethreads/hubstock-backend/pkg/config"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/security"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	byUsername map[string]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := f.byUsername[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range f.byUsername {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.lastLogins == nil {
		f.lastLogins = map[uuid.UUID]time.Time{}
	}
	f.lastLogins[id] = at
	return nil
}

type fakeSessionManager struct {
	tokens  map[string]string
	counter int
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{tokens: map[string]string{}}
}

func (f *fakeSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	f.counter++
	token := fmt.Sprintf("refresh-%d", f.counter)
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	token, err := f.Generate(ctx, newAccessID)
	if err != nil {
		return "", "", err
	}
	return newAccessID, token, nil
}

func (f *fakeSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "hubstock-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func newTestService(t *testing.T, sessions *fakeSessionManager, usersByName map[string]*models.User) (Service, *fakeUserRepo) {
	t.Helper()
	repo := &fakeUserRepo{byUsername: usersByName}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func seedUser(t *testing.T, username string, password string, role enums.Role, homeHub string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		HomeHub:      homeHub,
		IsActive:     active,
	}
}

func TestLogin(t *testing.T) {
	fox := seedUser(t, "fox", "hub1-rules", enums.RoleHubManager, "Hub 1", true)
	sessions := newFakeSessionManager()
	svc, repo := newTestService(t, sessions, map[string]*models.User{"fox": fox})
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Username: "  Fox ", Password: "hub1-rules"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken == "" || resp.User == nil || resp.User.Username != "fox" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, ok := repo.lastLogins[fox.ID]; !ok {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Username != "fox" || claims.Role != enums.RoleHubManager || claims.HomeHub != "Hub 1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := sessions.tokens[claims.ID]; !ok {
		t.Fatal("expected a session keyed by the token jti")
	}
}

func TestLoginRejections(t *testing.T) {
	fox := seedUser(t, "fox", "hub1-rules", enums.RoleHubManager, "Hub 1", true)
	benched := seedUser(t, "benched", "pw", enums.RoleRetail, "Retail", false)
	svc, _ := newTestService(t, newFakeSessionManager(), map[string]*models.User{
		"fox":     fox,
		"benched": benched,
	})
	ctx := context.Background()

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"unknown user", LoginRequest{Username: "nobody", Password: "x"}},
		{"wrong password", LoginRequest{Username: "fox", Password: "wrong"}},
		{"inactive account", LoginRequest{Username: "benched", Password: "pw"}},
		{"blank username", LoginRequest{Username: "  ", Password: "x"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.req)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("rejections must be indistinguishable, got %q", typed.Message())
			}
		})
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	fox := seedUser(t, "fox", "hub1-rules", enums.RoleHubManager, "Hub 1", true)
	sessions := newFakeSessionManager()
	svc, _ := newTestService(t, sessions, map[string]*models.User{"fox": fox})
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "fox", Password: "hub1-rules"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	newClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	oldClaims, _ := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if newClaims.ID == oldClaims.ID {
		t.Fatal("expected a new access id after rotation")
	}

	// The original refresh token is dead after rotation.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestRefreshInactiveUser(t *testing.T) {
	fox := seedUser(t, "fox", "hub1-rules", enums.RoleHubManager, "Hub 1", true)
	sessions := newFakeSessionManager()
	svc, _ := newTestService(t, sessions, map[string]*models.User{"fox": fox})
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "fox", Password: "hub1-rules"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fox.IsActive = false
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for deactivated account, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	fox := seedUser(t, "fox", "hub1-rules", enums.RoleHubManager, "Hub 1", true)
	sessions := newFakeSessionManager()
	svc, _ := newTestService(t, sessions, map[string]*models.User{"fox": fox})
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "fox", Password: "hub1-rules"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.tokens[claims.ID]; ok {
		t.Fatal("expected session to be revoked")
	}

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
