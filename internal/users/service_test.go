package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/config"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/security"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func adminActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Username: "kevin", Role: enums.RoleAdmin}
}

func TestCreateHashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	dto, err := svc.Create(context.Background(), adminActor(), CreateInput{
		Username: "Fox",
		Password: "hub1-rules",
		Role:     enums.RoleHubManager,
		HomeHub:  "Hub 1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Username != "fox" {
		t.Fatalf("expected lowercased username, got %q", dto.Username)
	}
	if !dto.IsActive {
		t.Fatal("expected new account to be active")
	}

	var stored models.User
	if err := db.Where("username = ?", "fox").First(&stored).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "hub1-rules" || !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("password must be stored hashed, got %q", stored.PasswordHash)
	}
	if ok, err := security.VerifyPassword("hub1-rules", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash must verify: ok=%v err=%v", ok, err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()
	admin := adminActor()

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing username", CreateInput{Password: "x", Role: enums.RoleAdmin}},
		{"missing password", CreateInput{Username: "fox", Role: enums.RoleAdmin}},
		{"bad role", CreateInput{Username: "fox", Password: "x", Role: "wizard"}},
		{"hub role without hub", CreateInput{Username: "fox", Password: "x", Role: enums.RoleHubManager}},
		{"supplier with hub", CreateInput{Username: "vendor", Password: "x", Role: enums.RoleSupplier, HomeHub: "Hub 1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	manager := auth.Actor{UserID: uuid.New(), Username: "fox", Role: enums.RoleHubManager, HomeHub: "Hub 1"}
	_, err := svc.Create(ctx, manager, CreateInput{Username: "slo", Password: "x", Role: enums.RoleRetail, HomeHub: "Retail"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()
	admin := adminActor()

	input := CreateInput{Username: "vendor", Password: "x", Role: enums.RoleSupplier}
	if _, err := svc.Create(ctx, admin, input); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(ctx, admin, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := adminActor()

	if _, err := svc.Create(ctx, admin, CreateInput{Username: "vendor", Password: "x", Role: enums.RoleSupplier}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deactivate(ctx, admin, "vendor"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var stored models.User
	if err := db.Where("username = ?", "vendor").First(&stored).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.IsActive {
		t.Fatal("expected deactivated account")
	}

	err := svc.Deactivate(ctx, admin, "kevin")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for self-deactivation, got %v", err)
	}

	err = svc.Deactivate(ctx, admin, "nobody")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
