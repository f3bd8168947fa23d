package counts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:counts_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.CountConfirmation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestConfirm(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	manager := auth.Actor{UserID: uuid.New(), Username: "fox", Role: enums.RoleHubManager, HomeHub: "Hub 1"}
	first, err := svc.Confirm(ctx, manager)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if first.Hub != "Hub 1" || first.Username != "fox" {
		t.Fatalf("unexpected confirmation: %+v", first)
	}
	if first.ConfirmedAt.IsZero() {
		t.Fatal("expected confirmation timestamp")
	}

	// Repeat confirmations each produce a row.
	second, err := svc.Confirm(ctx, manager)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a new confirmation row")
	}

	admin := auth.Actor{UserID: uuid.New(), Username: "kevin", Role: enums.RoleAdmin}
	_, err = svc.Confirm(ctx, admin)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for admin, got %v", err)
	}

	supplier := auth.Actor{UserID: uuid.New(), Username: "vendor", Role: enums.RoleSupplier}
	_, err = svc.Confirm(ctx, supplier)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for supplier, got %v", err)
	}
}

func TestListScoping(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	hub1 := auth.Actor{UserID: uuid.New(), Username: "fox", Role: enums.RoleHubManager, HomeHub: "Hub 1"}
	hub2 := auth.Actor{UserID: uuid.New(), Username: "smooth", Role: enums.RoleHubManager, HomeHub: "Hub 2"}
	for _, actor := range []auth.Actor{hub1, hub2} {
		if _, err := svc.Confirm(ctx, actor); err != nil {
			t.Fatalf("confirm %s: %v", actor.Username, err)
		}
	}

	admin := auth.Actor{UserID: uuid.New(), Username: "kevin", Role: enums.RoleAdmin}
	all, err := svc.List(ctx, admin, Filter{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 confirmations, got %d", len(all))
	}

	scoped, err := svc.List(ctx, hub1, Filter{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Hub != "Hub 1" {
		t.Fatalf("manager should only see their hub: %+v", scoped)
	}

	supplier := auth.Actor{UserID: uuid.New(), Username: "vendor", Role: enums.RoleSupplier}
	_, err = svc.List(ctx, supplier, Filter{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for supplier, got %v", err)
	}
}
