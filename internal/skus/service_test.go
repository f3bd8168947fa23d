package skus

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:skus_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.SkuInfo{}, &models.InventoryLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func adminActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Username: "kevin", Role: enums.RoleAdmin}
}

func countLines(t *testing.T, db *gorm.DB, sku string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.InventoryLine{}).Where("sku = ?", sku).Count(&n).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	return n
}

func TestCreateSeedsZeroQuantityLines(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	info, err := svc.Create(context.Background(), adminActor(), CreateInput{
		SKU:          "TSHIRT-M",
		ProductName:  "Medium T-Shirt",
		AssignedHubs: []string{"Hub 1", "Hub 2", "Hub 1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if info.AssignedHubs != "Hub 1,Hub 2" {
		t.Fatalf("expected deduplicated sorted hubs, got %q", info.AssignedHubs)
	}
	if n := countLines(t, db, "TSHIRT-M"); n != 2 {
		t.Fatalf("expected 2 inventory lines, got %d", n)
	}

	var line models.InventoryLine
	if err := db.Where("sku = ? AND hub = ?", "TSHIRT-M", "Hub 1").First(&line).Error; err != nil {
		t.Fatalf("load line: %v", err)
	}
	if line.Quantity != 0 {
		t.Fatalf("expected zero quantity, got %d", line.Quantity)
	}
}

func TestCreateConflictAndAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminActor(), CreateInput{SKU: "TSHIRT-M", ProductName: "Medium T-Shirt"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(ctx, adminActor(), CreateInput{SKU: "TSHIRT-M", ProductName: "Duplicate"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	manager := auth.Actor{UserID: uuid.New(), Username: "fox", Role: enums.RoleHubManager, HomeHub: "Hub 1"}
	_, err = svc.Create(ctx, manager, CreateInput{SKU: "HOODIE-L", ProductName: "Large Hoodie"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for manager, got %v", err)
	}
}

func TestAssignHubsKeepsExistingQuantities(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := adminActor()

	if _, err := svc.Create(ctx, admin, CreateInput{
		SKU: "TSHIRT-M", ProductName: "Medium T-Shirt", AssignedHubs: []string{"Hub 1"},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate stock having arrived at Hub 1 before reassignment.
	if err := db.Model(&models.InventoryLine{}).
		Where("sku = ? AND hub = ?", "TSHIRT-M", "Hub 1").
		Update("quantity", 9).Error; err != nil {
		t.Fatalf("bump quantity: %v", err)
	}

	info, err := svc.AssignHubs(ctx, admin, "TSHIRT-M", []string{"Hub 1", "Hub 3"})
	if err != nil {
		t.Fatalf("assign hubs: %v", err)
	}
	if info.AssignedHubs != "Hub 1,Hub 3" {
		t.Fatalf("unexpected hubs %q", info.AssignedHubs)
	}

	var hub1, hub3 models.InventoryLine
	if err := db.Where("sku = ? AND hub = ?", "TSHIRT-M", "Hub 1").First(&hub1).Error; err != nil {
		t.Fatalf("load hub1 line: %v", err)
	}
	if err := db.Where("sku = ? AND hub = ?", "TSHIRT-M", "Hub 3").First(&hub3).Error; err != nil {
		t.Fatalf("load hub3 line: %v", err)
	}
	if hub1.Quantity != 9 {
		t.Fatalf("existing quantity must be preserved, got %d", hub1.Quantity)
	}
	if hub3.Quantity != 0 {
		t.Fatalf("new line must start at zero, got %d", hub3.Quantity)
	}

	_, err = svc.AssignHubs(ctx, admin, "GHOST", []string{"Hub 1"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportCSV(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := adminActor()

	if _, err := svc.Create(ctx, admin, CreateInput{SKU: "TSHIRT-M", ProductName: "Old Name"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	csvData := strings.Join([]string{
		"sku,product_name,assigned_hubs",
		"TSHIRT-M,Medium T-Shirt,Hub 1;Hub 2",
		"HOODIE-L,Large Hoodie,Hub 1",
		",missing sku,Hub 1",
	}, "\n")

	result, err := svc.ImportCSV(ctx, admin, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Created != 1 || result.Updated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %+v", result.Errors)
	}

	updated, err := svc.List(ctx, admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 catalog entries, got %d", len(updated))
	}
	if updated[1].ProductName != "Medium T-Shirt" {
		t.Fatalf("expected updated product name, got %+v", updated[1])
	}
	if n := countLines(t, db, "HOODIE-L"); n != 1 {
		t.Fatalf("expected hub line for imported sku, got %d", n)
	}
}

func TestListForHub(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := adminActor()

	seed := []CreateInput{
		{SKU: "TSHIRT-M", ProductName: "Medium T-Shirt", AssignedHubs: []string{"Hub 1", "Hub 2"}},
		{SKU: "HOODIE-L", ProductName: "Large Hoodie", AssignedHubs: []string{"Hub 2"}},
	}
	for _, input := range seed {
		if _, err := svc.Create(ctx, admin, input); err != nil {
			t.Fatalf("seed %s: %v", input.SKU, err)
		}
	}

	manager := auth.Actor{UserID: uuid.New(), Username: "fox", Role: enums.RoleHubManager, HomeHub: "Hub 1"}
	assigned, err := svc.ListForHub(ctx, manager, "Hub 1")
	if err != nil {
		t.Fatalf("list for hub: %v", err)
	}
	if len(assigned) != 1 || assigned[0].SKU != "TSHIRT-M" {
		t.Fatalf("unexpected hub catalog: %+v", assigned)
	}

	_, err = svc.ListForHub(ctx, manager, "Hub 2")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign hub, got %v", err)
	}
}
