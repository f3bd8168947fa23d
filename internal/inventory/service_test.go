package inventory

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryLine{}, &models.SkuInfo{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedLines(t *testing.T, db *gorm.DB) {
	t.Helper()
	infos := []models.SkuInfo{
		{SKU: "TSHIRT-M", ProductName: "Medium T-Shirt", AssignedHubs: "Hub 1,Hub 2"},
		{SKU: "HOODIE-L", ProductName: "Large Hoodie", AssignedHubs: "Hub 1"},
	}
	for _, info := range infos {
		if err := db.Create(&info).Error; err != nil {
			t.Fatalf("seed sku: %v", err)
		}
	}
	lines := []models.InventoryLine{
		{SKU: "TSHIRT-M", Hub: "Hub 1", Quantity: 25},
		{SKU: "TSHIRT-M", Hub: "Hub 2", Quantity: 4},
		{SKU: "HOODIE-L", Hub: "Hub 1", Quantity: 9},
	}
	for _, line := range lines {
		if err := db.Create(&line).Error; err != nil {
			t.Fatalf("seed line: %v", err)
		}
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), 10)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func adminActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Username: "kevin", Role: enums.RoleAdmin}
}

func TestListJoinsCatalogAndFlagsLowStock(t *testing.T) {
	db := newTestDB(t)
	seedLines(t, db)
	svc := newTestService(t, db)

	lines, err := svc.List(context.Background(), adminActor(), LineFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	byKey := map[string]Line{}
	for _, line := range lines {
		byKey[line.SKU+"/"+line.Hub] = line
	}

	tshirtHub1 := byKey["TSHIRT-M/Hub 1"]
	if tshirtHub1.ProductName != "Medium T-Shirt" || tshirtHub1.Status != StockStatusOK {
		t.Fatalf("unexpected line: %+v", tshirtHub1)
	}
	if byKey["TSHIRT-M/Hub 2"].Status != StockStatusLow {
		t.Fatalf("expected Hub 2 tshirt line to be low")
	}
	if byKey["HOODIE-L/Hub 1"].Status != StockStatusLow {
		t.Fatalf("expected hoodie line below threshold to be low")
	}
}

func TestLowStock(t *testing.T) {
	db := newTestDB(t)
	seedLines(t, db)
	svc := newTestService(t, db)

	low, err := svc.LowStock(context.Background(), adminActor(), LineFilter{})
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low lines, got %d", len(low))
	}
	for _, line := range low {
		if line.Quantity >= 10 {
			t.Fatalf("line is not low: %+v", line)
		}
	}
}

func TestListScoping(t *testing.T) {
	db := newTestDB(t)
	seedLines(t, db)
	svc := newTestService(t, db)
	ctx := context.Background()

	manager := auth.Actor{UserID: uuid.New(), Username: "fox", Role: enums.RoleHubManager, HomeHub: "Hub 1"}
	lines, err := svc.List(ctx, manager, LineFilter{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for Hub 1, got %d", len(lines))
	}
	for _, line := range lines {
		if line.Hub != "Hub 1" {
			t.Fatalf("manager must only see Hub 1: %+v", line)
		}
	}

	_, err = svc.List(ctx, manager, LineFilter{Hub: "Hub 2"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign hub, got %v", err)
	}

	supplier := auth.Actor{UserID: uuid.New(), Username: "vendor", Role: enums.RoleSupplier}
	_, err = svc.List(ctx, supplier, LineFilter{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for supplier, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	db := newTestDB(t)
	seedLines(t, db)
	svc := newTestService(t, db)

	data, err := svc.ExportCSV(context.Background(), adminActor(), LineFilter{Hub: "Hub 1"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	content := string(data)
	for _, sub := range []string{"sku,product_name,hub,quantity,status", "TSHIRT-M,Medium T-Shirt,Hub 1,25,OK", "HOODIE-L,Large Hoodie,Hub 1,9,Low"} {
		if !strings.Contains(content, sub) {
			t.Fatalf("csv missing %q:\n%s", sub, content)
		}
	}
}
