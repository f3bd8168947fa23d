package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/triplethreads/hubstock-backend/internal/skus"
	"github.com/triplethreads/hubstock-backend/internal/users"
	"github.com/triplethreads/hubstock-backend/pkg/config"
	"github.com/triplethreads/hubstock-backend/pkg/db"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
	"github.com/triplethreads/hubstock-backend/pkg/migrate"
	"github.com/triplethreads/hubstock-backend/pkg/security"
)

type seedUser struct {
	username string
	password string
	role     enums.Role
	homeHub  string
}

var demoUsers = []seedUser{
	{"kevin", "adminpass", enums.RoleAdmin, ""},
	{"fox", "foxpass", enums.RoleHubManager, "Hub 2"},
	{"smooth", "retailpass", enums.RoleRetail, "Retail"},
	{"carmen", "hub3pass", enums.RoleHubManager, "Hub 3"},
	{"slo", "hub1pass", enums.RoleHubManager, "Hub 1"},
	{"vendor", "shipit", enums.RoleSupplier, ""},
}

var demoSkus = map[string][]string{
	"All American Stripes":    {"Hub 1", "Retail"},
	"Black Solid":             {"Hub 2", "Hub 3", "Retail"},
	"Black and White Stripes": {"Hub 1", "Hub 2", "Hub 3"},
	"Rainbow Stripes":         {"Hub 1", "Hub 3"},
	"Candy Cane Stripes":      {"Hub 2", "Retail"},
	"Smoke Grey Solid":        {"Hub 3", "Retail"},
	"Navy Solid":              {"Retail"},
	"Lovely Lilac":            {"Hub 1", "Retail"},
}

// Seeds the demo accounts and a starter catalog. Safe to re-run; rows
// that already exist are left alone.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	created := 0
	for _, u := range demoUsers {
		hash, err := security.HashPassword(u.password, cfg.Password)
		if err != nil {
			logg.Error(ctx, "failed to hash seed password", err)
			os.Exit(1)
		}
		_, err = userRepo.Create(ctx, users.CreateUserDTO{
			Username:     u.username,
			PasswordHash: hash,
			Role:         u.role,
			HomeHub:      u.homeHub,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				continue
			}
			logg.Error(ctx, "failed to seed user", err)
			os.Exit(1)
		}
		created++
	}

	skuRepo := skus.NewRepository(dbClient.DB())
	seeded := 0
	for sku, hubs := range demoSkus {
		if err := seedSku(ctx, skuRepo, sku, hubs); err != nil {
			logg.Error(ctx, "failed to seed sku", err)
			os.Exit(1)
		}
		seeded++
	}

	fmt.Printf("seeded %d users, %d skus\n", created, seeded)
}

func seedSku(ctx context.Context, repo skus.Repository, sku string, hubs []string) error {
	if _, err := repo.FindBySKU(ctx, sku); err == nil {
		return nil
	}

	info := &models.SkuInfo{SKU: sku, ProductName: sku}
	info.SetHubList(hubs)
	if err := repo.Create(ctx, info); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return err
	}
	for _, hub := range info.HubList() {
		if err := repo.EnsureLine(ctx, info.SKU, hub); err != nil {
			return err
		}
	}
	return nil
}
