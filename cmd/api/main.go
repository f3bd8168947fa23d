package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/triplethreads/hubstock-backend/api/routes"
	"github.com/triplethreads/hubstock-backend/internal/auth"
	"github.com/triplethreads/hubstock-backend/internal/counts"
	"github.com/triplethreads/hubstock-backend/internal/inventory"
	"github.com/triplethreads/hubstock-backend/internal/ledger"
	"github.com/triplethreads/hubstock-backend/internal/messaging"
	"github.com/triplethreads/hubstock-backend/internal/shipments"
	"github.com/triplethreads/hubstock-backend/internal/skus"
	"github.com/triplethreads/hubstock-backend/internal/users"
	"github.com/triplethreads/hubstock-backend/pkg/auth/session"
	"github.com/triplethreads/hubstock-backend/pkg/config"
	"github.com/triplethreads/hubstock-backend/pkg/db"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
	"github.com/triplethreads/hubstock-backend/pkg/migrate"
	"github.com/triplethreads/hubstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager) (routes.Services, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	ledgerRepo := ledger.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}
	usersService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), cfg.Inventory.LowStockThreshold)
	if err != nil {
		return routes.Services{}, err
	}
	ledgerService, err := ledger.NewService(dbClient, ledgerRepo)
	if err != nil {
		return routes.Services{}, err
	}
	shipmentsService, err := shipments.NewService(dbClient, shipments.NewRepository(conn), ledgerRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}
	messagingService, err := messaging.NewService(messaging.NewRepository(conn), userRepo)
	if err != nil {
		return routes.Services{}, err
	}
	countsService, err := counts.NewService(counts.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	skusService, err := skus.NewService(dbClient, skus.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authService,
		Users:     usersService,
		Inventory: inventoryService,
		Ledger:    ledgerService,
		Shipments: shipmentsService,
		Messaging: messagingService,
		Counts:    countsService,
		Skus:      skusService,
	}, nil
}
