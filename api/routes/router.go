package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triplethreads/hubstock-backend/api/controllers"
	"github.com/triplethreads/hubstock-backend/api/middleware"
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
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
	"github.com/triplethreads/hubstock-backend/pkg/redis"
)

// Services bundles the domain services mounted by the router.
type Services struct {
	Auth      auth.Service
	Users     users.Service
	Inventory inventory.Service
	Ledger    ledger.Service
	Shipments shipments.Service
	Messaging messaging.Service
	Counts    counts.Service
	Skus      skus.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		stockRoles := []enums.Role{enums.RoleAdmin, enums.RoleHubManager, enums.RoleRetail}

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, stockRoles...))
			r.Get("/", controllers.ListInventory(svcs.Inventory, logg))
			r.Get("/low-stock", controllers.ListLowStock(svcs.Inventory, logg))
			r.Get("/export", controllers.ExportInventory(svcs.Inventory, logg))
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, stockRoles...))
			r.Post("/movements", controllers.ApplyMovement(svcs.Ledger, logg))
			r.Post("/adjustments", controllers.ApplyAdjustment(svcs.Ledger, logg))
			r.Post("/movements/bulk", controllers.ApplyBulkMovements(svcs.Ledger, logg))
			r.Get("/logs", controllers.ListLogs(svcs.Ledger, logg))
			r.Get("/logs/export", controllers.ExportLogs(svcs.Ledger, logg))
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", controllers.ListShipments(svcs.Shipments, logg))
			r.With(middleware.RequireRole(enums.RoleSupplier, logg)).Post("/", controllers.SubmitShipment(svcs.Shipments, logg))
			r.With(middleware.RequireAnyRole(logg, enums.RoleAdmin, enums.RoleHubManager)).Post("/{id}/receive", controllers.ReceiveShipment(svcs.Shipments, logg))
			r.With(middleware.RequireAnyRole(logg, enums.RoleAdmin, enums.RoleSupplier)).Delete("/{id}", controllers.DeleteShipment(svcs.Shipments, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.SendMessage(svcs.Messaging, logg))
			r.Get("/threads", controllers.ListThreads(svcs.Messaging, logg))
			r.Get("/threads/{name}", controllers.GetThread(svcs.Messaging, logg))
			r.Get("/unread", controllers.UnreadCount(svcs.Messaging, logg))
		})

		r.Route("/counts", func(r chi.Router) {
			r.With(middleware.RequireAnyRole(logg, enums.RoleHubManager, enums.RoleRetail)).Post("/", controllers.ConfirmCount(svcs.Counts, logg))
			r.With(middleware.RequireAnyRole(logg, stockRoles...)).Get("/", controllers.ListCounts(svcs.Counts, logg))
		})

		r.Route("/skus", func(r chi.Router) {
			r.Get("/", controllers.ListSkus(svcs.Skus, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
				r.Post("/", controllers.CreateSku(svcs.Skus, logg))
				r.Put("/{sku}/hubs", controllers.AssignSkuHubs(svcs.Skus, logg))
				r.Post("/import", controllers.ImportSkus(svcs.Skus, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.Post("/", controllers.CreateUser(svcs.Users, logg))
			r.Post("/{username}/deactivate", controllers.DeactivateUser(svcs.Users, logg))
		})
	})

	return r
}
