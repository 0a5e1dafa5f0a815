package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmehra-dev/techshop-backend/api/controllers"
	inventorycontrollers "github.com/rmehra-dev/techshop-backend/api/controllers/inventory"
	ordercontrollers "github.com/rmehra-dev/techshop-backend/api/controllers/orders"
	productcontrollers "github.com/rmehra-dev/techshop-backend/api/controllers/products"
	refundcontrollers "github.com/rmehra-dev/techshop-backend/api/controllers/refunds"
	"github.com/rmehra-dev/techshop-backend/api/middleware"
	"github.com/rmehra-dev/techshop-backend/internal/catalog"
	internalinventory "github.com/rmehra-dev/techshop-backend/internal/inventory"
	internalorders "github.com/rmehra-dev/techshop-backend/internal/orders"
	internalrefunds "github.com/rmehra-dev/techshop-backend/internal/refunds"
	"github.com/rmehra-dev/techshop-backend/pkg/config"
	"github.com/rmehra-dev/techshop-backend/pkg/db"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	"github.com/rmehra-dev/techshop-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	catalogService catalog.Service,
	inventoryService internalinventory.Service,
	ordersService internalorders.Service,
	refundsService internalrefunds.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productcontrollers.List(catalogService, logg))
			r.Get("/{productId}", productcontrollers.Detail(catalogService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleManager))
				r.Post("/", productcontrollers.Create(catalogService, logg))
				r.Patch("/variants/{sku}/pricing", productcontrollers.UpdatePricing(catalogService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersService, logg))
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/number/{orderNumber}", ordercontrollers.DetailByNumber(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(ordersService, logg))
			r.With(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleManager)).
				Post("/{orderId}/refunds", refundcontrollers.Process(refundsService, logg))
		})

		r.Get("/customers/{customerId}/orders", ordercontrollers.ListByCustomer(ordersService, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/products/{productId}/movements", inventorycontrollers.Movements(inventoryService, logg))
			r.Get("/low-stock", inventorycontrollers.LowStock(inventoryService, logg))
			r.With(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleManager)).
				Post("/adjustments", inventorycontrollers.Adjust(inventoryService, logg))
		})
	})

	return r
}
