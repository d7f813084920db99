package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartinventory/inventory-backend/api/controllers"
	"github.com/smartinventory/inventory-backend/api/middleware"
	"github.com/smartinventory/inventory-backend/internal/auth"
	"github.com/smartinventory/inventory-backend/internal/ledger"
	productsvc "github.com/smartinventory/inventory-backend/internal/products"
	ordersvc "github.com/smartinventory/inventory-backend/internal/purchaseorders"
	suppliersvc "github.com/smartinventory/inventory-backend/internal/suppliers"
	"github.com/smartinventory/inventory-backend/pkg/config"
	"github.com/smartinventory/inventory-backend/pkg/db"
	"github.com/smartinventory/inventory-backend/pkg/logger"
	"github.com/smartinventory/inventory-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	registerService auth.RegisterService,
	supplierService suppliersvc.Service,
	productService productsvc.Service,
	orderService ordersvc.Service,
	ledgerService ledger.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/register", controllers.AuthRegister(registerService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Receiving.IdempotencyTTL, logg))

		stockWriters := middleware.RequireAnyRole(logg, "manager", "admin")

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", controllers.SupplierCreate(supplierService, logg))
			r.Get("/", controllers.SupplierList(supplierService, logg))
			r.Get("/{supplierId}", controllers.SupplierGet(supplierService, logg))
			r.Patch("/{supplierId}", controllers.SupplierUpdate(supplierService, logg))
			r.With(stockWriters).Post("/{supplierId}/deactivate", controllers.SupplierDeactivate(supplierService, logg))
			r.Post("/{supplierId}/products", controllers.SupplierLinkProduct(supplierService, logg))
			r.Get("/{supplierId}/products", controllers.SupplierProductLinks(supplierService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/{productId}", controllers.ProductGet(productService, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(productService, logg))
			r.With(stockWriters).Post("/{productId}/adjust-stock", controllers.ProductAdjustStock(productService, logg))
			r.Get("/{productId}/movements", controllers.MovementsByProduct(ledgerService, logg))
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
			r.With(stockWriters).Post("/{orderId}/confirm", controllers.OrderConfirm(orderService, logg))
			r.With(stockWriters).Post("/{orderId}/cancel", controllers.OrderCancel(orderService, logg))
			r.With(stockWriters).Post("/{orderId}/receive", controllers.OrderReceive(orderService, logg))
			r.Get("/{orderId}/movements", controllers.MovementsByReference(ledgerService, logg))
		})
	})

	return r
}
