package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartinventory/inventory-backend/api/routes"
	"github.com/smartinventory/inventory-backend/internal/auth"
	"github.com/smartinventory/inventory-backend/internal/ledger"
	"github.com/smartinventory/inventory-backend/internal/products"
	"github.com/smartinventory/inventory-backend/internal/purchaseorders"
	"github.com/smartinventory/inventory-backend/internal/sequence"
	"github.com/smartinventory/inventory-backend/internal/suppliers"
	"github.com/smartinventory/inventory-backend/internal/users"
	"github.com/smartinventory/inventory-backend/pkg/config"
	"github.com/smartinventory/inventory-backend/pkg/db"
	"github.com/smartinventory/inventory-backend/pkg/logger"
	"github.com/smartinventory/inventory-backend/pkg/metrics"
	"github.com/smartinventory/inventory-backend/pkg/migrate"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
	"github.com/smartinventory/inventory-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	promRegistry := prometheus.NewRegistry()
	receivingMetrics := metrics.NewReceivingMetrics(promRegistry)
	metricsHandler := promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})

	gormDB := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)
	productsRepo := products.NewRepository(gormDB)
	suppliersRepo := suppliers.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(gormDB),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(suppliersRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productsRepo, ledgerService, dbClient, outboxService, cfg.Receiving.MaxRetries)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := purchaseorders.NewService(purchaseorders.ServiceParams{
		Repo:              purchaseorders.NewRepository(gormDB),
		Products:          productsRepo,
		Suppliers:         suppliersRepo,
		Sequence:          sequence.NewRepository(gormDB),
		Ledger:            ledgerService,
		Tx:                dbClient,
		Outbox:            outboxService,
		Metrics:           receivingMetrics,
		MaxReceiveRetries: cfg.Receiving.MaxRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			registerService,
			supplierService,
			productService,
			orderService,
			ledgerService,
			metricsHandler,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
