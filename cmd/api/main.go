package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mariel-soto/brewhaus-backend/api/routes"
	"github.com/mariel-soto/brewhaus-backend/internal/catalog"
	"github.com/mariel-soto/brewhaus-backend/internal/giftcards"
	"github.com/mariel-soto/brewhaus-backend/internal/inventory"
	"github.com/mariel-soto/brewhaus-backend/internal/loyalty"
	"github.com/mariel-soto/brewhaus-backend/internal/notifications"
	"github.com/mariel-soto/brewhaus-backend/internal/orders"
	"github.com/mariel-soto/brewhaus-backend/internal/pricing"
	"github.com/mariel-soto/brewhaus-backend/internal/promotions"
	"github.com/mariel-soto/brewhaus-backend/internal/risk"
	"github.com/mariel-soto/brewhaus-backend/pkg/config"
	"github.com/mariel-soto/brewhaus-backend/pkg/db"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
	"github.com/mariel-soto/brewhaus-backend/pkg/metrics"
	"github.com/mariel-soto/brewhaus-backend/pkg/migrate"
	"github.com/mariel-soto/brewhaus-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	gormDB := dbClient.DB()

	catalogRepo := catalog.NewRepository(gormDB)
	promoRepo := promotions.NewRepository(gormDB)
	cardRepo := giftcards.NewRepository(gormDB)

	catalogService, err := catalog.NewService(catalogRepo)
	exitOnErr(logg, "catalog service", err)

	pricingEngine, err := pricing.NewEngine(catalogRepo, promoRepo, cardRepo)
	exitOnErr(logg, "pricing engine", err)

	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB), dbClient)
	exitOnErr(logg, "inventory service", err)

	giftCardService, err := giftcards.NewService(cardRepo, dbClient)
	exitOnErr(logg, "gift card service", err)

	loyaltyService, err := loyalty.NewService(loyalty.NewRepository(gormDB), dbClient)
	exitOnErr(logg, "loyalty service", err)

	riskService, err := risk.NewService(risk.NewRepository(gormDB), dbClient)
	exitOnErr(logg, "risk service", err)

	notificationsRepo := notifications.NewRepository(gormDB)
	notificationsService, err := notifications.NewService(notificationsRepo)
	exitOnErr(logg, "notifications service", err)

	notifier, err := notifications.NewNotifier(logg, orderMetrics,
		notifications.NewInAppSink(notificationsRepo),
		notifications.NewLogSink(logg),
	)
	exitOnErr(logg, "notifier", err)

	ordersService, err := orders.NewService(
		orders.NewRepository(gormDB),
		dbClient,
		pricingEngine,
		inventoryService,
		promoRepo,
		giftCardService,
		loyaltyService,
		riskService,
		notifier,
		orderMetrics,
	)
	exitOnErr(logg, "orders service", err)

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			catalogService,
			pricingEngine,
			ordersService,
			giftCardService,
			notificationsService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
		// Let in-flight status notifications finish before the process exits.
		notifier.Wait()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func exitOnErr(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to build "+what, err)
	os.Exit(1)
}
