package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercaline/mercaline-backend/api/routes"
	"github.com/mercaline/mercaline-backend/internal/notifications"
	"github.com/mercaline/mercaline-backend/internal/orders"
	"github.com/mercaline/mercaline-backend/internal/payments"
	"github.com/mercaline/mercaline-backend/internal/paymentevents"
	"github.com/mercaline/mercaline-backend/pkg/config"
	"github.com/mercaline/mercaline-backend/pkg/db"
	"github.com/mercaline/mercaline-backend/pkg/logger"
	"github.com/mercaline/mercaline-backend/pkg/metrics"
	"github.com/mercaline/mercaline-backend/pkg/migrate"
	"github.com/mercaline/mercaline-backend/pkg/redis"
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

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	eventService, err := paymentevents.NewService(paymentevents.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create payment event service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		eventService,
		orderService,
		notificationService,
		payments.NewSimulatedProvider(cfg.Payments.Provider),
		dbClient,
		paymentMetrics,
		cfg.Payments,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.Handler(),
			orderService,
			notificationService,
			paymentService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
