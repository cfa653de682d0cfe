package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mercaline/mercaline-backend/internal/cron"
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
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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
		metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		cfg.Payments,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewPending3DSJob(cron.Pending3DSJobParams{
		Logger:   logg,
		Payments: paymentService,
		TTL:      cfg.Payments.PendingTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending 3ds job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.Cron.LockKey), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
