package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shuttle/internal/app"
	"shuttle/internal/config"
	"shuttle/internal/domain"
	"shuttle/internal/handler"
	"shuttle/internal/logger"
	internalRedis "shuttle/internal/redis"
	"shuttle/internal/repository/postgres"
	"shuttle/internal/routing"
	"shuttle/internal/service"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	// Load configuration.
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	defaultTariff, err := cfg.Tariff.Tariff()
	if err != nil {
		zl.Fatal("invalid tariff configuration", zap.Error(err))
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		zl.Fatal("invalid booking timezone", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			zl.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			zl.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp, zl)
	if err != nil {
		zl.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	sender, closeSender, err := app.NewSender(cfg.Messaging, zl)
	if err != nil {
		zl.Fatal("failed to connect to message broker", zap.Error(err))
	}
	defer closeSender()

	planner, err := app.NewPlanner(cfg.Maps, cfg.Booking, zl)
	if err != nil {
		zl.Fatal("failed to create maps client", zap.Error(err))
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, sender, planner, defaultTariff, loc, cfg, zl)

	// Start server in goroutine.
	go func() {
		zl.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	zl.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	sender service.Sender,
	planner *routing.Planner,
	defaultTariff domain.Tariff,
	loc *time.Location,
	cfg *config.Config,
	zl *zap.Logger,
) *http.Server {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Tariff.CacheTTL)
	idempotencyStore := internalRedis.NewIdempotencyStore(redisClient, idempotencyTTL)
	vehicleLock := internalRedis.NewVehicleLock(lockStore, cfg.Booking.LockTTL, cfg.Booking.LockWait)

	// Initialize repositories.
	bookingRepo := postgres.NewBookingRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	bookingCfg := service.BookingConfig{
		DriverContact: cfg.Messaging.DriverContact,
		Location:      loc,
	}

	// Initialize services.
	guard := service.NewScheduleGuard(vehicleLock)
	notificationService := service.NewNotificationService(sender, cfg.Messaging.PublicBaseURL, zl)
	settingsService := service.NewSettingsService(settingsRepo, cacheStore, defaultTariff, zl)
	bookingService := service.NewBookingService(bookingRepo, locationStore, settingsService, planner, guard, notificationService, bookingCfg, zl)
	lifecycleService := service.NewLifecycleService(bookingRepo, guard, notificationService, zl)
	driverService := service.NewDriverService(locationStore, bookingRepo)
	inboundService := service.NewInboundService(bookingService, lifecycleService, driverService, bookingCfg, zl)

	// Initialize handlers.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler:  handler.NewBookingHandler(bookingService, lifecycleService, bookingCfg.Location),
		DriverHandler:   handler.NewDriverHandler(driverService),
		SettingsHandler: handler.NewSettingsHandler(settingsService),
		WebhookHandler:  handler.NewWebhookHandler(inboundService),
		ResponseStore:   idempotencyStore,
		NewRelicApp:     nrApp,
		Logger:          zl,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
