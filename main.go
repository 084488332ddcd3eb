package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/TrekLedger/trek-ledger-backend/config"
	"github.com/TrekLedger/trek-ledger-backend/db"
	"github.com/TrekLedger/trek-ledger-backend/handlers"
	"github.com/TrekLedger/trek-ledger-backend/internal/cache"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/router"
	"github.com/TrekLedger/trek-ledger-backend/services"
	"github.com/TrekLedger/trek-ledger-backend/store/postgres"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Schema first, connections second. A failed migration should keep the
	// process from serving traffic at all.
	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	if cfg.Server.Environment == config.EnvProduction {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Failed to close redis client", "error", err)
		}
	}()

	// Stores
	tripStore := postgres.NewPgTripStore(pool)
	ledgerStore := postgres.NewPgLedgerStore(pool)
	settingsStore := postgres.NewPgSettingsStore(pool)

	balanceCache := cache.NewRedisBalanceCache(redisClient)

	// Services
	tripService := service.NewTripService(tripStore, settingsStore)
	paymentService := service.NewPaymentService(tripStore, ledgerStore, balanceCache)
	expenseService := service.NewExpenseService(ledgerStore, balanceCache)
	walletTransferService := service.NewWalletTransferService(ledgerStore, balanceCache)
	globalTransferService := service.NewGlobalTransferService(ledgerStore, balanceCache)
	withdrawalService := service.NewWithdrawalService(ledgerStore, balanceCache)
	completionService := service.NewCompletionService(tripStore, balanceCache)
	balanceService := service.NewBalanceService(tripStore, ledgerStore, balanceCache)
	dashboardService := service.NewDashboardService(ledgerStore)
	settingsService := service.NewSettingsService(settingsStore)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)

	// Handlers
	deps := router.Dependencies{
		Config:            cfg,
		TripHandler:       handlers.NewTripHandler(tripService, completionService, balanceService),
		PaymentHandler:    handlers.NewPaymentHandler(paymentService),
		ExpenseHandler:    handlers.NewExpenseHandler(expenseService),
		TransferHandler:   handlers.NewTransferHandler(walletTransferService, globalTransferService),
		WithdrawalHandler: handlers.NewWithdrawalHandler(withdrawalService),
		DashboardHandler:  handlers.NewDashboardHandler(dashboardService, balanceService, settingsService),
		HealthHandler:     handlers.NewHealthHandler(healthService),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.SetupRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Infow("Server exited")
}
