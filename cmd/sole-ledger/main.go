package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sole-ledger/internal/api"
	"sole-ledger/internal/api/handlers"
	"sole-ledger/internal/app"
	"sole-ledger/internal/database"
	"sole-ledger/internal/jobs/inmemory"
	"sole-ledger/internal/service"
	"sole-ledger/pkg/auth"
	"sole-ledger/pkg/config"
	"sole-ledger/pkg/logger"
	"sole-ledger/pkg/postgres"

	"go.uber.org/zap"
)

// @title Sole Ledger API
// @version 1.0
// @description Bookkeeping and monthly tax backend for Georgian sole proprietors

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting sole-ledger service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.Database.URL(), appLogger); err != nil {
			appLogger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	jobStore := inmemory.NewStore(cfg.Reminders.JobRetention)
	queue := inmemory.NewQueue(inmemory.Options{
		BufferSize: cfg.Reminders.QueueBuffer,
		Workers:    cfg.Reminders.Workers,
		MaxRetries: cfg.Reminders.MaxRetries,
		Logger:     appLogger.Named("reminders"),
	}, jobStore)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	services, err := app.NewServices(db, cfg, jwtManager, queue, jobStore, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", zap.Error(err))
	}

	if err := queue.Start(ctx, services.Reminder.HandleJob); err != nil {
		appLogger.Fatal("Failed to start reminder queue", zap.Error(err))
	}
	go runSweep(ctx, services.Reminder, cfg.Reminders.SweepInterval, appLogger)

	router := api.SetupRouter(api.Handlers{
		Auth:     handlers.NewAuthHandler(services.Auth, appLogger),
		Bank:     handlers.NewBankHandler(services.Bank, cfg.Import.MaxUploadBytes, appLogger),
		Tax:      handlers.NewTaxHandler(services.Tax, appLogger),
		Reminder: handlers.NewReminderHandler(services.Reminder, appLogger),
		Report:   handlers.NewReportHandler(services.Report, services.Audit, appLogger),
		Entity:   handlers.NewEntityHandler(services.Entity, services.Category, appLogger),
		Invoice:  handlers.NewInvoiceHandler(services.Invoice, services.Expense, appLogger),
	}, jwtManager, api.RouterConfig{
		BodyLimit: cfg.Import.MaxUploadBytes + uploadOverhead,
	}, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := router.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := router.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		appLogger.Error("Reminder queue did not drain", zap.Error(err))
	}
}

// runSweep re-queues upcoming reminders at startup and then every interval.
func runSweep(ctx context.Context, reminders *service.ReminderService, interval time.Duration, appLogger *zap.Logger) {
	sweep := func() {
		if _, err := reminders.SweepUpcoming(ctx); err != nil {
			appLogger.Error("Reminder sweep failed", zap.Error(err))
		}
	}

	sweep()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
