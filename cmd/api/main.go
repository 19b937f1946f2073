package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/backup"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/database"
	"github.com/otoservis/garage-api/internal/http/handler"
	"github.com/otoservis/garage-api/internal/http/middleware"
	"github.com/otoservis/garage-api/internal/http/router"
	"github.com/otoservis/garage-api/internal/jobs"
	"github.com/otoservis/garage-api/internal/logger"
	"github.com/otoservis/garage-api/internal/repository"
	"github.com/otoservis/garage-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.String("driver", cfg.Database.Driver),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Schema is managed by goose in production; auto-migrate keeps
	// development setups working without a migration step.
	if cfg.App.Environment != "production" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	workOrderItemRepo := repository.NewWorkOrderItemRepository(db)
	partRepo := repository.NewPartRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	photoRepo := repository.NewWorkOrderPhotoRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Auth
	tokenManager := auth.NewTokenManager(&cfg.Auth)

	// Services
	auditService := service.NewAuditService(auditLogRepo, log)
	authService := service.NewAuthService(userRepo, tokenManager, &cfg.Auth, log)
	customerService := service.NewCustomerService(db, customerRepo, auditService, log)
	vehicleService := service.NewVehicleService(db, vehicleRepo, customerRepo, auditService, log)
	partService := service.NewPartService(db, partRepo, auditService, log)
	workOrderService := service.NewWorkOrderService(db, workOrderRepo, workOrderItemRepo, vehicleRepo, partRepo, numberSequenceRepo, auditService, &cfg.Billing, log)
	invoiceService := service.NewInvoiceService(db, invoiceRepo, workOrderRepo, paymentRepo, numberSequenceRepo, auditService, &cfg.Billing, log)
	paymentService := service.NewPaymentService(db, paymentRepo, workOrderRepo, invoiceService, auditService, log)
	dashboardService := service.NewDashboardService(workOrderRepo, paymentRepo, invoiceRepo, partRepo, customerRepo, vehicleRepo, log)
	reportService := service.NewReportService(reportRepo, userRepo, log)
	photoService := service.NewPhotoService(photoRepo, workOrderRepo, &cfg.Upload, log)

	if err := authService.EnsureBootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("failed to ensure bootstrap admin: %w", err)
	}

	// Middleware
	authMiddleware := auth.NewMiddleware(tokenManager, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	vehicleHandler := handler.NewVehicleHandler(vehicleService, log)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService, auditService, log)
	partHandler := handler.NewPartHandler(partService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	auditHandler := handler.NewAuditHandler(auditService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	photoHandler := handler.NewPhotoHandler(photoService, log)

	backupManager := backup.NewManager(db, cfg, log)
	backupHandler := handler.NewBackupHandler(backupManager, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		customerHandler,
		vehicleHandler,
		workOrderHandler,
		partHandler,
		paymentHandler,
		invoiceHandler,
		auditHandler,
		dashboardHandler,
		reportHandler,
		photoHandler,
		backupHandler,
	)

	// Scheduled database backups (SQLite deployments only)
	var scheduler *jobs.Scheduler
	if cfg.Backup.Enabled && cfg.Database.Driver == "sqlite" {
		scheduler = jobs.NewScheduler(log)
		backupJob := jobs.NewBackupJob(backupManager, log, 5*time.Minute)
		if err := scheduler.AddJob(jobs.BackupJobName, cfg.Backup.Schedule, backupJob.Run); err != nil {
			log.Error("Failed to register backup job", zap.Error(err))
		} else {
			scheduler.Start()
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
