package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/database"
	"github.com/otoservis/garage-api/internal/http/handler"
	"github.com/otoservis/garage-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	authHandler      *handler.AuthHandler
	customerHandler  *handler.CustomerHandler
	vehicleHandler   *handler.VehicleHandler
	workOrderHandler *handler.WorkOrderHandler
	partHandler      *handler.PartHandler
	paymentHandler   *handler.PaymentHandler
	invoiceHandler   *handler.InvoiceHandler
	auditHandler     *handler.AuditHandler
	dashboardHandler *handler.DashboardHandler
	reportHandler    *handler.ReportHandler
	photoHandler     *handler.PhotoHandler
	backupHandler    *handler.BackupHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	customerHandler *handler.CustomerHandler,
	vehicleHandler *handler.VehicleHandler,
	workOrderHandler *handler.WorkOrderHandler,
	partHandler *handler.PartHandler,
	paymentHandler *handler.PaymentHandler,
	invoiceHandler *handler.InvoiceHandler,
	auditHandler *handler.AuditHandler,
	dashboardHandler *handler.DashboardHandler,
	reportHandler *handler.ReportHandler,
	photoHandler *handler.PhotoHandler,
	backupHandler *handler.BackupHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		authHandler:      authHandler,
		customerHandler:  customerHandler,
		vehicleHandler:   vehicleHandler,
		workOrderHandler: workOrderHandler,
		partHandler:      partHandler,
		paymentHandler:   paymentHandler,
		invoiceHandler:   invoiceHandler,
		auditHandler:     auditHandler,
		dashboardHandler: dashboardHandler,
		reportHandler:    reportHandler,
		photoHandler:     photoHandler,
		backupHandler:    backupHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth & users
			r.Get("/auth/me", rt.authHandler.Me)
			r.Post("/auth/change-password", rt.authHandler.ChangePassword)
			r.With(rt.authMiddleware.RequireAdmin).Post("/auth/register", rt.authHandler.Register)
			r.With(rt.authMiddleware.RequireAdmin).Get("/users", rt.authHandler.ListUsers)

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.Get)
				r.Put("/{id}", rt.customerHandler.Update)
				r.Delete("/{id}", rt.customerHandler.Delete)
			})

			// Vehicles
			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", rt.vehicleHandler.List)
				r.Post("/", rt.vehicleHandler.Create)
				r.Get("/plate/{plate}", rt.vehicleHandler.GetByPlate)
				r.Get("/{id}", rt.vehicleHandler.Get)
				r.Put("/{id}", rt.vehicleHandler.Update)
				r.Delete("/{id}", rt.vehicleHandler.Delete)
			})

			// Work orders
			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", rt.workOrderHandler.List)
				r.Post("/", rt.workOrderHandler.Create)
				r.Get("/number/{number}", rt.workOrderHandler.GetByNumber)
				r.Get("/{id}", rt.workOrderHandler.Get)
				r.Put("/{id}", rt.workOrderHandler.Update)
				r.Delete("/{id}", rt.workOrderHandler.Delete)

				// Lifecycle endpoints
				r.Get("/{id}/transitions", rt.workOrderHandler.Transitions)
				r.Post("/{id}/status", rt.workOrderHandler.ChangeStatus)
				r.Get("/{id}/history", rt.workOrderHandler.History)

				// Line items
				r.Post("/{id}/items", rt.workOrderHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.workOrderHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.workOrderHandler.RemoveItem)

				// Billing sub-resources
				r.Get("/{id}/payments", rt.paymentHandler.ListByWorkOrder)
				r.Get("/{id}/payments/summary", rt.paymentHandler.Summary)
				r.Get("/{id}/invoice", rt.invoiceHandler.GetByWorkOrder)

				// Photo attachments
				r.Get("/{id}/photos", rt.photoHandler.List)
				r.Post("/{id}/photos", rt.photoHandler.Upload)
				r.Get("/{id}/photos/{photoId}/file", rt.photoHandler.File)
				r.Delete("/{id}/photos/{photoId}", rt.photoHandler.Delete)
			})

			// Parts inventory
			r.Route("/parts", func(r chi.Router) {
				r.Get("/", rt.partHandler.List)
				r.Post("/", rt.partHandler.Create)
				r.Get("/critical-stock", rt.partHandler.CriticalStock)
				r.Get("/code/{code}", rt.partHandler.GetByStockCode)
				r.Get("/{id}", rt.partHandler.Get)
				r.Put("/{id}", rt.partHandler.Update)
				r.Post("/{id}/stock", rt.partHandler.AdjustStock)
				r.Post("/{id}/deactivate", rt.partHandler.Deactivate)
			})

			// Payments
			r.Route("/payments", func(r chi.Router) {
				r.Post("/", rt.paymentHandler.Create)
				r.Delete("/{id}", rt.paymentHandler.Delete)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.List)
				r.Post("/", rt.invoiceHandler.Create)
				r.Get("/{id}", rt.invoiceHandler.Get)
				r.Put("/{id}/payment-status", rt.invoiceHandler.SetPaymentStatus)
			})

			// Audit logs (admins only)
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.auditHandler.Recent)
				r.Get("/entity/{entity}/{id}", rt.auditHandler.ByEntity)
			})

			// Database backups (admins only, sqlite deployments)
			r.Route("/backups", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.backupHandler.List)
				r.Post("/", rt.backupHandler.Trigger)
			})

			// Dashboard
			r.Get("/dashboard/stats", rt.dashboardHandler.Stats)
			r.Get("/dashboard/status-counts", rt.dashboardHandler.StatusCounts)

			// Reports
			r.Route("/reports", func(r chi.Router) {
				r.Get("/revenue", rt.reportHandler.Revenue)
				r.Get("/technicians", rt.reportHandler.Technicians)
				r.Get("/vehicles", rt.reportHandler.Vehicles)
				r.Get("/parts", rt.reportHandler.Parts)
				r.Get("/debts", rt.reportHandler.Debts)
			})
		})
	})

	return r
}
