package service_test

import (
	"testing"

	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/repository"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/otoservis/garage-api/internal/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires the full service graph over an in-memory database.
type testEnv struct {
	db         *gorm.DB
	audit      *service.AuditService
	customers  *service.CustomerService
	vehicles   *service.VehicleService
	parts      *service.PartService
	workOrders *service.WorkOrderService
	invoices   *service.InvoiceService
	payments   *service.PaymentService
	reports    *service.ReportService
	users      *repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	billingCfg := &config.BillingConfig{
		DefaultVATRate:  20.0,
		WorkOrderPrefix: "IS",
		InvoicePrefix:   "FTR",
	}

	customerRepo := repository.NewCustomerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	orderRepo := repository.NewWorkOrderRepository(db)
	itemRepo := repository.NewWorkOrderItemRepository(db)
	partRepo := repository.NewPartRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	seqRepo := repository.NewNumberSequenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)

	audit := service.NewAuditService(auditRepo, log)
	invoices := service.NewInvoiceService(db, invoiceRepo, orderRepo, paymentRepo, seqRepo, audit, billingCfg, log)

	return &testEnv{
		db:         db,
		audit:      audit,
		customers:  service.NewCustomerService(db, customerRepo, audit, log),
		vehicles:   service.NewVehicleService(db, vehicleRepo, customerRepo, audit, log),
		parts:      service.NewPartService(db, partRepo, audit, log),
		workOrders: service.NewWorkOrderService(db, orderRepo, itemRepo, vehicleRepo, partRepo, seqRepo, audit, billingCfg, log),
		invoices:   invoices,
		payments:   service.NewPaymentService(db, paymentRepo, orderRepo, invoices, audit, log),
		reports:    service.NewReportService(reportRepo, userRepo, log),
		users:      userRepo,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
