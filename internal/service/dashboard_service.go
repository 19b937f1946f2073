package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

// DashboardService aggregates the shop floor overview. Revenue sums are
// computed in Go over decimals so sqlite and postgres agree.
type DashboardService struct {
	orderRepo    *repository.WorkOrderRepository
	paymentRepo  *repository.PaymentRepository
	invoiceRepo  *repository.InvoiceRepository
	partRepo     *repository.PartRepository
	customerRepo *repository.CustomerRepository
	vehicleRepo  *repository.VehicleRepository
	logger       *zap.Logger
}

func NewDashboardService(
	orderRepo *repository.WorkOrderRepository,
	paymentRepo *repository.PaymentRepository,
	invoiceRepo *repository.InvoiceRepository,
	partRepo *repository.PartRepository,
	customerRepo *repository.CustomerRepository,
	vehicleRepo *repository.VehicleRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		invoiceRepo:  invoiceRepo,
		partRepo:     partRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		logger:       logger,
	}
}

// Stats builds the dashboard snapshot. "This month" is the current
// calendar month in server local time.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &domain.DashboardStats{
		RevenueThisMonth: decimal.Zero,
		RevenueToday:     decimal.Zero,
	}

	var err error
	if stats.ActiveWorkOrders, err = s.orderRepo.CountByStatuses(ctx, domain.ActiveStatuses); err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}
	stats.VehiclesInShop = stats.ActiveWorkOrders

	completed, err := s.orderRepo.ListCompletedBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}
	stats.CompletedThisMonth = int64(len(completed))

	payments, err := s.paymentRepo.ListBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}
	for _, p := range payments {
		stats.RevenueThisMonth = stats.RevenueThisMonth.Add(p.Amount)
		if !p.PaymentDate.Before(dayStart) {
			stats.RevenueToday = stats.RevenueToday.Add(p.Amount)
		}
	}

	if stats.UnpaidInvoices, err = s.invoiceRepo.CountByStatus(ctx, domain.PaymentUnpaid); err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}
	if stats.CriticalStockParts, err = s.partRepo.CountCriticalStock(ctx); err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}
	if stats.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}
	if stats.TotalVehicles, err = s.vehicleRepo.Count(ctx); err != nil {
		return nil, &StorageError{Op: "dashboard.Stats", Err: err}
	}

	return stats, nil
}

// StatusCounts groups live work orders by status for the board view
func (s *DashboardService) StatusCounts(ctx context.Context) ([]domain.StatusCount, error) {
	counts, err := s.orderRepo.StatusCounts(ctx)
	if err != nil {
		return nil, &StorageError{Op: "dashboard.StatusCounts", Err: err}
	}
	return counts, nil
}
