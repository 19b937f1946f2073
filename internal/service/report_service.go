package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

// reportRowLimit caps the ranked report listings
const reportRowLimit = 20

// ReportService builds the management reports. Monetary sums run over
// decimals in Go so sqlite and postgres agree.
type ReportService struct {
	reportRepo *repository.ReportRepository
	userRepo   *repository.UserRepository
	logger     *zap.Logger
}

func NewReportService(
	reportRepo *repository.ReportRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Revenue reports the billed work orders completed in [from, to) and
// their summed grand totals.
func (s *ReportService) Revenue(ctx context.Context, from, to time.Time) (*domain.RevenueReport, error) {
	orders, err := s.reportRepo.BilledOrdersBetween(ctx, from, to)
	if err != nil {
		return nil, &StorageError{Op: "report.Revenue", Err: err}
	}

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.GrandTotal)
	}

	return &domain.RevenueReport{
		StartDate:    from,
		EndDate:      to,
		OrderCount:   len(orders),
		TotalRevenue: total,
		Orders:       orders,
	}, nil
}

// TechnicianPerformance reports, per active technician, how many orders
// they completed in [from, to) and the revenue those orders carried.
// Unassigned orders are not attributed to anyone.
func (s *ReportService) TechnicianPerformance(ctx context.Context, from, to time.Time) ([]domain.TechnicianPerformance, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "report.TechnicianPerformance", Err: err}
	}
	orders, err := s.reportRepo.BilledOrdersBetween(ctx, from, to)
	if err != nil {
		return nil, &StorageError{Op: "report.TechnicianPerformance", Err: err}
	}

	type techTotals struct {
		count   int
		revenue decimal.Decimal
	}
	byTech := make(map[uint]*techTotals)
	for _, o := range orders {
		if o.TechnicianID == nil {
			continue
		}
		t, ok := byTech[*o.TechnicianID]
		if !ok {
			t = &techTotals{revenue: decimal.Zero}
			byTech[*o.TechnicianID] = t
		}
		t.count++
		t.revenue = t.revenue.Add(o.GrandTotal)
	}

	stats := make([]domain.TechnicianPerformance, 0, len(users))
	for _, u := range users {
		if !u.IsActive {
			continue
		}
		entry := domain.TechnicianPerformance{
			TechnicianID: u.ID,
			FullName:     u.FullName,
			Revenue:      decimal.Zero,
		}
		if t, ok := byTech[u.ID]; ok {
			entry.CompletedOrders = t.count
			entry.Revenue = t.revenue
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

// MostServicedVehicles ranks vehicles by their work order count
func (s *ReportService) MostServicedVehicles(ctx context.Context) ([]domain.VehicleServiceCount, error) {
	counts, err := s.reportRepo.VehicleServiceCounts(ctx, reportRowLimit)
	if err != nil {
		return nil, &StorageError{Op: "report.MostServicedVehicles", Err: err}
	}
	return counts, nil
}

// MostUsedParts ranks parts by the total quantity consumed on live orders
func (s *ReportService) MostUsedParts(ctx context.Context) ([]domain.PartUsage, error) {
	items, err := s.reportRepo.PartConsumption(ctx)
	if err != nil {
		return nil, &StorageError{Op: "report.MostUsedParts", Err: err}
	}

	byPart := make(map[uint]*domain.PartUsage)
	for _, item := range items {
		if item.PartID == nil {
			continue
		}
		usage, ok := byPart[*item.PartID]
		if !ok {
			usage = &domain.PartUsage{PartID: *item.PartID, TotalUsed: decimal.Zero}
			if item.Part != nil {
				usage.StockCode = item.Part.StockCode
				usage.Name = item.Part.Name
			}
			byPart[*item.PartID] = usage
		}
		usage.TotalUsed = usage.TotalUsed.Add(item.Quantity)
	}

	ranked := make([]domain.PartUsage, 0, len(byPart))
	for _, usage := range byPart {
		ranked = append(ranked, *usage)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].TotalUsed.GreaterThan(ranked[j].TotalUsed)
	})
	if len(ranked) > reportRowLimit {
		ranked = ranked[:reportRowLimit]
	}
	return ranked, nil
}

// CustomerDebts lists customers whose billed work exceeds their payments,
// largest outstanding balance first. Debt is computed from live data
// rather than kept as a stored counter.
func (s *ReportService) CustomerDebts(ctx context.Context) ([]domain.CustomerDebt, error) {
	billed, err := s.reportRepo.CustomerBilledTotals(ctx)
	if err != nil {
		return nil, &StorageError{Op: "report.CustomerDebts", Err: err}
	}
	paid, err := s.reportRepo.CustomerPayments(ctx)
	if err != nil {
		return nil, &StorageError{Op: "report.CustomerDebts", Err: err}
	}

	byCustomer := make(map[uint]*domain.CustomerDebt)
	ensure := func(row repository.CustomerChargeRow) *domain.CustomerDebt {
		d, ok := byCustomer[row.CustomerID]
		if !ok {
			d = &domain.CustomerDebt{
				CustomerID: row.CustomerID,
				FullName:   row.FullName,
				Billed:     decimal.Zero,
				Paid:       decimal.Zero,
			}
			byCustomer[row.CustomerID] = d
		}
		return d
	}
	for _, row := range billed {
		d := ensure(row)
		d.Billed = d.Billed.Add(row.Amount)
	}
	for _, row := range paid {
		d := ensure(row)
		d.Paid = d.Paid.Add(row.Amount)
	}

	debts := make([]domain.CustomerDebt, 0, len(byCustomer))
	for _, d := range byCustomer {
		d.Debt = d.Billed.Sub(d.Paid)
		if d.Debt.IsPositive() {
			debts = append(debts, *d)
		}
	}
	sort.Slice(debts, func(i, j int) bool {
		return debts[i].Debt.GreaterThan(debts[j].Debt)
	})
	return debts, nil
}
