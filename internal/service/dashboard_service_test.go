package service_test

import (
	"context"
	"testing"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/otoservis/garage-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDashboard(env *testEnv) *service.DashboardService {
	return service.NewDashboardService(
		repository.NewWorkOrderRepository(env.db),
		repository.NewPaymentRepository(env.db),
		repository.NewInvoiceRepository(env.db),
		repository.NewPartRepository(env.db),
		repository.NewCustomerRepository(env.db),
		repository.NewVehicleRepository(env.db),
		zap.NewNop(),
	)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dashboard := newDashboard(env)

	// One order stays pending, one runs through to completed with a payment
	createTestOrder(t, env)
	done := createTestOrder(t, env, domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypeLabor,
		Description: "service",
		Quantity:    dec("1"),
		UnitPrice:   dec("1000"),
	})
	for _, next := range []domain.WorkOrderStatus{domain.StatusApproved, domain.StatusInProgress, domain.StatusCompleted} {
		_, err := env.workOrders.ChangeStatus(ctx, done.ID, next)
		require.NoError(t, err)
	}

	_, err := env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   done.ID,
		Amount:        dec("400"),
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	testutil.CreateTestPart(t, env.db, "LOW-001", 1, "50") // critical level 2

	stats, err := dashboard.Stats(ctx)
	require.NoError(t, err)

	// the completed order left the shop floor; only the pending one is active
	assert.Equal(t, int64(1), stats.ActiveWorkOrders)
	assert.Equal(t, int64(1), stats.VehiclesInShop)
	assert.Equal(t, int64(1), stats.CompletedThisMonth)
	assert.True(t, dec("400").Equal(stats.RevenueThisMonth), "revenue: %s", stats.RevenueThisMonth)
	assert.True(t, dec("400").Equal(stats.RevenueToday), "revenue today: %s", stats.RevenueToday)
	assert.Equal(t, int64(1), stats.CriticalStockParts)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(2), stats.TotalVehicles)
}

func TestDashboardStatusCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dashboard := newDashboard(env)

	createTestOrder(t, env)
	createTestOrder(t, env)
	approved := createTestOrder(t, env)
	_, err := env.workOrders.ChangeStatus(ctx, approved.ID, domain.StatusApproved)
	require.NoError(t, err)

	counts, err := dashboard.StatusCounts(ctx)
	require.NoError(t, err)

	byStatus := make(map[domain.WorkOrderStatus]int64)
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	assert.Equal(t, int64(2), byStatus[domain.StatusPending])
	assert.Equal(t, int64(1), byStatus[domain.StatusApproved])
}
