package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/otoservis/garage-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T, env *testEnv, items ...domain.CreateWorkOrderItemRequest) *domain.WorkOrder {
	t.Helper()
	customer := testutil.CreateTestCustomer(t, env.db, "Ali Veli")
	vehicle := testutil.CreateTestVehicle(t, env.db, customer.ID, fmt.Sprintf("34ABC%d", time.Now().UnixNano()%100000))

	order, err := env.workOrders.Create(context.Background(), &domain.CreateWorkOrderRequest{
		VehicleID:            vehicle.ID,
		ComplaintDescription: "engine noise",
		Items:                items,
	})
	require.NoError(t, err)
	return order
}

func TestWorkOrderCreate(t *testing.T) {
	env := newTestEnv(t)
	order := createTestOrder(t, env)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Regexp(t, `^IS-\d{6}-\d{4}$`, order.WorkOrderNumber)
	assert.True(t, order.GrandTotal.IsZero())

	// Customer is derived from the vehicle, not passed by the caller
	assert.NotZero(t, order.CustomerID)
}

func TestWorkOrderCreateUnknownVehicle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.workOrders.Create(context.Background(), &domain.CreateWorkOrderRequest{VehicleID: 9999})
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)
}

func TestWorkOrderCreateWithItems(t *testing.T) {
	env := newTestEnv(t)
	order := createTestOrder(t, env,
		domain.CreateWorkOrderItemRequest{
			Type:        domain.ItemTypeLabor,
			Description: "diagnostics",
			Quantity:    dec("1"),
			UnitPrice:   dec("500"),
		},
		domain.CreateWorkOrderItemRequest{
			Type:        domain.ItemTypePart,
			Description: "oil filter",
			Quantity:    dec("2"),
			UnitPrice:   dec("100"),
			Discount:    dec("20"),
		},
	)

	assert.Len(t, order.Items, 2)
	assert.True(t, dec("500").Equal(order.LaborTotal), "labor total: %s", order.LaborTotal)
	assert.True(t, dec("180").Equal(order.PartsTotal), "parts total: %s", order.PartsTotal)
	assert.True(t, dec("680").Equal(order.Subtotal), "subtotal: %s", order.Subtotal)
	assert.True(t, dec("136").Equal(order.VATTotal), "vat total: %s", order.VATTotal)
	assert.True(t, dec("816").Equal(order.GrandTotal), "grand total: %s", order.GrandTotal)
}

func TestWorkOrderGetByNumberIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	order := createTestOrder(t, env)

	found, err := env.workOrders.GetByNumber(context.Background(), "is-"+order.WorkOrderNumber[3:])
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestWorkOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    domain.WorkOrderStatus
		to      domain.WorkOrderStatus
		allowed bool
	}{
		{domain.StatusPending, domain.StatusApproved, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusPending, domain.StatusCompleted, false},
		{domain.StatusPending, domain.StatusDelivered, false},
		{domain.StatusApproved, domain.StatusInProgress, true},
		{domain.StatusApproved, domain.StatusCancelled, true},
		{domain.StatusApproved, domain.StatusDelivered, false},
		{domain.StatusInProgress, domain.StatusCompleted, true},
		{domain.StatusInProgress, domain.StatusCancelled, true},
		{domain.StatusInProgress, domain.StatusPending, false},
		{domain.StatusCompleted, domain.StatusDelivered, true},
		{domain.StatusCompleted, domain.StatusCancelled, false},
		{domain.StatusDelivered, domain.StatusPending, false},
		{domain.StatusCancelled, domain.StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_to_%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, service.CanTransition(tt.from, tt.to))
		})
	}
}

func TestWorkOrderChangeStatusRejectsSkips(t *testing.T) {
	env := newTestEnv(t)
	order := createTestOrder(t, env)

	_, err := env.workOrders.ChangeStatus(context.Background(), order.ID, domain.StatusCompleted)

	var transErr *service.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, domain.StatusPending, transErr.From)
	assert.Equal(t, domain.StatusCompleted, transErr.To)

	// Order is untouched
	found, err := env.workOrders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, found.Status)
}

func TestWorkOrderFullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	part := testutil.CreateTestPart(t, env.db, "FLT-001", 10, "100")
	order := createTestOrder(t, env, domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypePart,
		PartID:      &part.ID,
		Description: "oil filter",
		Quantity:    dec("2"),
	})

	for _, next := range []domain.WorkOrderStatus{
		domain.StatusApproved,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusDelivered,
	} {
		updated, err := env.workOrders.ChangeStatus(ctx, order.ID, next)
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, updated.Status)

		if next == domain.StatusCompleted {
			assert.NotNil(t, updated.CompletedAt)
		}
	}

	// Stock was depleted once, on the completed transition
	stocked, err := env.parts.GetByID(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stocked.StockQuantity)
}

func TestWorkOrderStockDepletionClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	part := testutil.CreateTestPart(t, env.db, "BRK-001", 1, "250")
	order := createTestOrder(t, env, domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypePart,
		PartID:      &part.ID,
		Description: "brake pads",
		Quantity:    dec("3"),
	})

	for _, next := range []domain.WorkOrderStatus{domain.StatusApproved, domain.StatusInProgress, domain.StatusCompleted} {
		_, err := env.workOrders.ChangeStatus(ctx, order.ID, next)
		require.NoError(t, err)
	}

	stocked, err := env.parts.GetByID(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stocked.StockQuantity)
}

func TestWorkOrderItemUsesPartSalePrice(t *testing.T) {
	env := newTestEnv(t)

	part := testutil.CreateTestPart(t, env.db, "SPK-001", 20, "75.50")
	order := createTestOrder(t, env, domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypePart,
		PartID:      &part.ID,
		Description: "spark plug",
		Quantity:    dec("4"),
	})

	require.Len(t, order.Items, 1)
	assert.True(t, dec("75.50").Equal(order.Items[0].UnitPrice), "unit price: %s", order.Items[0].UnitPrice)
	assert.True(t, dec("302").Equal(order.Items[0].TotalPrice), "total price: %s", order.Items[0].TotalPrice)
}

func TestWorkOrderItemMutationsRecalculateTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	order, err := env.workOrders.AddItem(ctx, order.ID, &domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypeLabor,
		Description: "diagnostics",
		Quantity:    dec("1"),
		UnitPrice:   dec("500"),
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, dec("600").Equal(order.GrandTotal), "grand total: %s", order.GrandTotal)

	newPrice := dec("300")
	order, err = env.workOrders.UpdateItem(ctx, order.ID, order.Items[0].ID, &domain.UpdateWorkOrderItemRequest{
		UnitPrice: &newPrice,
	})
	require.NoError(t, err)
	assert.True(t, dec("360").Equal(order.GrandTotal), "grand total: %s", order.GrandTotal)

	order, err = env.workOrders.RemoveItem(ctx, order.ID, order.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.True(t, order.GrandTotal.IsZero())
}

func TestWorkOrderItemMutationsAuditAsItemEntity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	order, err := env.workOrders.AddItem(ctx, order.ID, &domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypeLabor,
		Description: "brake service",
		Quantity:    dec("1"),
		UnitPrice:   dec("400"),
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	newPrice := dec("450")
	_, err = env.workOrders.UpdateItem(ctx, order.ID, itemID, &domain.UpdateWorkOrderItemRequest{
		UnitPrice: &newPrice,
	})
	require.NoError(t, err)

	_, err = env.workOrders.RemoveItem(ctx, order.ID, itemID)
	require.NoError(t, err)

	// The line's history lives on its own entity, newest first
	entries, err := env.audit.GetByEntity(ctx, "WorkOrderItem", itemID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.AuditActionDelete, entries[0].Action)
	assert.Equal(t, domain.AuditActionUpdate, entries[1].Action)
	assert.Equal(t, domain.AuditActionCreate, entries[2].Action)
}

func TestWorkOrderItemsLockedWhenTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	_, err := env.workOrders.ChangeStatus(ctx, order.ID, domain.StatusCancelled)
	require.NoError(t, err)

	_, err = env.workOrders.AddItem(ctx, order.ID, &domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypeLabor,
		Description: "late entry",
		Quantity:    dec("1"),
		UnitPrice:   dec("100"),
	})
	assert.ErrorIs(t, err, service.ErrOrderLocked)
}

func TestWorkOrderRejectsNegativeItemInput(t *testing.T) {
	env := newTestEnv(t)
	order := createTestOrder(t, env)

	_, err := env.workOrders.AddItem(context.Background(), order.ID, &domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypeLabor,
		Description: "bad line",
		Quantity:    dec("1"),
		UnitPrice:   dec("-10"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestWorkOrderSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	require.NoError(t, env.workOrders.Delete(ctx, order.ID))

	_, err := env.workOrders.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, service.ErrWorkOrderNotFound)

	// The audit trail survives the delete
	entries, err := env.audit.GetByEntity(ctx, "WorkOrder", order.ID, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	assert.Equal(t, domain.AuditActionDelete, entries[0].Action)
}

func TestWorkOrderAllowedTransitions(t *testing.T) {
	env := newTestEnv(t)
	order := createTestOrder(t, env)

	resp, err := env.workOrders.AllowedTransitions(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.CurrentStatus)
	assert.ElementsMatch(t,
		[]domain.WorkOrderStatus{domain.StatusApproved, domain.StatusCancelled},
		resp.AllowedTransitions)
}
