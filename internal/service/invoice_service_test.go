package service_test

import (
	"context"
	"testing"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBilledOrder(t *testing.T, env *testEnv) *domain.WorkOrder {
	t.Helper()
	return createTestOrder(t, env,
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
}

func TestInvoiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	invoice, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)

	assert.Regexp(t, `^FTR-\d{6}-\d{4}$`, invoice.InvoiceNumber)
	assert.Equal(t, domain.PaymentUnpaid, invoice.PaymentStatus)
	assert.True(t, dec("680").Equal(invoice.Subtotal), "subtotal: %s", invoice.Subtotal)
	assert.True(t, dec("136").Equal(invoice.VATTotal), "vat total: %s", invoice.VATTotal)
	assert.True(t, dec("816").Equal(invoice.GrandTotal), "grand total: %s", invoice.GrandTotal)
}

func TestInvoiceCreateUnknownOrder(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.invoices.Create(context.Background(), &domain.CreateInvoiceRequest{WorkOrderID: 9999})
	assert.ErrorIs(t, err, service.ErrWorkOrderNotFound)
}

func TestInvoiceOnePerWorkOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	_, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)

	_, err = env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	assert.ErrorIs(t, err, service.ErrInvoiceExists)
}

func TestInvoiceTotalsAreSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	invoice, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)

	// Items change after issuance; the invoice keeps its totals
	_, err = env.workOrders.AddItem(ctx, order.ID, &domain.CreateWorkOrderItemRequest{
		Type:        domain.ItemTypeLabor,
		Description: "extra work",
		Quantity:    dec("1"),
		UnitPrice:   dec("1000"),
	})
	require.NoError(t, err)

	found, err := env.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, dec("816").Equal(found.GrandTotal), "grand total: %s", found.GrandTotal)
}

func TestPaymentSettlementProgression(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env) // grand total 816

	invoice, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, invoice.PaymentStatus)

	_, err = env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("300"),
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	invoice, err = env.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, invoice.PaymentStatus)

	_, err = env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("516"),
		PaymentMethod: domain.PaymentCard,
	})
	require.NoError(t, err)

	invoice, err = env.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, invoice.PaymentStatus)
}

func TestPaymentOnZeroTotalInvoiceSettlesPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env) // no items, grand total 0

	invoice, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)
	require.True(t, invoice.GrandTotal.IsZero())

	_, err = env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("100"),
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	// total paid >= grand total settles the invoice, even at zero
	invoice, err = env.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, invoice.PaymentStatus)
}

func TestPaymentDeleteRecomputesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	invoice, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)

	payment, err := env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("816"),
		PaymentMethod: domain.PaymentTransfer,
	})
	require.NoError(t, err)

	invoice, err = env.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPaid, invoice.PaymentStatus)

	require.NoError(t, env.payments.Delete(ctx, payment.ID))

	invoice, err = env.invoices.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, invoice.PaymentStatus)
}

func TestPaymentRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	_, err := env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("0"),
		PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("100"),
		PaymentMethod: domain.PaymentMethod("cheque"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestPaymentSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	_, err := env.payments.Create(ctx, &domain.CreatePaymentRequest{
		WorkOrderID:   order.ID,
		Amount:        dec("300"),
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	summary, err := env.payments.Summary(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, dec("816").Equal(summary.GrandTotal))
	assert.True(t, dec("300").Equal(summary.TotalPaid))
	assert.True(t, dec("516").Equal(summary.Balance))
	assert.Equal(t, domain.PaymentPartial, summary.Status)
}

func TestInvoiceManualStatusOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createBilledOrder(t, env)

	invoice, err := env.invoices.Create(ctx, &domain.CreateInvoiceRequest{WorkOrderID: order.ID})
	require.NoError(t, err)

	updated, err := env.invoices.SetPaymentStatus(ctx, invoice.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

	_, err = env.invoices.SetPaymentStatus(ctx, invoice.ID, domain.PaymentStatus("void"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
