package service_test

import (
	"context"
	"testing"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartCreateAndDuplicateStockCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	part, err := env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode:     "FLT-001",
		Name:          "Oil Filter",
		SalePrice:     dec("100"),
		StockQuantity: 10,
	})
	require.NoError(t, err)
	assert.True(t, part.IsActive)

	_, err = env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode: "FLT-001",
		Name:      "Another Filter",
	})
	assert.ErrorIs(t, err, service.ErrDuplicateStockCode)
}

func TestPartGetByStockCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode: "SPK-010",
		Name:      "Spark Plug",
		SalePrice: dec("45"),
	})
	require.NoError(t, err)

	// Surrounding whitespace is trimmed, the code itself is exact
	part, err := env.parts.GetByStockCode(ctx, "  SPK-010 ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, part.ID)

	_, err = env.parts.GetByStockCode(ctx, "NOPE-999")
	assert.ErrorIs(t, err, service.ErrPartNotFound)
}

func TestPartAdjustStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	part, err := env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode:     "BRK-001",
		Name:          "Brake Pads",
		StockQuantity: 5,
	})
	require.NoError(t, err)

	part, err = env.parts.AdjustStock(ctx, part.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, part.StockQuantity)

	part, err = env.parts.AdjustStock(ctx, part.ID, -7)
	require.NoError(t, err)
	assert.Equal(t, 8, part.StockQuantity)

	// Taking out more than in stock clamps at zero
	part, err = env.parts.AdjustStock(ctx, part.ID, -100)
	require.NoError(t, err)
	assert.Equal(t, 0, part.StockQuantity)
}

func TestPartCriticalStockList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode:     "LOW-001",
		Name:          "Low Stock Part",
		StockQuantity: 2,
		CriticalLevel: 5,
	})
	require.NoError(t, err)

	_, err = env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode:     "OK-001",
		Name:          "Healthy Stock Part",
		StockQuantity: 50,
		CriticalLevel: 5,
	})
	require.NoError(t, err)

	critical, err := env.parts.ListCriticalStock(ctx)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "LOW-001", critical[0].StockCode)
}

func TestPartDeactivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	part, err := env.parts.Create(ctx, &domain.CreatePartRequest{
		StockCode: "OLD-001",
		Name:      "Discontinued Part",
	})
	require.NoError(t, err)

	require.NoError(t, env.parts.Deactivate(ctx, part.ID))

	found, err := env.parts.GetByID(ctx, part.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}
