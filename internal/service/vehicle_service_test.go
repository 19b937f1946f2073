package service_test

import (
	"context"
	"testing"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/otoservis/garage-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "34ABC123", service.NormalizePlate("34 abc 123"))
	assert.Equal(t, "06XYZ99", service.NormalizePlate("06xyz99"))
}

func TestVehicleCreateNormalizesPlate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, env.db, "Ayse Yilmaz")

	vehicle, err := env.vehicles.Create(ctx, &domain.CreateVehicleRequest{
		CustomerID:  customer.ID,
		PlateNumber: "34 abc 123",
		Brand:       "Ford",
		Model:       "Focus",
	})
	require.NoError(t, err)
	assert.Equal(t, "34ABC123", vehicle.PlateNumber)

	// Lookup accepts the raw form too
	found, err := env.vehicles.GetByPlateNumber(ctx, "34 abc 123")
	require.NoError(t, err)
	assert.Equal(t, vehicle.ID, found.ID)
}

func TestVehicleDuplicatePlate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, env.db, "Ayse Yilmaz")

	_, err := env.vehicles.Create(ctx, &domain.CreateVehicleRequest{
		CustomerID:  customer.ID,
		PlateNumber: "34ABC123",
		Brand:       "Ford",
		Model:       "Focus",
	})
	require.NoError(t, err)

	_, err = env.vehicles.Create(ctx, &domain.CreateVehicleRequest{
		CustomerID:  customer.ID,
		PlateNumber: "34 ABC 123",
		Brand:       "Opel",
		Model:       "Astra",
	})
	assert.ErrorIs(t, err, service.ErrDuplicatePlate)
}

func TestVehicleCreateUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.vehicles.Create(context.Background(), &domain.CreateVehicleRequest{
		CustomerID:  9999,
		PlateNumber: "34ABC123",
		Brand:       "Ford",
		Model:       "Focus",
	})
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestCustomerSoftDeleteHidesFromReads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer, err := env.customers.Create(ctx, &domain.CreateCustomerRequest{
		FullName: "Hasan Kaya",
		Phone:    "05559876543",
	})
	require.NoError(t, err)

	require.NoError(t, env.customers.Delete(ctx, customer.ID))

	_, err = env.customers.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)

	// The row itself is still there
	var count int64
	require.NoError(t, env.db.Model(&domain.Customer{}).Where("id = ?", customer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
