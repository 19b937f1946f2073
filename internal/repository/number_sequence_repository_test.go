package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
	"github.com/otoservis/garage-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedWorkOrderNumber(t *testing.T, db *gorm.DB, number string) {
	t.Helper()
	customer := testutil.CreateTestCustomer(t, db, "Seed Customer")
	vehicle := testutil.CreateTestVehicle(t, db, customer.ID, fmt.Sprintf("06X%d", time.Now().UnixNano()%1000000))
	order := &domain.WorkOrder{
		WorkOrderNumber: number,
		VehicleID:       vehicle.ID,
		CustomerID:      customer.ID,
		Status:          domain.StatusPending,
	}
	require.NoError(t, db.Create(order).Error)
}

func TestNextWorkOrderNumberStartsAtOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	number, err := repo.NextWorkOrderNumber(context.Background(), "IS", now)
	require.NoError(t, err)
	assert.Equal(t, "IS-202603-0001", number)
}

func TestNextWorkOrderNumberIncrements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	seedWorkOrderNumber(t, db, "IS-202603-0001")
	seedWorkOrderNumber(t, db, "IS-202603-0002")

	number, err := repo.NextWorkOrderNumber(context.Background(), "IS", now)
	require.NoError(t, err)
	assert.Equal(t, "IS-202603-0003", number)
}

func TestNextWorkOrderNumberResetsPerMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	seedWorkOrderNumber(t, db, "IS-202602-0042")

	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	number, err := repo.NextWorkOrderNumber(context.Background(), "IS", march)
	require.NoError(t, err)
	assert.Equal(t, "IS-202603-0001", number)
}

func TestNextWorkOrderNumberBeyondFourDigits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	// The zero padding runs out at 9999; the counter must keep going
	seedWorkOrderNumber(t, db, "IS-202603-9999")
	seedWorkOrderNumber(t, db, "IS-202603-10000")

	number, err := repo.NextWorkOrderNumber(context.Background(), "IS", now)
	require.NoError(t, err)
	assert.Equal(t, "IS-202603-10001", number)
}

func TestNextWorkOrderNumberConcurrentAllocations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}

	db := testutil.SetupFileTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	customer := testutil.CreateTestCustomer(t, db, "Seed Customer")
	vehicle := testutil.CreateTestVehicle(t, db, customer.ID, "06KONK01")

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	const workers = 1000

	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var number string
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				number, err = repo.WithTx(tx).NextWorkOrderNumber(context.Background(), "IS", now)
				if err != nil {
					return err
				}
				order := &domain.WorkOrder{
					WorkOrderNumber: number,
					VehicleID:       vehicle.ID,
					CustomerID:      customer.ID,
					Status:          domain.StatusPending,
				}
				return tx.Create(order).Error
			})
			if assert.NoError(t, err) {
				numbers <- number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, workers)
	for number := range numbers {
		seen[number] = struct{}{}
	}
	require.Len(t, seen, workers, "allocations must be distinct")
	for i := 1; i <= workers; i++ {
		want := fmt.Sprintf("IS-202603-%04d", i)
		_, ok := seen[want]
		assert.True(t, ok, "missing %s", want)
	}
}

func TestInvoiceNumbersUseSeparateCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	seedWorkOrderNumber(t, db, "IS-202603-0007")

	// Work order numbers do not advance the invoice counter
	number, err := repo.NextInvoiceNumber(context.Background(), "FTR", now)
	require.NoError(t, err)
	assert.Equal(t, "FTR-202603-0001", number)
}
