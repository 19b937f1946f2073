// Package testutil provides shared helpers for package-level tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/database"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory SQLite database with the full schema
// applied. Each call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and
	// serializes writes the same way the production setup does.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")
	return db
}

// SetupFileTestDB opens a file-backed SQLite database through the
// production connector, with WAL and immediate write transactions.
// Use it for tests that exercise writes from multiple goroutines;
// the in-memory helper is cheaper for everything else.
func SetupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:        "sqlite",
		Path:          filepath.Join(t.TempDir(), "test.db"),
		BusyTimeoutMS: 5000,
	}
	db, err := database.NewDatabase(cfg)
	require.NoError(t, err, "failed to open file-backed test database")

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateTestCustomer inserts a minimal customer and returns it.
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Type:     domain.CustomerIndividual,
		FullName: name,
		Phone:    "05551234567",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestVehicle inserts a vehicle owned by the given customer.
func CreateTestVehicle(t *testing.T, db *gorm.DB, customerID uint, plate string) *domain.Vehicle {
	t.Helper()
	vehicle := &domain.Vehicle{
		CustomerID:  customerID,
		PlateNumber: plate,
		Brand:       "Renault",
		Model:       "Clio",
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

// CreateTestPart inserts an inventory part with the given stock level.
func CreateTestPart(t *testing.T, db *gorm.DB, stockCode string, stock int, salePrice string) *domain.Part {
	t.Helper()
	part := &domain.Part{
		StockCode:     stockCode,
		Name:          fmt.Sprintf("Part %s", stockCode),
		SalePrice:     decimal.RequireFromString(salePrice),
		StockQuantity: stock,
		CriticalLevel: 2,
		IsActive:      true,
	}
	require.NoError(t, db.Create(part).Error)
	return part
}
