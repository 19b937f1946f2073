package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

// ReportRepository holds the read-only queries behind the reporting
// endpoints. Monetary aggregation happens in the service layer over
// decimals; these methods only fetch and group rows.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BilledOrdersBetween returns completed or delivered work orders whose
// completion falls in [from, to), newest first.
func (r *ReportRepository) BilledOrdersBetween(ctx context.Context, from, to time.Time) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND status IN ? AND completed_at >= ? AND completed_at < ?",
			false, domain.BilledStatuses, from, to).
		Order("completed_at DESC").
		Preload("Vehicle").
		Preload("Customer").
		Find(&orders).Error
	return orders, err
}

// VehicleServiceCounts returns the most serviced vehicles by work order count
func (r *ReportRepository) VehicleServiceCounts(ctx context.Context, limit int) ([]domain.VehicleServiceCount, error) {
	var counts []domain.VehicleServiceCount
	err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Select("vehicles.id AS vehicle_id, vehicles.plate_number, vehicles.brand, vehicles.model, COUNT(work_orders.id) AS order_count").
		Joins("JOIN vehicles ON vehicles.id = work_orders.vehicle_id").
		Where("work_orders.is_deleted = ? AND vehicles.is_deleted = ?", false, false).
		Group("vehicles.id, vehicles.plate_number, vehicles.brand, vehicles.model").
		Order("order_count DESC").
		Limit(limit).
		Scan(&counts).Error
	return counts, err
}

// PartConsumption returns every part-backed line on a live work order,
// with the part loaded for naming.
func (r *ReportRepository) PartConsumption(ctx context.Context) ([]domain.WorkOrderItem, error) {
	var items []domain.WorkOrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN work_orders ON work_orders.id = work_order_items.work_order_id").
		Where("work_order_items.part_id IS NOT NULL AND work_orders.is_deleted = ?", false).
		Preload("Part").
		Find(&items).Error
	return items, err
}

// CustomerChargeRow is one billed order or payment attributed to a customer
type CustomerChargeRow struct {
	CustomerID uint
	FullName   string
	Amount     decimal.Decimal
}

// CustomerBilledTotals returns one row per billed work order with the
// owning customer's name attached.
func (r *ReportRepository) CustomerBilledTotals(ctx context.Context) ([]CustomerChargeRow, error) {
	var rows []CustomerChargeRow
	err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Select("customers.id AS customer_id, customers.full_name, work_orders.grand_total AS amount").
		Joins("JOIN customers ON customers.id = work_orders.customer_id").
		Where("work_orders.is_deleted = ? AND customers.is_deleted = ? AND work_orders.status IN ?",
			false, false, domain.BilledStatuses).
		Scan(&rows).Error
	return rows, err
}

// CustomerPayments returns one row per payment with the paying customer's
// name attached. Payments on soft-deleted orders are excluded.
func (r *ReportRepository) CustomerPayments(ctx context.Context) ([]CustomerChargeRow, error) {
	var rows []CustomerChargeRow
	err := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Select("customers.id AS customer_id, customers.full_name, payments.amount AS amount").
		Joins("JOIN work_orders ON work_orders.id = payments.work_order_id").
		Joins("JOIN customers ON customers.id = work_orders.customer_id").
		Where("work_orders.is_deleted = ? AND customers.is_deleted = ?", false, false).
		Scan(&rows).Error
	return rows, err
}
