package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *WorkOrderRepository) WithTx(tx *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: tx}
}

func (r *WorkOrderRepository) Create(ctx context.Context, order *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id uint) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Preload("Vehicle").
		Preload("Customer").
		Preload("Technician").
		Preload("Items").
		Preload("Items.Part").
		Preload("Payments").
		Preload("Invoice").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *WorkOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	err := r.db.WithContext(ctx).
		Where("work_order_number = ? AND is_deleted = ?", number, false).
		Preload("Items").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, order *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateColumns updates only the given columns, leaving associations alone
func (r *WorkOrderRepository) UpdateColumns(ctx context.Context, id uint, values map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("id = ?", id).
		Updates(values).Error
}

// SoftDelete marks the work order deleted without removing the row
func (r *WorkOrderRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

type WorkOrderFilter struct {
	Status       domain.WorkOrderStatus
	CustomerID   uint
	VehicleID    uint
	TechnicianID uint
	Search       string
}

func (r *WorkOrderRepository) List(ctx context.Context, page, pageSize int, filter WorkOrderFilter) ([]domain.WorkOrder, int64, error) {
	var orders []domain.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Where("work_orders.is_deleted = ?", false)

	if filter.Status != "" {
		query = query.Where("work_orders.status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("work_orders.customer_id = ?", filter.CustomerID)
	}
	if filter.VehicleID != 0 {
		query = query.Where("work_orders.vehicle_id = ?", filter.VehicleID)
	}
	if filter.TechnicianID != 0 {
		query = query.Where("work_orders.technician_id = ?", filter.TechnicianID)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.
			Joins("LEFT JOIN vehicles ON vehicles.id = work_orders.vehicle_id").
			Where("LOWER(work_orders.work_order_number) LIKE ? OR LOWER(vehicles.plate_number) LIKE ?",
				searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("work_orders.created_at DESC").
		Preload("Vehicle").
		Preload("Customer").
		Find(&orders).Error

	return orders, total, err
}

// CountByStatuses counts non-deleted work orders in any of the given statuses
func (r *WorkOrderRepository) CountByStatuses(ctx context.Context, statuses []domain.WorkOrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Where("is_deleted = ? AND status IN ?", false, statuses).
		Count(&count).Error
	return count, err
}

// StatusCounts groups non-deleted work orders by status
func (r *WorkOrderRepository) StatusCounts(ctx context.Context) ([]domain.StatusCount, error) {
	var counts []domain.StatusCount
	err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Select("status, COUNT(*) as count").
		Where("is_deleted = ?", false).
		Group("status").
		Scan(&counts).Error
	return counts, err
}

// ListCompletedBetween returns work orders whose completed_at falls in [from, to)
func (r *WorkOrderRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	err := r.db.WithContext(ctx).
		Where("is_deleted = ? AND completed_at >= ? AND completed_at < ?", false, from, to).
		Find(&orders).Error
	return orders, err
}
