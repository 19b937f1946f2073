package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type WorkOrderItemRepository struct {
	db *gorm.DB
}

func NewWorkOrderItemRepository(db *gorm.DB) *WorkOrderItemRepository {
	return &WorkOrderItemRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *WorkOrderItemRepository) WithTx(tx *gorm.DB) *WorkOrderItemRepository {
	return &WorkOrderItemRepository{db: tx}
}

func (r *WorkOrderItemRepository) Create(ctx context.Context, item *domain.WorkOrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *WorkOrderItemRepository) GetByID(ctx context.Context, id uint) (*domain.WorkOrderItem, error) {
	var item domain.WorkOrderItem
	err := r.db.WithContext(ctx).Preload("Part").First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *WorkOrderItemRepository) Update(ctx context.Context, item *domain.WorkOrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes the item row. Items are hard-deleted; the financial
// history lives in the parent order's audit trail, not in the item table.
func (r *WorkOrderItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.WorkOrderItem{}, "id = ?", id).Error
}

func (r *WorkOrderItemRepository) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]domain.WorkOrderItem, error) {
	var items []domain.WorkOrderItem
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}
