package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type WorkOrderPhotoRepository struct {
	db *gorm.DB
}

func NewWorkOrderPhotoRepository(db *gorm.DB) *WorkOrderPhotoRepository {
	return &WorkOrderPhotoRepository{db: db}
}

func (r *WorkOrderPhotoRepository) Create(ctx context.Context, photo *domain.WorkOrderPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *WorkOrderPhotoRepository) GetByID(ctx context.Context, id uint) (*domain.WorkOrderPhoto, error) {
	var photo domain.WorkOrderPhoto
	err := r.db.WithContext(ctx).First(&photo, id).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *WorkOrderPhotoRepository) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]domain.WorkOrderPhoto, error) {
	var photos []domain.WorkOrderPhoto
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&photos).Error
	return photos, err
}

// Delete removes the row for good; photos have no soft-delete state
func (r *WorkOrderPhotoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.WorkOrderPhoto{}, id).Error
}
