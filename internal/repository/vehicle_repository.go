package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *VehicleRepository) WithTx(tx *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: tx}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uint) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		Preload("Customer").
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) GetByPlateNumber(ctx context.Context, plate string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.db.WithContext(ctx).
		Where("plate_number = ? AND is_deleted = ?", strings.ToUpper(plate), false).
		Preload("Customer").
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// SoftDelete marks the vehicle deleted without removing the row
func (r *VehicleRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&domain.Vehicle{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *VehicleRepository) List(ctx context.Context, page, pageSize int, search string, customerID uint) ([]domain.Vehicle, int64, error) {
	var vehicles []domain.Vehicle
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Vehicle{}).Where("is_deleted = ?", false)

	if customerID != 0 {
		query = query.Where("customer_id = ?", customerID)
	}
	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(plate_number) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(chassis_number) LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").
		Preload("Customer").
		Find(&vehicles).Error

	return vehicles, total, err
}

func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Vehicle{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}
