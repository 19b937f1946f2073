package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *PartRepository) WithTx(tx *gorm.DB) *PartRepository {
	return &PartRepository{db: tx}
}

func (r *PartRepository) Create(ctx context.Context, part *domain.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *PartRepository) GetByID(ctx context.Context, id uint) (*domain.Part, error) {
	var part domain.Part
	err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *PartRepository) GetByStockCode(ctx context.Context, stockCode string) (*domain.Part, error) {
	var part domain.Part
	err := r.db.WithContext(ctx).First(&part, "stock_code = ?", stockCode).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *PartRepository) Update(ctx context.Context, part *domain.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

func (r *PartRepository) List(ctx context.Context, page, pageSize int, search, category string, activeOnly bool) ([]domain.Part, int64, error) {
	var parts []domain.Part
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Part{})

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(stock_code) LIKE ? OR LOWER(supplier_name) LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&parts).Error

	return parts, total, err
}

// ListCriticalStock returns active parts at or below their critical level
func (r *PartRepository) ListCriticalStock(ctx context.Context) ([]domain.Part, error) {
	var parts []domain.Part
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity <= critical_level", true).
		Order("stock_quantity ASC").
		Find(&parts).Error
	return parts, err
}

// CountCriticalStock counts active parts at or below their critical level
func (r *PartRepository) CountCriticalStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Part{}).
		Where("is_active = ? AND stock_quantity <= critical_level", true).
		Count(&count).Error
	return count, err
}
