package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

const partEntity = "Part"

// PartService handles the parts inventory. Sale through work orders
// depletes stock on completion; manual corrections go through AdjustStock.
type PartService struct {
	db       *gorm.DB
	partRepo *repository.PartRepository
	audit    *AuditService
	logger   *zap.Logger
}

func NewPartService(db *gorm.DB, partRepo *repository.PartRepository, audit *AuditService, logger *zap.Logger) *PartService {
	return &PartService{
		db:       db,
		partRepo: partRepo,
		audit:    audit,
		logger:   logger,
	}
}

func (s *PartService) Create(ctx context.Context, req *domain.CreatePartRequest) (*domain.Part, error) {
	part := &domain.Part{
		StockCode:     req.StockCode,
		Name:          req.Name,
		Category:      req.Category,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		StockQuantity: req.StockQuantity,
		CriticalLevel: req.CriticalLevel,
		SupplierName:  req.SupplierName,
		IsActive:      true,
	}
	if part.CriticalLevel == 0 {
		part.CriticalLevel = 5
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.partRepo.WithTx(tx)
		if _, err := repo.GetByStockCode(ctx, req.StockCode); err == nil {
			return ErrDuplicateStockCode
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &StorageError{Op: "part.Create", Err: err}
		}

		if err := repo.Create(ctx, part); err != nil {
			return &StorageError{Op: "part.Create", Err: err}
		}
		return s.audit.RecordCreate(ctx, tx, partEntity, part.ID, part)
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

func (s *PartService) GetByID(ctx context.Context, id uint) (*domain.Part, error) {
	part, err := s.partRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, &StorageError{Op: "part.GetByID", Err: err}
	}
	return part, nil
}

func (s *PartService) GetByStockCode(ctx context.Context, stockCode string) (*domain.Part, error) {
	part, err := s.partRepo.GetByStockCode(ctx, strings.TrimSpace(stockCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, &StorageError{Op: "part.GetByStockCode", Err: err}
	}
	return part, nil
}

func (s *PartService) List(ctx context.Context, page, pageSize int, search, category string, activeOnly bool) ([]domain.Part, int64, error) {
	parts, total, err := s.partRepo.List(ctx, page, pageSize, search, category, activeOnly)
	if err != nil {
		return nil, 0, &StorageError{Op: "part.List", Err: err}
	}
	return parts, total, nil
}

// ListCriticalStock returns parts at or below their critical level
func (s *PartService) ListCriticalStock(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.partRepo.ListCriticalStock(ctx)
	if err != nil {
		return nil, &StorageError{Op: "part.ListCriticalStock", Err: err}
	}
	return parts, nil
}

func (s *PartService) Update(ctx context.Context, id uint, req *domain.UpdatePartRequest) (*domain.Part, error) {
	var updated *domain.Part

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.partRepo.WithTx(tx)
		part, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartNotFound
			}
			return &StorageError{Op: "part.Update", Err: err}
		}

		old := *part

		if req.StockCode != nil && *req.StockCode != part.StockCode {
			if existing, err := repo.GetByStockCode(ctx, *req.StockCode); err == nil && existing.ID != id {
				return ErrDuplicateStockCode
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return &StorageError{Op: "part.Update", Err: err}
			}
			part.StockCode = *req.StockCode
		}
		if req.Name != nil {
			part.Name = *req.Name
		}
		if req.Category != nil {
			part.Category = *req.Category
		}
		if req.PurchasePrice != nil {
			part.PurchasePrice = *req.PurchasePrice
		}
		if req.SalePrice != nil {
			part.SalePrice = *req.SalePrice
		}
		if req.StockQuantity != nil {
			part.StockQuantity = *req.StockQuantity
		}
		if req.CriticalLevel != nil {
			part.CriticalLevel = *req.CriticalLevel
		}
		if req.SupplierName != nil {
			part.SupplierName = *req.SupplierName
		}
		if req.IsActive != nil {
			part.IsActive = *req.IsActive
		}

		if err := repo.Update(ctx, part); err != nil {
			return &StorageError{Op: "part.Update", Err: err}
		}
		if err := s.audit.RecordUpdate(ctx, tx, partEntity, part.ID, &old, part); err != nil {
			return err
		}

		updated = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdjustStock applies a manual stock correction. The result is clamped
// at zero, matching the depletion behavior on order completion.
func (s *PartService) AdjustStock(ctx context.Context, id uint, delta int) (*domain.Part, error) {
	var updated *domain.Part

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.partRepo.WithTx(tx)
		part, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartNotFound
			}
			return &StorageError{Op: "part.AdjustStock", Err: err}
		}

		oldQty := part.StockQuantity
		newQty := oldQty + delta
		if newQty < 0 {
			newQty = 0
		}
		part.StockQuantity = newQty

		if err := repo.Update(ctx, part); err != nil {
			return &StorageError{Op: "part.AdjustStock", Err: err}
		}
		if err := s.audit.RecordUpdate(ctx, tx, partEntity, part.ID,
			map[string]interface{}{"stockQuantity": oldQty},
			map[string]interface{}{"stockQuantity": newQty}); err != nil {
			return err
		}

		updated = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Deactivate hides the part from the active catalog without deleting it
func (s *PartService) Deactivate(ctx context.Context, id uint) error {
	active := false
	_, err := s.Update(ctx, id, &domain.UpdatePartRequest{IsActive: &active})
	return err
}
