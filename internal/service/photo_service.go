package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoService stores work order photos on local disk and tracks them in
// the database. Files live under <upload dir>/work_orders/<order id>/
// with generated names; the original name is kept as metadata.
type PhotoService struct {
	photoRepo *repository.WorkOrderPhotoRepository
	orderRepo *repository.WorkOrderRepository
	uploadCfg *config.UploadConfig
	logger    *zap.Logger
}

func NewPhotoService(
	photoRepo *repository.WorkOrderPhotoRepository,
	orderRepo *repository.WorkOrderRepository,
	uploadCfg *config.UploadConfig,
	logger *zap.Logger,
) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		orderRepo: orderRepo,
		uploadCfg: uploadCfg,
		logger:    logger,
	}
}

func (s *PhotoService) orderDir(workOrderID uint) string {
	return filepath.Join(s.uploadCfg.Dir, "work_orders", strconv.FormatUint(uint64(workOrderID), 10))
}

// Upload validates the file, writes it to disk and records the row. The
// uploader is taken from the request context when present.
func (s *PhotoService) Upload(ctx context.Context, workOrderID uint, originalName string, content []byte, category domain.PhotoCategory, caption string) (*domain.WorkOrderPhoto, error) {
	if _, err := s.orderRepo.GetByID(ctx, workOrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, &StorageError{Op: "photo.Upload", Err: err}
	}

	if originalName == "" {
		originalName = "photo.jpg"
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedPhotoExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %q, only jpg, png and webp are accepted", ErrInvalidInput, ext)
	}
	maxBytes := int64(s.uploadCfg.MaxPhotoSizeMB) * 1024 * 1024
	if int64(len(content)) > maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d MB", ErrInvalidInput, s.uploadCfg.MaxPhotoSizeMB)
	}
	if category == "" {
		category = domain.PhotoOther
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown photo category %q", ErrInvalidInput, category)
	}

	dir := s.orderDir(workOrderID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write photo: %w", err)
	}

	photo := &domain.WorkOrderPhoto{
		WorkOrderID:      workOrderID,
		Filename:         filename,
		OriginalFilename: originalName,
		Category:         category,
		Caption:          caption,
	}
	if user, ok := auth.FromContext(ctx); ok {
		photo.UploadedBy = &user.UserID
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		// The row is the source of truth; drop the orphaned file
		os.Remove(path)
		return nil, &StorageError{Op: "photo.Upload", Err: err}
	}

	s.logger.Info("photo uploaded",
		zap.Uint("work_order_id", workOrderID),
		zap.String("file", path),
		zap.Int("bytes", len(content)))
	return photo, nil
}

// ListByWorkOrder returns the order's photos in upload order
func (s *PhotoService) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]domain.WorkOrderPhoto, error) {
	if _, err := s.orderRepo.GetByID(ctx, workOrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, &StorageError{Op: "photo.ListByWorkOrder", Err: err}
	}
	photos, err := s.photoRepo.ListByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, &StorageError{Op: "photo.ListByWorkOrder", Err: err}
	}
	return photos, nil
}

// FilePath resolves a photo to its on-disk location
func (s *PhotoService) FilePath(ctx context.Context, photoID uint) (string, error) {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPhotoNotFound
		}
		return "", &StorageError{Op: "photo.FilePath", Err: err}
	}
	return filepath.Join(s.orderDir(photo.WorkOrderID), photo.Filename), nil
}

// Delete removes the photo from disk and the database. A missing file is
// not an error; the row still goes.
func (s *PhotoService) Delete(ctx context.Context, photoID uint) error {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPhotoNotFound
		}
		return &StorageError{Op: "photo.Delete", Err: err}
	}

	path := filepath.Join(s.orderDir(photo.WorkOrderID), photo.Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove photo file: %w", err)
	}

	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		return &StorageError{Op: "photo.Delete", Err: err}
	}

	s.logger.Info("photo deleted",
		zap.Uint("photo_id", photoID),
		zap.Uint("work_order_id", photo.WorkOrderID))
	return nil
}
