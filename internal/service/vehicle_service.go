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

const vehicleEntity = "Vehicle"

// VehicleService handles vehicle CRUD. Plate numbers are normalized to
// uppercase without spaces and must be unique among non-deleted vehicles.
type VehicleService struct {
	db           *gorm.DB
	vehicleRepo  *repository.VehicleRepository
	customerRepo *repository.CustomerRepository
	audit        *AuditService
	logger       *zap.Logger
}

func NewVehicleService(db *gorm.DB, vehicleRepo *repository.VehicleRepository, customerRepo *repository.CustomerRepository, audit *AuditService, logger *zap.Logger) *VehicleService {
	return &VehicleService{
		db:           db,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		audit:        audit,
		logger:       logger,
	}
}

// NormalizePlate uppercases a plate number and strips spaces
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(plate, " ", ""))
}

func (s *VehicleService) Create(ctx context.Context, req *domain.CreateVehicleRequest) (*domain.Vehicle, error) {
	plate := NormalizePlate(req.PlateNumber)
	if plate == "" {
		return nil, ErrInvalidInput
	}

	vehicle := &domain.Vehicle{
		CustomerID:           req.CustomerID,
		PlateNumber:          plate,
		Brand:                req.Brand,
		Model:                req.Model,
		Year:                 req.Year,
		FuelType:             req.FuelType,
		TransmissionType:     req.TransmissionType,
		ChassisNumber:        req.ChassisNumber,
		EngineNumber:         req.EngineNumber,
		CurrentKM:            req.CurrentKM,
		InspectionExpiryDate: req.InspectionExpiryDate,
		InsuranceExpiryDate:  req.InsuranceExpiryDate,
		Notes:                req.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.customerRepo.WithTx(tx).GetByID(ctx, req.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return &StorageError{Op: "vehicle.Create", Err: err}
		}

		repo := s.vehicleRepo.WithTx(tx)
		if _, err := repo.GetByPlateNumber(ctx, plate); err == nil {
			return ErrDuplicatePlate
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &StorageError{Op: "vehicle.Create", Err: err}
		}

		if err := repo.Create(ctx, vehicle); err != nil {
			return &StorageError{Op: "vehicle.Create", Err: err}
		}
		return s.audit.RecordCreate(ctx, tx, vehicleEntity, vehicle.ID, vehicle)
	})
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) GetByID(ctx context.Context, id uint) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, &StorageError{Op: "vehicle.GetByID", Err: err}
	}
	return vehicle, nil
}

func (s *VehicleService) GetByPlateNumber(ctx context.Context, plate string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByPlateNumber(ctx, NormalizePlate(plate))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, &StorageError{Op: "vehicle.GetByPlateNumber", Err: err}
	}
	return vehicle, nil
}

func (s *VehicleService) List(ctx context.Context, page, pageSize int, search string, customerID uint) ([]domain.Vehicle, int64, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, page, pageSize, search, customerID)
	if err != nil {
		return nil, 0, &StorageError{Op: "vehicle.List", Err: err}
	}
	return vehicles, total, nil
}

func (s *VehicleService) Update(ctx context.Context, id uint, req *domain.UpdateVehicleRequest) (*domain.Vehicle, error) {
	var updated *domain.Vehicle

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.vehicleRepo.WithTx(tx)
		vehicle, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return &StorageError{Op: "vehicle.Update", Err: err}
		}

		old := *vehicle

		if req.CustomerID != nil {
			if _, err := s.customerRepo.WithTx(tx).GetByID(ctx, *req.CustomerID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCustomerNotFound
				}
				return &StorageError{Op: "vehicle.Update", Err: err}
			}
			vehicle.CustomerID = *req.CustomerID
		}
		if req.PlateNumber != nil {
			plate := NormalizePlate(*req.PlateNumber)
			if plate != vehicle.PlateNumber {
				if existing, err := repo.GetByPlateNumber(ctx, plate); err == nil && existing.ID != id {
					return ErrDuplicatePlate
				} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return &StorageError{Op: "vehicle.Update", Err: err}
				}
				vehicle.PlateNumber = plate
			}
		}
		if req.Brand != nil {
			vehicle.Brand = *req.Brand
		}
		if req.Model != nil {
			vehicle.Model = *req.Model
		}
		if req.Year != nil {
			vehicle.Year = req.Year
		}
		if req.FuelType != nil {
			vehicle.FuelType = *req.FuelType
		}
		if req.TransmissionType != nil {
			vehicle.TransmissionType = *req.TransmissionType
		}
		if req.ChassisNumber != nil {
			vehicle.ChassisNumber = *req.ChassisNumber
		}
		if req.EngineNumber != nil {
			vehicle.EngineNumber = *req.EngineNumber
		}
		if req.CurrentKM != nil {
			vehicle.CurrentKM = req.CurrentKM
		}
		if req.InspectionExpiryDate != nil {
			vehicle.InspectionExpiryDate = req.InspectionExpiryDate
		}
		if req.InsuranceExpiryDate != nil {
			vehicle.InsuranceExpiryDate = req.InsuranceExpiryDate
		}
		if req.Notes != nil {
			vehicle.Notes = *req.Notes
		}

		// Clear preloaded association before save so gorm does not try
		// to upsert the customer row.
		vehicle.Customer = nil

		if err := repo.Update(ctx, vehicle); err != nil {
			return &StorageError{Op: "vehicle.Update", Err: err}
		}
		if err := s.audit.RecordUpdate(ctx, tx, vehicleEntity, vehicle.ID, &old, vehicle); err != nil {
			return err
		}

		updated = vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes the vehicle; its work order history remains
func (s *VehicleService) Delete(ctx context.Context, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.vehicleRepo.WithTx(tx)
		vehicle, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return &StorageError{Op: "vehicle.Delete", Err: err}
		}

		if err := repo.SoftDelete(ctx, id); err != nil {
			return &StorageError{Op: "vehicle.Delete", Err: err}
		}
		return s.audit.RecordDelete(ctx, tx, vehicleEntity, id, vehicle)
	})
}
