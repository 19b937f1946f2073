package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

const customerEntity = "Customer"

// CustomerService handles customer CRUD with soft deletes and auditing
type CustomerService struct {
	db           *gorm.DB
	customerRepo *repository.CustomerRepository
	audit        *AuditService
	logger       *zap.Logger
}

func NewCustomerService(db *gorm.DB, customerRepo *repository.CustomerRepository, audit *AuditService, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		db:           db,
		customerRepo: customerRepo,
		audit:        audit,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	customerType := req.Type
	if customerType == "" {
		customerType = domain.CustomerIndividual
	}
	if !customerType.IsValid() {
		return nil, ErrInvalidInput
	}

	customer := &domain.Customer{
		Type:        customerType,
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		TaxNumber:   req.TaxNumber,
		TaxOffice:   req.TaxOffice,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		Notes:       req.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.customerRepo.WithTx(tx).Create(ctx, customer); err != nil {
			return &StorageError{Op: "customer.Create", Err: err}
		}
		return s.audit.RecordCreate(ctx, tx, customerEntity, customer.ID, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, &StorageError{Op: "customer.GetByID", Err: err}
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) ([]domain.Customer, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, &StorageError{Op: "customer.List", Err: err}
	}
	return customers, total, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	var updated *domain.Customer

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.customerRepo.WithTx(tx)
		customer, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return &StorageError{Op: "customer.Update", Err: err}
		}

		old := *customer

		if req.Type != nil {
			if !req.Type.IsValid() {
				return ErrInvalidInput
			}
			customer.Type = *req.Type
		}
		if req.FullName != nil {
			customer.FullName = *req.FullName
		}
		if req.CompanyName != nil {
			customer.CompanyName = *req.CompanyName
		}
		if req.TaxNumber != nil {
			customer.TaxNumber = *req.TaxNumber
		}
		if req.TaxOffice != nil {
			customer.TaxOffice = *req.TaxOffice
		}
		if req.Phone != nil {
			customer.Phone = *req.Phone
		}
		if req.Email != nil {
			customer.Email = *req.Email
		}
		if req.Address != nil {
			customer.Address = *req.Address
		}
		if req.City != nil {
			customer.City = *req.City
		}
		if req.Notes != nil {
			customer.Notes = *req.Notes
		}

		if err := repo.Update(ctx, customer); err != nil {
			return &StorageError{Op: "customer.Update", Err: err}
		}
		if err := s.audit.RecordUpdate(ctx, tx, customerEntity, customer.ID, &old, customer); err != nil {
			return err
		}

		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes the customer; their vehicles and history remain
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.customerRepo.WithTx(tx)
		customer, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return &StorageError{Op: "customer.Delete", Err: err}
		}

		if err := repo.SoftDelete(ctx, id); err != nil {
			return &StorageError{Op: "customer.Delete", Err: err}
		}
		return s.audit.RecordDelete(ctx, tx, customerEntity, id, customer)
	})
}
