package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

const paymentEntity = "Payment"

// PaymentService records money received against work orders and keeps
// the invoice settlement status in step.
type PaymentService struct {
	db          *gorm.DB
	paymentRepo *repository.PaymentRepository
	orderRepo   *repository.WorkOrderRepository
	invoices    *InvoiceService
	audit       *AuditService
	logger      *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	orderRepo *repository.WorkOrderRepository,
	invoices *InvoiceService,
	audit *AuditService,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		invoices:    invoices,
		audit:       audit,
		logger:      logger,
	}
}

// Create records a payment and recomputes the invoice settlement status
// in the same transaction
func (s *PaymentService) Create(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, ErrInvalidInput
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidInput
	}

	var created *domain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.orderRepo.WithTx(tx).GetByID(ctx, req.WorkOrderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "payment.Create", Err: err}
		}

		paymentDate := time.Now().UTC()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}

		payment := &domain.Payment{
			WorkOrderID:     req.WorkOrderID,
			Amount:          req.Amount,
			PaymentMethod:   req.PaymentMethod,
			PaymentDate:     paymentDate,
			ReferenceNumber: req.ReferenceNumber,
		}
		if err := s.paymentRepo.WithTx(tx).Create(ctx, payment); err != nil {
			return &StorageError{Op: "payment.Create", Err: err}
		}

		if err := s.invoices.refreshPaymentStatus(ctx, tx, req.WorkOrderID); err != nil {
			return err
		}

		if err := s.audit.RecordCreate(ctx, tx, paymentEntity, payment.ID, payment); err != nil {
			return err
		}

		created = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.Uint("payment_id", created.ID),
		zap.Uint("work_order_id", created.WorkOrderID),
		zap.String("amount", created.Amount.String()))
	return created, nil
}

// Delete removes a mistaken payment and recomputes the invoice status
func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.paymentRepo.WithTx(tx)
		payment, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return &StorageError{Op: "payment.Delete", Err: err}
		}

		if err := repo.Delete(ctx, id); err != nil {
			return &StorageError{Op: "payment.Delete", Err: err}
		}

		if err := s.invoices.refreshPaymentStatus(ctx, tx, payment.WorkOrderID); err != nil {
			return err
		}

		return s.audit.RecordDelete(ctx, tx, paymentEntity, id, payment)
	})
}

func (s *PaymentService) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, &StorageError{Op: "payment.ListByWorkOrder", Err: err}
	}
	return payments, nil
}

// Summary reports how much of the order's grand total has been settled
func (s *PaymentService) Summary(ctx context.Context, workOrderID uint) (*domain.PaymentSummaryResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, workOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkOrderNotFound
		}
		return nil, &StorageError{Op: "payment.Summary", Err: err}
	}

	payments, err := s.paymentRepo.ListByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, &StorageError{Op: "payment.Summary", Err: err}
	}

	totalPaid := decimalSum(payments)
	balance := order.GrandTotal.Sub(totalPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	status := domain.PaymentUnpaid
	switch {
	case totalPaid.GreaterThanOrEqual(order.GrandTotal):
		status = domain.PaymentPaid
	case totalPaid.IsPositive():
		status = domain.PaymentPartial
	}

	return &domain.PaymentSummaryResponse{
		WorkOrderID: workOrderID,
		GrandTotal:  order.GrandTotal,
		TotalPaid:   totalPaid,
		Balance:     balance,
		Status:      status,
	}, nil
}

func decimalSum(payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
