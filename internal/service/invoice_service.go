package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

const invoiceEntity = "Invoice"

// InvoiceService issues invoices from work orders. An invoice is a
// snapshot: its totals are copied from the order at issuance and never
// rewritten, even if the order's items change afterwards.
type InvoiceService struct {
	db          *gorm.DB
	invoiceRepo *repository.InvoiceRepository
	orderRepo   *repository.WorkOrderRepository
	paymentRepo *repository.PaymentRepository
	seqRepo     *repository.NumberSequenceRepository
	audit       *AuditService
	billingCfg  *config.BillingConfig
	logger      *zap.Logger
}

func NewInvoiceService(
	db *gorm.DB,
	invoiceRepo *repository.InvoiceRepository,
	orderRepo *repository.WorkOrderRepository,
	paymentRepo *repository.PaymentRepository,
	seqRepo *repository.NumberSequenceRepository,
	audit *AuditService,
	billingCfg *config.BillingConfig,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		db:          db,
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		seqRepo:     seqRepo,
		audit:       audit,
		billingCfg:  billingCfg,
		logger:      logger,
	}
}

// Create issues an invoice for a work order. At most one invoice exists
// per order; a second attempt fails with ErrInvoiceExists. The existence
// check, number allocation and insert share one transaction, backed by
// the unique index on work_order_id.
func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	var created *domain.Invoice

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(ctx, req.WorkOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkOrderNotFound
			}
			return &StorageError{Op: "invoice.Create", Err: err}
		}

		invoiceRepo := s.invoiceRepo.WithTx(tx)
		exists, err := invoiceRepo.ExistsForWorkOrder(ctx, order.ID)
		if err != nil {
			return &StorageError{Op: "invoice.Create", Err: err}
		}
		if exists {
			return ErrInvoiceExists
		}

		number, err := s.seqRepo.WithTx(tx).NextInvoiceNumber(ctx, s.billingCfg.InvoicePrefix, time.Now())
		if err != nil {
			return &StorageError{Op: "invoice.Create", Err: err}
		}

		issueDate := time.Now().UTC()
		if req.IssueDate != nil {
			issueDate = *req.IssueDate
		}
		dueDate := req.DueDate
		if dueDate == nil {
			dueDate = &issueDate
		}

		invoice := &domain.Invoice{
			InvoiceNumber: number,
			WorkOrderID:   order.ID,
			IssueDate:     issueDate,
			DueDate:       dueDate,
			PaymentStatus: domain.PaymentUnpaid,
			Subtotal:      order.Subtotal,
			VATTotal:      order.VATTotal,
			GrandTotal:    order.GrandTotal,
		}
		if err := invoiceRepo.Create(ctx, invoice); err != nil {
			return &StorageError{Op: "invoice.Create", Err: err}
		}

		if err := s.audit.RecordCreate(ctx, tx, invoiceEntity, invoice.ID, invoice); err != nil {
			return err
		}

		created = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice issued",
		zap.Uint("invoice_id", created.ID),
		zap.String("number", created.InvoiceNumber),
		zap.Uint("work_order_id", created.WorkOrderID))
	return created, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uint) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, &StorageError{Op: "invoice.GetByID", Err: err}
	}
	return invoice, nil
}

func (s *InvoiceService) GetByWorkOrder(ctx context.Context, workOrderID uint) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByWorkOrder(ctx, workOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, &StorageError{Op: "invoice.GetByWorkOrder", Err: err}
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, page, pageSize int, status domain.PaymentStatus) ([]domain.Invoice, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, &StorageError{Op: "invoice.List", Err: err}
	}
	return invoices, total, nil
}

// SetPaymentStatus overrides the settlement status by hand. The normal
// path is the recomputation on payment recording; this exists for
// corrections, e.g. a bounced transfer.
func (s *InvoiceService) SetPaymentStatus(ctx context.Context, id uint, status domain.PaymentStatus) (*domain.Invoice, error) {
	if status != domain.PaymentUnpaid && status != domain.PaymentPartial && status != domain.PaymentPaid {
		return nil, ErrInvalidInput
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.invoiceRepo.WithTx(tx)
		invoice, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return &StorageError{Op: "invoice.SetPaymentStatus", Err: err}
		}

		if invoice.PaymentStatus == status {
			return nil
		}

		if err := repo.UpdatePaymentStatus(ctx, id, status); err != nil {
			return &StorageError{Op: "invoice.SetPaymentStatus", Err: err}
		}

		return s.audit.RecordUpdate(ctx, tx, invoiceEntity, id,
			map[string]interface{}{"paymentStatus": invoice.PaymentStatus},
			map[string]interface{}{"paymentStatus": status})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// refreshPaymentStatus recomputes the settlement status from recorded
// payments. Called by the payment service inside its transaction.
func (s *InvoiceService) refreshPaymentStatus(ctx context.Context, tx *gorm.DB, workOrderID uint) error {
	invoiceRepo := s.invoiceRepo.WithTx(tx)
	invoice, err := invoiceRepo.GetByWorkOrder(ctx, workOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No invoice issued yet; nothing to refresh
			return nil
		}
		return &StorageError{Op: "invoice.refreshPaymentStatus", Err: err}
	}

	payments, err := s.paymentRepo.WithTx(tx).ListByWorkOrder(ctx, workOrderID)
	if err != nil {
		return &StorageError{Op: "invoice.refreshPaymentStatus", Err: err}
	}

	totalPaid := decimalSum(payments)
	status := domain.PaymentUnpaid
	switch {
	case totalPaid.GreaterThanOrEqual(invoice.GrandTotal):
		status = domain.PaymentPaid
	case totalPaid.IsPositive():
		status = domain.PaymentPartial
	}

	if status == invoice.PaymentStatus {
		return nil
	}
	if err := invoiceRepo.UpdatePaymentStatus(ctx, invoice.ID, status); err != nil {
		return &StorageError{Op: "invoice.refreshPaymentStatus", Err: err}
	}
	return nil
}
