package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByWorkOrder(ctx context.Context, workOrderID uint) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "work_order_id = ?", workOrderID).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ExistsForWorkOrder reports whether the work order already has an invoice
func (r *InvoiceRepository) ExistsForWorkOrder(ctx context.Context, workOrderID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("work_order_id = ?", workOrderID).
		Count(&count).Error
	return count > 0, err
}

// UpdatePaymentStatus changes only the settlement status. Invoice totals
// are an issuance snapshot and are never written after Create.
func (r *InvoiceRepository) UpdatePaymentStatus(ctx context.Context, id uint, status domain.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int, status domain.PaymentStatus) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	if status != "" {
		query = query.Where("payment_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&invoices).Error

	return invoices, total, err
}

// CountByStatus counts invoices with the given settlement status
func (r *InvoiceRepository) CountByStatus(ctx context.Context, status domain.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("payment_status = ?", status).
		Count(&count).Error
	return count, err
}
