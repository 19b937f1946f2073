package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Payment{}, "id = ?", id).Error
}

func (r *PaymentRepository) ListByWorkOrder(ctx context.Context, workOrderID uint) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}

// ListBetween returns payments with payment_date in [from, to)
func (r *PaymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}
