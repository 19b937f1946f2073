package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

// NumberSequenceRepository allocates document numbers of the form
// <PREFIX>-<YYYYMM>-<NNNN>, with the counter scoped to the calendar month.
// Allocation scans the existing numbers for the current period inside the
// caller's transaction; the unique index on the number column is the
// backstop against duplicates if two transactions race.
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// WithTx returns a copy bound to the given transaction. Callers allocating
// a number as part of a larger write must use the same transaction.
func (r *NumberSequenceRepository) WithTx(tx *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: tx}
}

// NextWorkOrderNumber allocates the next work order number for prefix
func (r *NumberSequenceRepository) NextWorkOrderNumber(ctx context.Context, prefix string, now time.Time) (string, error) {
	return r.nextNumber(ctx, &domain.WorkOrder{}, "work_order_number", prefix, now)
}

// NextInvoiceNumber allocates the next invoice number for prefix
func (r *NumberSequenceRepository) NextInvoiceNumber(ctx context.Context, prefix string, now time.Time) (string, error) {
	return r.nextNumber(ctx, &domain.Invoice{}, "invoice_number", prefix, now)
}

func (r *NumberSequenceRepository) nextNumber(ctx context.Context, model interface{}, column, prefix string, now time.Time) (string, error) {
	period := now.Format("200601")
	pattern := fmt.Sprintf("%s-%s-%%", prefix, period)

	// Length before value keeps the order numeric once the
	// suffix outgrows its zero padding (…-10000 after …-9999).
	var last string
	err := r.db.WithContext(ctx).Model(model).
		Select(column).
		Where(column+" LIKE ?", pattern).
		Order(fmt.Sprintf("LENGTH(%s) DESC, %s DESC", column, column)).
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		parts := strings.Split(last, "-")
		n, perr := strconv.Atoi(parts[len(parts)-1])
		if perr == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s-%s-%04d", prefix, period, seq), nil
}
