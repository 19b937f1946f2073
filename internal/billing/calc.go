// Package billing holds the money math for work orders. All arithmetic is
// done on decimals and rounded half-up to two places, never on floats.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/otoservis/garage-api/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// ItemTotal computes the line total for a single item:
// quantity * unitPrice - discount, floored at zero, rounded to 2 places.
// The discount applies to the whole line, not per unit.
func ItemTotal(quantity, unitPrice, discount decimal.Decimal) decimal.Decimal {
	total := quantity.Mul(unitPrice).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}

// Summary is the financial rollup of a work order's items
type Summary struct {
	LaborTotal    decimal.Decimal
	PartsTotal    decimal.Decimal
	DiscountTotal decimal.Decimal
	Subtotal      decimal.Decimal
	VATTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Summarize aggregates item lines into the work order totals. VAT is
// computed per item from each line's own rate, so mixed-rate orders
// (e.g. parts at 20% and labor at 10%) come out exact. Each VAT
// contribution is rounded to 2 places before summing.
func Summarize(items []domain.WorkOrderItem) Summary {
	s := Summary{
		LaborTotal:    decimal.Zero,
		PartsTotal:    decimal.Zero,
		DiscountTotal: decimal.Zero,
		Subtotal:      decimal.Zero,
		VATTotal:      decimal.Zero,
		GrandTotal:    decimal.Zero,
	}

	for _, item := range items {
		lineTotal := ItemTotal(item.Quantity, item.UnitPrice, item.Discount)

		switch item.Type {
		case domain.ItemTypeLabor:
			s.LaborTotal = s.LaborTotal.Add(lineTotal)
		default:
			s.PartsTotal = s.PartsTotal.Add(lineTotal)
		}

		s.DiscountTotal = s.DiscountTotal.Add(item.Discount)
		s.VATTotal = s.VATTotal.Add(lineTotal.Mul(item.VATRate).Div(oneHundred).Round(2))
	}

	s.Subtotal = s.LaborTotal.Add(s.PartsTotal)
	s.GrandTotal = s.Subtotal.Add(s.VATTotal)
	return s
}
