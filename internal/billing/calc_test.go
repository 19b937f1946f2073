package billing_test

import (
	"testing"

	"github.com/otoservis/garage-api/internal/billing"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestItemTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		unitPrice string
		discount  string
		want      string
	}{
		{"simple", "1", "500", "0", "500"},
		{"quantity and discount", "2", "100", "20", "180"},
		{"fractional quantity", "1.5", "200", "0", "300"},
		{"rounding", "3", "33.333", "0", "100"},
		{"discount exceeds line", "1", "50", "100", "0"},
		{"zero price", "4", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.ItemTotal(dec(tt.quantity), dec(tt.unitPrice), dec(tt.discount))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestSummarize(t *testing.T) {
	items := []domain.WorkOrderItem{
		{
			Type:      domain.ItemTypeLabor,
			Quantity:  dec("1"),
			UnitPrice: dec("500"),
			Discount:  dec("0"),
			VATRate:   dec("20"),
		},
		{
			Type:      domain.ItemTypePart,
			Quantity:  dec("2"),
			UnitPrice: dec("100"),
			Discount:  dec("20"),
			VATRate:   dec("20"),
		},
	}

	s := billing.Summarize(items)

	assert.True(t, dec("500").Equal(s.LaborTotal), "labor total: %s", s.LaborTotal)
	assert.True(t, dec("180").Equal(s.PartsTotal), "parts total: %s", s.PartsTotal)
	assert.True(t, dec("20").Equal(s.DiscountTotal), "discount total: %s", s.DiscountTotal)
	assert.True(t, dec("680").Equal(s.Subtotal), "subtotal: %s", s.Subtotal)
	assert.True(t, dec("136").Equal(s.VATTotal), "vat total: %s", s.VATTotal)
	assert.True(t, dec("816").Equal(s.GrandTotal), "grand total: %s", s.GrandTotal)
}

func TestSummarizeMixedVATRates(t *testing.T) {
	items := []domain.WorkOrderItem{
		{
			Type:      domain.ItemTypeLabor,
			Quantity:  dec("1"),
			UnitPrice: dec("100"),
			Discount:  dec("0"),
			VATRate:   dec("10"),
		},
		{
			Type:      domain.ItemTypePart,
			Quantity:  dec("1"),
			UnitPrice: dec("100"),
			Discount:  dec("0"),
			VATRate:   dec("20"),
		},
	}

	s := billing.Summarize(items)

	// 10 from the labor line plus 20 from the part line
	assert.True(t, dec("30").Equal(s.VATTotal), "vat total: %s", s.VATTotal)
	assert.True(t, dec("230").Equal(s.GrandTotal), "grand total: %s", s.GrandTotal)
}

func TestSummarizeEmpty(t *testing.T) {
	s := billing.Summarize(nil)

	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.VATTotal.IsZero())
	assert.True(t, s.GrandTotal.IsZero())
}

func TestSummarizePerLineVATRounding(t *testing.T) {
	// Each line's VAT is rounded before summing, so three lines of
	// 0.335 VAT each come out as 3 x 0.34, not round(1.005).
	items := []domain.WorkOrderItem{
		{Type: domain.ItemTypePart, Quantity: dec("1"), UnitPrice: dec("1.675"), VATRate: dec("20")},
		{Type: domain.ItemTypePart, Quantity: dec("1"), UnitPrice: dec("1.675"), VATRate: dec("20")},
		{Type: domain.ItemTypePart, Quantity: dec("1"), UnitPrice: dec("1.675"), VATRate: dec("20")},
	}

	s := billing.Summarize(items)

	assert.True(t, dec("1.02").Equal(s.VATTotal), "vat total: %s", s.VATTotal)
}
