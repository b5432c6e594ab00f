package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []PricedLine
		vat      string
		subtotal string
		discount string
		net      string
		vatAmt   string
		total    string
	}{
		{
			name:     "single discounted line",
			lines:    []PricedLine{{UnitPrice: dec("100.00"), Quantity: 2, DiscountPercentage: dec("10")}},
			vat:      "0.15",
			subtotal: "200", discount: "20", net: "180", vatAmt: "27", total: "207",
		},
		{
			name: "each line uses its own discount",
			lines: []PricedLine{
				{UnitPrice: dec("50"), Quantity: 1, DiscountPercentage: dec("10")},
				{UnitPrice: dec("30"), Quantity: 2, DiscountPercentage: dec("50")},
			},
			vat:      "0.15",
			subtotal: "110", discount: "35", net: "75", vatAmt: "11.25", total: "86.25",
		},
		{
			name:     "no discount zero vat",
			lines:    []PricedLine{{UnitPrice: dec("19.99"), Quantity: 3, DiscountPercentage: decimal.Zero}},
			vat:      "0",
			subtotal: "59.97", discount: "0", net: "59.97", vatAmt: "0", total: "59.97",
		},
		{
			name:     "full discount",
			lines:    []PricedLine{{UnitPrice: dec("10"), Quantity: 1, DiscountPercentage: dec("100")}},
			vat:      "0.15",
			subtotal: "10", discount: "10", net: "0", vatAmt: "0", total: "0",
		},
		{
			name:     "precision carried without rounding",
			lines:    []PricedLine{{UnitPrice: dec("0.333"), Quantity: 3, DiscountPercentage: dec("12.5")}},
			vat:      "0.2",
			subtotal: "0.999", discount: "0.124875", net: "0.874125", vatAmt: "0.174825", total: "1.04895",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines, dec(tt.vat))

			assert.True(t, dec(tt.subtotal).Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, dec(tt.discount).Equal(got.DiscountAmount), "discount %s", got.DiscountAmount)
			assert.True(t, dec(tt.net).Equal(got.NetAmount), "net %s", got.NetAmount)
			assert.True(t, dec(tt.vatAmt).Equal(got.VatAmount), "vat %s", got.VatAmount)
			assert.True(t, dec(tt.total).Equal(got.TotalAmount), "total %s", got.TotalAmount)
		})
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil, dec("0.15"))

	assert.True(t, got.TotalAmount.IsZero())
}
