package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type PricedLine struct {
	UnitPrice          decimal.Decimal
	Quantity           int
	DiscountPercentage decimal.Decimal
}

type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
	VatAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ComputeTotals discounts every line by its own percentage and applies VAT to the net.
// No rounding happens here; decimal precision is carried through to the stored amounts.
func ComputeTotals(lines []PricedLine, vatRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero

	for _, line := range lines {
		lineSubtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		discount = discount.Add(lineSubtotal.Mul(line.DiscountPercentage).Div(hundred))
	}

	net := subtotal.Sub(discount)
	vat := net.Mul(vatRate)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		NetAmount:      net,
		VatAmount:      vat,
		TotalAmount:    net.Add(vat),
	}
}
