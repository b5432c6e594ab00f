package service

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

const VATRateEnv = "VAT_RATE"

var DefaultVATRate = decimal.RequireFromString("0.15")

// VATRateFunc is consulted on every checkout so the rate can change without a restart.
type VATRateFunc func() decimal.Decimal

// EnvVATRate reads VAT_RATE as a fraction (0.15 = 15%).
// Missing, unparseable or negative values fall back to DefaultVATRate.
func EnvVATRate() decimal.Decimal {
	raw, ok := os.LookupEnv(VATRateEnv)
	if !ok {
		return DefaultVATRate
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || rate.IsNegative() {
		return DefaultVATRate
	}

	return rate
}

func FixedVATRate(rate decimal.Decimal) VATRateFunc {
	return func() decimal.Decimal { return rate }
}
