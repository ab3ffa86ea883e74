// Package money keeps every monetary value at exactly two fractional digits.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const Places = 2

// TaxRate is applied to catalog prices for the after-tax view.
var TaxRate = decimal.RequireFromString("1.09")

// Parse reads a non-negative amount with at most two fractional digits.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	if err := Check(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// Check rejects negative amounts and amounts finer than a cent.
func Check(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("amount %s is negative", d.String())
	}
	if !d.Equal(d.Round(Places)) {
		return fmt.Errorf("amount %s has more than %d fractional digits", d.String(), Places)
	}
	return nil
}

// LineTotal is quantity * unitPrice, rounded to cents.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(Places)
}

// AfterTax applies TaxRate and rounds half away from zero to cents.
func AfterTax(d decimal.Decimal) decimal.Decimal {
	return d.Mul(TaxRate).Round(Places)
}

// Format renders d with exactly two fractional digits, the canonical wire form.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
