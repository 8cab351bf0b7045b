package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidTaxRate = errors.New("tax rate must be between 0 and 1")

// TaxRate is the fraction of the subtotal charged as tax.
type TaxRate struct {
	rate decimal.Decimal
}

// DefaultTaxRate is the outlet's 10% sales tax.
var DefaultTaxRate = TaxRate{rate: decimal.RequireFromString("0.10")}

// ParseTaxRate reads a decimal fraction such as "0.10" or "0.11".
func ParseTaxRate(raw string) (TaxRate, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return TaxRate{}, fmt.Errorf("%w: %q", ErrInvalidTaxRate, raw)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return TaxRate{}, fmt.Errorf("%w: %q", ErrInvalidTaxRate, raw)
	}
	return TaxRate{rate: d}, nil
}

// Apply returns the tax owed on subtotal, rounded half-up to a whole currency unit.
func (r TaxRate) Apply(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(r.rate).Round(0).IntPart()
}

func (r TaxRate) String() string {
	return r.rate.String()
}

// PricedLine is the pricing view of a line item.
type PricedLine struct {
	UnitPrice int64
	Quantity  int
}

// Totals is the computed money summary of a set of lines.
type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// ComputeTotals sums unit price times quantity, then applies rate once to the
// subtotal. An empty input yields zero totals.
func ComputeTotals(lines []PricedLine, rate TaxRate) Totals {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}
	tax := rate.Apply(subtotal)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount as Indonesian rupiah without fractional digits, e.g. "Rp 100.100".
func FormatIDR(amount int64) string {
	if amount < 0 {
		return "-Rp " + idrPrinter.Sprintf("%d", -amount)
	}
	return "Rp " + idrPrinter.Sprintf("%d", amount)
}
