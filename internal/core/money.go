package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Sums are accumulated exactly with decimal
// arithmetic and converted to Money once at the end.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// MoneyFromDecimal rounds d half-up to cents.
//
//	MoneyFromDecimal(20.01)  -> 2001
//	MoneyFromDecimal(10.005) -> 1001
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Mul(hundred).IntPart()}
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats m with two fractional digits, e.g. "12.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the value as a float64 for display purposes only.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// MarshalJSON renders m as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}

// ParseAmount parses a positive decimal amount from user input.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Signs, zero,
// and anything decimal cannot parse are rejected with ErrInvalidAmount.
// Precision beyond cents is kept; rounding happens when totals are reported.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
