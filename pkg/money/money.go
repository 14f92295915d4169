// Package money provides currency display and amount parsing for sales
// totals. Arithmetic stays in shopspring/decimal; go-money is used for the
// ISO-4217 aware rendering of rounded display values.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	JPY = "JPY" // Japanese Yen (no decimal places)
)

// DefaultCurrency is used for every report amount.
const DefaultCurrency = USD

var ErrInvalidAmount = errors.New("invalid amount")

// Money is a rounded monetary value used for display.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromDecimal rounds amount half away from zero to the currency's minor
// unit. Unknown currency codes fall back to USD. The minor units must fit in
// an int64; use Display for arbitrary amounts.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currencyCode = USD
		currency = money.GetCurrency(USD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// ToDecimal converts the rounded value back to a decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// Display renders amount in DefaultCurrency, e.g. "$1,234.56". Amounts whose
// minor units do not fit in an int64 are formatted from the decimal directly.
func Display(amount decimal.Decimal) string {
	currency := money.GetCurrency(DefaultCurrency)
	minor := amount.Shift(int32(currency.Fraction)).Round(0).Abs()
	if minor.GreaterThan(maxMinorUnits) {
		return displayDecimal(amount, currency)
	}
	return NewFromDecimal(amount, DefaultCurrency).Display()
}

// displayDecimal mirrors go-money's formatting for values beyond int64.
func displayDecimal(amount decimal.Decimal, currency *money.Currency) string {
	digits := amount.Abs().StringFixed(int32(currency.Fraction))
	intPart, fracPart, _ := strings.Cut(digits, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteString(currency.Thousand)
		}
		grouped.WriteRune(r)
	}
	number := grouped.String()
	if fracPart != "" {
		number += currency.Decimal + fracPart
	}

	out := strings.Replace(currency.Template, "1", number, 1)
	out = strings.Replace(out, "$", currency.Grapheme, 1)
	if amount.IsNegative() {
		out = "-" + out
	}
	return out
}

// ParseAmount parses a sales amount such as "100.50", "-3", "1e3",
// "$1,234.56" or "1.234,56". Currency symbols and spaces are ignored. When
// both ',' and '.' occur, the later one is the decimal separator; a lone ','
// is decimal only when followed by one or two digits.
//
// This is more lenient than a plain float parse: "1,234" reads as 1234 and
// "12,5" as 12.5, so rows with such amounts are summed instead of being
// counted as skipped.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	for _, sym := range []string{"R$", "$", "€", "£", "¥", "₹"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 <= 2 && len(s)-comma-1 > 0 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}
