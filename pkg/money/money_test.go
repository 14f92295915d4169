package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     int64
	}{
		{"positive cents", 1234, USD, 1234},
		{"zero", 0, USD, 0},
		{"negative cents", -5000, USD, -5000},
		{"euro", 1000, EUR, 1000},
		{"yen (no decimals)", 10000, JPY, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"simple decimal", "12.34", USD, 1234},
		{"rounds half away from zero", "12.345", USD, 1235},
		{"negative rounding", "-12.345", USD, -1235},
		{"many decimals", "0.0049", USD, 0},
		{"yen", "1500", JPY, 1500},
		{"unknown currency falls back to USD", "1.5", "XXXX", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "$0.00"},
		{"10", "$10.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-42.1", "-$42.10"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Display(decimal.RequireFromString(tt.amount)))
		})
	}

	var nilMoney *Money
	assert.Equal(t, "$0.00", nilMoney.Display())
}

func TestDisplay_BeyondInt64Cents(t *testing.T) {
	tests := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.New(1, 17), "$100,000,000,000,000,000.00"},
		{decimal.New(-1, 17), "-$100,000,000,000,000,000.00"},
		{decimal.RequireFromString("123456789012345678901.235"), "$123,456,789,012,345,678,901.24"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Display(tt.amount))
		})
	}

	parsed, err := ParseAmount("1e20")
	require.NoError(t, err)
	assert.Equal(t, "$100,000,000,000,000,000,000.00", Display(parsed))

	// Largest value that still fits goes through go-money unchanged.
	assert.Equal(t, "$92,233,720,368,547,758.07", Display(decimal.New(math.MaxInt64, -2)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "12.50", NewFromDecimal(decimal.RequireFromString("12.5"), USD).String())
	assert.Equal(t, "1500", NewFromDecimal(decimal.NewFromInt(1500), JPY).String())
	assert.True(t, decimal.RequireFromString("12.5").Equal(New(1250, USD).ToDecimal()))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10", "10"},
		{" 10.50 ", "10.5"},
		{"-3", "-3"},
		{"1e3", "1000"},
		{"$1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"12,5", "12.5"},
		{"1,234", "1234"},
		{"€ 99", "99"},
		{"0.1", "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "  ", "bad", "$", ",", "12abc", "1.2.3"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAmount(input)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestParseAmount_KeepsPrecision(t *testing.T) {
	got, err := ParseAmount("0.123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, "0.123456789012345678", got.String())
}

func TestParseAmount_CommaForms(t *testing.T) {
	thousands, err := ParseAmount("1,234")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1234).Equal(thousands))

	decimalComma, err := ParseAmount("12,5")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(decimalComma))
}
