package summary

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/salestest"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"", ModeDate},
		{"date", ModeDate},
		{"item", ModeItem},
		{"combined", ModeCombined},
		{" Combined ", ModeCombined},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMode("weekly")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestKey_Label(t *testing.T) {
	d := day(2024, time.March, 7)

	assert.Equal(t, "07/03/2024", ByDate(d).Label())
	assert.Equal(t, "Pen", ByItem("Pen").Label())
	assert.Equal(t, "07/03/2024 - Pen", ByDateAndItem(d, "Pen").Label())
}

func TestKey_Comparable(t *testing.T) {
	morning := time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 7, 21, 0, 0, 0, time.FixedZone("X", 3600))

	assert.Equal(t, ByDate(morning), ByDate(evening))
	assert.NotEqual(t, ByItem("Pen"), ByItem("pen"))
	assert.NotEqual(t, ByDate(morning), ByDateAndItem(morning, ""))
}

func TestBuilder_Accumulates(t *testing.T) {
	b := NewBuilder(ModeItem)
	require.NoError(t, b.Add(ByItem("Pen"), dec("10")))
	require.NoError(t, b.Add(ByItem("Pen"), dec("0.1")))
	require.NoError(t, b.Add(ByItem("Pen"), dec("0.2")))

	s := b.Build()

	amount, ok := s.Amount(ByItem("Pen"))
	require.True(t, ok)
	assert.Equal(t, "10.3", amount.String())
	assert.Equal(t, 1, s.Len())

	_, ok = s.Amount(ByItem("Paper"))
	assert.False(t, ok)
}

func TestBuilder_RejectsForeignKeys(t *testing.T) {
	b := NewBuilder(ModeDate)
	assert.Error(t, b.Add(ByItem("Pen"), dec("1")))
	assert.Zero(t, b.Len())
}

func TestSummary_ItemOrdering(t *testing.T) {
	b := NewBuilder(ModeItem)
	for _, item := range []string{"pen", "Paper", "Pen", "apple", "Zebra"} {
		require.NoError(t, b.Add(ByItem(item), dec("1")))
	}

	var got []string
	for k := range b.Build().All() {
		got = append(got, k.Item())
	}

	assert.Equal(t, []string{"apple", "Paper", "Pen", "pen", "Zebra"}, got)
}

func TestSummary_DateOrdering(t *testing.T) {
	b := NewBuilder(ModeDate)
	for _, d := range []time.Time{day(2024, 2, 1), day(2023, 12, 31), day(2024, 1, 15)} {
		require.NoError(t, b.Add(ByDate(d), dec("1")))
	}

	entries := b.Build().Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, day(2023, 12, 31), entries[0].Key.Date())
	assert.Equal(t, day(2024, 1, 15), entries[1].Key.Date())
	assert.Equal(t, day(2024, 2, 1), entries[2].Key.Date())
}

func TestSummary_CombinedOrdering(t *testing.T) {
	b := NewBuilder(ModeCombined)
	keys := []Key{
		ByDateAndItem(day(2024, 1, 2), "apple"),
		ByDateAndItem(day(2024, 1, 1), "pen"),
		ByDateAndItem(day(2024, 1, 1), "Paper"),
		ByDateAndItem(day(2024, 1, 2), "Apple"),
	}
	for _, k := range keys {
		require.NoError(t, b.Add(k, dec("1")))
	}

	var labels []string
	for k := range b.Build().All() {
		labels = append(labels, k.Label())
	}

	assert.Equal(t, []string{
		"01/01/2024 - Paper",
		"01/01/2024 - pen",
		"02/01/2024 - Apple",
		"02/01/2024 - apple",
	}, labels)
}

func TestSummary_Total(t *testing.T) {
	b := NewBuilder(ModeItem)
	require.NoError(t, b.Add(ByItem("a"), dec("0.005")))
	require.NoError(t, b.Add(ByItem("b"), dec("0.005")))
	require.NoError(t, b.Add(ByItem("c"), dec("-1")))

	assert.Equal(t, "-0.99", b.Build().Total().String())
	assert.True(t, Empty(ModeDate).Total().IsZero())
}

func TestSummary_EntriesIsACopy(t *testing.T) {
	b := NewBuilder(ModeItem)
	require.NoError(t, b.Add(ByItem("Pen"), dec("1")))
	s := b.Build()

	entries := s.Entries()
	entries[0].Amount = dec("99")

	amount, _ := s.Amount(ByItem("Pen"))
	assert.Equal(t, "1", amount.String())
}

func TestSummary_GeneratedOrderingHolds(t *testing.T) {
	gen := salestest.NewGeneratorWithSeed(42)

	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			b := NewBuilder(mode)
			for _, sale := range gen.Sales(300) {
				require.NoError(t, b.Add(KeyFor(mode, sale.Date, sale.Item), sale.Amount))
			}
			entries := b.Build().Entries()

			assert.True(t, slices.IsSortedFunc(entries, func(a, b Entry) int {
				return a.Key.Compare(b.Key)
			}))
			for i := 1; i < len(entries); i++ {
				assert.Negative(t, entries[i-1].Key.Compare(entries[i].Key), "keys must be unique")
			}
		})
	}
}
