package report

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
)

// allData is the range label of an empty series.
const allData = "All data"

// Series is the data behind the dashboard chart.
type Series struct {
	Labels []string
	Values []decimal.Decimal
	Range  string
}

// NewSeries lists the summary entries as chart points in summary order.
// Range is "<first> to <last>", or "All data" when there are no points.
func NewSeries(s *summary.Summary) Series {
	series := Series{
		Labels: make([]string, 0, s.Len()),
		Values: make([]decimal.Decimal, 0, s.Len()),
		Range:  allData,
	}
	for k, amount := range s.All() {
		series.Labels = append(series.Labels, k.Label())
		series.Values = append(series.Values, amount)
	}
	if n := len(series.Labels); n > 0 {
		series.Range = series.Labels[0] + " to " + series.Labels[n-1]
	}
	return series
}

// Floats returns the values as float64 for chart libraries.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v.InexactFloat64()
	}
	return out
}
