// Package aggregator folds decoded sales rows into a Summary.
package aggregator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/dates"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/parser"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/money"
)

// Outcome classifies what happened to a single row.
type Outcome int

const (
	Accepted Outcome = iota
	SkipMissingField
	SkipInvalidAmount
	SkipInvalidDate
	OutOfRange
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case SkipMissingField:
		return "missing_field"
	case SkipInvalidAmount:
		return "invalid_amount"
	case SkipInvalidDate:
		return "invalid_date"
	case OutOfRange:
		return "out_of_range"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Skipped reports whether the outcome counts as an invalid row.
func (o Outcome) Skipped() bool {
	return o == SkipMissingField || o == SkipInvalidAmount || o == SkipInvalidDate
}

var ErrMissingField = errors.New("row is missing a required field")

// InvalidAmountError describes an amount that is not a number.
type InvalidAmountError struct {
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("amount %q is not a valid number", e.Value)
}

// RowResult is the per-row parse result. Err is set for skipped rows.
type RowResult struct {
	Outcome Outcome
	Date    time.Time
	Item    string
	Amount  decimal.Decimal
	Err     error
}

// Options controls grouping and filtering.
type Options struct {
	Mode  summary.Mode
	Range dates.Range
}

// Result is the aggregated summary plus the row accounting.
type Result struct {
	Summary    *summary.Summary
	Rows       int
	Accepted   int
	OutOfRange int
	Skipped    map[Outcome]int
}

// SkippedRows is the total number of invalid rows.
func (r *Result) SkippedRows() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// ParseRow validates one row. Fields are trimmed and an empty field counts as
// missing; the amount is checked before the date.
func ParseRow(row parser.SalesRow, rng dates.Range) RowResult {
	amountRaw := strings.TrimSpace(row.Amount)
	dateRaw := strings.TrimSpace(row.Date)
	item := strings.TrimSpace(row.Item)

	if amountRaw == "" || dateRaw == "" || item == "" {
		return RowResult{Outcome: SkipMissingField, Err: ErrMissingField}
	}

	amount, err := money.ParseAmount(amountRaw)
	if err != nil {
		return RowResult{Outcome: SkipInvalidAmount, Err: &InvalidAmountError{Value: amountRaw}}
	}

	d, err := dates.Normalize(dateRaw)
	if err != nil {
		return RowResult{Outcome: SkipInvalidDate, Err: err}
	}

	if !rng.Contains(d) {
		return RowResult{Outcome: OutOfRange, Date: d, Item: item, Amount: amount}
	}

	return RowResult{Outcome: Accepted, Date: d, Item: item, Amount: amount}
}

// Aggregate folds rows into a summary sorted for opts.Mode. Bad rows are
// counted, never returned as errors.
func Aggregate(rows []parser.SalesRow, opts Options) (*Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = summary.ModeDate
	}
	if _, err := summary.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	b := summary.NewBuilder(mode)
	result := &Result{Rows: len(rows), Skipped: make(map[Outcome]int)}

	for _, row := range rows {
		r := ParseRow(row, opts.Range)
		switch {
		case r.Outcome.Skipped():
			result.Skipped[r.Outcome]++
		case r.Outcome == OutOfRange:
			result.OutOfRange++
		default:
			if err := b.Add(summary.KeyFor(mode, r.Date, r.Item), r.Amount); err != nil {
				return nil, err
			}
			result.Accepted++
		}
	}

	result.Summary = b.Build()
	return result, nil
}
