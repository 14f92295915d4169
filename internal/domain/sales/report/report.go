// Package report renders summaries into downloadable artifacts: an XLSX
// workbook, a tabular PDF and the series behind the dashboard chart.
package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/dates"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/money"
)

const (
	SheetName = "Sales Summary"

	// CurrencyFormat is the simple USD number format applied to amount cells.
	CurrencyFormat = `"$"#,##0.00_-`

	// ContentTypeXLSX is the media type of the workbook artifact.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	widthPadding = 2
	amountHeader = "Total Sales ($)"
	totalLabel   = "Total"
)

// Header returns the column titles for a mode.
func Header(mode summary.Mode) []string {
	switch mode {
	case summary.ModeCombined:
		return []string{"Date", "Item", amountHeader}
	case summary.ModeItem:
		return []string{"Item", amountHeader}
	default:
		return []string{"Date", amountHeader}
	}
}

// Row is one data row: the key cells followed by the amount.
type Row struct {
	Cells  []string
	Amount decimal.Decimal
}

// Report is the in-memory layout of a summary workbook.
type Report struct {
	Mode   summary.Mode
	Header []string
	Rows   []Row
	Total  decimal.Decimal
	Widths []float64
}

// Build lays out s. The total is the exact sum of the unrounded amounts.
func Build(s *summary.Summary) *Report {
	r := &Report{
		Mode:   s.Mode(),
		Header: Header(s.Mode()),
		Total:  s.Total(),
	}

	for k, amount := range s.All() {
		r.Rows = append(r.Rows, Row{Cells: keyCells(k), Amount: amount})
	}

	r.Widths = r.columnWidths()
	return r
}

// TotalCells returns the label cells of the total row.
func (r *Report) TotalCells() []string {
	if r.Mode == summary.ModeCombined {
		return []string{"", totalLabel}
	}
	return []string{totalLabel}
}

func keyCells(k summary.Key) []string {
	switch k.Mode() {
	case summary.ModeCombined:
		return []string{dates.Display(k.Date()), k.Item()}
	case summary.ModeItem:
		return []string{k.Item()}
	default:
		return []string{dates.Display(k.Date())}
	}
}

// columnWidths sizes each column to its longest rendered value plus padding.
func (r *Report) columnWidths() []float64 {
	widths := make([]int, len(r.Header))
	fit := func(col int, s string) {
		if n := utf8.RuneCountInString(s); n > widths[col] {
			widths[col] = n
		}
	}

	amountCol := len(r.Header) - 1
	for i, h := range r.Header {
		fit(i, h)
	}
	for _, row := range r.Rows {
		for i, c := range row.Cells {
			fit(i, c)
		}
		fit(amountCol, money.Display(row.Amount))
	}
	for i, c := range r.TotalCells() {
		fit(i, c)
	}
	fit(amountCol, money.Display(r.Total))

	out := make([]float64, len(widths))
	for i, w := range widths {
		out[i] = float64(w + widthPadding)
	}
	return out
}

// XLSX serializes the report as a workbook with a single sheet.
func (r *Report) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	amountCol := len(r.Header)

	if err := setRow(f, 1, toValues(r.Header)); err != nil {
		return nil, err
	}
	if err := styleRange(f, 1, 1, amountCol, st.header); err != nil {
		return nil, err
	}

	rowIdx := 2
	for _, row := range r.Rows {
		values := append(toValues(row.Cells), row.Amount.InexactFloat64())
		if err := setRow(f, rowIdx, values); err != nil {
			return nil, err
		}
		if err := styleRange(f, rowIdx, 1, amountCol-1, st.cell); err != nil {
			return nil, err
		}
		if err := styleRange(f, rowIdx, amountCol, amountCol, st.amount); err != nil {
			return nil, err
		}
		rowIdx++
	}

	totalValues := append(toValues(r.TotalCells()), r.Total.InexactFloat64())
	if err := setRow(f, rowIdx, totalValues); err != nil {
		return nil, err
	}
	if err := styleRange(f, rowIdx, 1, amountCol-1, st.totalLabel); err != nil {
		return nil, err
	}
	if err := styleRange(f, rowIdx, amountCol, amountCol, st.totalAmount); err != nil {
		return nil, err
	}

	for i, w := range r.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	header      int
	cell        int
	amount      int
	totalLabel  int
	totalAmount int
}

func newStyles(f *excelize.File) (*styles, error) {
	center := &excelize.Alignment{Horizontal: "center"}
	bold := &excelize.Font{Bold: true}
	currency := CurrencyFormat

	s := &styles{}
	definitions := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{Font: bold, Alignment: center}},
		{&s.cell, &excelize.Style{Alignment: center}},
		{&s.amount, &excelize.Style{Alignment: center, CustomNumFmt: &currency}},
		{&s.totalLabel, &excelize.Style{Font: bold, Alignment: center}},
		{&s.totalAmount, &excelize.Style{Font: bold, Alignment: center, CustomNumFmt: &currency}},
	}

	for _, d := range definitions {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func styleRange(f *excelize.File, row, fromCol, toCol, style int) error {
	if toCol < fromCol {
		return nil
	}
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, from, to, style)
}

func toValues(cells []string) []interface{} {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return values
}
