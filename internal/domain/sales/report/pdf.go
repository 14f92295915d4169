package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/money"
)

// ContentTypePDF is the media type of the PDF artifact.
const ContentTypePDF = "application/pdf"

// printable width of an A4 portrait page with 10mm margins
const pageWidth = 190.0

func pdfColumnWidths(mode summary.Mode) []float64 {
	switch mode {
	case summary.ModeCombined:
		return []float64{45, 95, 50}
	default:
		return []float64{130, 60}
	}
}

// BuildPDF renders s as a single table with a title, the covered range and
// a bold total row.
func BuildPDF(s *summary.Summary, title string) ([]byte, error) {
	r := Build(s)
	series := NewSeries(s)
	widths := pdfColumnWidths(s.Mode())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(pageWidth, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pageWidth, 6, tr(fmt.Sprintf("Period: %s", series.Range)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range r.Header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range r.Rows {
		for i, c := range row.Cells {
			pdf.CellFormat(widths[i], 6, fitCell(pdf, tr(c), widths[i]), "1", 0, "C", false, 0, "")
		}
		pdf.CellFormat(widths[len(widths)-1], 6, money.Display(row.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	for i, c := range r.TotalCells() {
		pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(widths[len(widths)-1], 7, money.Display(r.Total), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

const ellipsis = "..."

// fitCell shortens text with an ellipsis until it fits a cell of width w in
// the current font. text is already translated to the single-byte PDF
// encoding, so it is cut bytewise.
func fitCell(pdf *gofpdf.Fpdf, text string, w float64) string {
	avail := w - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(text) <= avail {
		return text
	}
	for n := len(text) - 1; n > 0; n-- {
		if cut := text[:n] + ellipsis; pdf.GetStringWidth(cut) <= avail {
			return cut
		}
	}
	return ellipsis
}
