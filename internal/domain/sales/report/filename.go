package report

import (
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
)

// FileName is the download name of the workbook for a mode.
func FileName(mode summary.Mode) string {
	return downloadName(mode, ".xlsx")
}

// PDFFileName is the download name of the PDF for a mode.
func PDFFileName(mode summary.Mode) string {
	return downloadName(mode, ".pdf")
}

// HistoryFileName names a workbook rebuilt from a past upload, e.g.
// "march.csv" becomes "march_summary.xlsx".
func HistoryFileName(uploaded string) string {
	base := filepath.Base(strings.ReplaceAll(uploaded, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		base = "sales"
	}
	return base + "_summary.xlsx"
}

func downloadName(mode summary.Mode, ext string) string {
	m, err := summary.ParseMode(string(mode))
	if err != nil {
		return "sales_summary" + ext
	}
	return "sales_summary_" + string(m) + ext
}
