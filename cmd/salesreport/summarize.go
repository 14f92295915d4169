package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/report"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/service"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/money"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	amountStyle  = cellStyle.Align(lipgloss.Right)
)

type summarizeOptions struct {
	mode    string
	from    string
	to      string
	out     string
	pdf     string
	asJSON  bool
	noWrite bool
}

func summarizeCmd() *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize <file.csv>",
		Short: "Summarize a sales CSV file",
		Long: `Summarize detects the delimiter and the date, item and amount columns of a
sales CSV file, totals the amounts per group and writes an XLSX workbook.

Dates may be given as dd/mm/yyyy, yyyy-mm-dd and most other common layouts.`,
		Example: `  salesreport summarize sales.csv --mode item
  salesreport summarize sales.csv --mode combined --from 01/01/2024 --to 31/01/2024 --out jan.xlsx --pdf jan.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(summary.ModeDate), "grouping mode (date, item, combined)")
	cmd.Flags().StringVar(&opts.from, "from", "", "first date to include (inclusive)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last date to include (inclusive)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "workbook path (default: sales_summary_<mode>.xlsx)")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "also write a PDF table to this path")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&opts.noWrite, "no-write", false, "print the summary without writing a workbook")

	return cmd
}

func runSummarize(cmd *cobra.Command, path string, opts *summarizeOptions) error {
	ctx := cmd.Context()

	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return errors.New("only .csv files are supported")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	svc := service.NewSummaryService(slog.Default())
	result, err := svc.Ingest(ctx, service.IngestRequest{
		Data:     data,
		Filename: filepath.Base(path),
		Mode:     opts.mode,
		From:     opts.from,
		To:       opts.to,
	})
	if errors.Is(err, service.ErrEmptyResult) {
		printAdvisories(cmd.ErrOrStderr(), result.Advisories)
		return errors.New("no sales data found for the selected date range")
	}
	if err != nil {
		return err
	}

	printAdvisories(cmd.ErrOrStderr(), result.Advisories)

	if opts.asJSON {
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		printTable(cmd.OutOrStdout(), result.Summary)
	}

	if opts.noWrite {
		return nil
	}

	out := opts.out
	if out == "" {
		out = report.FileName(result.Summary.Mode())
	}
	if err := writeArtifact(cmd, svc, result.Summary, service.FormatXLSX, out); err != nil {
		return err
	}
	if opts.pdf != "" {
		if err := writeArtifact(cmd, svc, result.Summary, service.FormatPDF, opts.pdf); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(cmd *cobra.Command, svc *service.SummaryService, s *summary.Summary, format service.Format, path string) error {
	artifact, err := svc.BuildReport(cmd.Context(), s, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), titleStyle.Render("Wrote "+path))
	return nil
}

func printAdvisories(w io.Writer, a service.Advisories) {
	if a.SkippedRows > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("Skipped %d invalid rows", a.SkippedRows)))
	}
	if len(a.ExtraColumns) > 0 {
		fmt.Fprintln(w, warningStyle.Render("Ignoring extra columns: "+strings.Join(a.ExtraColumns, ", ")))
	}
}

func printTable(w io.Writer, s *summary.Summary) {
	r := report.Build(s)
	amountCol := len(r.Header) - 1

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(r.Header...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == amountCol:
				return amountStyle
			default:
				return cellStyle
			}
		})

	for _, row := range r.Rows {
		t.Row(append(row.Cells, money.Display(row.Amount))...)
	}
	t.Row(append(r.TotalCells(), money.Display(r.Total))...)

	fmt.Fprintln(w, t.Render())
}

type jsonEntry struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type jsonSummary struct {
	Mode       summary.Mode       `json:"mode"`
	Entries    []jsonEntry        `json:"entries"`
	Total      string             `json:"total"`
	Advisories service.Advisories `json:"advisories"`
}

func printJSON(w io.Writer, result *service.IngestResult) error {
	out := jsonSummary{
		Mode:       result.Summary.Mode(),
		Entries:    make([]jsonEntry, 0, result.Summary.Len()),
		Total:      result.Total.String(),
		Advisories: result.Advisories,
	}
	for k, amount := range result.Summary.All() {
		out.Entries = append(out.Entries, jsonEntry{
			Key:    summary.EncodeKey(k),
			Label:  k.Label(),
			Amount: amount.String(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
