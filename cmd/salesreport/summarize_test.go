package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/report"
)

const salesCSV = "Sale Date;Product;Total;Store\n" +
	"2024-01-01;Pen;10;A\n" +
	"2024-01-01;pen;5;A\n" +
	"2024-01-02;Paper;n/a;B\n" +
	"2024-01-03;Paper;2,50;B\n"

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSummarize_WritesWorkbookAndPDF(t *testing.T) {
	input := writeCSV(t, "sales.csv", salesCSV)
	dir := t.TempDir()
	out := filepath.Join(dir, "items.xlsx")
	pdf := filepath.Join(dir, "items.pdf")

	stdout, stderr, err := execute(t, "summarize", input, "--mode", "item", "--out", out, "--pdf", pdf)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Paper")
	assert.Contains(t, stdout, "$17.50")
	assert.Contains(t, stderr, "Skipped 1 invalid rows")
	assert.Contains(t, stderr, "Ignoring extra columns: Store")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Item", "Total Sales ($)"}, rows[0])

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestSummarize_JSON(t *testing.T) {
	input := writeCSV(t, "sales.csv", salesCSV)

	stdout, _, err := execute(t, "summarize", input, "--mode", "combined",
		"--from", "01/01/2024", "--to", "02/01/2024", "--json", "--no-write")
	require.NoError(t, err)

	var got jsonSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "combined", string(got.Mode))
	assert.Equal(t, "15", got.Total)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "01-01-2024|Pen", got.Entries[0].Key)
	assert.Equal(t, "01/01/2024 - pen", got.Entries[1].Label)
	assert.Equal(t, 1, got.Advisories.SkippedRows)
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		args []string
	}{
		{"not a csv", "sales.txt", salesCSV, nil},
		{"invalid mode", "sales.csv", salesCSV, []string{"--mode", "weekly"}},
		{"missing columns", "sales.csv", "Date,Item\n01/01/2024,Pen\n", nil},
		{"nothing in range", "sales.csv", salesCSV, []string{"--from", "01/02/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeCSV(t, tt.file, tt.body)
			args := append([]string{"summarize", input, "--no-write"}, tt.args...)

			_, _, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestSummarize_RequiresFile(t *testing.T) {
	_, _, err := execute(t, "summarize")
	assert.Error(t, err)
}
