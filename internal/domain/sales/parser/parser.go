// Package parser decodes the data rows of a sales export into SalesRow values.
// It uses gocsv for struct-based unmarshaling over a reader whose header row
// is rewritten to canonical role names, so any resolved column layout decodes
// into the same struct.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/columns"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/sniffer"
)

// Canonical header names written over the resolved columns.
const (
	dateHeader   = "date"
	itemHeader   = "item"
	amountHeader = "amount"
)

// SalesRow is a raw data row with only the three role columns kept.
// Values are untrimmed and may be empty.
type SalesRow struct {
	Date   string `csv:"date"`
	Item   string `csv:"item"`
	Amount string `csv:"amount"`
}

// DecodeResult holds the decoded rows and the number of records the CSV
// reader could not tokenize.
type DecodeResult struct {
	Rows      []SalesRow
	Malformed int
}

// Decode reads every data row of data using the given delimiter. The mapping
// must be complete.
func Decode(data []byte, delimiter rune, mapping columns.Mapping) (*DecodeResult, error) {
	if !mapping.Complete() {
		return nil, &columns.MissingColumnsError{Missing: mapping.Missing()}
	}

	reader := csv.NewReader(bytes.NewReader(sniffer.StripBOM(data)))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	canonical := &canonicalReader{reader: reader, mapping: mapping}

	var rows []SalesRow
	if err := gocsv.UnmarshalCSV(canonical, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, sniffer.ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}

	return &DecodeResult{Rows: rows, Malformed: canonical.malformed}, nil
}

// canonicalReader implements gocsv.CSVReader. It renames the resolved header
// columns and gives every other column a unique placeholder so extra headers
// never collide with the struct tags. Records the underlying reader rejects
// are skipped and counted.
type canonicalReader struct {
	reader     *csv.Reader
	mapping    columns.Mapping
	headerRead bool
	malformed  int
}

func (c *canonicalReader) Read() ([]string, error) {
	for {
		record, err := c.reader.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if c.headerRead && errors.As(err, &parseErr) {
				c.malformed++
				continue
			}
			return nil, err
		}

		if !c.headerRead {
			c.headerRead = true
			return c.canonicalHeader(record), nil
		}
		return record, nil
	}
}

func (c *canonicalReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := c.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func (c *canonicalReader) canonicalHeader(record []string) []string {
	header := make([]string, len(record))
	for i := range record {
		switch i {
		case c.mapping.DateIndex:
			header[i] = dateHeader
		case c.mapping.ItemIndex:
			header[i] = itemHeader
		case c.mapping.AmountIndex:
			header[i] = amountHeader
		default:
			header[i] = "extra:" + strconv.Itoa(i)
		}
	}
	return header
}
