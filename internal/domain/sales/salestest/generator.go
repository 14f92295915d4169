// Package salestest generates realistic sales exports for tests.
package salestest

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// Generator produces reproducible sales rows using gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a random seed.
func NewGenerator() *Generator {
	return &Generator{faker: gofakeit.New(0)}
}

// NewGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Sale is one generated row.
type Sale struct {
	Date   time.Time
	Item   string
	Amount decimal.Decimal
}

var items = []string{
	"Pen", "pen", "Paper", "Stapler", "Ink Cartridge", "Notebook",
	"Desk Lamp", "Printer", "printer", "Envelopes", "Folder", "Marker",
	"Calculator", "Tape", "Scissors", "Café Latte",
}

// Item returns a product name. Some names differ only in case.
func (g *Generator) Item() string {
	return g.faker.RandomString(items)
}

// Amount returns a value between 0.01 and 5,000.00 with two decimals.
func (g *Generator) Amount() decimal.Decimal {
	return decimal.New(int64(g.faker.IntRange(1, 500000)), -2)
}

// Date returns a calendar date in 2023 or 2024 at midnight UTC.
func (g *Generator) Date() time.Time {
	from := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from.AddDate(0, 0, g.faker.IntRange(0, 730))
}

// Sale generates a single row.
func (g *Generator) Sale() Sale {
	return Sale{Date: g.Date(), Item: g.Item(), Amount: g.Amount()}
}

// Sales generates count rows.
func (g *Generator) Sales(count int) []Sale {
	sales := make([]Sale, count)
	for i := range sales {
		sales[i] = g.Sale()
	}
	return sales
}

// CSV renders sales under the given headers. Headers are written in order
// and mapped by position to date, item and amount; the date is dd/mm/yyyy.
func CSV(delimiter rune, headers [3]string, sales []Sale) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter

	_ = w.Write(headers[:])
	for _, s := range sales {
		_ = w.Write([]string{s.Date.Format("02/01/2006"), s.Item, s.Amount.StringFixed(2)})
	}
	w.Flush()
	return buf.Bytes()
}
