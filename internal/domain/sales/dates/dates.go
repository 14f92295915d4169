// Package dates normalizes free-form sale dates into calendar dates.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts are tried in order and the first successful parse wins. The order
// decides ambiguous numeric dates: day-first slashes come before month-first.
var Layouts = []string{
	"2/1/2006",       // DD/MM/YYYY
	"2006-1-2",       // YYYY-MM-DD
	"1/2/2006",       // MM/DD/YYYY
	"2-1-2006",       // DD-MM-YYYY
	"2006/1/2",       // YYYY/MM/DD
	"2006.1.2",       // YYYY.MM.DD
	"2 Jan 2006",     // DD Mon YYYY
	"2 January 2006", // DD Month YYYY
}

// dayFirstLayouts cover dotted and two-digit-year numeric dates, which the
// free-text fallback would otherwise read month-first or reject.
var dayFirstLayouts = []string{
	"2.1.2006", // DD.MM.YYYY
	"2.1.06",   // DD.MM.YY
	"2-1-06",   // DD-MM-YY
	"2/1/06",   // DD/MM/YY
}

const (
	// KeyLayout is the dd-mm-yyyy encoding used by serialized summaries.
	KeyLayout = "02-01-2006"
	// DisplayLayout is the dd/mm/yyyy form used in reports and charts.
	DisplayLayout = "02/01/2006"
)

var ErrInvalidRange = errors.New("from date is after to date")

// UnrecognizedDateFormatError is returned when a string matches none of the
// layouts and the free-text fallback also fails.
type UnrecognizedDateFormatError struct {
	Value string
}

func (e *UnrecognizedDateFormatError) Error() string {
	return fmt.Sprintf("date %q is not in a recognized format", e.Value)
}

// Normalize parses s into a calendar date at midnight UTC.
func Normalize(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &UnrecognizedDateFormatError{Value: s}
	}

	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(t), nil
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(t), nil
		}
	}

	// Free-text fallback prefers day-before-month for ambiguous input.
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, &UnrecognizedDateFormatError{Value: s}
	}
	return Of(t), nil
}

// Of truncates t to its calendar date at midnight UTC.
func Of(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatKey renders a date as dd-mm-yyyy.
func FormatKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// ParseKey strictly parses a dd-mm-yyyy key.
func ParseKey(s string) (time.Time, error) {
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Of(t), nil
}

// Display renders a date as dd/mm/yyyy.
func Display(t time.Time) string {
	return t.Format(DisplayLayout)
}

// Range is an inclusive date filter. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange normalizes the optional bound strings. Empty strings leave the
// bound open; anything else must parse or the call fails.
func ParseRange(from, to string) (Range, error) {
	var r Range
	if strings.TrimSpace(from) != "" {
		d, err := Normalize(from)
		if err != nil {
			return Range{}, err
		}
		r.From = d
	}
	if strings.TrimSpace(to) != "" {
		d, err := Normalize(to)
		if err != nil {
			return Range{}, err
		}
		r.To = d
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Contains reports whether d lies within the inclusive bounds.
func (r Range) Contains(d time.Time) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.From.IsZero() && r.To.IsZero()
}
