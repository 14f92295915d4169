// Package summary holds the aggregated result of a sales ingestion: a
// deterministically ordered mapping from aggregation key to total amount,
// plus the flat string-keyed codec used to carry it outside the engine.
package summary

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/dates"
)

// Mode selects how sales are grouped.
type Mode string

const (
	ModeDate     Mode = "date"
	ModeItem     Mode = "item"
	ModeCombined Mode = "combined"
)

// Modes lists the supported grouping modes.
var Modes = []Mode{ModeDate, ModeItem, ModeCombined}

var ErrInvalidMode = errors.New("invalid grouping mode")

// ParseMode validates a mode string. An empty string selects ModeDate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDate:
		return ModeDate, nil
	case ModeItem:
		return ModeItem, nil
	case ModeCombined:
		return ModeCombined, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Key is an aggregation key. Exactly one variant is active, chosen by Mode.
// The date is held as civil fields so keys stay comparable with ==.
type Key struct {
	mode  Mode
	year  int
	month time.Month
	day   int
	item  string
}

// ByDate builds a date-mode key.
func ByDate(d time.Time) Key {
	y, m, day := d.Date()
	return Key{mode: ModeDate, year: y, month: m, day: day}
}

// ByItem builds an item-mode key.
func ByItem(item string) Key {
	return Key{mode: ModeItem, item: item}
}

// ByDateAndItem builds a combined-mode key.
func ByDateAndItem(d time.Time, item string) Key {
	y, m, day := d.Date()
	return Key{mode: ModeCombined, year: y, month: m, day: day, item: item}
}

// KeyFor builds the key of the given mode for a parsed row.
func KeyFor(mode Mode, d time.Time, item string) Key {
	switch mode {
	case ModeItem:
		return ByItem(item)
	case ModeCombined:
		return ByDateAndItem(d, item)
	default:
		return ByDate(d)
	}
}

func (k Key) Mode() Mode { return k.mode }

// Date returns the calendar date at midnight UTC. It is the zero time for item keys.
func (k Key) Date() time.Time {
	if k.mode == ModeItem {
		return time.Time{}
	}
	return time.Date(k.year, k.month, k.day, 0, 0, 0, 0, time.UTC)
}

// Item returns the item name. It is empty for date keys.
func (k Key) Item() string { return k.item }

// Label is the human readable form used in reports and charts.
func (k Key) Label() string {
	switch k.mode {
	case ModeItem:
		return k.item
	case ModeCombined:
		return dates.Display(k.Date()) + " - " + k.item
	default:
		return dates.Display(k.Date())
	}
}

func (k Key) String() string { return k.Label() }

// Compare orders keys of the same mode: dates ascending, then items
// case-insensitively with an ordinal tie-break.
func (k Key) Compare(o Key) int {
	if k.mode != ModeItem {
		if c := cmp.Compare(k.year, o.year); c != 0 {
			return c
		}
		if c := cmp.Compare(k.month, o.month); c != 0 {
			return c
		}
		if c := cmp.Compare(k.day, o.day); c != 0 {
			return c
		}
	}
	return CompareItems(k.item, o.item)
}

// CompareItems compares item names case-insensitively, falling back to
// ordinal comparison so distinct names never compare equal.
func CompareItems(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Entry is one key with its accumulated amount.
type Entry struct {
	Key    Key
	Amount decimal.Decimal
}

// Summary is an immutable, sorted mapping from Key to amount. Build one with
// a Builder or Decode.
type Summary struct {
	mode    Mode
	entries []Entry
	index   map[Key]int
}

// Empty returns a summary with no entries.
func Empty(mode Mode) *Summary {
	return &Summary{mode: mode, index: map[Key]int{}}
}

func (s *Summary) Mode() Mode { return s.mode }

func (s *Summary) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in sorted order.
func (s *Summary) Entries() []Entry {
	return slices.Clone(s.entries)
}

// All iterates the entries in sorted order.
func (s *Summary) All() iter.Seq2[Key, decimal.Decimal] {
	return func(yield func(Key, decimal.Decimal) bool) {
		for _, e := range s.entries {
			if !yield(e.Key, e.Amount) {
				return
			}
		}
	}
}

// Amount returns the total for k.
func (s *Summary) Amount(k Key) (decimal.Decimal, bool) {
	i, ok := s.index[k]
	if !ok {
		return decimal.Zero, false
	}
	return s.entries[i].Amount, true
}

// Total is the exact sum of every amount.
func (s *Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Equal reports whether both summaries have the same mode, keys and amounts.
// Amounts compare numerically, so 10 and 10.00 are equal.
func (s *Summary) Equal(o *Summary) bool {
	if s.mode != o.mode || len(s.entries) != len(o.entries) {
		return false
	}
	for i, e := range s.entries {
		oe := o.entries[i]
		if e.Key != oe.Key || !e.Amount.Equal(oe.Amount) {
			return false
		}
	}
	return true
}

// Builder accumulates amounts per key. Repeated keys add up.
type Builder struct {
	mode   Mode
	totals map[Key]decimal.Decimal
}

func NewBuilder(mode Mode) *Builder {
	return &Builder{mode: mode, totals: make(map[Key]decimal.Decimal)}
}

// Add folds amount into the bucket for k. Keys of another mode are rejected.
func (b *Builder) Add(k Key, amount decimal.Decimal) error {
	if k.mode != b.mode {
		return fmt.Errorf("key of mode %q added to %q summary", k.mode, b.mode)
	}
	b.totals[k] = b.totals[k].Add(amount)
	return nil
}

// Len returns the number of distinct keys seen so far.
func (b *Builder) Len() int { return len(b.totals) }

// Build returns the sorted summary. The builder may keep being used.
func (b *Builder) Build() *Summary {
	entries := make([]Entry, 0, len(b.totals))
	for k, amount := range b.totals {
		entries = append(entries, Entry{Key: k, Amount: amount})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.Key.Compare(b.Key)
	})

	index := make(map[Key]int, len(entries))
	for i, e := range entries {
		index[e.Key] = i
	}

	return &Summary{mode: b.mode, entries: entries, index: index}
}
