package summary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/dates"
)

// separator joins the date and item of a combined key.
const separator = "|"

// Serialized is the flat string-keyed form of a Summary. Amounts marshal to
// JSON as decimal strings, so nothing is rounded in transit.
type Serialized map[string]decimal.Decimal

// DecodeError is returned when a serialized key does not follow the grammar
// of the requested mode.
type DecodeError struct {
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed summary key %q: %s", e.Key, e.Reason)
}

// EncodeKey renders k as dd-mm-yyyy, dd-mm-yyyy|item or the bare item.
func EncodeKey(k Key) string {
	switch k.mode {
	case ModeItem:
		return k.item
	case ModeCombined:
		return dates.FormatKey(k.Date()) + separator + k.item
	default:
		return dates.FormatKey(k.Date())
	}
}

// DecodeKey parses a serialized key for the given mode.
func DecodeKey(raw string, mode Mode) (Key, error) {
	switch mode {
	case ModeItem:
		return ByItem(raw), nil
	case ModeCombined:
		datePart, item, ok := strings.Cut(raw, separator)
		if !ok {
			return Key{}, &DecodeError{Key: raw, Reason: "missing " + separator + " separator"}
		}
		d, err := dates.ParseKey(datePart)
		if err != nil {
			return Key{}, &DecodeError{Key: raw, Reason: "date is not dd-mm-yyyy"}
		}
		return ByDateAndItem(d, item), nil
	case ModeDate:
		d, err := dates.ParseKey(raw)
		if err != nil {
			return Key{}, &DecodeError{Key: raw, Reason: "date is not dd-mm-yyyy"}
		}
		return ByDate(d), nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}

// Encode flattens s into its serialized form.
func Encode(s *Summary) Serialized {
	out := make(Serialized, len(s.entries))
	for _, e := range s.entries {
		out[EncodeKey(e.Key)] = e.Amount
	}
	return out
}

// Decode rebuilds a sorted Summary from its serialized form.
func Decode(ser Serialized, mode Mode) (*Summary, error) {
	if _, err := ParseMode(string(mode)); err != nil || mode == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	b := NewBuilder(mode)
	for raw, amount := range ser {
		k, err := DecodeKey(raw, mode)
		if err != nil {
			return nil, err
		}
		if err := b.Add(k, amount); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
