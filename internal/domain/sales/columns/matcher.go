// Package columns maps arbitrary header rows onto the Date, Item and Amount
// roles using fuzzy, case-insensitive matching against synonym lists.
package columns

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SimilarityCutoff is the minimum Similarity a header must reach to be
// accepted for a synonym. The comparison is inclusive.
const SimilarityCutoff = 0.8

// Role identifies a semantic column of a sales export.
type Role int

const (
	RoleDate Role = iota
	RoleItem
	RoleAmount
)

// Roles lists every role in matching order.
var Roles = []Role{RoleDate, RoleItem, RoleAmount}

func (r Role) String() string {
	switch r {
	case RoleDate:
		return "Date"
	case RoleItem:
		return "Item"
	case RoleAmount:
		return "Amount"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Synonyms holds the accepted header spellings per role, highest priority first.
type Synonyms struct {
	Date   []string
	Item   []string
	Amount []string
}

// DefaultSynonyms are the header spellings recognised out of the box.
var DefaultSynonyms = Synonyms{
	Date:   []string{"date", "Date", "Date of Sale", "sale_date"},
	Item:   []string{"item", "Item", "product", "Product Name"},
	Amount: []string{"amount", "Amount", "total", "Total Sales"},
}

func (s Synonyms) forRole(r Role) []string {
	switch r {
	case RoleDate:
		return s.Date
	case RoleItem:
		return s.Item
	case RoleAmount:
		return s.Amount
	}
	return nil
}

// Mapping is the result of matching a header row. Indices are -1 when a
// role could not be resolved.
type Mapping struct {
	Headers      []string
	DateIndex    int
	ItemIndex    int
	AmountIndex  int
	ExtraColumns []string
}

// Index returns the header index claimed by the role.
func (m Mapping) Index(r Role) int {
	switch r {
	case RoleDate:
		return m.DateIndex
	case RoleItem:
		return m.ItemIndex
	case RoleAmount:
		return m.AmountIndex
	}
	return -1
}

// Column returns the raw header name claimed by the role, or "" when unresolved.
func (m Mapping) Column(r Role) string {
	idx := m.Index(r)
	if idx < 0 || idx >= len(m.Headers) {
		return ""
	}
	return m.Headers[idx]
}

// Missing lists the unresolved roles in matching order.
func (m Mapping) Missing() []Role {
	var missing []Role
	for _, r := range Roles {
		if m.Index(r) < 0 {
			missing = append(missing, r)
		}
	}
	return missing
}

// Complete reports whether every role was resolved.
func (m Mapping) Complete() bool {
	return len(m.Missing()) == 0
}

// MissingColumnsError is returned when one or more roles have no matching header.
type MissingColumnsError struct {
	Missing []Role
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		names[i] = r.String()
	}
	return "missing required columns: " + strings.Join(names, ", ")
}

// Has reports whether the role is among the missing ones.
func (e *MissingColumnsError) Has(r Role) bool {
	for _, m := range e.Missing {
		if m == r {
			return true
		}
	}
	return false
}

// Matcher resolves header rows against a fixed synonym set. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	synonyms Synonyms
	cutoff   float64
}

// NewMatcher creates a matcher for the given synonyms using SimilarityCutoff.
func NewMatcher(synonyms Synonyms) *Matcher {
	return &Matcher{synonyms: synonyms, cutoff: SimilarityCutoff}
}

// Match maps headers onto roles. For each role the synonyms are tried in
// priority order; the first synonym with any header at or above the cutoff
// wins, taking its best-scoring header (lowest index on ties). A header
// claimed by one role is never reconsidered for a later role.
func (m *Matcher) Match(headers []string) Mapping {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = normalize(h)
	}

	claimed := make([]bool, len(headers))
	mapping := Mapping{
		Headers:     append([]string(nil), headers...),
		DateIndex:   -1,
		ItemIndex:   -1,
		AmountIndex: -1,
	}

	for _, role := range Roles {
		idx := m.resolve(cleaned, claimed, m.synonyms.forRole(role))
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		switch role {
		case RoleDate:
			mapping.DateIndex = idx
		case RoleItem:
			mapping.ItemIndex = idx
		case RoleAmount:
			mapping.AmountIndex = idx
		}
	}

	for i, h := range headers {
		if !claimed[i] {
			mapping.ExtraColumns = append(mapping.ExtraColumns, h)
		}
	}

	return mapping
}

// Resolve matches headers and fails with *MissingColumnsError when any role
// stays unresolved.
func (m *Matcher) Resolve(headers []string) (Mapping, error) {
	mapping := m.Match(headers)
	if missing := mapping.Missing(); len(missing) > 0 {
		return mapping, &MissingColumnsError{Missing: missing}
	}
	return mapping, nil
}

func (m *Matcher) resolve(cleaned []string, claimed []bool, synonyms []string) int {
	for _, candidate := range synonyms {
		candidate = normalize(candidate)
		best, bestScore := -1, 0.0
		for i, header := range cleaned {
			if claimed[i] {
				continue
			}
			score := Similarity(candidate, header)
			if score >= m.cutoff && score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			return best
		}
	}
	return -1
}

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) measured in
// runes. Two empty strings are identical; an empty string against a non-empty
// one scores 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
