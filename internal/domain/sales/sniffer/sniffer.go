// Package sniffer provides automatic detection of delimited sales exports.
// It identifies the field delimiter, reads the header row and generates a
// fingerprint so repeated exports from the same source can be recognised.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SampleSize is the number of leading bytes inspected for delimiter detection.
const SampleSize = 2048

// DefaultDelimiter is returned when detection is inconclusive.
const DefaultDelimiter = ','

// minConsistency is the share of sample records that must agree on the
// field count before a delimiter is accepted.
const minConsistency = 0.5

// Candidate delimiters in preference order. Ties resolve to the earlier entry.
var candidates = []rune{',', ';', '\t'}

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find header row")
)

// FileConfig holds the detected configuration for a sales export
type FileConfig struct {
	Delimiter   rune     // The field delimiter (',', ';', '\t')
	Headers     []string // Header row exactly as read
	Fingerprint string   // SHA256 hash of normalized headers
}

// DetectConfig sniffs the delimiter from the leading sample and reads the header row.
func DetectConfig(data []byte) (*FileConfig, error) {
	data = StripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	delimiter := Sniff(data)

	reader := newReader(bytes.NewReader(data), delimiter)
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeadersFound
	}
	if err != nil {
		return nil, err
	}

	return &FileConfig{
		Delimiter:   delimiter,
		Headers:     headers,
		Fingerprint: generateFingerprint(headers),
	}, nil
}

// Sniff takes the first SampleSize bytes of data and detects the delimiter.
// A trailing partial line is discarded when the sample is truncated.
func Sniff(data []byte) rune {
	sample := data
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
		if idx := bytes.LastIndexByte(sample, '\n'); idx > 0 {
			sample = sample[:idx]
		}
		for len(sample) > 0 && !utf8.Valid(sample) {
			sample = sample[:len(sample)-1]
		}
	}
	return DetectDelimiter(string(sample))
}

// DetectDelimiter picks the candidate delimiter whose field counts are most
// consistent across the sample records. It never fails: an inconclusive
// sample yields DefaultDelimiter.
func DetectDelimiter(sample string) rune {
	sample = strings.TrimPrefix(sample, "\uFEFF")

	best := DefaultDelimiter
	bestScore := 0.0
	bestFields := 0

	for _, d := range candidates {
		score, fields := consistency(sample, d)
		if score < minConsistency || fields < 2 {
			continue
		}
		if score > bestScore || (score == bestScore && fields > bestFields) {
			best = d
			bestScore = score
			bestFields = fields
		}
	}

	return best
}

// consistency returns the share of records having the most common field
// count, together with that field count.
func consistency(sample string, delimiter rune) (float64, int) {
	reader := newReader(strings.NewReader(sample), delimiter)

	counts := make(map[int]int)
	total := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		counts[len(record)]++
		total++
	}

	if total == 0 {
		return 0, 0
	}

	modeFields, modeCount := 0, 0
	for fields, n := range counts {
		if n > modeCount || (n == modeCount && fields > modeFields) {
			modeFields, modeCount = fields, n
		}
	}

	return float64(modeCount) / float64(total), modeFields
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// generateFingerprint creates a stable hash from header names
func generateFingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	joined := strings.Join(normalized, "|")
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}
