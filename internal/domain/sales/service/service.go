// Package service orchestrates a sales ingestion: delimiter and header
// detection, column matching, row decoding, aggregation and report output.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/aggregator"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/columns"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/dates"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/history"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/parser"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/sniffer"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/metrics"
)

const tracerName = "github.com/FACorreiaa/sales-summary/internal/domain/sales/service"

// ErrEmptyResult is returned together with a valid, empty result when no
// row qualified.
var ErrEmptyResult = errors.New("no sales data found for the selected date range")

// Recorder persists uploads. history.Repository satisfies it.
type Recorder interface {
	Record(ctx context.Context, upload *history.Upload) error
}

// IngestRequest is one upload to summarize.
type IngestRequest struct {
	Data     []byte
	Filename string
	Owner    string
	Mode     string
	From     string
	To       string
}

// Advisories are non-fatal findings returned with a successful result.
type Advisories struct {
	ExtraColumns []string `json:"extra_columns"`
	SkippedRows  int      `json:"skipped_rows"`
	Empty        bool     `json:"empty"`
}

// IngestResult is the outcome of an ingestion.
type IngestResult struct {
	Summary     *summary.Summary
	Serialized  summary.Serialized
	Advisories  Advisories
	Delimiter   rune
	Fingerprint string
	Total       decimal.Decimal
	Rows        int
	OutOfRange  int
	UploadID    uuid.UUID
}

// SummaryService is the entry point of the sales engine.
type SummaryService struct {
	matcher *columns.Matcher
	history Recorder // Optional: nil if history is disabled
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewSummaryService creates a service using the default synonym lists.
func NewSummaryService(logger *slog.Logger) *SummaryService {
	return &SummaryService{
		matcher: columns.NewMatcher(columns.DefaultSynonyms),
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
	}
}

// WithHistory records every non-empty ingestion.
func (s *SummaryService) WithHistory(recorder Recorder) *SummaryService {
	s.history = recorder
	return s
}

// WithMetrics adds Prometheus instrumentation.
func (s *SummaryService) WithMetrics(m *metrics.Metrics) *SummaryService {
	s.metrics = m
	return s
}

// WithSynonyms replaces the header synonym lists.
func (s *SummaryService) WithSynonyms(synonyms columns.Synonyms) *SummaryService {
	s.matcher = columns.NewMatcher(synonyms)
	return s
}

// ParseMode validates a grouping mode. Empty means date.
func ParseMode(mode string) (summary.Mode, error) {
	return summary.ParseMode(mode)
}

// ParseRange parses optional inclusive bounds.
func ParseRange(from, to string) (dates.Range, error) {
	return dates.ParseRange(from, to)
}

// Ingest summarizes req.Data. Structural problems (unknown mode, bad range
// bounds, empty file, missing columns) abort with an error; bad rows are
// counted in the advisories. When nothing qualifies the empty result is
// returned together with ErrEmptyResult.
func (s *SummaryService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "SummaryService.Ingest")
	defer span.End()

	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, s.fail(span, "invalid", start, err)
	}
	span.SetAttributes(attribute.String("sales.mode", string(mode)))

	rng, err := ParseRange(req.From, req.To)
	if err != nil {
		return nil, s.fail(span, string(mode), start, fmt.Errorf("invalid date range: %w", err))
	}

	cfg, err := sniffer.DetectConfig(req.Data)
	if err != nil {
		return nil, s.fail(span, string(mode), start, fmt.Errorf("failed to analyze file: %w", err))
	}

	mapping, err := s.matcher.Resolve(cfg.Headers)
	if err != nil {
		return nil, s.fail(span, string(mode), start, err)
	}

	decoded, err := parser.Decode(req.Data, cfg.Delimiter, mapping)
	if err != nil {
		return nil, s.fail(span, string(mode), start, err)
	}

	agg, err := aggregator.Aggregate(decoded.Rows, aggregator.Options{Mode: mode, Range: rng})
	if err != nil {
		return nil, s.fail(span, string(mode), start, err)
	}

	result := &IngestResult{
		Summary:     agg.Summary,
		Serialized:  summary.Encode(agg.Summary),
		Delimiter:   cfg.Delimiter,
		Fingerprint: cfg.Fingerprint,
		Total:       agg.Summary.Total(),
		Rows:        agg.Rows + decoded.Malformed,
		OutOfRange:  agg.OutOfRange,
		Advisories: Advisories{
			ExtraColumns: mapping.ExtraColumns,
			SkippedRows:  agg.SkippedRows() + decoded.Malformed,
			Empty:        agg.Summary.Len() == 0,
		},
	}

	s.recordRows(agg, decoded.Malformed)
	span.SetAttributes(
		attribute.Int("sales.rows", result.Rows),
		attribute.Int("sales.skipped_rows", result.Advisories.SkippedRows),
		attribute.Int("sales.entries", agg.Summary.Len()),
	)

	s.logger.Info("sales file ingested",
		slog.String("filename", req.Filename),
		slog.String("mode", string(mode)),
		slog.String("delimiter", string(cfg.Delimiter)),
		slog.String("fingerprint", cfg.Fingerprint),
		slog.Int("rows", result.Rows),
		slog.Int("entries", agg.Summary.Len()),
		slog.Int("skipped_rows", result.Advisories.SkippedRows),
		slog.Int("out_of_range", result.OutOfRange),
		slog.Any("extra_columns", mapping.ExtraColumns),
	)

	if result.Advisories.Empty {
		s.metrics.ObserveIngest(string(mode), metrics.ResultEmpty, time.Since(start))
		return result, ErrEmptyResult
	}

	if s.history != nil {
		upload := &history.Upload{
			Owner:    req.Owner,
			Filename: req.Filename,
			Mode:     mode,
			Total:    result.Total,
			Summary:  result.Serialized,
		}
		if err := s.history.Record(ctx, upload); err != nil {
			s.logger.Warn("failed to record upload history",
				slog.String("filename", req.Filename),
				slog.Any("error", err),
			)
		} else {
			result.UploadID = upload.ID
		}
	}

	s.metrics.ObserveIngest(string(mode), metrics.ResultSuccess, time.Since(start))
	return result, nil
}

func (s *SummaryService) fail(span trace.Span, mode string, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.ObserveIngest(mode, metrics.ResultError, time.Since(start))
	s.logger.Warn("sales ingestion failed", slog.String("mode", mode), slog.Any("error", err))
	return err
}

func (s *SummaryService) recordRows(agg *aggregator.Result, malformed int) {
	s.metrics.AddRows(aggregator.Accepted.String(), agg.Accepted)
	s.metrics.AddRows(aggregator.OutOfRange.String(), agg.OutOfRange)
	for outcome, n := range agg.Skipped {
		s.metrics.AddRows(outcome.String(), n)
	}
	s.metrics.AddRows("malformed", malformed)
}
