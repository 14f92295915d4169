package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/report"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/metrics"
)

// Format selects the report artifact.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// pdfTitle heads every PDF report.
const pdfTitle = "Sales Summary"

// Artifact is a rendered report ready for download.
type Artifact struct {
	Data        []byte
	FileName    string
	ContentType string
}

// BuildReport renders s in the requested format.
func (s *SummaryService) BuildReport(ctx context.Context, sum *summary.Summary, format Format) (*Artifact, error) {
	start := time.Now()
	_, span := s.tracer.Start(ctx, "SummaryService.BuildReport")
	defer span.End()
	span.SetAttributes(
		attribute.String("sales.mode", string(sum.Mode())),
		attribute.String("report.format", string(format)),
	)

	var (
		artifact *Artifact
		err      error
	)
	switch format {
	case FormatXLSX:
		var data []byte
		data, err = report.Build(sum).XLSX()
		artifact = &Artifact{Data: data, FileName: report.FileName(sum.Mode()), ContentType: report.ContentTypeXLSX}
	case FormatPDF:
		var data []byte
		data, err = report.BuildPDF(sum, pdfTitle)
		artifact = &Artifact{Data: data, FileName: report.PDFFileName(sum.Mode()), ContentType: report.ContentTypePDF}
	default:
		err = fmt.Errorf("unsupported report format %q", format)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveReport(string(format), metrics.ResultError, time.Since(start))
		s.logger.Error("failed to build report", slog.String("format", string(format)), slog.Any("error", err))
		return nil, err
	}

	s.metrics.ObserveReport(string(format), metrics.ResultSuccess, time.Since(start))
	s.logger.Debug("report built",
		slog.String("format", string(format)),
		slog.String("mode", string(sum.Mode())),
		slog.Int("entries", sum.Len()),
		slog.Int("bytes", len(artifact.Data)),
	)
	return artifact, nil
}
