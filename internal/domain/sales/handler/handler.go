// Package handler exposes the sales engine over HTTP. The latest summary of a
// visitor lives in their session; past uploads come from history when it is
// enabled.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/columns"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/dates"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/history"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/report"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/service"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/sniffer"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
	"github.com/FACorreiaa/sales-summary/pkg/money"
)

const (
	msgOnlyCSV      = "Only .CSV files are supported."
	msgEmptyResult  = "No sales data found for the selected date range"
	msgNoSummary    = "No summary available. Upload a CSV file first."
	msgNoHistory    = "Upload history is disabled"
	msgInternal     = "internal server error"
	multipartMemory = 1 << 20
)

// SalesHandler implements the sales HTTP API.
type SalesHandler struct {
	service  *service.SummaryService
	sessions *SessionStore
	uploads  history.Repository // Optional: nil if history is disabled
	maxBytes int64
	logger   *slog.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(svc *service.SummaryService, sessions *SessionStore, maxBytes int64, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{
		service:  svc,
		sessions: sessions,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// WithUploads enables the upload history endpoints.
func (h *SalesHandler) WithUploads(repo history.Repository) *SalesHandler {
	h.uploads = repo
	return h
}

// Register mounts the routes on mux.
func (h *SalesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/summary", h.Upload)
	mux.HandleFunc("GET /api/summary", h.GetSummary)
	mux.HandleFunc("DELETE /api/summary", h.ClearSummary)
	mux.HandleFunc("GET /api/report.xlsx", h.DownloadXLSX)
	mux.HandleFunc("GET /api/report.pdf", h.DownloadPDF)
	mux.HandleFunc("GET /api/chart", h.Chart)
	mux.HandleFunc("GET /api/uploads", h.ListUploads)
	mux.HandleFunc("GET /api/uploads/{id}/report.xlsx", h.DownloadUpload)
}

type entryView struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

type advisoriesView struct {
	service.Advisories
	Messages []string `json:"messages,omitempty"`
}

type summaryView struct {
	Mode       summary.Mode    `json:"mode"`
	Entries    []entryView     `json:"entries"`
	Total      decimal.Decimal `json:"total"`
	Display    string          `json:"total_display"`
	Advisories *advisoriesView `json:"advisories,omitempty"`
	UploadID   *uuid.UUID      `json:"upload_id,omitempty"`
}

type chartView struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Range  string    `json:"range"`
}

type errorView struct {
	Error      string          `json:"error"`
	Advisories *advisoriesView `json:"advisories,omitempty"`
}

func newSummaryView(s *summary.Summary) *summaryView {
	view := &summaryView{
		Mode:    s.Mode(),
		Entries: make([]entryView, 0, s.Len()),
		Total:   s.Total(),
		Display: money.Display(s.Total()),
	}
	for k, amount := range s.All() {
		view.Entries = append(view.Entries, entryView{
			Key:     summary.EncodeKey(k),
			Label:   k.Label(),
			Amount:  amount,
			Display: money.Display(amount),
		})
	}
	return view
}

func newAdvisoriesView(a service.Advisories) *advisoriesView {
	view := &advisoriesView{Advisories: a}
	if a.SkippedRows > 0 {
		view.Messages = append(view.Messages, fmt.Sprintf("Skipped %d invalid rows", a.SkippedRows))
	}
	if len(a.ExtraColumns) > 0 {
		view.Messages = append(view.Messages, "Ignoring extra columns: "+strings.Join(a.ExtraColumns, ", "))
	}
	return view
}

// Upload ingests a CSV file and stores the summary in the session.
func (h *SalesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, msgOnlyCSV)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	owner, err := h.sessions.Owner(w, r)
	if err != nil {
		h.internalError(w, "failed to resolve session owner", err)
		return
	}

	result, err := h.service.Ingest(r.Context(), service.IngestRequest{
		Data:     data,
		Filename: header.Filename,
		Owner:    owner,
		Mode:     r.FormValue("mode"),
		From:     r.FormValue("from_date"),
		To:       r.FormValue("to_date"),
	})
	if errors.Is(err, service.ErrEmptyResult) {
		writeJSON(w, http.StatusUnprocessableEntity, errorView{
			Error:      msgEmptyResult,
			Advisories: newAdvisoriesView(result.Advisories),
		})
		return
	}
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if err := h.sessions.Save(w, r, result.Summary); err != nil {
		h.internalError(w, "failed to store summary", err)
		return
	}

	view := newSummaryView(result.Summary)
	view.Advisories = newAdvisoriesView(result.Advisories)
	if result.UploadID != uuid.Nil {
		view.UploadID = &result.UploadID
	}
	writeJSON(w, http.StatusOK, view)
}

// GetSummary returns the latest summary of the session.
func (h *SalesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSummaryView(s))
}

// ClearSummary forgets the latest summary of the session.
func (h *SalesHandler) ClearSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.internalError(w, "failed to clear summary", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadXLSX sends the latest summary as a workbook.
func (h *SalesHandler) DownloadXLSX(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, service.FormatXLSX)
}

// DownloadPDF sends the latest summary as a PDF table.
func (h *SalesHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, service.FormatPDF)
}

func (h *SalesHandler) download(w http.ResponseWriter, r *http.Request, format service.Format) {
	s, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	artifact, err := h.service.BuildReport(r.Context(), s, format)
	if err != nil {
		h.internalError(w, "failed to build report", err)
		return
	}
	writeArtifact(w, artifact.FileName, artifact)
}

// Chart returns the chart series of the latest summary.
func (h *SalesHandler) Chart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSummary(w, r)
	if !ok {
		return
	}
	series := report.NewSeries(s)
	writeJSON(w, http.StatusOK, chartView{
		Labels: series.Labels,
		Values: series.Floats(),
		Range:  series.Range,
	})
}

// ListUploads lists the past uploads of the session owner, newest first.
func (h *SalesHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		writeError(w, http.StatusNotFound, msgNoHistory)
		return
	}
	owner, err := h.sessions.Owner(w, r)
	if err != nil {
		h.internalError(w, "failed to resolve session owner", err)
		return
	}

	uploads, err := h.uploads.List(r.Context(), owner, history.MaxList)
	if err != nil {
		h.internalError(w, "failed to list uploads", err)
		return
	}
	if uploads == nil {
		uploads = []history.Upload{}
	}
	writeJSON(w, http.StatusOK, uploads)
}

// DownloadUpload rebuilds the workbook of a past upload.
func (h *SalesHandler) DownloadUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		writeError(w, http.StatusNotFound, msgNoHistory)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload id")
		return
	}
	owner, err := h.sessions.Owner(w, r)
	if err != nil {
		h.internalError(w, "failed to resolve session owner", err)
		return
	}

	upload, err := h.uploads.Get(r.Context(), owner, id)
	if errors.Is(err, history.ErrUploadNotFound) {
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		h.internalError(w, "failed to get upload", err)
		return
	}

	s, err := upload.Decode()
	if err != nil {
		h.internalError(w, "failed to decode stored summary", err)
		return
	}
	artifact, err := h.service.BuildReport(r.Context(), s, service.FormatXLSX)
	if err != nil {
		h.internalError(w, "failed to build report", err)
		return
	}
	writeArtifact(w, report.HistoryFileName(upload.Filename), artifact)
}

func (h *SalesHandler) loadSummary(w http.ResponseWriter, r *http.Request) (*summary.Summary, bool) {
	s, err := h.sessions.Load(r)
	switch {
	case errors.Is(err, ErrNoSummary):
		writeError(w, http.StatusNotFound, msgNoSummary)
		return nil, false
	case err != nil:
		var decodeErr *summary.DecodeError
		if errors.As(err, &decodeErr) || errors.Is(err, summary.ErrInvalidMode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		h.internalError(w, "failed to load summary", err)
		return nil, false
	}
	return s, true
}

// writeEngineError maps ingestion failures onto status codes.
func (h *SalesHandler) writeEngineError(w http.ResponseWriter, err error) {
	var (
		missing    *columns.MissingColumnsError
		badDate    *dates.UnrecognizedDateFormatError
		decodeErr  *summary.DecodeError
		statusCode = http.StatusInternalServerError
	)
	switch {
	case errors.As(err, &missing),
		errors.As(err, &badDate),
		errors.As(err, &decodeErr),
		errors.Is(err, summary.ErrInvalidMode),
		errors.Is(err, dates.ErrInvalidRange),
		errors.Is(err, sniffer.ErrEmptyFile),
		errors.Is(err, sniffer.ErrNoHeadersFound):
		statusCode = http.StatusBadRequest
	}

	if statusCode == http.StatusInternalServerError {
		h.internalError(w, "failed to ingest sales file", err)
		return
	}
	writeError(w, statusCode, err.Error())
}

func (h *SalesHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func writeArtifact(w http.ResponseWriter, name string, artifact *service.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorView{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
