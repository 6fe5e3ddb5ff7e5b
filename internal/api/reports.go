package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/report"
	"github.com/heroual/MTSAV/internal/storage"
	"github.com/rs/zerolog"
)

const archiveTimeout = 30 * time.Second

// ReportHandler renders downloadable reports
type ReportHandler struct {
	dash    *aggregator.Dashboard
	archive storage.Archive
	now     func() time.Time
	logger  zerolog.Logger
}

// NewReportHandler creates a new ReportHandler. A nil archive disables
// archiving.
func NewReportHandler(dash *aggregator.Dashboard, archive storage.Archive, logger zerolog.Logger) *ReportHandler {
	if archive == nil {
		archive = storage.NewNoopArchive()
	}
	return &ReportHandler{
		dash:    dash,
		archive: archive,
		now:     time.Now,
		logger:  logger.With().Str("component", "reports").Logger(),
	}
}

// PDF handles GET /api/reports/pdf
func (h *ReportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	fs, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filtered, fs, err := h.dash.Filtered(fs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.now()
	var buf bytes.Buffer
	err = report.WritePDF(&buf, report.Input{
		Stats:       aggregator.Calculate(filtered),
		Tickets:     filtered,
		Filters:     fs,
		GeneratedAt: now,
	})
	if errors.Is(err, report.ErrNoTickets) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render pdf report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	name := report.Filename(now)
	h.archiveReport(r.Context(), buf.Bytes(), name)

	attachment(w, "application/pdf", name)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// CSV handles GET /api/reports/csv
func (h *ReportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	fs, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filtered, _, err := h.dash.Filtered(fs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	err = report.WriteCSV(&buf, filtered)
	if errors.Is(err, report.ErrNoTickets) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to write csv extract")
		writeError(w, http.StatusInternalServerError, "failed to render extract")
		return
	}

	attachment(w, "text/csv; charset=utf-8", report.CSVFilename(h.now()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// archiveReport stores a copy of the report. Failures are logged only, the
// download is still served.
func (h *ReportHandler) archiveReport(ctx context.Context, data []byte, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	archived, err := h.archive.Save(ctx, storage.ArchiveInput{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "application/pdf",
		Filename:    name,
	})
	if archived == nil && err == nil {
		return
	}
	metrics.Get().RecordReportArchive(err)
	if err != nil {
		h.logger.Warn().Err(err).Str("file", name).Msg("failed to archive report")
	}
}
