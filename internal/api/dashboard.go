package api

import (
	"net/http"

	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/heroual/MTSAV/internal/workspace"
	"github.com/rs/zerolog"
)

// TicketPage is the table payload: a bounded sample and the full count
type TicketPage struct {
	Tickets []types.Ticket `json:"tickets"`
	Total   int            `json:"total"`
}

// DashboardHandler serves statistics computed from the workspace
type DashboardHandler struct {
	dash   *aggregator.Dashboard
	ws     *workspace.Workspace
	logger zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dash *aggregator.Dashboard, ws *workspace.Workspace, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dash:   dash,
		ws:     ws,
		logger: logger.With().Str("component", "dashboard").Logger(),
	}
}

// Stats handles GET /api/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	fs, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.dash.Snapshot(fs)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build snapshot")
		writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Tickets handles GET /api/tickets
func (h *DashboardHandler) Tickets(w http.ResponseWriter, r *http.Request) {
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

	page := TicketPage{Tickets: filtered, Total: len(filtered)}
	if len(page.Tickets) > aggregator.SampleSize {
		page.Tickets = page.Tickets[:aggregator.SampleSize]
	}
	writeJSON(w, http.StatusOK, page)
}

// Options handles GET /api/filters/options
func (h *DashboardHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, filter.Options(h.ws.Tickets()))
}
