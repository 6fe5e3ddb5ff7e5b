package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/insights"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
)

// InsightsHandler asks the language model to comment the filtered statistics
type InsightsHandler struct {
	dash    *aggregator.Dashboard
	service *insights.Service
	logger  zerolog.Logger
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(dash *aggregator.Dashboard, service *insights.Service, logger zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		dash:    dash,
		service: service,
		logger:  logger.With().Str("component", "insights-api").Logger(),
	}
}

// Generate handles POST /api/insights. The body is a FilterState; an empty
// body means no filter.
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var fs types.FilterState
	if err := decodeJSON(r, &fs); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	filtered, _, err := h.dash.Filtered(fs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(filtered) == 0 {
		writeError(w, http.StatusConflict, "aucun ticket à analyser")
		return
	}

	insight := h.service.Generate(r.Context(), aggregator.Calculate(filtered))
	writeJSON(w, http.StatusOK, insight)
}
