package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/heroual/MTSAV/internal/ingestion"
	"github.com/heroual/MTSAV/internal/workspace"
	"github.com/rs/zerolog"
)

// msgReadFailed is shown for any upload failure without a more specific message
const msgReadFailed = "Erreur lors de la lecture du fichier Excel."

// ImportHandler receives spreadsheet exports
type ImportHandler struct {
	parser   *ingestion.Parser
	ws       *workspace.Workspace
	maxBytes int64
	now      func() time.Time
	logger   zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(parser *ingestion.Parser, ws *workspace.Workspace, maxBytes int64, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		parser:   parser,
		ws:       ws,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With().Str("component", "imports").Logger(),
	}
}

// Upload handles POST /api/imports (multipart field "file")
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "fichier trop volumineux")
			return
		}
		writeError(w, http.StatusBadRequest, msgReadFailed)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "champ \"file\" manquant")
		return
	}
	defer file.Close()

	result, err := h.parser.ParseFile(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Warn().Err(err).Str("file", header.Filename).Msg("import rejected")
		switch {
		case errors.Is(err, ingestion.ErrNotEnoughRows), errors.Is(err, ingestion.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, msgReadFailed)
		}
		return
	}

	meta := result.Meta(h.now())
	h.ws.Replace(result.Tickets, meta)

	writeJSON(w, http.StatusCreated, meta)
}

// Current handles GET /api/imports/current
func (h *ImportHandler) Current(w http.ResponseWriter, r *http.Request) {
	meta := h.ws.Meta()
	if meta == nil {
		writeError(w, http.StatusNotFound, "aucun fichier importé")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Reset handles DELETE /api/imports/current
func (h *ImportHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.ws.Reset()
	w.WriteHeader(http.StatusNoContent)
}
