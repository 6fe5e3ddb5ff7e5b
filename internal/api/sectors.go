package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/heroual/MTSAV/internal/sectors"
	"github.com/heroual/MTSAV/internal/workspace"
	"github.com/rs/zerolog"
)

// SectorView is the sector editor payload
type SectorView struct {
	Mapping  map[string]string `json:"mapping"`
	Secteurs []string          `json:"secteurs"`
	Unmapped []string          `json:"unmapped"`
	ZRs      []string          `json:"zrs"`
}

// ReplaceMappingRequest is the body of PUT /api/sectors/mapping
type ReplaceMappingRequest struct {
	Mapping map[string]string `json:"mapping"`
}

// CreateSectorRequest is the body of POST /api/sectors
type CreateSectorRequest struct {
	Name string `json:"name"`
}

// AssignRequest is the body of POST /api/sectors/{name}/zrs
type AssignRequest struct {
	ZRs []string `json:"zrs"`
}

// SectorHandler edits the ZR to secteur mapping
type SectorHandler struct {
	ws     *workspace.Workspace
	logger zerolog.Logger
}

// NewSectorHandler creates a new SectorHandler
func NewSectorHandler(ws *workspace.Workspace, logger zerolog.Logger) *SectorHandler {
	return &SectorHandler{
		ws:     ws,
		logger: logger.With().Str("component", "sectors").Logger(),
	}
}

func (h *SectorHandler) view() SectorView {
	m := h.ws.Mapper()
	zrs := h.ws.RawZRs()
	return SectorView{
		Mapping:  m.Mappings(),
		Secteurs: m.Sectors(),
		Unmapped: m.Unmapped(zrs),
		ZRs:      zrs,
	}
}

// List handles GET /api/sectors
func (h *SectorHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view())
}

// ReplaceMapping handles PUT /api/sectors/mapping
func (h *SectorHandler) ReplaceMapping(w http.ResponseWriter, r *http.Request) {
	var req ReplaceMappingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.ws.UpdateMapping(func(m *sectors.Mapper) error {
		for zr, secteur := range req.Mapping {
			if strings.TrimSpace(secteur) == "" {
				return fmt.Errorf("%w (zr %s)", sectors.ErrEmptySectorName, zr)
			}
		}
		m.Replace(req.Mapping)
		return nil
	})
	if errors.Is(err, sectors.ErrEmptySectorName) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to replace sector mapping")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Int("zrs", len(req.Mapping)).Msg("sector mapping replaced")
	writeJSON(w, http.StatusOK, h.view())
}

// Create handles POST /api/sectors
func (h *SectorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.ws.UpdateMapping(func(m *sectors.Mapper) error {
		return m.CreateSector(req.Name)
	})
	switch {
	case errors.Is(err, sectors.ErrEmptySectorName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, sectors.ErrSectorExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("secteur", req.Name).Msg("sector created")
	writeJSON(w, http.StatusCreated, h.view())
}

// Delete handles DELETE /api/sectors/{name}
func (h *SectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.ws.UpdateMapping(func(m *sectors.Mapper) error {
		return m.DeleteSector(name)
	})
	if errors.Is(err, sectors.ErrUnknownSector) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("secteur", name).Msg("sector deleted")
	writeJSON(w, http.StatusOK, h.view())
}

// AssignZRs handles POST /api/sectors/{name}/zrs
func (h *SectorHandler) AssignZRs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req AssignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.ws.UpdateMapping(func(m *sectors.Mapper) error {
		return m.Assign(req.ZRs, name)
	})
	if errors.Is(err, sectors.ErrUnknownSector) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Str("secteur", name).Strs("zrs", req.ZRs).Msg("zrs assigned")
	writeJSON(w, http.StatusOK, h.view())
}

// RemoveMapping handles DELETE /api/sectors/mapping/{zr}
func (h *SectorHandler) RemoveMapping(w http.ResponseWriter, r *http.Request) {
	zr := chi.URLParam(r, "zr")
	err := h.ws.UpdateMapping(func(m *sectors.Mapper) error {
		m.Remove(zr)
		return nil
	})
	if err != nil {
		h.logger.Error().Err(err).Str("zr", zr).Msg("failed to remove zr mapping")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/sectors/export
func (h *SectorHandler) Export(w http.ResponseWriter, r *http.Request) {
	attachment(w, "application/yaml", "sectors.yaml")
	if err := h.ws.Mapper().EncodeYAML(w); err != nil {
		h.logger.Error().Err(err).Msg("failed to export sector mapping")
	}
}
