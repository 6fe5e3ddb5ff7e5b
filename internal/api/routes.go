package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/heroual/MTSAV/internal/auth"
)

// Handlers groups the REST handlers mounted under /api
type Handlers struct {
	Imports   *ImportHandler
	Dashboard *DashboardHandler
	Sectors   *SectorHandler
	Insights  *InsightsHandler
	Reports   *ReportHandler
}

// Mount registers the REST routes on r
func (h *Handlers) Mount(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Post("/", h.Imports.Upload)
		r.Get("/current", h.Imports.Current)
		r.Delete("/current", h.Imports.Reset)
	})

	r.Get("/stats", h.Dashboard.Stats)
	r.Get("/tickets", h.Dashboard.Tickets)
	r.Get("/filters/options", h.Dashboard.Options)

	r.Route("/sectors", func(r chi.Router) {
		r.Get("/", h.Sectors.List)
		r.Get("/export", h.Sectors.Export)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAnalyst, auth.RoleAdmin))
			r.Post("/", h.Sectors.Create)
			r.Put("/mapping", h.Sectors.ReplaceMapping)
			r.Delete("/mapping/{zr}", h.Sectors.RemoveMapping)
			r.Delete("/{name}", h.Sectors.Delete)
			r.Post("/{name}/zrs", h.Sectors.AssignZRs)
		})
	})

	r.Post("/insights", h.Insights.Generate)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/pdf", h.Reports.PDF)
		r.Get("/csv", h.Reports.CSV)
	})
}
