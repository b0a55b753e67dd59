package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"exodash/internal/ui/assets"
)

// MountRoutes registers the dashboard pages, exports and static assets.
func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Get("/", h.Dashboard)
	r.Get("/download.csv", h.DownloadCSV)
	r.Get("/charts/{chartID}.svg", h.ChartSVG)
	r.Get("/healthz", h.Healthz)
}

// MountAPI registers the JSON endpoints.
func MountAPI(r chi.Router, h *Handler) {
	r.Get("/planets", h.PlanetsJSON)
}
