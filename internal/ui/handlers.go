package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"exodash/internal/archive"
	"exodash/internal/domain"
	"exodash/internal/filter"
)

// dashboardTableLimit caps the rows rendered into the page table. Exports are
// not capped.
const dashboardTableLimit = 1000

// loadView fetches the catalog and applies the request's filters.
func (h *Handler) loadView(r *http.Request) (*domain.Table, *domain.Table, dashboardState, error) {
	catalog, err := h.Catalog.Fetch(r.Context())
	if err != nil {
		return nil, nil, dashboardState{}, err
	}
	state, err := parseDashboardQuery(r.URL.Query(), catalog)
	if err != nil {
		return nil, nil, dashboardState{}, err
	}
	return catalog, filter.Apply(catalog, state.Selection), state, nil
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	catalog, view, state, err := h.loadView(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	d := dashboardPageData{
		State:     state,
		Methods:   filter.Methods(catalog),
		Total:     catalog.Len(),
		View:      view,
		Artifacts: h.Charts.Select(view, state.Charts, state.Custom),
		Query:     r.URL.RawQuery,
	}
	d.DistanceBounds, _ = filter.Bounds(catalog, domain.Distance)
	d.MassBounds, _ = filter.Bounds(catalog, domain.Mass)
	renderHTML(w, http.StatusOK, dashboardPage(d))
}

func (h *Handler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	_, view, _, err := h.loadView(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := archive.EncodeCSV(&buf, view); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV."))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "exoplanets.csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type planetsResponse struct {
	Columns       []string `json:"columns"`
	Rows          [][]any  `json:"rows"`
	RowCount      int      `json:"row_count"`
	NextPageToken string   `json:"next_page_token,omitempty"`
}

func (h *Handler) PlanetsJSON(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := domain.ParsePageRequest(q.Get("max_results"), q.Get("page_token"))
	if err != nil {
		h.writeJSONError(w, err)
		return
	}
	_, view, _, err := h.loadView(r)
	if err != nil {
		h.writeJSONError(w, err)
		return
	}

	offset, limit := page.Offset(), page.Limit()
	rows := view.Page(offset, limit)
	resp := planetsResponse{
		Columns:       make([]string, len(view.Columns)),
		Rows:          make([][]any, 0, rows.Len()),
		RowCount:      view.Len(),
		NextPageToken: domain.NextPageToken(offset, limit, view.Len()),
	}
	for i, c := range view.Columns {
		resp.Columns[i] = c.Name()
	}
	for i := range rows.Rows {
		row := make([]any, len(rows.Columns))
		for j, c := range rows.Columns {
			row[j] = rows.Rows[i].Value(c).Interface()
		}
		resp.Rows = append(resp.Rows, row)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	id := domain.ChartID(chi.URLParam(r, "chartID"))
	if !id.Valid() {
		h.renderServiceError(w, r, domain.ErrNotFound("chart %q not found", string(id)))
		return
	}
	_, view, state, err := h.loadView(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	a := h.Charts.Chart(view, id, state.Custom)
	if a.Err != nil {
		h.renderServiceError(w, r, a.Err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.SVG)
}

type healthResponse struct {
	Status   string     `json:"status"`
	Cached   bool       `json:"catalog_cached"`
	CachedAt *time.Time `json:"cached_at,omitempty"`
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if ok, at := h.Catalog.Cached(); ok {
		resp.Cached = true
		resp.CachedAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}
