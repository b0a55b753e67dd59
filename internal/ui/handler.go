package ui

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"exodash/internal/domain"
	"exodash/internal/viz"

	gomponents "maragu.dev/gomponents"
)

// CatalogFetcher supplies the cached catalog table.
type CatalogFetcher interface {
	Fetch(ctx context.Context) (*domain.Table, error)
	Cached() (bool, time.Time)
}

type Handler struct {
	Catalog    CatalogFetcher
	Charts     *viz.Selector
	Logger     *slog.Logger
	Production bool
}

func NewHandler(catalog CatalogFetcher, charts *viz.Selector, logger *slog.Logger, production bool) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if charts == nil {
		charts = viz.NewSelector(nil, logger)
	}
	return &Handler{
		Catalog:    catalog,
		Charts:     charts,
		Logger:     logger,
		Production: production,
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
