// Package app provides application-level wiring for exodash: the upstream
// catalog source, the fetch cache, chart selection and the HTTP router.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"exodash/internal/archive"
	"exodash/internal/catalog"
	"exodash/internal/config"
	"exodash/internal/domain"
	"exodash/internal/middleware"
	"exodash/internal/ui"
	"exodash/internal/viz"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Source overrides the configured upstream. Used by tests.
	Source domain.CatalogSource
}

// App holds the fully-wired application.
type App struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Source  domain.CatalogSource
	Fetcher *catalog.Fetcher
	Handler *ui.Handler

	closer io.Closer
}

// New wires the source, fetcher and handler from the provided deps.
func New(deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	source, closer := deps.Source, io.Closer(nil)
	if source == nil {
		var err error
		source, closer, err = NewSource(deps.Cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	fetcher := catalog.NewFetcher(source, logger.With("component", "catalog"))
	charts := viz.NewSelector(viz.NewSVGRenderer(), logger.With("component", "viz"))
	handler := ui.NewHandler(fetcher, charts, logger.With("component", "ui"), deps.Cfg.IsProduction())

	logger.Info("catalog source configured", "source", source.Name())
	return &App{
		Cfg:     deps.Cfg,
		Logger:  logger,
		Source:  source,
		Fetcher: fetcher,
		Handler: handler,
		closer:  closer,
	}, nil
}

// NewSource opens the upstream selected by cfg.ArchiveSource. The returned
// closer is nil for sources that hold no resources.
func NewSource(cfg *config.Config, logger *slog.Logger) (domain.CatalogSource, io.Closer, error) {
	switch cfg.ArchiveSource {
	case config.SourceTAP:
		return archive.NewTAPClient(cfg.ArchiveURL, cfg.ArchiveTimeout, logger.With("component", "tap")), nil, nil
	case config.SourceDuckDB:
		snap, err := archive.OpenSnapshot(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot: %w", err)
		}
		return snap, snap, nil
	default:
		return nil, nil, fmt.Errorf("unknown archive source %q", cfg.ArchiveSource)
	}
}

// Router builds the HTTP handler. ctx bounds background middleware work.
func (a *App) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(a.Logger.With("component", "http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
		RequestsPerSecond: a.Cfg.RateLimitRPS,
		Burst:             a.Cfg.RateLimitBurst,
		ExemptPrefixes:    []string{"/static/", "/healthz"},
	}))

	ui.MountRoutes(r, a.Handler)
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.Cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
		ui.MountAPI(r, a.Handler)
	})
	return r
}

// Close releases the upstream source.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
