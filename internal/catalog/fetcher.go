// Package catalog fetches the exoplanet catalog once per process and serves
// the cached table afterwards.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"exodash/internal/domain"
)

// TableName is the archive table holding one row per planet solution.
const TableName = "ps"

// Where keeps rows that have mass, radius and orbital period.
const Where = "pl_bmasse IS NOT NULL AND pl_rade IS NOT NULL AND pl_orbper IS NOT NULL"

// Query returns the fixed catalog query.
func Query() domain.CatalogQuery {
	return domain.CatalogQuery{
		Table:   TableName,
		Columns: domain.AllColumns(),
		Where:   Where,
	}
}

// Fetcher owns a single-slot cache in front of a catalog source. The slot is
// filled by the first successful fetch and never replaced.
type Fetcher struct {
	source domain.CatalogSource
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	table    *domain.Table
	loadedAt time.Time
}

// NewFetcher creates a Fetcher reading from source.
func NewFetcher(source domain.CatalogSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{source: source, logger: logger}
}

// Fetch returns the catalog table, querying the source only when the cache
// slot is empty. Concurrent callers during the first fetch share one query,
// which runs to completion even if the caller that started it goes away; a
// cancelled caller stops waiting and gets ctx.Err(). Failures are returned as
// *domain.FetchError and are not cached.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.Table, error) {
	if t := f.cached(); t != nil {
		return t, nil
	}

	queryCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(TableName, func() (any, error) {
		if t := f.cached(); t != nil {
			return t, nil
		}

		start := time.Now()
		t, err := f.source.Query(queryCtx, Query())
		if err != nil {
			f.logger.Error("catalog fetch failed", "source", f.source.Name(), "error", err)
			return nil, &domain.FetchError{Source: f.source.Name(), Err: err}
		}

		f.mu.Lock()
		if f.table == nil {
			f.table = t
			f.loadedAt = time.Now()
		}
		t = f.table
		f.mu.Unlock()

		f.logger.Info("catalog cached",
			"source", f.source.Name(),
			"rows", t.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cached reports whether the slot holds a table and when it was filled.
func (f *Fetcher) Cached() (bool, time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.table != nil, f.loadedAt
}

func (f *Fetcher) cached() *domain.Table {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.table
}
