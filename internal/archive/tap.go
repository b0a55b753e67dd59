// Package archive implements catalog sources: the NASA Exoplanet Archive TAP
// service and local DuckDB snapshots of it.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"exodash/internal/domain"
)

// DefaultTAPEndpoint is the synchronous TAP endpoint of the NASA Exoplanet Archive.
const DefaultTAPEndpoint = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"

const maxErrorBody = 4096

// TAPClient queries a TAP sync endpoint and decodes CSV responses.
type TAPClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewTAPClient creates a client for endpoint. A zero timeout disables the
// client-side deadline.
func NewTAPClient(endpoint string, timeout time.Duration, logger *slog.Logger) *TAPClient {
	if endpoint == "" {
		endpoint = DefaultTAPEndpoint
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TAPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Name implements domain.CatalogSource.
func (c *TAPClient) Name() string { return "tap" }

// QueryURL returns the GET URL used for q.
func (c *TAPClient) QueryURL(q domain.CatalogQuery) string {
	params := url.Values{}
	params.Set("query", q.SQL())
	params.Set("format", "csv")
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + params.Encode()
}

// Query implements domain.CatalogSource.
func (c *TAPClient) Query(ctx context.Context, q domain.CatalogQuery) (*domain.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QueryURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tap request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("tap returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	table, err := DecodeCSV(resp.Body, q.Columns)
	if err != nil {
		return nil, fmt.Errorf("decode tap response: %w", err)
	}

	c.logger.Info("tap query completed",
		"table", q.Table,
		"rows", table.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

var _ domain.CatalogSource = (*TAPClient)(nil)
