// Package bridge is the optional HTTP sync channel to a companion service.
// Faults never propagate: every operation reports a plain success boolean and
// logs the reason on failure.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"budget/internal/core"
	"budget/internal/ledger"
)

// payload is the wire shape shared by both directions:
// {"transactions": [...]} with the flat transaction record layout.
type payload struct {
	Transactions []core.Transaction `json:"transactions"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the companion service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ExportAll pushes the full ledger to POST {base_url}/budget/import.
// Success means exactly HTTP 200; anything else, including transport and
// serialization faults, is reported as false.
func (c *Client) ExportAll(ctx context.Context, store ledger.Store) bool {
	txs, err := store.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Export failed listing transactions", "error", err)
		return false
	}

	body, err := json.Marshal(payload{Transactions: txs})
	if err != nil {
		slog.ErrorContext(ctx, "Export failed encoding payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/budget/import", bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "Export failed building request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "Export failed", "error", err, "url", req.URL.String())
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Export rejected by companion service",
			"status", resp.StatusCode, "count", len(txs))
		return false
	}

	slog.InfoContext(ctx, "Exported transactions to companion service", "count", len(txs))
	return true
}

// ImportAll fetches GET {base_url}/budget/export and merges the result into
// the store, skipping any transaction whose id already exists locally. Either
// the whole fetch succeeds or the operation reports failure; there is no
// partial-success reporting.
func (c *Client) ImportAll(ctx context.Context, store ledger.Store) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/budget/export", nil)
	if err != nil {
		slog.ErrorContext(ctx, "Import failed building request", "error", err)
		return false
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "Import failed", "error", err, "url", req.URL.String())
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Import rejected by companion service", "status", resp.StatusCode)
		return false
	}

	var remote payload
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		slog.ErrorContext(ctx, "Import failed decoding response", "error", err)
		return false
	}

	added, err := store.Merge(ctx, remote.Transactions)
	if err != nil {
		slog.ErrorContext(ctx, "Import failed merging transactions", "error", err)
		return false
	}

	slog.InfoContext(ctx, "Imported transactions from companion service",
		"fetched", len(remote.Transactions), "added", added)
	return true
}

// BaseURL returns the configured companion service root.
func (c *Client) BaseURL() string { return c.baseURL }
