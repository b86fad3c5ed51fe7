package etl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mberna113/WNV-ETL-Lab2/internal/geocoding"
)

// Fetcher downloads the published spreadsheet export and persists the raw
// response body as a local CSV file. A failed request propagates to the
// caller and halts the run; there is no retry.
type Fetcher struct {
	client    geocoding.HTTPClient // HTTP client for making requests
	log       *slog.Logger         // Logger for logging operations
	userAgent string
}

// NewFetcher creates a Fetcher with a default HTTP client.
func NewFetcher(userAgent string, log *slog.Logger) *Fetcher {
	const timeout = 30
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		log:       log,
		userAgent: userAgent,
	}
}

// NewFetcherWithClient creates a Fetcher with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewFetcherWithClient(client geocoding.HTTPClient, userAgent string, log *slog.Logger) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent, log: log}
}

// Download performs a GET against rawURL and writes the body verbatim to
// dest, overwriting any existing file. Returns the number of bytes written.
func (f *Fetcher) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	f.log.InfoContext(ctx, "Extracting addresses from published spreadsheet", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute fetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, rawURL)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dest, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to write response body to %s: %w", dest, err)
	}

	f.log.InfoContext(ctx, "CSV downloaded", "dest", dest, "bytes", written)
	return written, nil
}
