package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxFeedBytes caps how much of a response body is read. Larger bodies are
// rejected rather than truncated.
const maxFeedBytes = 32 << 20

// Source describes one GTFS-RT endpoint.
type Source struct {
	Name         string // "trains", "buses"; used as a metrics label
	URL          string
	APIKey       string
	APIKeyHeader string // defaults to x-api-key
	RequireKey   bool
}

// Check returns ErrNotConfigured if the source can't be fetched as configured.
func (s Source) Check() error {
	if s.URL == "" {
		return fmt.Errorf("%s: no feed URL: %w", s.Name, ErrNotConfigured)
	}
	if s.RequireKey && s.APIKey == "" {
		return fmt.Errorf("%s: no API key: %w", s.Name, ErrNotConfigured)
	}
	return nil
}

// Observer receives fetch measurements. A nil Observer is allowed.
type Observer interface {
	ObserveFetch(feed string, d time.Duration, bytes int)
	FetchFailed(feed string, kind FailureKind)
}

// Fetcher performs single, bounded GETs against GTFS-RT endpoints.
// There are no retries; the caller's next poll is the retry.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	limit   int64
	obs     Observer
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher whose requests never outlive timeout.
func NewFetcher(timeout time.Duration, obs Observer, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		limit:   maxFeedBytes,
		obs:     obs,
		logger:  logger,
	}
}

// Fetch downloads the raw feed body for src.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	body, err := f.fetch(ctx, src)
	if err != nil {
		if f.obs != nil {
			f.obs.FetchFailed(src.Name, Classify(err))
		}
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, src Source) ([]byte, error) {
	if err := src.Check(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", src.Name, err)
	}
	req.Header.Set("Accept", "application/x-protobuf")
	if src.APIKey != "" {
		header := src.APIKeyHeader
		if header == "" {
			header = "x-api-key"
		}
		req.Header.Set(header, src.APIKey)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w", src.Name, ErrTimeout)
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: src.URL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.limit+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: read body: %w", src.Name, ErrTimeout)
		}
		return nil, &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.limit {
		return nil, fmt.Errorf("%s: over %d bytes: %w", src.Name, f.limit, ErrTooLarge)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name, ErrEmptyBody)
	}

	elapsed := time.Since(start)
	if f.obs != nil {
		f.obs.ObserveFetch(src.Name, elapsed, len(body))
	}
	f.logger.Debug("feed fetched", "feed", src.Name, "bytes", len(body), "duration", elapsed.Round(time.Millisecond))
	return body, nil
}
