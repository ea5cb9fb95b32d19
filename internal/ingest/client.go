package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AngelCh415/GA4_REPORT/internal/config"
	"github.com/AngelCh415/GA4_REPORT/internal/models"
	"github.com/AngelCh415/GA4_REPORT/internal/utils"
)

var (
	ErrNoSource = errors.New("source csv url not configured")
	ErrFetch    = errors.New("fetch failed")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Fetcher downloads a CSV export (e.g. a Windsor AI report URL) and loads it.
type Fetcher struct {
	c        HTTPClient
	log      *slog.Logger
	url      string
	maxBytes int64
	backoff  utils.Backoff
}

func NewFetcher(c HTTPClient, log *slog.Logger, cfg config.Config) *Fetcher {
	return &Fetcher{
		c:        c,
		log:      log,
		url:      cfg.SourceURL,
		maxBytes: cfg.MaxUploadBytes,
		backoff:  utils.NewBackoff(100*time.Millisecond, cfg.FetchRetries),
	}
}

func (f *Fetcher) Fetch(ctx context.Context) (models.Dataset, error) {
	if f.url == "" {
		return models.Dataset{}, ErrNoSource
	}
	var body []byte
	err := f.backoff.Do(ctx, func(i int) error {
		b, err := getCSV(ctx, f.c, f.url, f.maxBytes)
		if err != nil {
			f.log.Warn("fetch failed", slog.Int("attempt", i+1), slog.String("err", err.Error()))
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s: %w", ErrFetch, f.url, err)
	}
	f.log.Info("fetch complete", slog.Int("bytes", len(body)))
	return Load(bytes.NewReader(body))
}

func getCSV(ctx context.Context, c HTTPClient, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
	}
	r := io.Reader(resp.Body)
	if maxBytes > 0 {
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return nil, fmt.Errorf("csv larger than %d bytes", maxBytes)
	}
	return b, nil
}
