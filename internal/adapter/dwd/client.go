// Package dwd downloads files and directory listings from the DWD open data server.
package dwd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// defaultMaxBody caps a single download. The largest historical 10-minute
// archives are a few tens of megabytes.
const defaultMaxBody = 512 << 20

// ErrBodyTooLarge is returned when a response exceeds the download cap.
var ErrBodyTooLarge = errors.New("response body exceeds limit")

// FetchError reports a non-2xx response.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dwd fetch %s: status %d", e.URL, e.Status)
}

// Client implements pipeline.Extractor over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
	logger     *slog.Logger
}

// NewClient creates a DWD client with the given per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "dwd-climate-etl",
		maxBody:   defaultMaxBody,
		logger:    logger,
	}
}

// Fetch downloads url and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dwd fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	limit := c.maxBody
	if limit <= 0 {
		limit = defaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("dwd fetch %s: %w (%d bytes)", url, ErrBodyTooLarge, limit)
	}

	c.logger.Debug("downloaded", "url", url, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

// List fetches the HTML index at dirURL and returns the linked file names that
// start with prefix and end with suffix.
func (c *Client) List(ctx context.Context, dirURL, prefix, suffix string) ([]string, error) {
	page, err := c.Fetch(ctx, dirURL)
	if err != nil {
		return nil, err
	}
	names := matchAnchors(page, prefix, suffix)
	c.logger.Info("listed directory", "url", dirURL, "prefix", prefix, "suffix", suffix, "files", len(names))
	return names, nil
}
