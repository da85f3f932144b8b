// Package storage fetches raw certificate images from remote sources.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooLarge is returned when a response body exceeds the configured limit
var ErrTooLarge = errors.New("image exceeds size limit")

// RawFetcher retrieves the undecoded bytes of an image
type RawFetcher interface {
	FetchRaw(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPFetcherOptions tunes the HTTP fetcher
type HTTPFetcherOptions struct {
	MaxBytes int64
	Attempts int
	// Backoff is multiplied by the attempt number between retries
	Backoff time.Duration
	Timeout time.Duration
}

// DefaultHTTPFetcherOptions returns three attempts with linear one-second backoff
func DefaultHTTPFetcherOptions() HTTPFetcherOptions {
	return HTTPFetcherOptions{
		MaxBytes: 15 << 20,
		Attempts: 3,
		Backoff:  time.Second,
		Timeout:  30 * time.Second,
	}
}

// HTTPFetcher downloads images over http(s)
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPFetcherOptions
}

// NewHTTPFetcher creates an HTTP fetcher
func NewHTTPFetcher(opts HTTPFetcherOptions) *HTTPFetcher {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	transport := &http.Transport{
		// Single image downloads do not need a large idle pool
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPFetcher{
		opts: opts,
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

// FetchRaw downloads imageURL, retrying transport errors and 5xx responses.
// 4xx responses fail immediately.
func (h *HTTPFetcher) FetchRaw(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= h.opts.Attempts; attempt++ {
		body, retryable, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == h.opts.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * h.opts.Backoff):
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", h.opts.Attempts, lastErr)
}

func (h *HTTPFetcher) fetchOnce(ctx context.Context, imageURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/tiff, image/bmp, */*")
	req.Header.Set("User-Agent", "coa-verifier/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if h.opts.MaxBytes > 0 && resp.ContentLength > h.opts.MaxBytes {
		return nil, false, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	body, err = readLimited(resp.Body, h.opts.MaxBytes)
	if err != nil {
		return nil, false, err
	}
	return body, false, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}
