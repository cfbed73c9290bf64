// Package catalog fetches shared address catalogs and builds them from
// spreadsheet exports.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"addrbook/internal/addrbook"
)

// MaxBodyBytes caps the size of a fetched catalog.
const MaxBodyBytes = 10 << 20

// DefaultTimeout is used when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// HTTPSource fetches catalogs over HTTP, bypassing intermediate caches.
type HTTPSource struct {
	client    *http.Client
	userAgent string
}

var _ addrbook.CatalogSource = (*HTTPSource)(nil)

// NewHTTPClient returns a client with bounded dial and handshake times.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// NewHTTPSource creates a source with the given request timeout. A zero
// timeout means DefaultTimeout; userAgent may be empty.
func NewHTTPSource(timeout time.Duration, userAgent string) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewHTTPSourceWithClient(NewHTTPClient(timeout), userAgent)
}

// NewHTTPSourceWithClient creates a source using client as is.
func NewHTTPSourceWithClient(client *http.Client, userAgent string) *HTTPSource {
	return &HTTPSource{client: client, userAgent: userAgent}
}

// Fetch issues a single GET. Any HTTP response, including error statuses, is
// returned with a nil error; err is set only when no usable response arrived.
func (s *HTTPSource) Fetch(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return resp.StatusCode, nil, fmt.Errorf("catalog larger than %d bytes", MaxBodyBytes)
	}
	return resp.StatusCode, body, nil
}
