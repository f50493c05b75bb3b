package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Defaults for HTTP retrieval.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 10 << 20 // 10MB
	DefaultUserAgent = "go-include"
)

const acceptHeader = "text/html, text/markdown;q=0.9, text/plain;q=0.8, */*;q=0.5"

// HTTPFetcher retrieves http and https URIs. It performs one GET per call and
// never retries; non-2xx responses are errors.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	headers   map[string]string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient sets the HTTP client. Its Timeout bounds every fetch.
func WithClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes caps the response body size.
func WithMaxBytes(n int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHeader adds a request header sent with every fetch.
func WithHeader(key, value string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.headers[key] = value
	}
}

// NewHTTPFetcher creates an HTTPFetcher with a 30s timeout and a 10MB body cap.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		headers:   map[string]string{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET request and returns the body as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return "", &FetchError{
			URI:        uri,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrStatus, resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return "", &FetchError{URI: uri, Err: fmt.Errorf("%w: %d bytes", ErrTooLarge, f.maxBytes)}
	}
	return string(body), nil
}
