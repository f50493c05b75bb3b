// Package fetch retrieves inclusion sources over HTTP and from the local
// filesystem, with optional caching of successful responses.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors for fetch operations.
var (
	ErrFetch             = errors.New("fetch failed")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrOutsideRoot       = errors.New("path escapes root directory")
	ErrTooLarge          = errors.New("response exceeds size limit")
	ErrStatus            = errors.New("unexpected status")
)

// Fetcher retrieves the textual content identified by uri.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, uri string) (string, error)

// Fetch calls f(ctx, uri).
func (f FetcherFunc) Fetch(ctx context.Context, uri string) (string, error) {
	return f(ctx, uri)
}

// FetchError describes a failed retrieval. It matches ErrFetch with errors.Is.
type FetchError struct {
	URI        string
	StatusCode int // zero unless the server answered
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d", e.URI, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Resolve resolves ref against base. With an empty base, ref is returned
// unchanged. Whitespace around both is ignored.
func Resolve(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	base = strings.TrimSpace(base)
	if base == "" {
		return ref, nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
