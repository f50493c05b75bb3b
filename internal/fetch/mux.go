package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Mux dispatches fetches by URI scheme: http and https go to the HTTP
// fetcher; file URIs and scheme-less paths go to the file fetcher.
// A nil fetcher disables its schemes.
type Mux struct {
	http Fetcher
	file Fetcher
}

// NewMux creates a Mux.
func NewMux(http, file Fetcher) *Mux {
	return &Mux{http: http, file: file}
}

// Fetch routes uri to the fetcher for its scheme.
func (m *Mux) Fetch(ctx context.Context, uri string) (string, error) {
	scheme := ""
	if u, err := url.Parse(uri); err == nil {
		scheme = strings.ToLower(u.Scheme)
	}

	var next Fetcher
	switch {
	case scheme == "http" || scheme == "https":
		next = m.http
	case scheme == "file" || scheme == "" || isWindowsDrive(scheme):
		next = m.file
	}
	if next == nil {
		return "", &FetchError{URI: uri, Err: fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)}
	}
	return next.Fetch(ctx, uri)
}

// isWindowsDrive reports whether a parsed scheme is really a drive letter.
func isWindowsDrive(scheme string) bool {
	return len(scheme) == 1 && scheme[0] >= 'a' && scheme[0] <= 'z'
}
