package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileFetcher reads file URIs and plain paths from the local filesystem.
// Relative paths resolve against the root directory, and no path may
// escape it. An empty root means the working directory, without confinement.
type FileFetcher struct {
	root     string
	maxBytes int64
}

// NewFileFetcher creates a FileFetcher confined to root.
func NewFileFetcher(root string) (*FileFetcher, error) {
	f := &FileFetcher{maxBytes: DefaultMaxBytes}
	if root == "" {
		return f, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", root, err)
	}
	f.root = abs
	return f, nil
}

// Fetch reads the file identified by uri.
func (f *FileFetcher) Fetch(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}

	path, err := f.pathFor(uri)
	if err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}

	file, err := os.Open(path) // #nosec G304 -- path confined to root by pathFor
	if err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}
	defer func() { _ = file.Close() }()

	body, err := io.ReadAll(io.LimitReader(file, f.maxBytes+1))
	if err != nil {
		return "", &FetchError{URI: uri, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return "", &FetchError{URI: uri, Err: fmt.Errorf("%w: %d bytes", ErrTooLarge, f.maxBytes)}
	}
	return string(body), nil
}

// pathFor maps a file URI or path to an absolute filesystem path.
func (f *FileFetcher) pathFor(uri string) (string, error) {
	path := uri
	if strings.HasPrefix(uri, "file:") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		path = filepath.FromSlash(u.Path)
	}

	if !filepath.IsAbs(path) {
		base := f.root
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			base = wd
		}
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)

	if f.root != "" && !IsPathUnderDir(path, f.root) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return path, nil
}

// IsPathUnderDir checks if absPath is under dir (prevents path traversal).
func IsPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	// Ensure dir ends with separator for correct prefix matching
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// PathToFileURL converts an absolute path to a file:// URL.
func PathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
