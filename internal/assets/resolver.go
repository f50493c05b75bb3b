package assets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-include/internal/fileutil"
)

// StyleResolver looks styles up in a custom directory first and falls back
// to the built-in styles when the custom directory lacks the name.
type StyleResolver struct {
	custom   StyleLoader // nil without a custom directory
	embedded StyleLoader
}

var _ StyleLoader = (*StyleResolver)(nil)

// NewStyleResolver creates a StyleResolver. An empty customDir uses the
// built-in styles only.
func NewStyleResolver(customDir string) (*StyleResolver, error) {
	r := &StyleResolver{embedded: NewEmbeddedLoader()}
	if customDir != "" {
		fsLoader, err := NewFilesystemLoader(customDir)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle loads name from the custom directory, then the built-ins.
// Only a missing style falls back; invalid names and read errors do not.
func (r *StyleResolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}
	css, err := r.custom.LoadStyle(name)
	if err == nil {
		return css, nil
	}
	if !errors.Is(err, ErrStyleNotFound) {
		return "", err
	}
	return r.embedded.LoadStyle(name)
}

// Resolve loads nameOrPath. Values containing a path separator or ending in
// .css name a file on disk; anything else is a style name.
func (r *StyleResolver) Resolve(nameOrPath string) (string, error) {
	if !fileutil.IsFilePath(nameOrPath) && !strings.HasSuffix(strings.ToLower(nameOrPath), ".css") {
		return r.LoadStyle(nameOrPath)
	}
	content, err := os.ReadFile(nameOrPath) // #nosec G304 -- path chosen by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrStyleNotFound, nameOrPath)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *StyleResolver) HasCustomLoader() bool {
	return r.custom != nil
}
