package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// stylesDir is the subdirectory of a custom asset directory holding styles.
const stylesDir = "styles"

// FilesystemLoader loads styles from {basePath}/styles/{name}.css. Reads go
// through an os.Root, so neither names nor symlinks can reach files outside
// basePath.
type FilesystemLoader struct {
	basePath string
}

var _ StyleLoader = (*FilesystemLoader)(nil)

// NewFilesystemLoader creates a FilesystemLoader rooted at basePath.
// Returns ErrInvalidBasePath if basePath is not a readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	info, err := os.Stat(basePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, basePath)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, basePath)
	}

	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open directory: %v", ErrInvalidBasePath, err)
	}
	_ = root.Close()

	return &FilesystemLoader{basePath: basePath}, nil
}

// LoadStyle reads {basePath}/styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	root, err := os.OpenRoot(f.basePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer func() { _ = root.Close() }()

	rel := path.Join(stylesDir, name+".css")
	content, err := root.ReadFile(rel)
	if err != nil {
		return "", classifyReadError(root, rel, name, err)
	}
	return string(content), nil
}

// classifyReadError maps a failed read inside root to the package errors.
// A symlink that exists but cannot be followed inside root points outside it.
func classifyReadError(root *os.Root, rel, name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	if info, lerr := root.Lstat(rel); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, rel, root.Name())
	}
	return fmt.Errorf("%w: %v", ErrAssetRead, err)
}
