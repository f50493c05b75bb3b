package assets

// Notes:
// - The symlink escape test is skipped where symlinks cannot be created.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeStyle creates {dir}/styles/{name}.css.
func writeStyle(t *testing.T, dir, name, css string) {
	t.Helper()
	stylesDir := filepath.Join(dir, "styles")
	if err := os.MkdirAll(stylesDir, 0o750); err != nil {
		t.Fatalf("creating styles dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stylesDir, name+".css"), []byte(css), 0o600); err != nil {
		t.Fatalf("writing style: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewFilesystemLoader - Base Path Validation
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "directory", path: t.TempDir()},
		{name: "empty", path: "", wantErr: ErrInvalidBasePath},
		{name: "missing", path: "/nonexistent/path/abc123xyz", wantErr: ErrInvalidBasePath},
		{name: "file", path: file, wantErr: ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewFilesystemLoader(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || loader == nil {
				t.Fatalf("NewFilesystemLoader() = %v, %v", loader, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_LoadStyle
// ---------------------------------------------------------------------------

func TestFilesystemLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeStyle(t, dir, "handbook", "body { color: teal; }")
	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("existing style", func(t *testing.T) {
		t.Parallel()

		css, err := loader.LoadStyle("handbook")
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if css != "body { color: teal; }" {
			t.Errorf("LoadStyle() = %q", css)
		}
	})

	t.Run("missing style", func(t *testing.T) {
		t.Parallel()

		if _, err := loader.LoadStyle("absent"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		if _, err := loader.LoadStyle("../handbook"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("error = %v, want ErrInvalidAssetName", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_PathContainment
// ---------------------------------------------------------------------------

func TestFilesystemLoader_PathContainment(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.css")
	if err := os.WriteFile(secret, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(dir, "styles", "escape.css")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadStyle("escape"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("error = %v, want ErrPathTraversal", err)
	}
}
