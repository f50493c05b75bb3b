package main

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	include "github.com/alnah/go-include"
)

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		outputDir string
		baseDir   string
		want      string
	}{
		{"next to source", "docs/page.html", "", "", filepath.Join("docs", "page.resolved.html")},
		{"htm keeps extension", "docs/page.htm", "", "", filepath.Join("docs", "page.resolved.htm")},
		{"flat output dir", "docs/page.html", "out", "", filepath.Join("out", "page.html")},
		{"mirrors tree", "docs/a/b/page.html", "out", "docs", filepath.Join("out", "a", "b", "page.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveOutputPath(tt.input, tt.outputDir, tt.baseDir); got != tt.want {
				t.Errorf("resolveOutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.outputDir, tt.baseDir, got, tt.want)
			}
		})
	}
}

func TestFileToResolve_PDFPath(t *testing.T) {
	t.Parallel()

	f := FileToResolve{OutputPath: filepath.Join("out", "page.html")}
	if got, want := f.PDFPath(), filepath.Join("out", "page.pdf"); got != want {
		t.Errorf("PDFPath() = %q, want %q", got, want)
	}
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t, map[string]string{"page.html": "<p></p>"})
		files, err := discoverFiles(filepath.Join(dir, "page.html"), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 || files[0].OutputPath != filepath.Join(dir, "page.resolved.html") {
			t.Errorf("files = %+v", files)
		}
	})

	t.Run("single file with wrong extension", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t, map[string]string{"notes.md": "# x"})
		_, err := discoverFiles(filepath.Join(dir, "notes.md"), "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(t.TempDir(), "nope.html"), "")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("directory walk skips non-html and earlier output", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t, map[string]string{
			"index.html":          "",
			"about.HTM":           "",
			"partials/nav.html":   "",
			"partials/readme.md":  "",
			"index.resolved.html": "",
		})
		files, err := discoverFiles(dir, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []string
		for _, f := range files {
			rel, _ := filepath.Rel(dir, f.InputPath)
			got = append(got, filepath.ToSlash(rel))
		}
		sort.Strings(got)
		want := []string{"about.HTM", "index.html", "partials/nav.html"}
		if len(got) != len(want) {
			t.Fatalf("files = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("files[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("output dir inside input is skipped", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t, map[string]string{
			"index.html":     "",
			"dist/old.html":  "",
			"sub/other.html": "",
		})
		files, err := discoverFiles(dir, filepath.Join(dir, "dist"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("files = %+v, want 2", files)
		}
		for _, f := range files {
			if filepath.Base(filepath.Dir(f.InputPath)) == "dist" {
				t.Errorf("discovered file from output dir: %s", f.InputPath)
			}
		}
	})
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{1, false},
		{include.MaxPoolSize, false},
		{include.MaxPoolSize + 1, true},
	}

	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
	}
}
