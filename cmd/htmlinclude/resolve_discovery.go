package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	include "github.com/alnah/go-include"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .html or .htm extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// resolvedSuffix marks documents written next to their source, so later
// runs over the same directory skip them.
const resolvedSuffix = ".resolved"

// FileToResolve represents a single document to process.
type FileToResolve struct {
	InputPath  string
	OutputPath string
}

// PDFPath returns the PDF path corresponding to the HTML output.
func (f FileToResolve) PDFPath() string {
	return strings.TrimSuffix(f.OutputPath, filepath.Ext(f.OutputPath)) + ".pdf"
}

// discoverFiles finds all HTML documents to resolve.
// Documents under outputDir are skipped when it lies inside inputPath.
func discoverFiles(inputPath, outputDir string) ([]FileToResolve, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateHTMLExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToResolve{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	absOut := ""
	if outputDir != "" {
		absOut, _ = filepath.Abs(outputDir)
	}

	var files []FileToResolve
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if absOut != "" && path != inputPath {
				if abs, err := filepath.Abs(path); err == nil && abs == absOut {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !isHTMLFile(path) || isResolvedOutput(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToResolve{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the output path for a document.
// Without an output directory the result sits next to the source with a
// ".resolved" infix; otherwise the tree under baseInputDir is mirrored.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+resolvedSuffix+ext)
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+ext)
		}
	}

	return filepath.Join(outputDir, base+ext)
}

// isHTMLFile reports whether path has an HTML extension.
func isHTMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// isResolvedOutput reports whether path was written by an earlier run.
func isResolvedOutput(path string) bool {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(name, resolvedSuffix)
}

// validateHTMLExtension checks that the file has a .html or .htm extension.
func validateHTMLExtension(path string) error {
	if !isHTMLFile(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > include.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, include.MaxPoolSize)
	}
	return nil
}
