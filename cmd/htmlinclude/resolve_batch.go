package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	include "github.com/alnah/go-include"
	"github.com/alnah/go-include/internal/fetch"
	"github.com/alnah/go-include/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadHTML     = errors.New("failed to read HTML file")
	ErrWriteOutput  = errors.New("failed to write output file")
	ErrExporterInit = errors.New("failed to initialize PDF exporter")
)

// Exporter renders a resolved document to PDF.
type Exporter interface {
	Export(ctx context.Context, html string) ([]byte, error)
}

// Compile-time interface implementation check.
var _ Exporter = (*include.PDFExporter)(nil)

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Exporter, error)
	Release(Exporter)
	Size() int
}

// poolAdapter exposes an include.ExporterPool as a Pool.
type poolAdapter struct {
	pool *include.ExporterPool
}

func (a *poolAdapter) Acquire(ctx context.Context) (Exporter, error) {
	return a.pool.Acquire(ctx)
}

// Release returns an exporter obtained from Acquire. Anything else is a
// programming error.
func (a *poolAdapter) Release(e Exporter) {
	exp, ok := e.(*include.PDFExporter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(exp)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// resolveParams holds settings shared by every document of a batch.
type resolveParams struct {
	pipeline *include.Pipeline
	pdf      bool
}

// ResolveResult holds the outcome of a single document.
type ResolveResult struct {
	InputPath  string
	OutputPath string
	PDFPath    string
	Report     *include.Report
	Err        error
	Duration   time.Duration
}

// resolveBatch processes files concurrently. Each worker holds one
// exporter from pool for its lifetime; pool may be nil when PDF export is off.
func resolveBatch(ctx context.Context, workers int, pool Pool, files []FileToResolve, params *resolveParams) []ResolveResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := workers
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ResolveResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var exp Exporter
			if params.pdf && pool != nil {
				var err error
				exp, err = pool.Acquire(ctx)
				if err != nil {
					// Exporter creation failed, mark remaining jobs as failed
					for idx := range jobs {
						results[idx] = ResolveResult{
							InputPath: files[idx].InputPath,
							Err:       fmt.Errorf("%w: %w", ErrExporterInit, err),
						}
					}
					return
				}
				defer pool.Release(exp)
			}

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ResolveResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = resolveFile(ctx, exp, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// resolveFile processes a single document and returns the result.
// Relative sources resolve against the document's own location unless a
// base URL is configured.
func resolveFile(ctx context.Context, exp Exporter, f FileToResolve, params *resolveParams) ResolveResult {
	start := time.Now()
	result := ResolveResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) ResolveResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %w", ErrReadHTML, err))
	}

	p := params.pipeline
	if p.BaseURL() == "" {
		abs, err := filepath.Abs(f.InputPath)
		if err != nil {
			return finish(fmt.Errorf("%w: %w", ErrReadHTML, err))
		}
		if p, err = p.Rebase(fetch.PathToFileURL(abs)); err != nil {
			return finish(err)
		}
	}

	out, report, err := p.ProcessHTML(ctx, string(content))
	result.Report = report
	if err != nil {
		return finish(err)
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return finish(fmt.Errorf("%w: creating output directory: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}
	// #nosec G306 -- resolved documents are meant to be readable
	if err := os.WriteFile(f.OutputPath, []byte(out), filePermissions); err != nil {
		return finish(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	if exp != nil {
		pdf, err := exp.Export(ctx, out)
		if err != nil {
			return finish(err)
		}
		pdfPath := f.PDFPath()
		// #nosec G306 -- PDFs are meant to be readable
		if err := os.WriteFile(pdfPath, pdf, filePermissions); err != nil {
			return finish(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
		result.PDFPath = pdfPath
	}

	return finish(nil)
}

// dirURL returns the file URL of a directory, with the trailing slash that
// makes relative references resolve inside it.
func dirURL(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	u := fetch.PathToFileURL(abs)
	if u[len(u)-1] != '/' {
		u += "/"
	}
	return u
}

// ResultSummary holds the count of documents per outcome.
type ResultSummary struct {
	Succeeded int // written, every inclusion resolved
	Partial   int // written, some inclusions failed
	Failed    int // not written
}

// countResults tallies document outcomes.
func countResults(results []ResolveResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Report.Failed():
			summary.Partial++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs batch results using the provided writers.
func printResultsWithWriter(results []ResolveResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if r.Report.Failed() {
			fmt.Fprintf(env.Stderr, "WARN %s: %d inclusion(s) failed\n", r.InputPath, len(r.Report.Failures))
			for _, fl := range r.Report.Failures {
				fmt.Fprintf(env.Stderr, "  %s: %v%s\n", fl.Source, fl.Err, failureHint(fl.Err, env))
			}
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, %d pass(es), %d resolved)\n",
				r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), r.Report.Passes, r.Report.Resolved)
			if r.Report.Unresolved > 0 {
				fmt.Fprintf(env.Stdout, "  %d inclusion(s) left at max depth\n", r.Report.Unresolved)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.PDFPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.PDFPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d with failed inclusions, %d failed\n",
			summary.Succeeded, summary.Partial, summary.Failed)
	}

	return summary
}

// failureHint suggests a fix for common per-inclusion failures.
func failureHint(err error, env *Environment) string {
	root := ""
	if env.Config != nil && env.Config.Fetch.AllowFile {
		root = env.Config.Fetch.RootDir
	}
	switch {
	case errors.Is(err, fetch.ErrUnsupportedScheme):
		return hints.ForUnsupportedScheme(root)
	case errors.Is(err, fetch.ErrOutsideRoot):
		return hints.ForOutsideRoot(root)
	case errors.Is(err, context.DeadlineExceeded):
		var fe *fetch.FetchError
		if errors.As(err, &fe) {
			return hints.ForTimeout(fe.URI)
		}
		return hints.ForTimeout("")
	}
	return ""
}
