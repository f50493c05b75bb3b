package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	include "github.com/alnah/go-include"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput           = errors.New("no input specified")
	ErrNoDocuments       = errors.New("no HTML documents found")
	ErrUsage             = errors.New("invalid usage")
	ErrInclusionFailures = errors.New("some inclusions failed")
)

// stdinArg selects reading one document from stdin and writing it to stdout.
const stdinArg = "-"

// runResolve resolves the inclusion points of HTML documents.
func runResolve(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseResolveFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}
	inputPath := positional[0]

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	mergeCommonFlags(&flags.common, cfg)
	mergeIncludeFlags(&flags.include, cfg)
	if err := mergeFetchFlags(&flags.fetch, cfg); err != nil {
		return err
	}
	mergeCacheFlags(&flags.cache, cfg)
	mergeRenderFlags(&flags.render, cfg)
	mergePDFFlags(&flags.pdf, cfg)
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}

	// Local documents include their neighbours: without an explicit file
	// root, file sources are confined to the input location.
	if !cfg.Fetch.AllowFile {
		cfg.Fetch.AllowFile = true
		cfg.Fetch.RootDir = inputRoot(inputPath)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg

	logger, err := newLogger(env.Stderr, cfg, &flags.common)
	if err != nil {
		return err
	}

	cache, redis := newCache(cfg)
	if redis != nil {
		defer func() { _ = redis.Close() }()
	}

	opts, err := pipelineOptions(cfg, logger, cache)
	if err != nil {
		return err
	}
	p, err := include.NewPipeline(opts...)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(ctx)
	defer stop()

	if inputPath == stdinArg {
		return resolveStream(ctx, p, env)
	}

	files, err := discoverFiles(inputPath, cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoDocuments, inputPath)
	}

	params := &resolveParams{pipeline: p}

	var pool Pool
	if cfg.Output.PDF {
		page, err := buildPageSettings(cfg)
		if err != nil {
			return err
		}
		timeout := cfg.Fetch.TimeoutDuration()
		exporters := include.NewExporterPool(include.ResolvePoolSize(flags.workers), func() (*include.PDFExporter, error) {
			return include.NewPDFExporter(include.WithPageSettings(page), include.WithPDFTimeout(timeout))
		})
		defer func() { _ = exporters.Close() }()
		pool = &poolAdapter{pool: exporters}
		params.pdf = true
	}

	workers := include.ResolvePoolSize(flags.workers)
	logger.Debug("resolving documents", "count", len(files), "workers", workers, "pdf", cfg.Output.PDF)

	results := resolveBatch(ctx, workers, pool, files, params)

	summary := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed: %w", summary.Failed, firstError(results))
	}
	if summary.Partial > 0 {
		return fmt.Errorf("%w in %d document(s)", ErrInclusionFailures, summary.Partial)
	}
	return nil
}

// resolveStream resolves one document read from stdin onto stdout.
// Relative sources resolve against the configured base URL, or the working
// directory when none is set.
func resolveStream(ctx context.Context, p *include.Pipeline, env *Environment) error {
	content, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", ErrReadHTML, err)
	}

	if p.BaseURL() == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		p, err = p.Rebase(dirURL(cwd))
		if err != nil {
			return err
		}
	}

	out, report, err := p.ProcessHTML(ctx, string(content))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(env.Stdout, out); err != nil {
		return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
	}
	if report.Failed() {
		return fmt.Errorf("%w: %v", ErrInclusionFailures, report.Err())
	}
	return nil
}

// inputRoot returns the directory file sources are confined to when
// resolving inputPath.
func inputRoot(inputPath string) string {
	if inputPath == stdinArg {
		return "."
	}
	info, err := os.Stat(inputPath)
	if err == nil && info.IsDir() {
		return inputPath
	}
	return filepath.Dir(inputPath)
}

// firstError returns the first per-document error, in input order.
func firstError(results []ResolveResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
