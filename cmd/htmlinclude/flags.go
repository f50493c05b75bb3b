package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// unsetSentinel detects if an int flag was explicitly set.
// Zero is a valid concurrency (unlimited), so -1 marks "not given".
const unsetSentinel = -1

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
}

// includeFlags holds driver flags.
type includeFlags struct {
	maxDepth    int
	concurrency int
	base        string
	root        string
}

// fetchFlags holds retrieval flags.
type fetchFlags struct {
	timeout   string
	userAgent string
	headers   []string // "Key: Value"
}

// cacheFlags holds fetch cache flags.
type cacheFlags struct {
	enabled   bool
	redisAddr string
	ttl       string
}

// renderFlags holds markdown and highlighting flags.
type renderFlags struct {
	noSections     bool
	noHighlight    bool
	highlightStyle string
	inlineStyles   bool
	highlightCSS   bool
	style          string
	styleDir       string
}

// pdfFlags holds PDF export flags.
type pdfFlags struct {
	enabled     bool
	size        string
	orientation string
	margin      float64
	pageNumbers bool
	footerDate  string
}

// resolveFlags holds all flags for the resolve command.
type resolveFlags struct {
	common  commonFlags
	output  string
	workers int
	include includeFlags
	fetch   fetchFlags
	cache   cacheFlags
	render  renderFlags
	pdf     pdfFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	maxBody int64
	metrics bool
	include includeFlags
	fetch   fetchFlags
	cache   cacheFlags
	render  renderFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addIncludeFlags adds driver flags to a FlagSet.
func addIncludeFlags(fs *flag.FlagSet, f *includeFlags) {
	fs.IntVarP(&f.maxDepth, "max-depth", "d", 0, "inclusion passes per document (0 = config)")
	fs.IntVar(&f.concurrency, "concurrency", unsetSentinel, "inclusions resolved at once per pass (0 = unlimited)")
	fs.StringVarP(&f.base, "base", "b", "", "base URL for relative sources")
	fs.StringVar(&f.root, "root", "", "enable file sources confined to this directory")
}

// addFetchFlags adds retrieval flags to a FlagSet.
func addFetchFlags(fs *flag.FlagSet, f *fetchFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-fetch timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent for HTTP fetches")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "extra request header \"Key: Value\" (repeatable)")
}

// addCacheFlags adds fetch cache flags to a FlagSet.
func addCacheFlags(fs *flag.FlagSet, f *cacheFlags) {
	fs.BoolVar(&f.enabled, "cache", false, "cache fetched sources")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "share the cache through redis at host:port")
	fs.StringVar(&f.ttl, "cache-ttl", "", "cache entry lifetime (e.g., 5m, 0 = no expiry)")
}

// addRenderFlags adds markdown and highlighting flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.noSections, "no-sections", false, "do not wrap included markdown in sections")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "leave code sources as plain text")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "chroma style name")
	fs.BoolVar(&f.inlineStyles, "inline-styles", false, "emit inline styles instead of CSS classes")
	fs.BoolVar(&f.highlightCSS, "highlight-css", false, "inject the highlight style sheet")
	fs.StringVarP(&f.style, "style", "s", "", "document style name or CSS file path")
	fs.StringVar(&f.styleDir, "style-dir", "", "directory with styles/{name}.css overrides")
}

// addPDFFlags adds PDF export flags to a FlagSet.
func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.BoolVar(&f.enabled, "pdf", false, "also export each document to PDF")
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "print page numbers in the footer")
	fs.StringVar(&f.footerDate, "footer-date", "", "footer date: text, auto, or auto:FORMAT")
}

// newResolveFlagSet registers every resolve flag on a new FlagSet.
func newResolveFlagSet(f *resolveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel documents (0 = auto)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addIncludeFlags(fs, &f.include)
	addFetchFlags(fs, &f.fetch)
	addCacheFlags(fs, &f.cache)
	addRenderFlags(fs, &f.render)
	addPDFFlags(fs, &f.pdf)

	fs.Usage = func() { printResolveUsage(os.Stderr) }
	return fs
}

// parseResolveFlags parses resolve command flags and returns positional args.
func parseResolveFlags(args []string) (*resolveFlags, []string, error) {
	f := &resolveFlags{}
	fs := newResolveFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", ":8080", "listen address")
	fs.Int64Var(&f.maxBody, "max-body", 0, "request body limit in bytes (0 = 10MB)")
	fs.BoolVar(&f.metrics, "metrics", true, "expose Prometheus metrics on /metrics")

	addCommonFlags(fs, &f.common)
	addIncludeFlags(fs, &f.include)
	addFetchFlags(fs, &f.fetch)
	addCacheFlags(fs, &f.cache)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
