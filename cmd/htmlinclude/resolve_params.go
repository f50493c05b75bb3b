package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	include "github.com/alnah/go-include"
	"github.com/alnah/go-include/internal/config"
	"github.com/alnah/go-include/internal/fetch"
	"github.com/alnah/go-include/internal/logging"
)

// ErrInvalidHeader is returned for --header values without a colon.
var ErrInvalidHeader = errors.New("invalid header")

// loadConfig loads the named config (flag, then HTMLINCLUDE_CONFIG), or the
// defaults when neither is set, and applies environment overrides.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	if name == "" {
		name = env.Getenv(config.EnvConfig)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(env.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeCommonFlags merges logging flags into config. CLI values override config values.
func mergeCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
}

// mergeIncludeFlags merges driver flags into config.
func mergeIncludeFlags(f *includeFlags, cfg *config.Config) {
	if f.maxDepth != 0 {
		cfg.Include.MaxDepth = f.maxDepth
	}
	if f.concurrency != unsetSentinel {
		cfg.Include.Concurrency = f.concurrency
	}
	if f.base != "" {
		cfg.Include.BaseURL = f.base
	}
	if f.root != "" {
		cfg.Fetch.AllowFile = true
		cfg.Fetch.RootDir = f.root
	}
}

// mergeFetchFlags merges retrieval flags into config.
func mergeFetchFlags(f *fetchFlags, cfg *config.Config) error {
	if f.timeout != "" {
		cfg.Fetch.Timeout = f.timeout
	}
	if f.userAgent != "" {
		cfg.Fetch.UserAgent = f.userAgent
	}
	for _, h := range f.headers {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("%w: %q (want \"Key: Value\")", ErrInvalidHeader, h)
		}
		if cfg.Fetch.Headers == nil {
			cfg.Fetch.Headers = make(map[string]string)
		}
		cfg.Fetch.Headers[key] = strings.TrimSpace(value)
	}
	return nil
}

// mergeCacheFlags merges cache flags into config.
func mergeCacheFlags(f *cacheFlags, cfg *config.Config) {
	if f.enabled {
		cfg.Cache.Enabled = true
	}
	if f.redisAddr != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Backend = config.CacheRedis
		cfg.Cache.Redis.Addr = f.redisAddr
	}
	if f.ttl != "" {
		cfg.Cache.TTL = f.ttl
	}
}

// mergeRenderFlags merges markdown and highlighting flags into config.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) {
	if f.noSections {
		cfg.Markdown.Sections = false
	}
	if f.highlightStyle != "" {
		cfg.Highlight.Style = f.highlightStyle
	}
	if f.inlineStyles {
		cfg.Highlight.Inline = true
	}
	if f.highlightCSS {
		cfg.Highlight.CSS = true
	}
	if f.noHighlight {
		cfg.Highlight.Enabled = false
	}
	if f.style != "" {
		cfg.Style.Name = f.style
	}
	if f.styleDir != "" {
		cfg.Style.Dir = f.styleDir
	}
}

// mergePDFFlags merges PDF export flags into config.
func mergePDFFlags(f *pdfFlags, cfg *config.Config) {
	if f.enabled {
		cfg.Output.PDF = true
	}
	if f.size != "" {
		cfg.Output.Page.Size = f.size
	}
	if f.orientation != "" {
		cfg.Output.Page.Orientation = f.orientation
	}
	if f.margin != 0 {
		cfg.Output.Page.Margin = f.margin
	}
	if f.pageNumbers {
		cfg.Output.Page.PageNumbers = true
	}
	if f.footerDate != "" {
		cfg.Output.Page.FooterDate = f.footerDate
	}
}

// newLogger builds the application logger. --verbose lowers the level to
// debug and --quiet raises it to error, both over the configured level.
func newLogger(w io.Writer, cfg *config.Config, f *commonFlags) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return logging.NewWithWriter(w, level, cfg.Log.Format), nil
}

// newCache builds the configured fetch cache. The redis cache is also
// returned so callers can ping and close it; it is nil for other backends.
func newCache(cfg *config.Config) (include.Cache, *fetch.RedisCache) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == config.CacheRedis {
		rc := fetch.NewRedisCache(
			cfg.Cache.Redis.Addr,
			cfg.Cache.Redis.Password,
			cfg.Cache.Redis.DB,
			fetch.WithTTL(cfg.Cache.TTLDuration()),
			fetch.WithPrefix(cfg.Cache.Redis.Prefix),
		)
		return rc, rc
	}
	return include.NewMemoryCache(cfg.Cache.TTLDuration()), nil
}

// pipelineOptions translates config into pipeline options. It fails only
// when the configured style cannot be loaded.
func pipelineOptions(cfg *config.Config, logger *slog.Logger, cache include.Cache) ([]include.Option, error) {
	opts := []include.Option{
		include.WithLogger(logger),
		include.WithMaxDepth(cfg.Include.MaxDepth),
		include.WithConcurrency(cfg.Include.Concurrency),
		include.WithBaseURL(cfg.Include.BaseURL),
		include.WithTimeout(cfg.Fetch.TimeoutDuration()),
		include.WithMaxBytes(cfg.Fetch.MaxBytes),
		include.WithUserAgent(cfg.Fetch.UserAgent),
		include.WithTransforms(include.BuiltinTransforms()),
		include.WithMarkdownSections(cfg.Markdown.Sections),
	}
	for key, value := range cfg.Fetch.Headers {
		opts = append(opts, include.WithHeader(key, value))
	}
	if cfg.Fetch.AllowFile {
		opts = append(opts, include.WithFileRoot(cfg.Fetch.RootDir))
	}
	if cache != nil {
		opts = append(opts, include.WithCache(cache))
	}
	if cfg.Highlight.Enabled {
		opts = append(opts, include.WithHighlightStyle(cfg.Highlight.Style, cfg.Highlight.Inline))
		if cfg.Highlight.CSS {
			opts = append(opts, include.WithHighlightCSS())
		}
	} else {
		opts = append(opts, include.WithoutHighlighting())
	}
	if cfg.Style.Name != "" {
		css, err := include.LoadStyle(cfg.Style.Name, cfg.Style.Dir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, include.WithStyle(css))
	}
	return opts, nil
}

// buildPageSettings converts the configured page layout for PDF export.
func buildPageSettings(cfg *config.Config) (*include.PageSettings, error) {
	ps := &include.PageSettings{
		Size:        cfg.Output.Page.Size,
		Orientation: cfg.Output.Page.Orientation,
		Margin:      cfg.Output.Page.Margin,
		PageNumbers: cfg.Output.Page.PageNumbers,
		FooterDate:  cfg.Output.Page.FooterDate,
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}
