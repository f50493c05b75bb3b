package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-include/internal/dateutil"
	"github.com/alnah/go-include/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxURLLength       = 2048 // Browser limit
	MaxUserAgentLength = 200
	MaxPrefixLength    = 100
	MaxFooterLength    = 100
	MaxPathLength      = 4096
	MaxMaxDepth        = 32 // deeper nesting is almost certainly a cycle
)

// Environment variables that override file values.
const (
	EnvConfig    = "HTMLINCLUDE_CONFIG"
	EnvMaxDepth  = "HTMLINCLUDE_MAX_DEPTH"
	EnvTimeout   = "HTMLINCLUDE_TIMEOUT"
	EnvRedisAddr = "HTMLINCLUDE_REDIS_ADDR"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for inclusion runs.
type Config struct {
	Include   IncludeConfig   `yaml:"include"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Cache     CacheConfig     `yaml:"cache"`
	Markdown  MarkdownConfig  `yaml:"markdown"`
	Highlight HighlightConfig `yaml:"highlight"`
	Style     StyleConfig     `yaml:"style"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// IncludeConfig defines driver options.
type IncludeConfig struct {
	MaxDepth    int    `yaml:"maxDepth"`    // passes per run (default: 3)
	Concurrency int    `yaml:"concurrency"` // in-flight inclusions per pass, 0 = unlimited
	BaseURL     string `yaml:"baseURL"`     // resolves relative sources (empty = input location)
}

// FetchConfig defines retrieval options.
type FetchConfig struct {
	Timeout   string            `yaml:"timeout"`  // Go duration (default: "30s")
	MaxBytes  int64             `yaml:"maxBytes"` // body cap (default: 10MiB)
	AllowFile bool              `yaml:"allowFile"`
	RootDir   string            `yaml:"rootDir"` // file sources are confined here (default: ".")
	UserAgent string            `yaml:"userAgent"`
	Headers   map[string]string `yaml:"headers"`
}

// CacheConfig defines fetch cache options.
type CacheConfig struct {
	Enabled bool        `yaml:"enabled"`
	Backend string      `yaml:"backend"` // "memory", "redis" (default: "memory")
	TTL     string      `yaml:"ttl"`     // Go duration, "0" = no expiry (default: "5m")
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig defines the shared cache connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// MarkdownConfig defines markdown rendering options.
type MarkdownConfig struct {
	Sections bool `yaml:"sections"` // wrap headings in nested <section> elements
}

// HighlightConfig defines code highlighting options.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"`  // chroma style name (default: "github")
	Inline  bool   `yaml:"inline"` // inline styles instead of CSS classes
	CSS     bool   `yaml:"css"`    // inject the style sheet into the document head
}

// StyleConfig selects a document stylesheet.
type StyleConfig struct {
	Name string `yaml:"name"` // built-in or custom style name, or a .css path (empty = none)
	Dir  string `yaml:"dir"`  // directory holding styles/{name}.css overrides
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir  string     `yaml:"dir"` // empty = next to the source
	PDF  bool       `yaml:"pdf"` // also export a PDF per document
	Page PageConfig `yaml:"page"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "letter")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
	PageNumbers bool    `yaml:"pageNumbers"`
	FooterDate  string  `yaml:"footerDate"` // literal, "auto" or "auto:FORMAT"
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: "info")
	Format string `yaml:"format"` // text, json (default: "text")
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Include: IncludeConfig{MaxDepth: 3},
		Fetch: FetchConfig{
			Timeout:   "30s",
			MaxBytes:  10 << 20,
			RootDir:   ".",
			UserAgent: "go-include",
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     "5m",
			Redis:   RedisConfig{Prefix: "include:fetch:"},
		},
		Markdown:  MarkdownConfig{Sections: true},
		Highlight: HighlightConfig{Enabled: true, Style: "github"},
		Output: OutputConfig{
			Page: PageConfig{Size: "letter", Orientation: "portrait", Margin: 0.5},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks ranges, enums and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if c.Include.MaxDepth < 1 || c.Include.MaxDepth > MaxMaxDepth {
		return fmt.Errorf("%w: include.maxDepth: must be between 1 and %d, got %d", ErrInvalidValue, MaxMaxDepth, c.Include.MaxDepth)
	}
	if c.Include.Concurrency < 0 {
		return fmt.Errorf("%w: include.concurrency: must be >= 0, got %d", ErrInvalidValue, c.Include.Concurrency)
	}
	if err := validateFieldLength("include.baseURL", c.Include.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Include.BaseURL != "" {
		u, err := url.Parse(c.Include.BaseURL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("%w: include.baseURL: must be an absolute URL, got %q", ErrInvalidValue, c.Include.BaseURL)
		}
	}

	if d, err := parseDuration("fetch.timeout", c.Fetch.Timeout); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("%w: fetch.timeout: must be positive, got %q", ErrInvalidValue, c.Fetch.Timeout)
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("%w: fetch.maxBytes: must be positive, got %d", ErrInvalidValue, c.Fetch.MaxBytes)
	}
	if err := validateFieldLength("fetch.rootDir", c.Fetch.RootDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("fetch.userAgent", c.Fetch.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case "", CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("%w: cache.backend: must be memory or redis, got %q", ErrInvalidValue, c.Cache.Backend)
	}
	if d, err := parseDuration("cache.ttl", c.Cache.TTL); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("%w: cache.ttl: must be >= 0, got %q", ErrInvalidValue, c.Cache.TTL)
	}
	if c.Cache.Enabled && c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("%w: cache.redis.addr: required when cache.backend is redis", ErrInvalidValue)
	}
	if err := validateFieldLength("cache.redis.prefix", c.Cache.Redis.Prefix, MaxPrefixLength); err != nil {
		return err
	}

	if c.Highlight.Style != "" && !slices.Contains(styles.Names(), c.Highlight.Style) {
		return fmt.Errorf("%w: highlight.style: unknown style %q", ErrInvalidValue, c.Highlight.Style)
	}

	if err := validateFieldLength("style.name", c.Style.Name, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("style.dir", c.Style.Dir, MaxPathLength); err != nil {
		return err
	}

	if err := validateEnum("output.page.size", c.Output.Page.Size, "letter", "a4", "legal"); err != nil {
		return err
	}
	if err := validateEnum("output.page.orientation", c.Output.Page.Orientation, "portrait", "landscape"); err != nil {
		return err
	}
	if c.Output.Page.Margin != 0 && (c.Output.Page.Margin < 0.25 || c.Output.Page.Margin > 3.0) {
		return fmt.Errorf("%w: output.page.margin: must be between 0.25 and 3.0, got %.2f", ErrInvalidValue, c.Output.Page.Margin)
	}
	if err := validateFieldLength("output.page.footerDate", c.Output.Page.FooterDate, MaxFooterLength); err != nil {
		return err
	}
	if _, err := dateutil.Expand(c.Output.Page.FooterDate, time.Time{}); err != nil {
		return fmt.Errorf("%w: output.page.footerDate: %v", ErrInvalidValue, err)
	}

	if err := validateEnum("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return validateEnum("log.format", c.Log.Format, "text", "json")
}

// TimeoutDuration returns the parsed fetch timeout.
func (f FetchConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(f.Timeout)
	return d
}

// TTLDuration returns the parsed cache TTL.
func (c CacheConfig) TTLDuration() time.Duration {
	d, _ := parseDuration("cache.ttl", c.TTL)
	return d
}

// ApplyEnv overrides file values with HTMLINCLUDE_* environment variables.
// getenv is os.Getenv in production.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, EnvMaxDepth, err)
		}
		c.Include.MaxDepth = n
	}
	if v := getenv(EnvTimeout); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, EnvTimeout, err)
		}
		c.Fetch.Timeout = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.Enabled = true
		c.Cache.Backend = CacheRedis
		c.Cache.Redis.Addr = v
	}
	return nil
}

// parseDuration accepts Go durations, with empty and "0" meaning zero.
func parseDuration(field, s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	return d, nil
}

// validateEnum accepts empty values (meaning default) and any allowed value.
func validateEnum(field, value string, allowed ...string) error {
	if value == "" || slices.Contains(allowed, strings.ToLower(value)) {
		return nil
	}
	return fmt.Errorf("%w: %s: must be one of %s, got %q", ErrInvalidValue, field, strings.Join(allowed, ", "), value)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-include/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-include", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

// Is reports ErrConfigNotFound so callers can match with errors.Is.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}
