package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Include.MaxDepth != 3 {
		t.Errorf("Include.MaxDepth = %d, want 3", cfg.Include.MaxDepth)
	}
	if cfg.Include.Concurrency != 0 {
		t.Errorf("Include.Concurrency = %d, want 0", cfg.Include.Concurrency)
	}
	if got := cfg.Fetch.TimeoutDuration(); got != 30*time.Second {
		t.Errorf("Fetch.TimeoutDuration() = %v, want 30s", got)
	}
	if cfg.Fetch.AllowFile {
		t.Error("Fetch.AllowFile = true, want false")
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}
	if !cfg.Markdown.Sections {
		t.Error("Markdown.Sections = false, want true")
	}
	if !cfg.Highlight.Enabled {
		t.Error("Highlight.Enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit returns error", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		field   string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "max depth zero",
			mutate:  func(c *Config) { c.Include.MaxDepth = 0 },
			wantErr: ErrInvalidValue,
			field:   "include.maxDepth",
		},
		{
			name:    "max depth above limit",
			mutate:  func(c *Config) { c.Include.MaxDepth = MaxMaxDepth + 1 },
			wantErr: ErrInvalidValue,
			field:   "include.maxDepth",
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Include.Concurrency = -1 },
			wantErr: ErrInvalidValue,
			field:   "include.concurrency",
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.Include.BaseURL = "docs/index.html" },
			wantErr: ErrInvalidValue,
			field:   "include.baseURL",
		},
		{
			name:   "absolute base URL",
			mutate: func(c *Config) { c.Include.BaseURL = "https://example.com/docs/" },
		},
		{
			name:    "base URL too long",
			mutate:  func(c *Config) { c.Include.BaseURL = "https://example.com/" + strings.Repeat("a", MaxURLLength) },
			wantErr: ErrFieldTooLong,
			field:   "include.baseURL",
		},
		{
			name:    "unparsable timeout",
			mutate:  func(c *Config) { c.Fetch.Timeout = "soon" },
			wantErr: ErrInvalidValue,
			field:   "fetch.timeout",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Fetch.Timeout = "0" },
			wantErr: ErrInvalidValue,
			field:   "fetch.timeout",
		},
		{
			name:    "zero max bytes",
			mutate:  func(c *Config) { c.Fetch.MaxBytes = 0 },
			wantErr: ErrInvalidValue,
			field:   "fetch.maxBytes",
		},
		{
			name:    "user agent too long",
			mutate:  func(c *Config) { c.Fetch.UserAgent = strings.Repeat("x", MaxUserAgentLength+1) },
			wantErr: ErrFieldTooLong,
			field:   "fetch.userAgent",
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: ErrInvalidValue,
			field:   "cache.backend",
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.Cache.TTL = "-1m" },
			wantErr: ErrInvalidValue,
			field:   "cache.ttl",
		},
		{
			name: "redis backend without address",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Backend = CacheRedis
			},
			wantErr: ErrInvalidValue,
			field:   "cache.redis.addr",
		},
		{
			name: "redis backend disabled without address",
			mutate: func(c *Config) {
				c.Cache.Backend = CacheRedis
			},
		},
		{
			name:    "unknown highlight style",
			mutate:  func(c *Config) { c.Highlight.Style = "no-such-style" },
			wantErr: ErrInvalidValue,
			field:   "highlight.style",
		},
		{
			name:    "unknown page size",
			mutate:  func(c *Config) { c.Output.Page.Size = "tabloid" },
			wantErr: ErrInvalidValue,
			field:   "output.page.size",
		},
		{
			name:    "unknown orientation",
			mutate:  func(c *Config) { c.Output.Page.Orientation = "diagonal" },
			wantErr: ErrInvalidValue,
			field:   "output.page.orientation",
		},
		{
			name:    "margin out of range",
			mutate:  func(c *Config) { c.Output.Page.Margin = 5 },
			wantErr: ErrInvalidValue,
			field:   "output.page.margin",
		},
		{
			name:    "malformed footer date",
			mutate:  func(c *Config) { c.Output.Page.FooterDate = "auto:" },
			wantErr: ErrInvalidValue,
			field:   "output.page.footerDate",
		},
		{
			name:    "footer date too long",
			mutate:  func(c *Config) { c.Output.Page.FooterDate = strings.Repeat("x", MaxFooterLength+1) },
			wantErr: ErrFieldTooLong,
			field:   "output.page.footerDate",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: ErrInvalidValue,
			field:   "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrInvalidValue,
			field:   "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name field %q", err, tt.field)
			}
		})
	}
}

func TestCacheConfig_TTLDuration(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{ttl: "", want: 0},
		{ttl: "0", want: 0},
		{ttl: "90s", want: 90 * time.Second},
		{ttl: "garbage", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.ttl, func(t *testing.T) {
			if got := (CacheConfig{TTL: tt.ttl}).TTLDuration(); got != tt.want {
				t.Errorf("TTLDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	t.Run("no variables keeps values", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(env(nil)); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.Include.MaxDepth != 3 {
			t.Errorf("MaxDepth = %d, want 3", cfg.Include.MaxDepth)
		}
	})

	t.Run("overrides depth timeout and redis", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(env(map[string]string{
			EnvMaxDepth:  "5",
			EnvTimeout:   "2s",
			EnvRedisAddr: "localhost:6379",
		}))
		if err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.Include.MaxDepth != 5 {
			t.Errorf("MaxDepth = %d, want 5", cfg.Include.MaxDepth)
		}
		if cfg.Fetch.Timeout != "2s" {
			t.Errorf("Timeout = %q, want 2s", cfg.Fetch.Timeout)
		}
		if !cfg.Cache.Enabled || cfg.Cache.Backend != CacheRedis || cfg.Cache.Redis.Addr != "localhost:6379" {
			t.Errorf("Cache = %+v, want enabled redis at localhost:6379", cfg.Cache)
		}
	})

	t.Run("invalid depth", func(t *testing.T) {
		err := DefaultConfig().ApplyEnv(env(map[string]string{EnvMaxDepth: "three"}))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		err := DefaultConfig().ApplyEnv(env(map[string]string{EnvTimeout: "later"}))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "test.yaml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		return path
	}

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		path := writeConfig(t, `include:
  maxDepth: 5
  concurrency: 4
fetch:
  timeout: "10s"
  allowFile: true
  rootDir: "/srv/docs"
  headers:
    Authorization: "Bearer token"
cache:
  enabled: true
  ttl: "1m"
highlight:
  style: "monokai"
  inline: true
log:
  level: debug
  format: json
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Include.MaxDepth != 5 {
			t.Errorf("Include.MaxDepth = %d, want 5", cfg.Include.MaxDepth)
		}
		if cfg.Include.Concurrency != 4 {
			t.Errorf("Include.Concurrency = %d, want 4", cfg.Include.Concurrency)
		}
		if got := cfg.Fetch.TimeoutDuration(); got != 10*time.Second {
			t.Errorf("Fetch.TimeoutDuration() = %v, want 10s", got)
		}
		if !cfg.Fetch.AllowFile || cfg.Fetch.RootDir != "/srv/docs" {
			t.Errorf("Fetch = %+v, want file access under /srv/docs", cfg.Fetch)
		}
		if cfg.Fetch.Headers["Authorization"] != "Bearer token" {
			t.Errorf("Fetch.Headers = %v", cfg.Fetch.Headers)
		}
		if got := cfg.Cache.TTLDuration(); got != time.Minute {
			t.Errorf("Cache.TTLDuration() = %v, want 1m", got)
		}
		if cfg.Highlight.Style != "monokai" || !cfg.Highlight.Inline {
			t.Errorf("Highlight = %+v", cfg.Highlight)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v", cfg.Log)
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		path := writeConfig(t, "log:\n  level: warn\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Include.MaxDepth != 3 {
			t.Errorf("Include.MaxDepth = %d, want default 3", cfg.Include.MaxDepth)
		}
		if !cfg.Markdown.Sections {
			t.Error("Markdown.Sections = false, want default true")
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown name returns NotFoundError with tried paths", func(t *testing.T) {
		_, err := LoadConfig("definitely-not-a-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("error = %T, want *NotFoundError", err)
		}
		if len(nf.Tried) == 0 {
			t.Error("Tried is empty")
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, "include: [unclosed")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, "include:\n  maxDeptj: 4\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("empty file returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, "")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := writeConfig(t, "include:\n  maxDepth: 0\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("oversized input is rejected", func(t *testing.T) {
		path := writeConfig(t, "# "+strings.Repeat("x", MaxInputSize)+"\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("name resolves from current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "team.yml"), []byte("include:\n  maxDepth: 2\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		t.Chdir(dir)

		cfg, err := LoadConfig("team")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Include.MaxDepth != 2 {
			t.Errorf("Include.MaxDepth = %d, want 2", cfg.Include.MaxDepth)
		}
	})
}

func TestMarshal(t *testing.T) {
	out, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "maxDepth: 3") {
		t.Errorf("Marshal() output missing maxDepth:\n%s", out)
	}

	var back Config
	if err := unmarshalStrict(out, &back); err != nil {
		t.Fatalf("unmarshalStrict() error = %v", err)
	}
	if back.Include.MaxDepth != 3 {
		t.Errorf("round trip MaxDepth = %d, want 3", back.Include.MaxDepth)
	}
}
