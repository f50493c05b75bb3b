package include

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alnah/go-include/internal/fetch"
	"github.com/alnah/go-include/internal/transform"
)

// Fetcher retrieves the textual content identified by an absolute URI.
// It must perform a single attempt and report failures as errors.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc = fetch.FetcherFunc

// Cache stores successfully fetched content by resolved URI.
type Cache = fetch.Cache

// NewMemoryCache returns an in-process Cache. A zero ttl keeps entries forever.
func NewMemoryCache(ttl time.Duration) Cache {
	return fetch.NewMemoryCache(ttl)
}

// TransformFunc transforms fetched text; uri is the resolved source.
type TransformFunc = transform.Func

// Transforms is a registry of named transforms.
type Transforms = transform.Registry

// NewTransforms returns an empty transform registry.
func NewTransforms() *Transforms { return transform.NewRegistry() }

// BuiltinTransforms returns a registry holding the built-in transforms:
// absolutize-links, trim, strip-front-matter and dedent.
func BuiltinTransforms() *Transforms { return transform.Builtins() }

// Option configures a Pipeline.
type Option func(*Pipeline)

// pipelineConfig holds settings resolved when the Pipeline is built.
type pipelineConfig struct {
	httpClient     *http.Client
	timeout        time.Duration
	maxBytes       int64
	userAgent      string
	headers        map[string]string
	fileRoot       string
	allowFile      bool
	cache          Cache
	registerer     prometheus.Registerer
	sections       bool
	highlight      bool
	highlightStyle string
	highlightInl   bool
	highlightCSS   bool
	stylesheet     string
}

// WithFetcher replaces the default HTTP fetcher. Relative sources are still
// resolved against the base URL before reaching f.
func WithFetcher(f Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// WithHTTPClient sets the client used by the default HTTP fetcher.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) {
		p.cfg.httpClient = c
	}
}

// WithTimeout bounds each HTTP fetch made by the default fetcher.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.cfg.timeout = d
	}
}

// WithMaxBytes caps the size of fetched content.
func WithMaxBytes(n int64) Option {
	return func(p *Pipeline) {
		p.cfg.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header of the default HTTP fetcher.
func WithUserAgent(ua string) Option {
	return func(p *Pipeline) {
		p.cfg.userAgent = ua
	}
}

// WithHeader adds a request header to every HTTP fetch made by the default
// fetcher.
func WithHeader(key, value string) Option {
	return func(p *Pipeline) {
		if p.cfg.headers == nil {
			p.cfg.headers = make(map[string]string)
		}
		p.cfg.headers[key] = value
	}
}

// WithFileRoot enables file:// and plain-path sources, confined to dir.
// An empty dir allows any local path.
func WithFileRoot(dir string) Option {
	return func(p *Pipeline) {
		p.cfg.allowFile = true
		p.cfg.fileRoot = dir
	}
}

// WithCache caches successful fetches by resolved URI.
func WithCache(c Cache) Option {
	return func(p *Pipeline) {
		p.cfg.cache = c
	}
}

// WithTransforms sets the transform registry consulted for data-oninclude names.
func WithTransforms(r *Transforms) Option {
	return func(p *Pipeline) {
		p.transforms = r
	}
}

// WithTransform registers a single transform, creating a registry if needed.
func WithTransform(name string, fn TransformFunc) Option {
	return func(p *Pipeline) {
		if p.transforms == nil {
			p.transforms = transform.NewRegistry()
		}
		p.transforms.Register(name, fn)
	}
}

// WithNotifier sets the channel receiving failure and truncation notices.
// Repeated use adds notifiers.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifiers = append(p.notifiers, n)
		}
	}
}

// WithMaxDepth sets the number of passes run before remaining inclusion
// points are left unresolved.
func WithMaxDepth(n int) Option {
	return func(p *Pipeline) {
		p.maxDepth = n
	}
}

// WithConcurrency limits inclusion points resolved at once within a pass.
// Zero means no limit.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithBaseURL sets the URL relative data-include values resolve against.
func WithBaseURL(u string) Option {
	return func(p *Pipeline) {
		p.baseURL = u
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics registers pipeline collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Pipeline) {
		p.cfg.registerer = reg
	}
}

// WithMarkdownSections toggles wrapping included Markdown in nested sections.
func WithMarkdownSections(enabled bool) Option {
	return func(p *Pipeline) {
		p.cfg.sections = enabled
	}
}

// WithHighlightStyle configures code highlighting. With inline false tokens
// carry CSS classes; otherwise the named chroma style is applied inline.
func WithHighlightStyle(style string, inline bool) Option {
	return func(p *Pipeline) {
		p.cfg.highlight = true
		p.cfg.highlightStyle = style
		p.cfg.highlightInl = inline
	}
}

// WithoutHighlighting leaves code-format content as plain text.
func WithoutHighlighting() Option {
	return func(p *Pipeline) {
		p.cfg.highlight = false
	}
}

// WithHighlightCSS makes ProcessHTML inject the stylesheet for class-based
// highlighting into the rendered document.
func WithHighlightCSS() Option {
	return func(p *Pipeline) {
		p.cfg.highlightCSS = true
	}
}

// WithStyle makes ProcessHTML inject css as a document stylesheet, ahead of
// any highlighting styles. See LoadStyle for the built-in styles.
func WithStyle(css string) Option {
	return func(p *Pipeline) {
		p.cfg.stylesheet = css
	}
}

// withIDGenerator replaces correlation id generation (tests).
func withIDGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		p.newID = fn
	}
}
