package include

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-include/internal/fetch"
	"github.com/alnah/go-include/internal/metrics"
	"github.com/alnah/go-include/internal/pipeline"
	"github.com/alnah/go-include/internal/transform"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownConverter    = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.Highlighter          = (*pipeline.ChromaHighlighter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ fetch.Fetcher                 = (*fetch.HTTPFetcher)(nil)
	_ fetch.Fetcher                 = (*fetch.FileFetcher)(nil)
	_ fetch.Fetcher                 = (*fetch.Mux)(nil)
	_ fetch.Fetcher                 = (*fetch.CachingFetcher)(nil)
	_ fetch.Cache                   = (*fetch.MemoryCache)(nil)
	_ fetch.Cache                   = (*fetch.RedisCache)(nil)
	_ Notifier                      = (*Collector)(nil)
	_ Notifier                      = LogNotifier{}
	_ Notifier                      = NotifierFunc(nil)
)

// Pipeline resolves data-include inclusion points in HTML documents.
// Create with NewPipeline; a Pipeline is safe for concurrent Runs on
// different documents.
type Pipeline struct {
	cfg         pipelineConfig
	fetcher     fetch.Fetcher
	transforms  *transform.Registry
	converter   *pipeline.FormatConverter
	splicer     *pipeline.Splicer
	injector    pipeline.CSSInjector
	notifiers   []Notifier
	notifier    Notifier
	logger      *slog.Logger
	metrics     *metrics.Recorder
	maxDepth    int
	concurrency int
	baseURL     string
	newID       func() string
}

// NewPipeline creates a Pipeline with default configuration: HTTP(S)
// sources only, 30s fetch timeout, depth bound 3, unlimited concurrency,
// Markdown sectioning and class-based code highlighting.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg: pipelineConfig{
			timeout:   fetch.DefaultTimeout,
			maxBytes:  fetch.DefaultMaxBytes,
			userAgent: fetch.DefaultUserAgent,
			sections:  true,
			highlight: true,
		},
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
		injector: &pipeline.CSSInjection{},
		newID:    func() string { return "include-" + uuid.NewString() },
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.maxDepth < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidMaxDepth, p.maxDepth)
	}
	if p.concurrency < 0 {
		return nil, fmt.Errorf("%w: %d (must be zero or positive)", ErrInvalidConcurrency, p.concurrency)
	}
	if p.cfg.timeout <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeout, p.cfg.timeout)
	}
	if p.baseURL != "" {
		u, err := url.Parse(p.baseURL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("%w: %q (must be absolute)", ErrInvalidBaseURL, p.baseURL)
		}
	}

	if p.fetcher == nil {
		f, err := p.defaultFetcher()
		if err != nil {
			return nil, err
		}
		p.fetcher = f
	}
	if p.cfg.cache != nil {
		p.fetcher = fetch.NewCachingFetcher(p.fetcher, p.cfg.cache, p.logger)
	}

	if p.cfg.registerer != nil {
		rec, err := metrics.New(p.cfg.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		p.metrics = rec
	}

	var highlighter pipeline.Highlighter
	if p.cfg.highlight {
		highlighter = pipeline.NewChromaHighlighter(p.cfg.highlightStyle, p.cfg.highlightInl)
	}
	p.converter = pipeline.NewFormatConverter(nil)
	p.splicer = pipeline.NewSplicer(highlighter, p.cfg.sections)

	switch len(p.notifiers) {
	case 0:
		p.notifier = LogNotifier{Logger: p.logger}
	case 1:
		p.notifier = p.notifiers[0]
	default:
		p.notifier = multiNotifier(p.notifiers)
	}

	return p, nil
}

// defaultFetcher builds the scheme router from the fetch settings.
func (p *Pipeline) defaultFetcher() (fetch.Fetcher, error) {
	httpOpts := []fetch.HTTPOption{
		fetch.WithTimeout(p.cfg.timeout),
		fetch.WithMaxBytes(p.cfg.maxBytes),
		fetch.WithUserAgent(p.cfg.userAgent),
	}
	if p.cfg.httpClient != nil {
		httpOpts = append(httpOpts, fetch.WithClient(p.cfg.httpClient))
	}
	for key, value := range p.cfg.headers {
		httpOpts = append(httpOpts, fetch.WithHeader(key, value))
	}

	var file fetch.Fetcher
	if p.cfg.allowFile {
		ff, err := fetch.NewFileFetcher(p.cfg.fileRoot)
		if err != nil {
			return nil, err
		}
		file = ff
	}
	return fetch.NewMux(fetch.NewHTTPFetcher(httpOpts...), file), nil
}

// run holds the state of one Run.
type run struct {
	p      *Pipeline
	mu     sync.Mutex // serializes relinking of the host tree
	failed map[*html.Node]bool
	report *Report
}

// outcome is the settled result of one inclusion point within a pass.
type outcome struct {
	uri string
	err error
}

// Run resolves the inclusion points under root, in passes, until none remain
// or the depth bound is reached. Failures are isolated per inclusion point:
// they are notified once, recorded in the Report and never retried.
// The returned error is non-nil only for usage errors or when ctx is done
// before a pass starts.
func (p *Pipeline) Run(ctx context.Context, root *html.Node) (*Report, error) {
	if root == nil {
		return nil, ErrNilDocument
	}

	r := &run{
		p:      p,
		failed: make(map[*html.Node]bool),
		report: &Report{},
	}

	for {
		points := pipeline.FindInclusionPoints(root, r.isFailed)
		if len(points) == 0 {
			return r.report, nil
		}
		if r.report.Passes >= p.maxDepth {
			r.truncate(points)
			return r.report, nil
		}
		if err := ctx.Err(); err != nil {
			return r.report, err
		}
		r.pass(ctx, points)
	}
}

func (r *run) isFailed(n *html.Node) bool {
	return r.failed[n]
}

// pass resolves points concurrently and joins before returning.
func (r *run) pass(ctx context.Context, points []*pipeline.Point) {
	p := r.p
	start := time.Now()

	ids := make([]string, len(points))
	for i, pt := range points {
		ids[i] = p.newID()
		pipeline.SetAttr(pt.Node, pipeline.AttrID, ids[i])
	}

	results := make([]outcome, len(points))
	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for i, pt := range points {
		g.Go(func() error {
			// Failures stay in results so siblings are never cancelled.
			results[i] = r.resolve(ctx, pt, ids[i])
			return nil
		})
	}
	_ = g.Wait()

	r.report.Passes++
	p.metrics.Pass()

	for i, pt := range points {
		res := results[i]
		if res.err == nil {
			r.report.Resolved++
			p.metrics.Inclusion(metrics.OutcomeResolved, string(pt.Format))
			continue
		}
		r.fail(pt, ids[i], res)
	}

	p.logger.Debug("inclusion pass complete",
		"pass", r.report.Passes,
		"points", len(points),
		"duration", time.Since(start))
}

// resolve runs fetch, transforms, conversion and splice for one point.
func (r *run) resolve(ctx context.Context, pt *pipeline.Point, id string) (res outcome) {
	p := r.p
	p.metrics.Begin()
	defer p.metrics.End()

	defer func() {
		if v := recover(); v != nil {
			res.err = fmt.Errorf("%w: panic: %v", ErrConversion, v)
		}
	}()

	uri, err := fetch.Resolve(p.baseURL, pt.Source)
	if err != nil {
		return outcome{err: &fetch.FetchError{URI: pt.Source, Err: err}}
	}
	res.uri = uri

	start := time.Now()
	raw, err := p.fetcher.Fetch(ctx, uri)
	p.metrics.Fetch(schemeOf(uri), time.Since(start), err)
	if err != nil {
		res.err = err
		return res
	}

	text := p.transforms.Apply(raw, pt.Transforms, uri)

	content, err := p.converter.Convert(ctx, text, pt.Format)
	if err != nil {
		res.err = err
		return res
	}

	fill, err := p.splicer.Build(ctx, pt, content)
	if err != nil {
		res.err = err
		return res
	}

	if err := r.apply(fill); err != nil {
		res.err = err
		return res
	}

	p.logger.Debug("inclusion resolved",
		"id", id,
		"source", pt.Source,
		"uri", uri,
		"format", string(pt.Format),
		"replace", pt.Replace,
		"duration", time.Since(start))
	return res
}

// apply relinks a fill into the host tree, one splice at a time.
func (r *run) apply(fill *pipeline.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.p.splicer.Apply(fill)
}

// fail records a failed point. Its annotations stay, except the correlation id.
func (r *run) fail(pt *pipeline.Point, id string, res outcome) {
	p := r.p
	pipeline.RemoveAttr(pt.Node, pipeline.AttrID)
	r.failed[pt.Node] = true

	r.report.Failures = append(r.report.Failures, Failure{Source: pt.Source, URI: res.uri, Err: res.err})
	p.metrics.Inclusion(metrics.OutcomeFailed, string(pt.Format))

	p.logger.Debug("inclusion failed", "id", id, "source", pt.Source, "error", res.err)
	p.notifier.Notify(KindError, fmt.Sprintf("`%s` failed: `%s` (%v)", pipeline.AttrInclude, pt.Source, res.err))
}

// truncate records inclusion points left when the depth bound is reached.
func (r *run) truncate(points []*pipeline.Point) {
	p := r.p
	n := len(points)
	r.report.Unresolved = n
	p.metrics.Unresolved(n)

	sources := make([]string, 0, n)
	for _, pt := range points {
		sources = append(sources, pt.Source)
	}
	msg := fmt.Sprintf("`%s`: depth limit %d reached, %d unresolved: %s",
		pipeline.AttrInclude, p.maxDepth, n, strings.Join(sources, ", "))

	p.logger.Warn("inclusion depth limit reached", "max_depth", p.maxDepth, "unresolved", n)
	p.notifier.Notify(KindWarn, msg)
}

// schemeOf returns the lowercase scheme of uri, or "file" for plain paths.
func schemeOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return "file"
	}
	return strings.ToLower(u.Scheme)
}

// ProcessHTML parses content, resolves its inclusion points and renders it
// back. Full documents stay full documents; fragments stay fragments.
func (p *Pipeline) ProcessHTML(ctx context.Context, content string) (string, *Report, error) {
	doc, isFragment, err := pipeline.ParseDocument(content)
	if err != nil {
		return "", nil, fmt.Errorf("parsing HTML: %w", err)
	}

	report, err := p.Run(ctx, doc)
	if err != nil {
		return "", report, err
	}

	out, err := pipeline.RenderDocument(doc, isFragment)
	if err != nil {
		return "", report, fmt.Errorf("rendering HTML: %w", err)
	}

	if p.cfg.stylesheet != "" {
		out = p.injector.InjectCSS(ctx, out, p.cfg.stylesheet)
	}
	if p.cfg.highlightCSS && p.cfg.highlight && !p.cfg.highlightInl {
		css, err := pipeline.HighlightCSS(p.cfg.highlightStyle)
		if err != nil {
			return "", report, err
		}
		out = p.injector.InjectCSS(ctx, out, css)
	}
	return out, report, nil
}

// MaxDepth returns the configured depth bound.
func (p *Pipeline) MaxDepth() int { return p.maxDepth }

// BaseURL returns the URL relative sources resolve against, or "".
func (p *Pipeline) BaseURL() string { return p.baseURL }

// Rebase returns a Pipeline that shares p's fetcher, transforms, notifier and
// metrics but resolves relative sources against base. An empty base keeps
// relative sources unresolved.
func (p *Pipeline) Rebase(base string) (*Pipeline, error) {
	if base != "" {
		u, err := url.Parse(base)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("%w: %q (must be absolute)", ErrInvalidBaseURL, base)
		}
	}
	cp := *p
	cp.baseURL = base
	return &cp, nil
}
