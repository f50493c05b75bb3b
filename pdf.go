package include

import (
	"context"
	"fmt"
	"io"
	"html"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-include/internal/fetch"
	"github.com/alnah/go-include/internal/fileutil"
	"github.com/alnah/go-include/internal/process"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error)
	Close() error
}

var _ pdfRenderer = (*rodRenderer)(nil)

// defaultPDFTimeout bounds page loading when ctx carries no deadline.
const defaultPDFTimeout = 30 * time.Second

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// newRodRenderer creates a rodRenderer with the given timeout.
func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		killBrowser(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	r.launcher = l
	return browser, nil
}

// killBrowser terminates the launched browser and its helper processes.
// Chrome forks renderer and GPU children that outlive a plain kill.
func killBrowser(l *launcher.Launcher) {
	if l == nil {
		return
	}
	// Errors are dropped: l.Kill below still reaps the leader.
	_ = process.KillTree(l.PID())
	l.Kill()
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	killBrowser(r.launcher)
	r.launcher = nil
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, settings *PageSettings) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: fetch.PathToFileURL(filePath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(settings))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// footerMarginInches leaves room for the page number footer.
const footerMarginInches = 0.75

// buildPDFOptions constructs proto.PagePrintToPDF from page settings.
// A nil settings value means defaults.
func buildPDFOptions(settings *PageSettings) *proto.PagePrintToPDF {
	if settings == nil {
		settings = DefaultPageSettings()
	}
	width, height := settings.dimensions()

	margin := settings.margin()
	marginBottom := margin
	if settings.hasFooter() && marginBottom < footerMarginInches {
		marginBottom = footerMarginInches
	}

	opts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(marginBottom),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}

	if settings.hasFooter() {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = "<span></span>"
		opts.FooterTemplate = footerTemplate(settings)
	}
	return opts
}

// footerTemplate lays out the date on the left and page numbers on the right.
// Chrome substitutes the pageNumber and totalPages spans when printing.
func footerTemplate(settings *PageSettings) string {
	var b strings.Builder
	b.WriteString(`<div style="font-size: 10px; font-family: sans-serif; color: #aaa; width: 100%; display: flex; justify-content: space-between; padding: 0 0.5in;">`)
	b.WriteString("<span>")
	b.WriteString(html.EscapeString(settings.FooterDate))
	b.WriteString("</span>")
	if settings.PageNumbers {
		b.WriteString(`<span><span class="pageNumber"></span>/<span class="totalPages"></span></span>`)
	}
	b.WriteString("</div>")
	return b.String()
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// PDFExporter renders resolved HTML documents to PDF using headless Chrome.
// The browser starts on first use; call Close when done.
type PDFExporter struct {
	renderer pdfRenderer
	page     *PageSettings
	now      func() time.Time
}

// PDFOption configures a PDFExporter.
type PDFOption func(*PDFExporter)

// WithPageSettings sets page size, orientation and margins.
func WithPageSettings(p *PageSettings) PDFOption {
	return func(e *PDFExporter) {
		e.page = p
	}
}

// WithPDFTimeout bounds page loading when the context has no deadline.
func WithPDFTimeout(d time.Duration) PDFOption {
	return func(e *PDFExporter) {
		if d > 0 {
			e.renderer = newRodRenderer(d)
		}
	}
}

// NewPDFExporter creates a PDFExporter. Returns an error for invalid page settings.
func NewPDFExporter(opts ...PDFOption) (*PDFExporter, error) {
	e := &PDFExporter{renderer: newRodRenderer(defaultPDFTimeout), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.page.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Export renders htmlContent to PDF bytes.
func (e *PDFExporter) Export(ctx context.Context, htmlContent string) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	now := e.now
	if now == nil {
		now = time.Now
	}
	return e.renderer.RenderFromFile(ctx, tmpPath, e.page.stamped(now()))
}

// Close releases browser resources.
func (e *PDFExporter) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}
