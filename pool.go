package include

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	MinPoolSize = 1
	MaxPoolSize = 8 // each exporter owns a browser of roughly 200MB

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire once the pool is closed.
var ErrPoolClosed = errors.New("exporter pool closed")

// ExporterPool shares up to Size PDFExporters between workers. Exporters,
// and so browsers, are created on demand the first time every existing one
// is busy.
type ExporterPool struct {
	size  int
	newFn func() (*PDFExporter, error)
	idle  chan *PDFExporter // released exporters
	slots chan struct{}     // one token per exporter not created yet
	done  chan struct{}     // closed by Close

	mu     sync.Mutex
	all    []*PDFExporter
	closed bool
}

// NewExporterPool creates a pool with capacity for n exporters built by newFn.
func NewExporterPool(n int, newFn func() (*PDFExporter, error)) *ExporterPool {
	n = max(n, MinPoolSize)
	p := &ExporterPool{
		size:  n,
		newFn: newFn,
		idle:  make(chan *PDFExporter, n),
		slots: make(chan struct{}, n),
		done:  make(chan struct{}),
	}
	for range n {
		p.slots <- struct{}{}
	}
	return p
}

// Acquire returns an idle exporter, creates one while capacity remains, or
// waits for a Release. It fails with ctx's error or ErrPoolClosed.
func (p *ExporterPool) Acquire(ctx context.Context) (*PDFExporter, error) {
	// Reuse before creating: a new exporter means a new browser.
	select {
	case e := <-p.idle:
		return e, nil
	default:
	}

	select {
	case e := <-p.idle:
		return e, nil
	case <-p.slots:
		return p.create()
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// create builds an exporter for a slot taken by Acquire. The slot is given
// back when construction fails.
func (p *ExporterPool) create() (*PDFExporter, error) {
	e, err := p.newFn()
	if err != nil {
		p.slots <- struct{}{}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = e.Close()
		return nil, ErrPoolClosed
	}
	p.all = append(p.all, e)
	return e, nil
}

// Release hands e back for reuse. After Close it does nothing: Close has
// already shut e down.
func (p *ExporterPool) Release(e *PDFExporter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || e == nil {
		return
	}
	// Never blocks: idle holds size entries and at most size exporters exist.
	p.idle <- e
}

// Close shuts down every exporter the pool created, including ones still
// held by workers, and joins their errors.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	exporters := p.all
	p.all = nil
	p.mu.Unlock()

	var errs []error
	for _, e := range exporters {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize]. GOMAXPROCS already
// reflects container CPU quotas when automaxprocs runs at startup.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
