// Package transform provides the named text transforms applied to fetched
// content before format conversion.
package transform

import (
	"sort"
	"sync"
)

// Func transforms fetched text. uri is the resolved source of the text.
type Func func(text, uri string) string

// Registry maps transform names to functions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Func),
	}
}

// Register adds a transform to the registry.
// If a transform with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the transform registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Apply runs the named transforms over text in order. Names with no
// registered transform are skipped. A nil registry returns text unchanged.
func (r *Registry) Apply(text string, names []string, uri string) string {
	if r == nil {
		return text
	}
	for _, name := range names {
		fn, ok := r.Lookup(name)
		if !ok || fn == nil {
			continue
		}
		text = fn(text, uri)
	}
	return text
}
