package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores fetched content by URI.
type Cache interface {
	// Get returns the cached content and whether it was present.
	Get(ctx context.Context, uri string) (string, bool, error)
	Set(ctx context.Context, uri, content string) error
}

// CachingFetcher serves fetches from a Cache and fills it on success.
// Failures are never cached. Concurrent fetches of the same URI share one
// underlying request. Cache errors are logged and otherwise ignored.
type CachingFetcher struct {
	next   Fetcher
	cache  Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachingFetcher wraps next with cache. A nil logger discards cache errors.
func NewCachingFetcher(next Fetcher, cache Cache, logger *slog.Logger) *CachingFetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachingFetcher{next: next, cache: cache, logger: logger}
}

// Fetch returns cached content for uri, fetching and caching it on a miss.
func (c *CachingFetcher) Fetch(ctx context.Context, uri string) (string, error) {
	content, ok, err := c.cache.Get(ctx, uri)
	if err != nil {
		c.logger.Warn("fetch cache read failed", "uri", uri, "error", err)
	} else if ok {
		c.logger.Debug("fetch cache hit", "uri", uri)
		return content, nil
	}

	// The shared fetch outlives any single caller: one caller giving up must
	// not fail the others waiting on the same uri. Transport timeouts still
	// bound it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(uri, func() (any, error) {
		content, err := c.next.Fetch(shared, uri)
		if err != nil {
			return "", err
		}
		if err := c.cache.Set(shared, uri, content); err != nil {
			c.logger.Warn("fetch cache write failed", "uri", uri, "error", err)
		}
		return content, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// MemoryCache is an in-process Cache with optional expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	content string
	expires time.Time // zero means never
}

// NewMemoryCache creates a MemoryCache. A zero ttl keeps entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the unexpired entry for uri.
func (m *MemoryCache) Get(_ context.Context, uri string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[uri]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, uri)
		m.mu.Unlock()
		return "", false, nil
	}
	return e.content, true, nil
}

// Set stores content for uri.
func (m *MemoryCache) Set(_ context.Context, uri, content string) error {
	e := memoryEntry{content: content}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[uri] = e
	m.mu.Unlock()
	return nil
}
