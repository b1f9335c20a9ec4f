package service

import (
	"context"
	"strings"
	"sync"
)

type requestCacheKey struct{}

// RequestCache memoizes reads for the lifetime of one request so repeated
// lookups return the same snapshot. It is never shared between requests.
type RequestCache struct {
	mu      sync.Mutex
	entries map[string]any
}

// WithRequestCache attaches a fresh cache to ctx.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, &RequestCache{entries: make(map[string]any)})
}

func requestCache(ctx context.Context) *RequestCache {
	cache, _ := ctx.Value(requestCacheKey{}).(*RequestCache)
	return cache
}

// Len reports how many reads are memoized.
func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RequestCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *RequestCache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *RequestCache) drop(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// memoize runs load once per key per request. Errors are not cached. Without
// a cache on ctx every call goes to load.
func memoize[T any](ctx context.Context, key string, load func() (T, error)) (T, error) {
	cache := requestCache(ctx)
	if cache == nil {
		return load()
	}
	if v, ok := cache.get(key); ok {
		return v.(T), nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	cache.put(key, v)
	return v, nil
}

// invalidate drops every memoized read whose key starts with prefix.
func invalidate(ctx context.Context, prefix string) {
	if cache := requestCache(ctx); cache != nil {
		cache.drop(prefix)
	}
}
