package web

import (
	"sync"
	"time"
)

const defaultCacheTTL = 12 * time.Hour

type cacheKey struct {
	schedule string
	year     int
	template bool
	format   string
}

type cacheItem struct {
	body      []byte
	updatedAt time.Time
}

// outputCache holds rendered downloads. Entries expire after ttl or when
// the refresh job purges them.
type outputCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[cacheKey]cacheItem
}

func newOutputCache(ttl time.Duration, now func() time.Time) *outputCache {
	return &outputCache{ttl: ttl, now: now, items: make(map[cacheKey]cacheItem)}
}

func (c *outputCache) get(k cacheKey) ([]byte, bool) {
	c.mu.RLock()
	it, ok := c.items[k]
	c.mu.RUnlock()
	if !ok || c.now().Sub(it.updatedAt) >= c.ttl {
		return nil, false
	}
	return it.body, true
}

func (c *outputCache) put(k cacheKey, body []byte) {
	c.mu.Lock()
	c.items[k] = cacheItem{body: body, updatedAt: c.now()}
	c.mu.Unlock()
}

// purge drops every entry and reports how many there were.
func (c *outputCache) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[cacheKey]cacheItem)
	return n
}

// getOrRender returns the cached body for k or renders and stores it.
// Concurrent misses may render twice; the last one wins.
func (c *outputCache) getOrRender(k cacheKey, render func() ([]byte, error)) ([]byte, error) {
	if body, ok := c.get(k); ok {
		return body, nil
	}
	body, err := render()
	if err != nil {
		return nil, err
	}
	c.put(k, body)
	return body, nil
}
