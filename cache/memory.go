package cache

import (
	"context"
	"maps"
	"sync"
)

// InMemoryCache is a thread-safe in-memory cache. Entries never expire.
type InMemoryCache struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewInMemoryCache creates a cache holding a copy of entries.
func NewInMemoryCache(entries map[string]string) *InMemoryCache {
	c := &InMemoryCache{entries: make(map[string]string, len(entries))}
	maps.Copy(c.entries, entries)
	return c
}

// Get retrieves the translation of text.
func (c *InMemoryCache) Get(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[text]
	return v, ok
}

// Set stores the translation of text.
func (c *InMemoryCache) Set(text string, translation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[text] = translation
	return nil
}

// Flush implements TranslationCache. There is nothing to persist.
func (c *InMemoryCache) Flush(context.Context) error {
	return nil
}

// Len returns the number of entries in the cache.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
}

// Entries returns a copy of every entry.
func (c *InMemoryCache) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
