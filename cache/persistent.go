package cache

import (
	"context"

	"github.com/ZaguanLabs/miztl"
)

// PersistentCache is an in-memory cache for one target language that is
// loaded from a Store once and saved back to it on every Flush.
type PersistentCache struct {
	*InMemoryCache
	store Store
	lang  string
}

// Load reads the saved cache for lang from store. A language without saved
// entries starts empty.
func Load(ctx context.Context, store Store, lang string) (*PersistentCache, error) {
	entries, err := store.Load(ctx, lang)
	if err != nil {
		return nil, &miztl.CacheError{Message: "loading cache from " + store.Location(lang), Cause: err}
	}
	return &PersistentCache{
		InMemoryCache: NewInMemoryCache(entries),
		store:         store,
		lang:          lang,
	}, nil
}

// Flush saves every entry, replacing what the store held before.
func (c *PersistentCache) Flush(ctx context.Context) error {
	if err := c.store.Save(ctx, c.lang, c.Entries()); err != nil {
		return &miztl.CacheError{Message: "saving cache to " + c.Location(), Cause: err}
	}
	return nil
}

// Location returns where the cache is persisted.
func (c *PersistentCache) Location() string {
	return c.store.Location(c.lang)
}

// Lang returns the target language of the cache.
func (c *PersistentCache) Lang() string {
	return c.lang
}

// Verify PersistentCache implements TranslationCache
var _ TranslationCache = (*PersistentCache)(nil)
