// Package cache provides content-keyed translation caches and the stores
// that persist them between runs.
//
// A cache maps source text to translated text for one target language.
// PersistentCache keeps the entries in memory and writes them wholesale to a
// Store whenever it is flushed.
package cache

import (
	"context"

	"github.com/ZaguanLabs/miztl"
)

// TranslationCache is an alias to the main package interface.
type TranslationCache = miztl.TranslationCache

// Store persists the cache of each target language as a whole.
type Store interface {
	// Load returns the saved entries for lang, or an empty map if none exist.
	Load(ctx context.Context, lang string) (map[string]string, error)

	// Save replaces the saved entries for lang.
	Save(ctx context.Context, lang string, entries map[string]string) error

	// Location describes where the entries for lang are kept.
	Location(lang string) string
}
