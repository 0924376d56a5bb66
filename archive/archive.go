// Package archive provides the named-blob stores that mission resources are
// read from and written to.
package archive

import (
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned by Read when no entry has the requested name.
var ErrNotFound = errors.New("archive entry not found")

// Localization layout inside a mission archive.
const (
	LocaleRoot    = "l10n/"
	DefaultLocale = "DEFAULT"
)

// Store is a flat collection of named blobs.
type Store interface {
	// List returns the names that start with prefix and end with suffix, sorted.
	List(prefix, suffix string) ([]string, error)

	// Read returns the whole content of an entry, or ErrNotFound.
	Read(name string) ([]byte, error)

	// Write stores data under name, replacing any existing entry.
	Write(name string, data []byte) error
}

// Archive is a Store backed by a container that must be committed to keep
// writes and closed to release it.
type Archive interface {
	Store
	Commit() error
	Close() error
}

// LocalePath returns the path of a resource inside a locale directory.
func LocalePath(locale, rel string) string {
	return LocaleRoot + locale + "/" + rel
}

// DefaultPath returns the path of a resource in the default locale.
func DefaultPath(rel string) string {
	return LocalePath(DefaultLocale, rel)
}

// Localize maps a default-locale resource path onto the same resource in
// another locale. It reports false for paths outside the default locale.
func Localize(name, locale string) (string, bool) {
	rel, ok := strings.CutPrefix(name, DefaultPath(""))
	if !ok || rel == "" {
		return "", false
	}
	return LocalePath(locale, rel), true
}

// IsDefaultLocale reports whether locale names the default locale.
func IsDefaultLocale(locale string) bool {
	return strings.EqualFold(locale, DefaultLocale)
}

func matches(name, prefix, suffix string) bool {
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
}

func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, `\`, "/")), "/")
}
