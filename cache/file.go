package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the name of the cache file inside each language directory.
const FileName = "cache.json"

// FileStore keeps each language's cache as a flat JSON object at
// <dir>/<lang>/cache.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DefaultDir returns the directory caches are kept in when none is
// configured: Documents/DCSMizTranslate in the user's home directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "DCSMizTranslate"
	}
	return filepath.Join(home, "Documents", "DCSMizTranslate")
}

// Location implements Store.
func (s *FileStore) Location(lang string) string {
	return filepath.Join(s.dir, lang, FileName)
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, lang string) (map[string]string, error) {
	data, err := os.ReadFile(s.Location(lang))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := map[string]string{}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.Location(lang), err)
	}
	return entries, nil
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, lang string, entries map[string]string) error {
	path := s.Location(lang)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if entries == nil {
		entries = map[string]string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
