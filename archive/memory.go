package archive

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	entries map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates a store holding a copy of the given entries.
func NewMemoryStore(entries map[string][]byte) *MemoryStore {
	s := &MemoryStore{entries: make(map[string][]byte, len(entries))}
	for name, data := range entries {
		s.entries[cleanName(name)] = slices.Clone(data)
	}
	return s
}

// List implements Store.
func (s *MemoryStore) List(prefix, suffix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.entries {
		if matches(name, prefix, suffix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Read implements Store.
func (s *MemoryStore) Read(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.entries[cleanName(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return slices.Clone(data), nil
}

// Write implements Store.
func (s *MemoryStore) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[cleanName(name)] = slices.Clone(data)
	return nil
}

// Names returns every entry name, sorted.
func (s *MemoryStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.entries))
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
