package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Miz is a mission archive (.miz, a zip file) loaded into memory. Writes are
// kept in memory until Commit replaces the file on disk.
type Miz struct {
	path    string
	entries []*mizEntry
	index   map[string]int
	dirty   bool
	closed  bool
}

type mizEntry struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
}

// Open loads the mission archive at path.
// The path is provided by the caller and is intentionally user-controlled.
func Open(path string) (*Miz, error) {
	r, err := zip.OpenReader(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening mission %s: %w", path, err)
	}
	defer r.Close()

	m := &Miz{
		path:    path,
		entries: make([]*mizEntry, 0, len(r.File)),
		index:   make(map[string]int, len(r.File)),
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", f.Name, path, err)
		}
		m.put(&mizEntry{
			name:     cleanName(f.Name),
			method:   f.Method,
			modified: f.Modified,
			data:     data,
		})
	}
	return m, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (m *Miz) put(e *mizEntry) {
	if i, ok := m.index[e.name]; ok {
		m.entries[i] = e
		return
	}
	m.index[e.name] = len(m.entries)
	m.entries = append(m.entries, e)
}

// List implements Store.
func (m *Miz) List(prefix, suffix string) ([]string, error) {
	if m.closed {
		return nil, errClosed
	}
	var names []string
	for _, e := range m.entries {
		if matches(e.name, prefix, suffix) {
			names = append(names, e.name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Read implements Store.
func (m *Miz) Read(name string) ([]byte, error) {
	if m.closed {
		return nil, errClosed
	}
	i, ok := m.index[cleanName(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return slices.Clone(m.entries[i].data), nil
}

// Write implements Store.
func (m *Miz) Write(name string, data []byte) error {
	if m.closed {
		return errClosed
	}
	name = cleanName(name)
	method := zip.Deflate
	if i, ok := m.index[name]; ok {
		method = m.entries[i].method
	}
	m.put(&mizEntry{
		name:     name,
		method:   method,
		modified: time.Now(),
		data:     slices.Clone(data),
	})
	m.dirty = true
	return nil
}

// Commit writes the archive back to its file if anything changed. The file is
// replaced atomically; entries that were never written keep their content.
func (m *Miz) Commit() error {
	if m.closed {
		return errClosed
	}
	if !m.dirty {
		return nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range m.entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   e.method,
			Modified: e.modified,
		})
		if err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}

	if err := writeFileAtomic(m.path, buf.Bytes()); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

// Close releases the archive. Uncommitted writes are discarded.
func (m *Miz) Close() error {
	m.closed = true
	m.entries = nil
	m.index = nil
	return nil
}

var errClosed = errors.New("archive is closed")

// writeFileAtomic replaces path with data through a temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".miz-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Create writes a new mission archive holding entries. It is mainly useful
// for building fixtures.
func Create(path string, entries map[string][]byte) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		w, err := zw.Create(cleanName(name))
		if err != nil {
			return err
		}
		if _, err := w.Write(entries[name]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Verify Miz implements Archive
var _ Archive = (*Miz)(nil)
