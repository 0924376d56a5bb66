package miztl

// DiffResult is the difference between two extractions, usually of two
// revisions of the same mission.
type DiffResult struct {
	// Added contains entries whose address only exists in the new extraction.
	Added []Entry

	// Removed contains entries whose address only exists in the old extraction.
	Removed []Entry

	// Unchanged contains entries with the same address and text in both.
	Unchanged []Entry

	// Modified contains entries whose address exists in both but whose text changed.
	Modified []ModifiedEntry
}

// ModifiedEntry is an address whose text changed between revisions.
type ModifiedEntry struct {
	Address Address
	Old     string
	New     string
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the distinct texts of added and modified entries,
// in order of first appearance.
func (d *DiffResult) NeedsTranslation() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(text string) {
		if !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	for _, e := range d.Added {
		add(e.Text)
	}
	for _, m := range d.Modified {
		add(m.New)
	}
	return out
}

// DiffEntries compares two extractions by address. Results follow the
// insertion order of the set they come from: the new set for Added, Modified
// and Unchanged, the old set for Removed.
func DiffEntries(old, new *EntrySet) *DiffResult {
	result := &DiffResult{}

	for addr, text := range new.All() {
		prev, ok := old.Get(addr)
		switch {
		case !ok:
			result.Added = append(result.Added, Entry{Address: addr, Text: text})
		case prev != text:
			result.Modified = append(result.Modified, ModifiedEntry{Address: addr, Old: prev, New: text})
		default:
			result.Unchanged = append(result.Unchanged, Entry{Address: addr, Text: text})
		}
	}

	for addr, text := range old.All() {
		if _, ok := new.Get(addr); !ok {
			result.Removed = append(result.Removed, Entry{Address: addr, Text: text})
		}
	}

	return result
}
