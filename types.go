package miztl

import (
	"cmp"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Address identifies one translatable string within one mission archive.
//
// Dictionary entries are addressed by their table key alone. Script literals
// are addressed as resource#line@index, where line is 1-based and index is
// the 0-based position among the non-blank literals of that line's value.
type Address struct {
	Key      string // Dictionary key; empty for script literals
	Resource string // Script resource path inside the archive
	Line     int    // 1-based line number; 0 for dictionary entries
	Index    int    // Dense literal index on the line
}

// DictionaryAddress returns the address of a dictionary entry.
func DictionaryAddress(key string) Address {
	return Address{Key: key}
}

// TokenAddress returns the address of a script literal.
func TokenAddress(resource string, line, index int) Address {
	return Address{Resource: resource, Line: line, Index: index}
}

// IsToken reports whether the address points into a script resource.
func (a Address) IsToken() bool {
	return a.Line > 0
}

// String renders the address in its stable textual form.
func (a Address) String() string {
	if !a.IsToken() {
		return a.Key
	}
	return a.Stem() + strconv.Itoa(a.Index)
}

// Stem returns the resource#line@ prefix shared by every literal on the same
// script line. It is empty for dictionary addresses.
func (a Address) Stem() string {
	if !a.IsToken() {
		return ""
	}
	return fmt.Sprintf("%s#%d@", a.Resource, a.Line)
}

// Compare orders addresses: dictionary entries first by key, then script
// literals by resource, line and index.
func (a Address) Compare(b Address) int {
	if a.IsToken() != b.IsToken() {
		if a.IsToken() {
			return 1
		}
		return -1
	}
	return cmp.Or(
		strings.Compare(a.Key, b.Key),
		strings.Compare(a.Resource, b.Resource),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Index, b.Index),
	)
}

// ParseAddress parses the textual form produced by Address.String. Anything
// that is not a well-formed resource#line@index is taken as a dictionary key.
func ParseAddress(s string) Address {
	hash := strings.LastIndex(s, "#")
	if hash <= 0 {
		return DictionaryAddress(s)
	}
	lineStr, indexStr, ok := strings.Cut(s[hash+1:], "@")
	if !ok {
		return DictionaryAddress(s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return DictionaryAddress(s)
	}
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		return DictionaryAddress(s)
	}
	return TokenAddress(s[:hash], line, index)
}

// Entry is one addressed string.
type Entry struct {
	Address Address
	Text    string
}

// EntrySet maps addresses to text and remembers insertion order.
// It is not safe for concurrent use.
type EntrySet struct {
	order []Address
	text  map[Address]string
}

// NewEntrySet creates an empty set.
func NewEntrySet() *EntrySet {
	return &EntrySet{text: make(map[Address]string)}
}

// Add inserts an entry unless the address is already present, in which case
// the first text is kept. It reports whether the entry was added.
func (s *EntrySet) Add(addr Address, text string) bool {
	if _, ok := s.text[addr]; ok {
		return false
	}
	s.order = append(s.order, addr)
	s.text[addr] = text
	return true
}

// Set inserts or replaces an entry. Replacing keeps the original position.
func (s *EntrySet) Set(addr Address, text string) {
	if _, ok := s.text[addr]; !ok {
		s.order = append(s.order, addr)
	}
	s.text[addr] = text
}

// Get returns the text stored for addr.
func (s *EntrySet) Get(addr Address) (string, bool) {
	if s == nil {
		return "", false
	}
	text, ok := s.text[addr]
	return text, ok
}

// Len returns the number of entries.
func (s *EntrySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All iterates over the entries in insertion order.
func (s *EntrySet) All() iter.Seq2[Address, string] {
	return func(yield func(Address, string) bool) {
		if s == nil {
			return
		}
		for _, addr := range s.order {
			if !yield(addr, s.text[addr]) {
				return
			}
		}
	}
}

// Entries returns the entries in insertion order.
func (s *EntrySet) Entries() []Entry {
	out := make([]Entry, 0, s.Len())
	for addr, text := range s.All() {
		out = append(out, Entry{Address: addr, Text: text})
	}
	return out
}

// Contents returns the distinct texts in order of first appearance.
func (s *EntrySet) Contents() []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range s.All() {
		if !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s *EntrySet) Clone() *EntrySet {
	c := NewEntrySet()
	for addr, text := range s.All() {
		c.Set(addr, text)
	}
	return c
}

// Progress reports the translation of one distinct string.
type Progress struct {
	Processor string // Name of the processor whose entries are being translated
	Current   int    // 1-based position of the string just handled
	Total     int    // Number of strings that need translation
	Text      string // Source text
	Err       error  // Set when the string could not be translated
}

// ProgressFunc receives progress updates. It is called from the goroutine
// running the translation.
type ProgressFunc func(Progress)

// ProcessorResult summarizes one processor's pass over an archive.
type ProcessorResult struct {
	Processor  string
	Entries    int // Addressed entries extracted
	Distinct   int // Distinct source strings
	Pending    int // Distinct strings sent for translation
	Translated int // Strings translated during this run
	Cached     int // Distinct strings already in the cache
	Failed     int // Strings whose translation failed (continue-on-error only)

	Source *EntrySet // Extracted entries
	Output *EntrySet // Entries as written to the language variant
}

// Result is the outcome of translating one archive.
type Result struct {
	TargetLang    string
	CacheLocation string
	Processors    []ProcessorResult
}

// Translated returns the total number of strings translated during the run.
func (r *Result) Translated() int {
	n := 0
	for _, p := range r.Processors {
		n += p.Translated
	}
	return n
}
