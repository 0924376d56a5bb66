// Package lua scans, addresses and rewrites the Lua source found in DCS
// mission archives.
//
// It does not evaluate Lua. Script lines are handled with a small quote-aware
// scanner so that literal spans, quote styles and escape sequences survive a
// rewrite byte for byte. The dictionary table is decoded through the
// gopher-lua parser.
package lua

import (
	"iter"
	"strings"
)

// Literal is one quoted string literal found in a span of source text.
type Literal struct {
	Start   int    // Offset of the opening quote
	End     int    // Offset just past the closing quote
	Content string // Raw text between the quotes, escapes left intact
	Quote   byte   // '"' or '\''
}

// Blank reports whether the literal holds only whitespace.
func (l Literal) Blank() bool {
	return strings.TrimSpace(l.Content) == ""
}

// Literals returns every top-level quoted literal in s, left to right.
//
// The opening quote decides which quote closes the literal, and a backslash
// always consumes the byte after it. Scanning stops at the first literal that
// is not closed before the end of s; literals found before it are still
// produced.
func Literals(s string) iter.Seq[Literal] {
	return func(yield func(Literal) bool) {
		for i := 0; i < len(s); i++ {
			q := s[i]
			if q != '"' && q != '\'' {
				continue
			}
			end := closingQuote(s, i+1, q)
			if end < 0 {
				return
			}
			if !yield(Literal{Start: i, End: end + 1, Content: s[i+1 : end], Quote: q}) {
				return
			}
			i = end
		}
	}
}

// closingQuote returns the offset of the quote that closes a literal opened
// with q, starting the search at from, or -1.
func closingQuote(s string, from int, q byte) int {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return -1
}
