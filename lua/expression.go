package lua

import (
	"fmt"
	"regexp"
	"strings"
)

// Identifier is a field or variable name whose assigned value holds
// player-facing text.
type Identifier struct {
	Name string
	Call bool // Bound through a method call; such lines yield no tokens
}

// String renders the identifier the way ParseIdentifier accepts it.
func (id Identifier) String() string {
	if id.Call {
		return id.Name + "()"
	}
	return id.Name
}

// ParseIdentifier parses "name" or the call form "name()".
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	call := strings.HasSuffix(s, "()")
	name := strings.TrimSuffix(s, "()")
	if !identRe.MatchString(name) {
		return Identifier{}, fmt.Errorf("invalid identifier %q", s)
	}
	return Identifier{Name: name, Call: call}, nil
}

// DefaultIdentifiers are the trigger fields that carry message text in
// mission scripts.
var DefaultIdentifiers = []Identifier{
	{Name: "subtitle"},
	{Name: "outText"},
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Expression is the value side of a recognized assignment on one line.
type Expression struct {
	Identifier Identifier
	Start      int    // Offset of the first byte of the value in the line
	End        int    // Offset where the value ends, always the line end
	Text       string // line[Start:End]
}

// Token is a non-blank literal of a value expression together with its
// dense index. Offsets are relative to the whole line.
type Token struct {
	Index int
	Literal
}

// Matcher locates recognized assignments in single lines of Lua source.
type Matcher struct {
	idents   []Identifier
	patterns []*regexp.Regexp
}

// NewMatcher creates a matcher for the given identifiers. Order matters: when
// a line binds more than one of them, the first in the list wins. With no
// identifiers the DefaultIdentifiers are used.
func NewMatcher(idents ...Identifier) *Matcher {
	if len(idents) == 0 {
		idents = DefaultIdentifiers
	}
	m := &Matcher{
		idents:   append([]Identifier(nil), idents...),
		patterns: make([]*regexp.Regexp, len(idents)),
	}
	for i, id := range idents {
		m.patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(id.Name) + `\s*=`)
	}
	return m
}

// Match finds the value expression bound by the first recognized identifier
// on line. A comparison such as "subtitle == x" is not an assignment, and an
// assignment with nothing after the equals sign does not match.
func (m *Matcher) Match(line string) (Expression, bool) {
	for i, re := range m.patterns {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			eq := loc[1]
			if eq < len(line) && line[eq] == '=' {
				continue
			}
			start := eq
			for start < len(line) && isSpace(line[start]) {
				start++
			}
			if start == len(line) {
				continue
			}
			return Expression{
				Identifier: m.idents[i],
				Start:      start,
				End:        len(line),
				Text:       line[start:],
			}, true
		}
	}
	return Expression{}, false
}

// Extract returns the addressable literals of the recognized value on line,
// numbered densely from zero over the non-blank ones. Lines without a
// recognized identifier, and call-form identifiers, yield nothing.
func (m *Matcher) Extract(line string) []Token {
	expr, ok := m.Match(line)
	if !ok || expr.Identifier.Call {
		return nil
	}
	return tokens(expr)
}

func tokens(expr Expression) []Token {
	var out []Token
	for lit := range Literals(expr.Text) {
		if lit.Blank() {
			continue
		}
		lit.Start += expr.Start
		lit.End += expr.Start
		out = append(out, Token{Index: len(out), Literal: lit})
	}
	return out
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return false
}
