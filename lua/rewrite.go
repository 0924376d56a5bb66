package lua

import "strings"

// Rewrite replaces the content of the literals whose dense index appears in
// replacements and reports whether the line changed.
//
// The literal positions are recomputed from line exactly as Extract computes
// them. Every byte outside a replaced literal's content is copied from the
// original line, including the quote characters, so a single-quoted literal
// stays single-quoted. Replacement text is escaped for the literal's quote.
// The line is returned untouched when replacements is empty, when no
// identifier is recognized, or when the identifier is call-form.
func (m *Matcher) Rewrite(line string, replacements map[int]string) (string, bool) {
	if len(replacements) == 0 {
		return line, false
	}
	expr, ok := m.Match(line)
	if !ok || expr.Identifier.Call {
		return line, false
	}

	var b strings.Builder
	b.Grow(len(line))
	cursor := 0
	for _, tok := range tokens(expr) {
		text, ok := replacements[tok.Index]
		if !ok {
			continue
		}
		b.WriteString(line[cursor : tok.Start+1])
		b.WriteString(Escape(text, tok.Quote))
		cursor = tok.End - 1
	}
	if cursor == 0 {
		return line, false
	}
	b.WriteString(line[cursor:])

	out := b.String()
	return out, out != line
}
