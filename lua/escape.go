package lua

import "strings"

// Escape prepares text for placement between a pair of quote characters.
//
// Escape units already present in text (a backslash and the byte after it)
// are copied as is, so content taken from a literal can be written back
// unchanged. An unescaped quote, a raw line break and a trailing lone
// backslash are escaped.
func Escape(text string, quote byte) string {
	if !needsEscape(text, quote) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
		case c == '\\':
			b.WriteString(`\\`)
		case c == quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func needsEscape(text string, quote byte) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			if i == len(text)-1 {
				return true
			}
			i++
		case quote, '\n', '\r':
			return true
		}
	}
	return false
}

// quoteString renders s as a double-quoted Lua literal. Unlike Escape it
// treats every backslash in s as data.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
