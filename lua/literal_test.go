package lua

import (
	"slices"
	"testing"
)

func collect(s string) []Literal {
	return slices.Collect(Literals(s))
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		quotes   string
	}{
		{
			name:     "single double-quoted",
			input:    `"Hello"`,
			expected: []string{"Hello"},
			quotes:   `"`,
		},
		{
			name:     "mixed quote styles",
			input:    `"A" .. 'B' .. "C"`,
			expected: []string{"A", "B", "C"},
			quotes:   `"'"`,
		},
		{
			name:     "other quote is content",
			input:    `"it's" .. 'say "hi"'`,
			expected: []string{"it's", `say "hi"`},
			quotes:   `"'`,
		},
		{
			name:     "escaped quote does not terminate",
			input:    `"say \"hi\" now"`,
			expected: []string{`say \"hi\" now`},
			quotes:   `"`,
		},
		{
			name:     "escaped backslash before quote",
			input:    `"path\\" .. "next"`,
			expected: []string{`path\\`, "next"},
			quotes:   `""`,
		},
		{
			name:     "empty literal is produced",
			input:    `"" .. cs .. "!"`,
			expected: []string{"", "!"},
			quotes:   `""`,
		},
		{
			name:     "no literals",
			input:    `callsign .. number`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lits := collect(tt.input)
			if len(lits) != len(tt.expected) {
				t.Fatalf("Expected %d literals, got %d: %+v", len(tt.expected), len(lits), lits)
			}
			for i, lit := range lits {
				if lit.Content != tt.expected[i] {
					t.Errorf("Literal %d: expected %q, got %q", i, tt.expected[i], lit.Content)
				}
				if lit.Quote != tt.quotes[i] {
					t.Errorf("Literal %d: expected quote %c, got %c", i, tt.quotes[i], lit.Quote)
				}
				if tt.input[lit.Start] != lit.Quote || tt.input[lit.End-1] != lit.Quote {
					t.Errorf("Literal %d: span [%d,%d) does not cover its quotes", i, lit.Start, lit.End)
				}
			}
		})
	}
}

func TestLiterals_Unterminated(t *testing.T) {
	lits := collect(`"first" .. "second .. "third`)
	// "second .. " closes at the third quote, leaving an unterminated tail
	if len(lits) != 2 {
		t.Fatalf("Expected 2 literals, got %d: %+v", len(lits), lits)
	}

	lits = collect(`"done" .. 'never closed`)
	if len(lits) != 1 || lits[0].Content != "done" {
		t.Errorf("Expected only the closed literal, got %+v", lits)
	}
}

func TestLiterals_Restartable(t *testing.T) {
	seq := Literals(`'a' .. 'b'`)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Errorf("Sequence should be restartable: %+v vs %+v", first, second)
	}
}

func TestLiterals_EarlyStop(t *testing.T) {
	count := 0
	for range Literals(`"a" "b" "c"`) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("Expected to stop after 2, got %d", count)
	}
}

func TestLiteral_Blank(t *testing.T) {
	if !(Literal{Content: "  \t"}).Blank() {
		t.Error("Whitespace-only literal should be blank")
	}
	if (Literal{Content: " x "}).Blank() {
		t.Error("Literal with text should not be blank")
	}
}
