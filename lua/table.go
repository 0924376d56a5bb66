package lua

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// Pair is one key/value entry of a string table.
type Pair struct {
	Key   string
	Value string
}

// DecodeTable parses a Lua chunk and returns the string entries of the table
// literal assigned to name, in source order.
//
// Entries whose key or value is not a string literal are skipped. When a key
// repeats, the first occurrence is kept. A chunk that never assigns a table to
// name yields no pairs and no error; a chunk that does not parse is an error.
func DecodeTable(data []byte, name string) ([]Pair, error) {
	chunk, err := parse.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s table: %w", name, err)
	}

	table := findTable(chunk, name)
	if table == nil {
		return nil, nil
	}

	pairs := make([]Pair, 0, len(table.Fields))
	seen := make(map[string]bool, len(table.Fields))
	for _, field := range table.Fields {
		key, ok := field.Key.(*ast.StringExpr)
		if !ok {
			continue
		}
		value, ok := field.Value.(*ast.StringExpr)
		if !ok {
			continue
		}
		if seen[key.Value] {
			continue
		}
		seen[key.Value] = true
		pairs = append(pairs, Pair{Key: key.Value, Value: value.Value})
	}
	return pairs, nil
}

// findTable returns the first table literal assigned to name at the top level
// of chunk.
func findTable(chunk []ast.Stmt, name string) *ast.TableExpr {
	for _, stmt := range chunk {
		switch s := stmt.(type) {
		case *ast.AssignStmt:
			for i, lhs := range s.Lhs {
				ident, ok := lhs.(*ast.IdentExpr)
				if !ok || ident.Value != name || i >= len(s.Rhs) {
					continue
				}
				if table, ok := s.Rhs[i].(*ast.TableExpr); ok {
					return table
				}
			}
		case *ast.LocalAssignStmt:
			for i, n := range s.Names {
				if n != name || i >= len(s.Exprs) {
					continue
				}
				if table, ok := s.Exprs[i].(*ast.TableExpr); ok {
					return table
				}
			}
		}
	}
	return nil
}

// EncodeTable serializes pairs as an assignment of a table literal to name,
// one entry per line in the given order.
func EncodeTable(name string, pairs []Pair) []byte {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" = {\n")
	for _, p := range pairs {
		b.WriteString("    [")
		b.WriteString(quoteString(p.Key))
		b.WriteString("] = ")
		b.WriteString(quoteString(p.Value))
		b.WriteString(",\n")
	}
	b.WriteString("}")
	return []byte(b.String())
}
