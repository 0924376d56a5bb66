package processor

import (
	"context"
	"strings"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/archive"
	"github.com/ZaguanLabs/miztl/lua"
)

// ScriptSuffix selects the script resources scanned by the TokenProcessor.
const ScriptSuffix = ".lua"

// TokenProcessor translates string literals assigned to recognized text
// fields in the mission's default-language scripts. Entries are addressed as
// resource#line@index.
type TokenProcessor struct {
	matcher *lua.Matcher
}

// NewTokenProcessor creates a processor recognizing the given identifiers,
// or lua.DefaultIdentifiers when none are given.
func NewTokenProcessor(idents ...lua.Identifier) *TokenProcessor {
	return &TokenProcessor{matcher: lua.NewMatcher(idents...)}
}

// Name implements EntriesProcessor.
func (p *TokenProcessor) Name() string {
	return "token"
}

// Extract implements EntriesProcessor.
func (p *TokenProcessor) Extract(ctx context.Context, store archive.Store) (*miztl.EntrySet, error) {
	names, err := store.List(archive.DefaultPath(""), ScriptSuffix)
	if err != nil {
		return nil, &miztl.ProcessorError{Message: "listing scripts", Cause: err, Processor: p.Name()}
	}

	entries := miztl.NewEntrySet()
	for _, name := range names {
		data, err := store.Read(name)
		if err != nil {
			return nil, p.wrap(name, "reading resource", err)
		}
		if err := p.ExtractScript(ctx, name, data, entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// ExtractScript adds the addressable literals of one script to entries.
func (p *TokenProcessor) ExtractScript(ctx context.Context, name string, data []byte, entries *miztl.EntrySet) error {
	for i, line := range strings.Split(string(data), "\n") {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, tok := range p.matcher.Extract(strings.TrimSuffix(line, "\r")) {
			entries.Add(miztl.TokenAddress(name, i+1, tok.Index), tok.Content)
		}
	}
	return nil
}

// Apply implements EntriesProcessor. Every default-language script is
// written to the target language directory, with the literals found in
// entries replaced.
func (p *TokenProcessor) Apply(ctx context.Context, store archive.Store, lang string, entries *miztl.EntrySet) error {
	if archive.IsDefaultLocale(lang) {
		return &miztl.ProcessorError{Message: "invalid target language " + lang, Processor: p.Name()}
	}

	names, err := store.List(archive.DefaultPath(""), ScriptSuffix)
	if err != nil {
		return &miztl.ProcessorError{Message: "listing scripts", Cause: err, Processor: p.Name()}
	}

	byResource := groupByLine(entries)
	for _, name := range names {
		target, ok := archive.Localize(name, lang)
		if !ok {
			continue
		}
		data, err := store.Read(name)
		if err != nil {
			return p.wrap(name, "reading resource", err)
		}
		out, err := p.RewriteScript(ctx, data, byResource[name])
		if err != nil {
			return err
		}
		if err := store.Write(target, out); err != nil {
			return p.wrap(target, "writing resource", err)
		}
	}
	return nil
}

// RewriteScript applies per-line replacements (line number to dense literal
// index to text) to one script. Lines are split on "\n" and joined back the
// same way, so line endings and lines without replacements are kept byte for
// byte.
func (p *TokenProcessor) RewriteScript(ctx context.Context, data []byte, lines map[int]map[int]string) ([]byte, error) {
	if len(lines) == 0 {
		return data, nil
	}

	src := strings.Split(string(data), "\n")
	for i, line := range src {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		repl := lines[i+1]
		if len(repl) == 0 {
			continue
		}
		body, cr := strings.CutSuffix(line, "\r")
		out, changed := p.matcher.Rewrite(body, repl)
		if !changed {
			continue
		}
		if cr {
			out += "\r"
		}
		src[i] = out
	}
	return []byte(strings.Join(src, "\n")), nil
}

func (p *TokenProcessor) wrap(resource, msg string, err error) error {
	return &miztl.ProcessorError{Message: msg, Cause: err, Processor: p.Name(), Resource: resource}
}

// groupByLine indexes token entries by resource, line and literal index.
func groupByLine(entries *miztl.EntrySet) map[string]map[int]map[int]string {
	out := make(map[string]map[int]map[int]string)
	for addr, text := range entries.All() {
		if !addr.IsToken() {
			continue
		}
		lines, ok := out[addr.Resource]
		if !ok {
			lines = make(map[int]map[int]string)
			out[addr.Resource] = lines
		}
		idx, ok := lines[addr.Line]
		if !ok {
			idx = make(map[int]string)
			lines[addr.Line] = idx
		}
		idx[addr.Index] = text
	}
	return out
}

// Verify TokenProcessor implements EntriesProcessor
var _ EntriesProcessor = (*TokenProcessor)(nil)
