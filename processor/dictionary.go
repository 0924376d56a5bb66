package processor

import (
	"context"
	"errors"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/archive"
	"github.com/ZaguanLabs/miztl/lua"
)

// DictionaryTable is the name of the global table holding mission strings.
const DictionaryTable = "dictionary"

// DictionaryResource is the default-language dictionary inside a mission.
var DictionaryResource = archive.DefaultPath("dictionary")

// DictionaryProcessor translates the mission string dictionary. Entries are
// addressed by their dictionary key.
type DictionaryProcessor struct {
	resource string
}

// NewDictionaryProcessor creates a processor for l10n/DEFAULT/dictionary.
func NewDictionaryProcessor() *DictionaryProcessor {
	return &DictionaryProcessor{resource: DictionaryResource}
}

// Name implements EntriesProcessor.
func (p *DictionaryProcessor) Name() string {
	return "dictionary"
}

// Extract implements EntriesProcessor. A mission without a dictionary yields
// an empty set.
func (p *DictionaryProcessor) Extract(ctx context.Context, store archive.Store) (*miztl.EntrySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := store.Read(p.resource)
	if errors.Is(err, archive.ErrNotFound) {
		return miztl.NewEntrySet(), nil
	}
	if err != nil {
		return nil, p.wrap("reading resource", err)
	}

	entries, err := ExtractDictionary(data)
	if err != nil {
		return nil, p.wrap("decoding dictionary", err)
	}
	return entries, nil
}

// Apply implements EntriesProcessor. It writes l10n/<lang>/dictionary holding
// every key of the default dictionary, with the values found in entries.
func (p *DictionaryProcessor) Apply(ctx context.Context, store archive.Store, lang string, entries *miztl.EntrySet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, ok := archive.Localize(p.resource, lang)
	if !ok || archive.IsDefaultLocale(lang) {
		return &miztl.ProcessorError{Message: "invalid target language " + lang, Processor: p.Name()}
	}

	data, err := store.Read(p.resource)
	if errors.Is(err, archive.ErrNotFound) {
		return nil
	}
	if err != nil {
		return p.wrap("reading resource", err)
	}

	out, err := RewriteDictionary(data, entries)
	if err != nil {
		return p.wrap("decoding dictionary", err)
	}
	if err := store.Write(target, out); err != nil {
		return &miztl.ProcessorError{Message: "writing resource", Cause: err, Processor: p.Name(), Resource: target}
	}
	return nil
}

func (p *DictionaryProcessor) wrap(msg string, err error) error {
	return &miztl.ProcessorError{Message: msg, Cause: err, Processor: p.Name(), Resource: p.resource}
}

// ExtractDictionary decodes a dictionary resource into entries addressed by
// key, in source order.
func ExtractDictionary(data []byte) (*miztl.EntrySet, error) {
	pairs, err := lua.DecodeTable(data, DictionaryTable)
	if err != nil {
		return nil, err
	}

	entries := miztl.NewEntrySet()
	for _, pair := range pairs {
		entries.Add(miztl.DictionaryAddress(pair.Key), pair.Value)
	}
	return entries, nil
}

// RewriteDictionary re-encodes a dictionary resource with the values from
// entries applied. Keys missing from entries keep their original value and
// keys only present in entries are ignored.
func RewriteDictionary(data []byte, entries *miztl.EntrySet) ([]byte, error) {
	pairs, err := lua.DecodeTable(data, DictionaryTable)
	if err != nil {
		return nil, err
	}

	for i, pair := range pairs {
		if text, ok := entries.Get(miztl.DictionaryAddress(pair.Key)); ok {
			pairs[i].Value = text
		}
	}
	return lua.EncodeTable(DictionaryTable, pairs), nil
}

// Verify DictionaryProcessor implements EntriesProcessor
var _ EntriesProcessor = (*DictionaryProcessor)(nil)
