package miztl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/miztl/archive"
)

// Defaults for the translation filter.
const (
	// DefaultMinLength is the shortest source text, in characters, that is
	// sent for translation.
	DefaultMinLength = 16
)

// DefaultSkipPrefixes are address prefixes whose entries are never sent for
// translation.
var DefaultSkipPrefixes = []string{"DictKey_ActionRadioText"}

// Translator is the main translation engine. It runs each processor over an
// archive in turn: extract, translate the distinct uncached strings one at a
// time, persist the cache, then write the language variant.
//
// A Translator is not safe for concurrent use.
type Translator struct {
	targetLang      string
	sourceLang      string
	provider        AIProvider
	cache           TranslationCache
	processors      []EntriesProcessor
	context         string
	glossary        map[string]string
	minLength       int
	skipPrefixes    []string
	continueOnError bool
	progress        ProgressFunc
	open            func(path string) (archive.Archive, error)
	logger          zerolog.Logger
}

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for translating one string.
type TranslateRequest struct {
	Text       string
	TargetLang string
	SourceLang string
	Context    string
	Glossary   map[string]string
}

// TranslationCache maps source text to translated text for one target
// language.
type TranslationCache interface {
	Get(text string) (string, bool)
	Set(text string, translation string) error

	// Flush persists the cache. Caches without backing storage return nil.
	Flush(ctx context.Context) error
}

// EntriesProcessor extracts addressed strings from an archive and writes a
// translated language variant back into it.
//
// Apply must depend only on the archive's default-language resources and the
// entries passed to it.
type EntriesProcessor interface {
	Name() string
	Extract(ctx context.Context, store archive.Store) (*EntrySet, error)
	Apply(ctx context.Context, store archive.Store, lang string, entries *EntrySet) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithProcessors sets the processors, run in the given order.
func WithProcessors(processors ...EntriesProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors = append([]EntriesProcessor(nil), processors...)
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithMinLength sets the minimum length, in characters, of text sent for
// translation.
func WithMinLength(n int) TranslatorOption {
	return func(t *Translator) {
		t.minLength = n
	}
}

// WithSkipPrefixes sets the address prefixes that are never translated.
func WithSkipPrefixes(prefixes ...string) TranslatorOption {
	return func(t *Translator) {
		t.skipPrefixes = append([]string(nil), prefixes...)
	}
}

// WithContinueOnError keeps translating after a provider failure. Strings
// that failed keep their source text in the written variant.
func WithContinueOnError(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.continueOnError = enabled
	}
}

// WithProgress sets a callback invoked after each distinct string.
func WithProgress(fn ProgressFunc) TranslatorOption {
	return func(t *Translator) {
		t.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithOpener replaces the function TranslateFile uses to open archives.
func WithOpener(open func(path string) (archive.Archive, error)) TranslatorOption {
	return func(t *Translator) {
		t.open = open
	}
}

// NewTranslator creates a new Translator with the given target language and provider.
func NewTranslator(targetLang string, provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang:   targetLang,
		sourceLang:   "EN",
		provider:     provider,
		minLength:    DefaultMinLength,
		skipPrefixes: DefaultSkipPrefixes,
		open:         openMiz,
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.cache == nil {
		t.cache = newMemoryCache()
	}

	return t
}

func openMiz(path string) (archive.Archive, error) {
	return archive.Open(path)
}

// TranslateFile translates the mission archive at path. The archive is
// opened, processed and committed once per processor, so a processor never
// sees another processor's uncommitted writes.
func (t *Translator) TranslateFile(ctx context.Context, path string) (*Result, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	result := t.newResult()
	if t.IsSourceLang() {
		return result, nil
	}

	for _, p := range t.processors {
		a, err := t.open(path)
		if err != nil {
			return result, &ProcessorError{Message: "opening archive", Cause: err, Processor: p.Name(), Resource: path}
		}

		pr, err := t.process(ctx, a, p)
		if err == nil {
			if cerr := a.Commit(); cerr != nil {
				err = &ProcessorError{Message: "committing archive", Cause: cerr, Processor: p.Name(), Resource: path}
			}
		}
		if cerr := a.Close(); cerr != nil && err == nil {
			err = &ProcessorError{Message: "closing archive", Cause: cerr, Processor: p.Name(), Resource: path}
		}

		result.Processors = append(result.Processors, pr)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// Translate runs every processor over an already open store.
func (t *Translator) Translate(ctx context.Context, store archive.Store) (*Result, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	result := t.newResult()
	if t.IsSourceLang() {
		return result, nil
	}

	for _, p := range t.processors {
		pr, err := t.process(ctx, store, p)
		result.Processors = append(result.Processors, pr)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (t *Translator) validate() error {
	switch {
	case t.targetLang == "":
		return &TranslationError{Message: "target language is required"}
	case archive.IsDefaultLocale(t.targetLang):
		return &TranslationError{Message: fmt.Sprintf("target language %q would overwrite the default resources", t.targetLang)}
	case t.provider == nil:
		return &TranslationError{Message: "no translation provider configured"}
	case len(t.processors) == 0:
		return &TranslationError{Message: "no processors configured"}
	}
	return nil
}

func (t *Translator) newResult() *Result {
	r := &Result{TargetLang: t.targetLang}
	if l, ok := t.cache.(interface{ Location() string }); ok {
		r.CacheLocation = l.Location()
	}
	return r
}

// process runs one processor: extract, translate, persist, rewrite.
func (t *Translator) process(ctx context.Context, store archive.Store, p EntriesProcessor) (ProcessorResult, error) {
	res := ProcessorResult{Processor: p.Name()}
	log := t.logger.With().Str("processor", p.Name()).Str("lang", t.targetLang).Logger()

	source, err := p.Extract(ctx, store)
	if err != nil {
		return res, err
	}
	res.Source = source
	res.Entries = source.Len()

	pending, cached := t.pending(source)
	res.Distinct = len(source.Contents())
	res.Pending = len(pending)
	res.Cached = cached

	log.Info().
		Int("entries", res.Entries).
		Int("distinct", res.Distinct).
		Int("pending", res.Pending).
		Int("cached", res.Cached).
		Msg("Extracted entries")

	translated, failed, err := t.translateAll(ctx, p.Name(), pending, log)
	res.Translated = translated
	res.Failed = failed

	// The cache is persisted on every exit path, including cancellation.
	if ferr := t.cache.Flush(context.WithoutCancel(ctx)); ferr != nil {
		if err == nil {
			return res, &CacheError{Message: "persisting cache", Cause: ferr}
		}
		log.Error().Err(ferr).Msg("Failed to persist cache")
	}

	if err != nil {
		log.Error().Err(err).Int("translated", translated).Msg("Translation stopped")
		var transErr *TranslationError
		if !errors.As(err, &transErr) {
			transErr = &TranslationError{Message: "translation stopped", Cause: err}
		}
		transErr.Processor = p.Name()
		transErr.Done = translated
		transErr.Total = len(pending)
		return res, transErr
	}

	output := t.project(source)
	res.Output = output

	if err := p.Apply(ctx, store, t.targetLang, output); err != nil {
		return res, err
	}

	log.Info().Int("translated", translated).Int("failed", failed).Msg("Wrote language variant")
	return res, nil
}

// pending returns the distinct source strings that pass the filter and are
// not yet cached, in order of first appearance, and the number of distinct
// filtered strings already cached.
func (t *Translator) pending(source *EntrySet) ([]string, int) {
	var pending []string
	cached := 0
	seen := make(map[string]bool)
	for addr, text := range source.All() {
		if seen[text] || !t.translatable(addr, text) {
			continue
		}
		seen[text] = true
		if _, ok := t.cache.Get(text); ok {
			cached++
			continue
		}
		pending = append(pending, text)
	}
	return pending, cached
}

func (t *Translator) translatable(addr Address, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if utf8.RuneCountInString(text) < t.minLength {
		return false
	}
	key := addr.String()
	for _, prefix := range t.skipPrefixes {
		if strings.HasPrefix(key, prefix) {
			return false
		}
	}
	return true
}

// translateAll translates pending strings one at a time, storing each result
// in the cache as soon as it arrives.
func (t *Translator) translateAll(ctx context.Context, name string, pending []string, log zerolog.Logger) (int, int, error) {
	translated, failed := 0, 0
	for i, text := range pending {
		if err := ctx.Err(); err != nil {
			return translated, failed, err
		}

		out, err := t.provider.Translate(ctx, TranslateRequest{
			Text:       text,
			TargetLang: t.targetLang,
			SourceLang: t.sourceLang,
			Context:    t.context,
			Glossary:   t.glossary,
		})
		if err != nil {
			t.report(Progress{Processor: name, Current: i + 1, Total: len(pending), Text: text, Err: err})
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return translated, failed, err
			}
			if !t.continueOnError {
				return translated, failed, &TranslationError{Message: "translation failed", Text: text, Cause: err}
			}
			log.Warn().Err(err).Str("text", truncate(text, 60)).Msg("Translation failed, keeping source text")
			failed++
			continue
		}

		if err := t.cache.Set(text, out); err != nil {
			return translated, failed, &CacheError{Message: "storing translation", Cause: err}
		}
		translated++
		log.Debug().Int("current", i+1).Int("total", len(pending)).Msg("Translated")
		t.report(Progress{Processor: name, Current: i + 1, Total: len(pending), Text: text})
	}
	return translated, failed, nil
}

func (t *Translator) report(p Progress) {
	if t.progress != nil {
		t.progress(p)
	}
}

// project replaces the text of every entry whose source string is cached.
func (t *Translator) project(source *EntrySet) *EntrySet {
	out := source.Clone()
	for addr, text := range source.All() {
		if translated, ok := t.cache.Get(text); ok {
			out.Set(addr, translated)
		}
	}
	return out
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// IsSourceLang checks if the target language matches the source language.
// When true, translation can be bypassed.
func (t *Translator) IsSourceLang() bool {
	return NormalizeLangCode(t.targetLang) == NormalizeLangCode(t.sourceLang)
}

// Cache returns the translation cache.
func (t *Translator) Cache() TranslationCache {
	return t.cache
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// memoryCache is used when no cache is configured.
type memoryCache map[string]string

func newMemoryCache() memoryCache {
	return make(memoryCache)
}

func (c memoryCache) Get(text string) (string, bool) {
	v, ok := c[text]
	return v, ok
}

func (c memoryCache) Set(text, translation string) error {
	c[text] = translation
	return nil
}

func (c memoryCache) Flush(context.Context) error {
	return nil
}
