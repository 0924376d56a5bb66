package miztl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ZaguanLabs/miztl/archive"
)

// mockProvider is a simple mock for testing
type mockProvider struct {
	translations map[string]string
	failOn       map[string]bool
	requests     []TranslateRequest
	onCall       func(n int)
}

var errMockFailure = errors.New("mock failure")

func newMockProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{
			"Hello pilots, welcome aboard": "飞行员们好，欢迎登机",
			"Climb and maintain angels 20": "爬升并保持两万英尺",
		},
	}
}

func (m *mockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.onCall != nil {
		m.onCall(len(m.requests))
	}
	if m.failOn[req.Text] {
		return "", errMockFailure
	}
	if translation, ok := m.translations[req.Text]; ok {
		return translation, nil
	}
	return "[" + req.Text + "]", nil
}

func (m *mockProvider) texts() []string {
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Text
	}
	return out
}

// mockCache records flushes
type mockCache struct {
	data       map[string]string
	flushes    int
	flushErr   error
	flushCtxOK bool
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mockCache) Set(key string, value string) error {
	c.data[key] = value
	return nil
}

func (c *mockCache) Flush(ctx context.Context) error {
	c.flushes++
	c.flushCtxOK = ctx.Err() == nil
	return c.flushErr
}

func (c *mockCache) Location() string {
	return "mock://cache"
}

// stubProcessor returns fixed entries and records what it is asked to write
type stubProcessor struct {
	name       string
	entries    *EntrySet
	extractErr error
	extracted  int
	applied    *EntrySet
	appliedTo  string
}

func newStubProcessor(name string, pairs ...string) *stubProcessor {
	set := NewEntrySet()
	for i := 0; i+1 < len(pairs); i += 2 {
		set.Add(DictionaryAddress(pairs[i]), pairs[i+1])
	}
	return &stubProcessor{name: name, entries: set}
}

func (p *stubProcessor) Name() string { return p.name }

func (p *stubProcessor) Extract(ctx context.Context, store archive.Store) (*EntrySet, error) {
	p.extracted++
	if p.extractErr != nil {
		return nil, p.extractErr
	}
	return p.entries.Clone(), nil
}

func (p *stubProcessor) Apply(ctx context.Context, store archive.Store, lang string, entries *EntrySet) error {
	p.applied = entries
	p.appliedTo = lang
	return nil
}

func translate(t *testing.T, tr *Translator) *Result {
	t.Helper()
	result, err := tr.Translate(context.Background(), archive.NewMemoryStore(nil))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	return result
}

func TestTranslator_BasicTranslation(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")
	tr := NewTranslator("CN", p, WithProcessors(proc))

	result := translate(t, tr)

	got, _ := proc.applied.Get(DictionaryAddress("DictKey_1"))
	if got != "飞行员们好，欢迎登机" {
		t.Errorf("Expected translation applied, got %q", got)
	}
	if proc.appliedTo != "CN" {
		t.Errorf("Expected lang CN, got %q", proc.appliedTo)
	}
	if len(result.Processors) != 1 || result.Processors[0].Translated != 1 {
		t.Errorf("Unexpected result %+v", result.Processors)
	}
	if result.Translated() != 1 {
		t.Errorf("Expected 1 translated, got %d", result.Translated())
	}
}

func TestTranslator_Deduplication(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("dictionary",
		"DictKey_1", "Hello pilots, welcome aboard",
		"DictKey_2", "Climb and maintain angels 20",
		"DictKey_3", "Hello pilots, welcome aboard",
	)
	tr := NewTranslator("CN", p, WithProcessors(proc))

	result := translate(t, tr)

	if len(p.requests) != 2 {
		t.Errorf("Expected 2 provider calls, got %d", len(p.requests))
	}
	for _, key := range []string{"DictKey_1", "DictKey_3"} {
		if got, _ := proc.applied.Get(DictionaryAddress(key)); got != "飞行员们好，欢迎登机" {
			t.Errorf("%s: expected shared translation, got %q", key, got)
		}
	}
	pr := result.Processors[0]
	if pr.Entries != 3 || pr.Distinct != 2 || pr.Pending != 2 {
		t.Errorf("Unexpected counts %+v", pr)
	}
}

func TestTranslator_CacheHit(t *testing.T) {
	p := newMockProvider()
	c := newMockCache()
	c.data["Hello pilots, welcome aboard"] = "来自缓存的翻译"
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")

	tr := NewTranslator("CN", p, WithProcessors(proc), WithCache(c))
	result := translate(t, tr)

	if len(p.requests) != 0 {
		t.Errorf("Expected no provider calls, got %d", len(p.requests))
	}
	if got, _ := proc.applied.Get(DictionaryAddress("DictKey_1")); got != "来自缓存的翻译" {
		t.Errorf("Expected cached translation, got %q", got)
	}
	if result.Processors[0].Cached != 1 {
		t.Errorf("Expected 1 cached, got %d", result.Processors[0].Cached)
	}
	if result.CacheLocation != "mock://cache" {
		t.Errorf("Expected cache location, got %q", result.CacheLocation)
	}
}

func TestTranslator_Filter(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("dictionary",
		"DictKey_1", "Hello pilots, welcome aboard",
		"DictKey_2", "Too short",
		"DictKey_3", "                         ",
		"DictKey_ActionRadioText_4", "Texaco, this is Enfield one-one",
	)
	tr := NewTranslator("CN", p, WithProcessors(proc))

	translate(t, tr)

	if got := p.texts(); len(got) != 1 || got[0] != "Hello pilots, welcome aboard" {
		t.Errorf("Expected only the long text sent, got %v", got)
	}
	if got, _ := proc.applied.Get(DictionaryAddress("DictKey_ActionRadioText_4")); got != "Texaco, this is Enfield one-one" {
		t.Errorf("Skipped entry should keep its text, got %q", got)
	}
	if proc.applied.Len() != 4 {
		t.Errorf("Expected every entry written, got %d", proc.applied.Len())
	}
}

func TestTranslator_MinLengthBoundary(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("dictionary",
		"DictKey_1", strings.Repeat("a", 15),
		"DictKey_2", strings.Repeat("b", 16),
		"DictKey_3", "飞飞飞飞飞飞飞飞飞飞飞飞飞飞飞飞",
	)
	tr := NewTranslator("DE", p, WithProcessors(proc))

	translate(t, tr)

	if got := p.texts(); len(got) != 2 || got[0] != strings.Repeat("b", 16) {
		t.Errorf("Expected texts of 16 characters or more, got %v", got)
	}

	p = newMockProvider()
	proc = newStubProcessor("dictionary", "DictKey_1", "Hi")
	translate(t, NewTranslator("DE", p, WithProcessors(proc), WithMinLength(0)))
	if len(p.requests) != 1 {
		t.Errorf("Expected short text sent with min length 0, got %d calls", len(p.requests))
	}
}

func TestTranslator_SkipPrefixOnTokenAddress(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("token")
	proc.entries.Add(TokenAddress("l10n/DEFAULT/radio.lua", 3, 0), "Hello pilots, welcome aboard")
	proc.entries.Add(TokenAddress("l10n/DEFAULT/briefing.lua", 1, 0), "Climb and maintain angels 20")

	tr := NewTranslator("CN", p, WithProcessors(proc), WithSkipPrefixes("l10n/DEFAULT/radio"))
	translate(t, tr)

	if got := p.texts(); len(got) != 1 || got[0] != "Climb and maintain angels 20" {
		t.Errorf("Expected radio script skipped, got %v", got)
	}
}

func TestTranslator_FailFast(t *testing.T) {
	p := newMockProvider()
	p.failOn = map[string]bool{"Third string of five here": true}
	c := newMockCache()
	first := newStubProcessor("dictionary",
		"DictKey_1", "First string of five here",
		"DictKey_2", "Second string of five here",
		"DictKey_3", "Third string of five here",
		"DictKey_4", "Fourth string of five here",
		"DictKey_5", "Fifth string of five here",
	)
	second := newStubProcessor("token", "x", "Hello pilots, welcome aboard")

	tr := NewTranslator("CN", p, WithProcessors(first, second), WithCache(c))
	result, err := tr.Translate(context.Background(), archive.NewMemoryStore(nil))

	var transErr *TranslationError
	if !errors.As(err, &transErr) {
		t.Fatalf("Expected TranslationError, got %v", err)
	}
	if !errors.Is(err, errMockFailure) {
		t.Error("TranslationError should wrap the provider error")
	}
	if transErr.Processor != "dictionary" || transErr.Done != 2 || transErr.Total != 5 {
		t.Errorf("Expected dictionary 2 of 5, got %s %d of %d", transErr.Processor, transErr.Done, transErr.Total)
	}
	if transErr.Text != "Third string of five here" {
		t.Errorf("Expected failing text recorded, got %q", transErr.Text)
	}
	if len(c.data) != 2 {
		t.Errorf("Expected the 2 successful translations cached, got %d", len(c.data))
	}
	if c.flushes != 1 {
		t.Errorf("Expected cache flushed once, got %d", c.flushes)
	}
	if first.applied != nil {
		t.Error("Failed processor should not write")
	}
	if second.extracted != 0 {
		t.Error("Remaining processors should not run")
	}
	if len(result.Processors) != 1 || result.Processors[0].Translated != 2 {
		t.Errorf("Unexpected partial result %+v", result.Processors)
	}
}

func TestTranslator_ContinueOnError(t *testing.T) {
	p := newMockProvider()
	p.failOn = map[string]bool{"Climb and maintain angels 20": true}
	proc := newStubProcessor("dictionary",
		"DictKey_1", "Climb and maintain angels 20",
		"DictKey_2", "Hello pilots, welcome aboard",
	)

	tr := NewTranslator("CN", p, WithProcessors(proc), WithContinueOnError(true))
	result := translate(t, tr)

	if got, _ := proc.applied.Get(DictionaryAddress("DictKey_1")); got != "Climb and maintain angels 20" {
		t.Errorf("Failed entry should keep source text, got %q", got)
	}
	if got, _ := proc.applied.Get(DictionaryAddress("DictKey_2")); got != "飞行员们好，欢迎登机" {
		t.Errorf("Expected translation, got %q", got)
	}
	if result.Processors[0].Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Processors[0].Failed)
	}
}

func TestTranslator_CancelPersistsCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newMockProvider()
	p.onCall = func(n int) {
		if n == 1 {
			cancel()
		}
	}
	c := newMockCache()
	proc := newStubProcessor("dictionary",
		"DictKey_1", "Hello pilots, welcome aboard",
		"DictKey_2", "Climb and maintain angels 20",
	)

	tr := NewTranslator("CN", p, WithProcessors(proc), WithCache(c))
	_, err := tr.Translate(ctx, archive.NewMemoryStore(nil))

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(p.requests) != 1 {
		t.Errorf("Expected 1 provider call, got %d", len(p.requests))
	}
	if _, ok := c.data["Hello pilots, welcome aboard"]; !ok {
		t.Error("Translation finished before cancellation should be cached")
	}
	if c.flushes != 1 || !c.flushCtxOK {
		t.Errorf("Expected one flush with a live context, got %d (live=%v)", c.flushes, c.flushCtxOK)
	}
	if proc.applied != nil {
		t.Error("Cancelled processor should not write")
	}
}

func TestTranslator_CancelBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newMockProvider()
	c := newMockCache()
	c.data["existing"] = "vorhanden"
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")

	_, err := NewTranslator("DE", p, WithProcessors(proc), WithCache(c)).Translate(ctx, archive.NewMemoryStore(nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(p.requests) != 0 {
		t.Errorf("Expected no provider calls, got %d", len(p.requests))
	}
	if c.flushes != 1 || len(c.data) != 1 {
		t.Errorf("Expected unchanged cache flushed once, got %d flushes and %d entries", c.flushes, len(c.data))
	}
}

func TestTranslator_Validate(t *testing.T) {
	proc := newStubProcessor("dictionary")
	tests := []struct {
		name string
		tr   *Translator
	}{
		{"empty lang", NewTranslator("", newMockProvider(), WithProcessors(proc))},
		{"default lang", NewTranslator("DEFAULT", newMockProvider(), WithProcessors(proc))},
		{"lower-case default", NewTranslator("default", newMockProvider(), WithProcessors(proc))},
		{"nil provider", NewTranslator("CN", nil, WithProcessors(proc))},
		{"no processors", NewTranslator("CN", newMockProvider())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tr.Translate(context.Background(), archive.NewMemoryStore(nil))
			var transErr *TranslationError
			if !errors.As(err, &transErr) {
				t.Errorf("Expected TranslationError, got %v", err)
			}
		})
	}

	if proc.extracted != 0 {
		t.Error("Invalid translators should not touch the archive")
	}
}

func TestTranslator_SourceEqualsTarget(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")

	result := translate(t, NewTranslator("en", p, WithProcessors(proc)))

	if len(p.requests) != 0 || proc.extracted != 0 {
		t.Error("Source language target should be a no-op")
	}
	if len(result.Processors) != 0 {
		t.Errorf("Expected empty result, got %+v", result.Processors)
	}
}

func TestTranslator_RequestFields(t *testing.T) {
	p := newMockProvider()
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")
	glossary := map[string]string{"angels": "Höhe in tausend Fuß"}

	tr := NewTranslator("DE", p,
		WithProcessors(proc),
		WithSourceLang("EN"),
		WithContext("Caucasus CAP mission"),
		WithGlossary(glossary),
	)
	translate(t, tr)

	req := p.requests[0]
	if req.TargetLang != "DE" || req.SourceLang != "EN" {
		t.Errorf("Unexpected languages %q -> %q", req.SourceLang, req.TargetLang)
	}
	if req.Context != "Caucasus CAP mission" {
		t.Errorf("Expected context, got %q", req.Context)
	}
	if req.Glossary["angels"] != "Höhe in tausend Fuß" {
		t.Errorf("Expected glossary, got %v", req.Glossary)
	}
}

func TestTranslator_Progress(t *testing.T) {
	p := newMockProvider()
	p.failOn = map[string]bool{"Climb and maintain angels 20": true}
	proc := newStubProcessor("dictionary",
		"DictKey_1", "Hello pilots, welcome aboard",
		"DictKey_2", "Climb and maintain angels 20",
	)

	var events []Progress
	tr := NewTranslator("CN", p,
		WithProcessors(proc),
		WithContinueOnError(true),
		WithProgress(func(p Progress) { events = append(events, p) }),
	)
	translate(t, tr)

	if len(events) != 2 {
		t.Fatalf("Expected 2 progress events, got %d", len(events))
	}
	if events[0].Current != 1 || events[0].Total != 2 || events[0].Processor != "dictionary" || events[0].Err != nil {
		t.Errorf("Unexpected first event %+v", events[0])
	}
	if events[1].Current != 2 || events[1].Err == nil {
		t.Errorf("Expected second event to carry the error, got %+v", events[1])
	}
}

func TestTranslator_ExtractError(t *testing.T) {
	proc := newStubProcessor("dictionary")
	proc.extractErr = &ProcessorError{Message: "decoding dictionary", Processor: "dictionary"}

	_, err := NewTranslator("CN", newMockProvider(), WithProcessors(proc)).Translate(context.Background(), archive.NewMemoryStore(nil))
	var procErr *ProcessorError
	if !errors.As(err, &procErr) {
		t.Errorf("Expected ProcessorError, got %v", err)
	}
}

func TestTranslator_FlushError(t *testing.T) {
	c := newMockCache()
	c.flushErr = errors.New("disk full")
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")

	_, err := NewTranslator("CN", newMockProvider(), WithProcessors(proc), WithCache(c)).Translate(context.Background(), archive.NewMemoryStore(nil))
	var cacheErr *CacheError
	if !errors.As(err, &cacheErr) {
		t.Fatalf("Expected CacheError, got %v", err)
	}
	if proc.applied != nil {
		t.Error("Nothing should be written when the cache cannot be persisted")
	}
}

// fakeArchive counts commits and closes
type fakeArchive struct {
	*archive.MemoryStore
	commits int
	closes  int
}

func (a *fakeArchive) Commit() error { a.commits++; return nil }
func (a *fakeArchive) Close() error  { a.closes++; return nil }

func TestTranslator_TranslateFile(t *testing.T) {
	var opened []*fakeArchive
	opener := func(path string) (archive.Archive, error) {
		if path != "mission.miz" {
			t.Errorf("Unexpected path %q", path)
		}
		a := &fakeArchive{MemoryStore: archive.NewMemoryStore(nil)}
		opened = append(opened, a)
		return a, nil
	}

	first := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")
	second := newStubProcessor("token", "x", "Climb and maintain angels 20")
	tr := NewTranslator("CN", newMockProvider(), WithProcessors(first, second), WithOpener(opener))

	result, err := tr.TranslateFile(context.Background(), "mission.miz")
	if err != nil {
		t.Fatalf("TranslateFile failed: %v", err)
	}

	if len(opened) != 2 {
		t.Fatalf("Expected the archive opened once per processor, got %d", len(opened))
	}
	for i, a := range opened {
		if a.commits != 1 || a.closes != 1 {
			t.Errorf("Archive %d: expected 1 commit and 1 close, got %d and %d", i, a.commits, a.closes)
		}
	}
	if len(result.Processors) != 2 {
		t.Errorf("Expected 2 processor results, got %d", len(result.Processors))
	}
}

func TestTranslator_TranslateFile_NoCommitOnFailure(t *testing.T) {
	var opened *fakeArchive
	opener := func(string) (archive.Archive, error) {
		opened = &fakeArchive{MemoryStore: archive.NewMemoryStore(nil)}
		return opened, nil
	}

	p := newMockProvider()
	p.failOn = map[string]bool{"Hello pilots, welcome aboard": true}
	proc := newStubProcessor("dictionary", "DictKey_1", "Hello pilots, welcome aboard")

	_, err := NewTranslator("CN", p, WithProcessors(proc), WithOpener(opener)).TranslateFile(context.Background(), "mission.miz")
	if err == nil {
		t.Fatal("Expected error")
	}
	if opened.commits != 0 || opened.closes != 1 {
		t.Errorf("Expected close without commit, got %d commits and %d closes", opened.commits, opened.closes)
	}
}

func TestTranslator_Options(t *testing.T) {
	c := newMockCache()
	tr := NewTranslator("CN", newMockProvider(), WithCache(c), WithSourceLang("DE"))

	if tr.TargetLang() != "CN" {
		t.Errorf("Expected target CN, got %q", tr.TargetLang())
	}
	if tr.SourceLang() != "DE" {
		t.Errorf("Expected source DE, got %q", tr.SourceLang())
	}
	if tr.Cache() != c {
		t.Error("Expected configured cache")
	}

	if NewTranslator("CN", nil).Cache() == nil {
		t.Error("Expected a default cache")
	}
}

func TestTranslator_IsSourceLang(t *testing.T) {
	tests := []struct {
		target, source string
		want           bool
	}{
		{"EN", "EN", true},
		{"en", "EN", true},
		{"en_US", "EN", true},
		{"CN", "EN", false},
		{"zh", "CN", true},
	}

	for _, tt := range tests {
		tr := NewTranslator(tt.target, nil, WithSourceLang(tt.source))
		if got := tr.IsSourceLang(); got != tt.want {
			t.Errorf("IsSourceLang(%q, %q) = %v, want %v", tt.target, tt.source, got, tt.want)
		}
	}
}
