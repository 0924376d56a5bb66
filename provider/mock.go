package provider

import (
	"context"
	"errors"
	"sync"
)

// ErrMockFailure is returned by MockProvider for texts it is told to fail on.
var ErrMockFailure = errors.New("mock provider failure")

// MockProvider is a mock AI provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	FailOn       map[string]bool   // Texts that return ErrMockFailure
	FailAfter    int               // Fail every call after this many successes (0 = never)

	mu    sync.Mutex
	calls []TranslateRequest
}

// NewMockProvider creates a new mock provider with a few radio calls.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                         "你好",
			"Bandits, bearing 090 for 20.":  "敌机，方位090，距离20。",
			"Return to base, mission over.": "返回基地，任务结束。",
		},
	}
}

// Translate returns the configured translation, or the text wrapped in
// brackets when none is configured.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.calls = append(m.calls, req)

	if m.FailOn[req.Text] {
		return "", ErrMockFailure
	}
	if m.FailAfter > 0 && len(m.calls) > m.FailAfter {
		return "", ErrMockFailure
	}

	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return "[" + req.Text + "]", nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of every request received.
func (m *MockProvider) Calls() []TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranslateRequest(nil), m.calls...)
}

// Reset forgets all recorded calls.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)
