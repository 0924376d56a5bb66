package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/ZaguanLabs/miztl"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIProvider implements AIProvider using OpenAI's chat completion API or
// any endpoint compatible with it.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{
		Transport: &userAgentTransport{base: http.DefaultTransport, agent: miztl.UserAgent()},
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Translate translates one mission string.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &miztl.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &miztl.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceName := "English"
	if req.SourceLang != "" {
		sourceName = miztl.GetLanguageName(req.SourceLang)
	}
	targetName := miztl.GetLanguageName(req.TargetLang)

	contextText := "The text comes from a DCS World mission: briefings, radio messages and trigger subtitles shown to pilots."
	if req.Context != "" {
		contextText += fmt.Sprintf(" Mission notes: %s", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are a professional translator of military aviation material. You translate %s into %s the way an experienced pilot who is a native %s speaker would write it.

# Context
%s

# Style Guide
- **Brevity**: Keep radio calls short. Do not expand brevity words into full sentences.
- **Terminology**: Keep callsigns, brevity codes (e.g., FENCE IN, BINGO, WINCHESTER), aircraft and weapon designations, and NATO reporting names untranslated.
- **Numbers**: Keep frequencies, headings, altitudes, coordinates, grid references and units exactly as written.
- **Formatting**: Preserve line breaks and escape sequences such as \n and \" exactly as they appear. Preserve leading and trailing whitespace.
- **Tone**: Keep the register of the source. Orders stay orders; banter stays banter.`, sourceName, targetName, targetName, contextText)

	if len(req.Glossary) > 0 {
		prompt += "\n\n# Glossary\nWhen you encounter these phrases, use these translations:"
		for _, source := range slices.Sorted(maps.Keys(req.Glossary)) {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", source, req.Glossary[source])
		}
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translation" holding the translated text.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.
- Do NOT add notes or explanations.`

	return prompt
}

func (p *OpenAIProvider) buildUserMessage(req TranslateRequest) string {
	data, _ := json.Marshal(map[string]string{"text": req.Text})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string) (string, error) {
	content = stripCodeFence(strings.TrimSpace(content))

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if s, ok := obj["translation"].(string); ok {
			return s, nil
		}
		// Fallback: first string value in key order
		for _, k := range slices.Sorted(maps.Keys(obj)) {
			if s, ok := obj[k].(string); ok {
				return s, nil
			}
		}
		return "", &miztl.ProviderError{
			Message:   "invalid response format from OpenAI",
			Retryable: false,
		}
	}

	if content == "" {
		return "", &miztl.ProviderError{
			Message:   "empty response from OpenAI",
			Retryable: true,
		}
	}

	// Plain text reply
	return content, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// Verify OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)
