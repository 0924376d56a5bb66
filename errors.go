package miztl

import "fmt"

// TranslationError reports a run that stopped before every pending string
// was translated.
type TranslationError struct {
	Message   string
	Cause     error
	Processor string // Processor whose entries were being translated
	Text      string // Source text that failed, if known
	Done      int    // Strings translated before the failure
	Total     int    // Strings that were pending
}

func (e *TranslationError) Error() string {
	msg := e.Message
	if e.Processor != "" {
		msg = fmt.Sprintf("%s entries: %s (%d of %d done)", e.Processor, msg, e.Done, e.Total)
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" at %q", truncate(e.Text, 40))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a translation provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a failure reading or writing mission resources.
type ProcessorError struct {
	Message   string
	Cause     error
	Processor string // Name of the processor that failed
	Resource  string // Archive entry involved, if any
}

func (e *ProcessorError) Error() string {
	msg := e.Message
	if e.Resource != "" {
		msg = e.Resource + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.Processor, msg, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.Processor, msg)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
