package llm

import "errors"

// Sentinel kinds for completer errors.
var (
	ErrMissingAPIKey  = errors.New("genai api key is required")
	ErrEmptyResponse  = errors.New("model returned no text")
	ErrUnknownDomain  = errors.New("prompt names no domain")
	ErrUnknownBackend = errors.New("unknown completer provider")
)
