package llm

import (
	"context"
	"fmt"

	"github.com/okian/psychometrician/internal/domain/generator"
)

// Provider names accepted by NewCompleter.
const (
	ProviderTemplate = "template"
	ProviderGenAI    = "genai"
)

// NewCompleter builds the completer named by provider.
func NewCompleter(ctx context.Context, provider, apiKey, model string) (generator.Completer, error) {
	switch provider {
	case ProviderTemplate, "":
		return NewTemplateCompleter(), nil
	case ProviderGenAI:
		return NewGenAICompleter(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, provider)
	}
}
