package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGenAIModel = "gemini-2.0-flash"
	generationTemp    = 0.7
	generationTopP    = 0.9
	maxOutputTokens   = 100
)

// GenAICompleter completes prompts with Google's Gemini API.
type GenAICompleter struct {
	client *genai.Client
	model  string
}

// NewGenAICompleter creates a Gemini-backed completer.
func NewGenAICompleter(ctx context.Context, apiKey, model string) (*GenAICompleter, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = defaultGenAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAICompleter{client: client, model: model}, nil
}

// Complete sends prompt as a single user turn and returns the reply text.
func (g *GenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](generationTemp),
		TopP:            genai.Ptr[float32](generationTopP),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
