package translation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when none is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini backend
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiTranslator translates with a Google Gemini model
type GeminiTranslator struct {
	model  string
	client *genai.Client
}

// NewGeminiTranslator creates a Gemini backend
func NewGeminiTranslator(ctx context.Context, cfg GeminiConfig) (*GeminiTranslator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTranslator{model: model, client: client}, nil
}

// Name returns the backend name
func (g *GeminiTranslator) Name() string {
	return BackendGemini
}

// Translate translates text from source to target
func (g *GeminiTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(text, source, target)), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return translated, nil
}

// IsAvailable sends a trivial prompt
func (g *GeminiTranslator) IsAvailable(ctx context.Context) error {
	if _, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text("Hello"), nil); err != nil {
		return fmt.Errorf("Gemini API not reachable: %w", err)
	}
	return nil
}
