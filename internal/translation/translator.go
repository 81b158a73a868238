package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/blogtrans/internal/language"
)

// Backend names accepted by NewTranslator
const (
	BackendGoogle = "google"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Translator translates a piece of text between two languages
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	Name() string
	IsAvailable(ctx context.Context) error
}

// Config holds the settings for all backends; only the section matching
// Backend is used
type Config struct {
	Backend string
	Ollama  OllamaConfig
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
}

// Policy is the retry and pacing behavior for a backend
type Policy struct {
	Attempts   int
	RetryDelay time.Duration
	Pace       time.Duration
}

// DefaultPolicy returns the retry and pacing defaults for a backend. Local
// model servers get longer delays than the hosted services.
func DefaultPolicy(backend string) Policy {
	switch backend {
	case BackendOllama:
		return Policy{Attempts: 3, RetryDelay: 2 * time.Second, Pace: 500 * time.Millisecond}
	default:
		return Policy{Attempts: 3, RetryDelay: time.Second, Pace: 300 * time.Millisecond}
	}
}

// Backends returns the names of the supported backends
func Backends() []string {
	return []string{BackendGoogle, BackendOllama, BackendOpenAI, BackendGemini}
}

// NewTranslator creates the backend named in cfg
func NewTranslator(ctx context.Context, cfg Config) (Translator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendGoogle, "":
		return NewGoogleTranslator(), nil
	case BackendOllama:
		return NewOllamaTranslator(cfg.Ollama), nil
	case BackendOpenAI:
		return NewOpenAITranslator(cfg.OpenAI)
	case BackendGemini:
		return NewGeminiTranslator(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unknown translation backend: %s (supported: %s)",
			cfg.Backend, strings.Join(Backends(), ", "))
	}
}

// BuildPrompt returns the instruction sent to LLM backends
func BuildPrompt(text, source, target string) string {
	return fmt.Sprintf("Translate the following text from %s to %s. \n"+
		"Only provide the translation, without any explanations or additional text.\n"+
		"Preserve all markdown formatting, code blocks, and links exactly as they are.\n\n"+
		"Text to translate:\n%s\n\nTranslation:",
		language.DisplayName(source), language.DisplayName(target), text)
}
