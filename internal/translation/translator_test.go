package translation

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bregydoc/gtranslate"
)

func TestDefaultPolicy(t *testing.T) {
	tests := []struct {
		backend string
		want    Policy
	}{
		{BackendGoogle, Policy{Attempts: 3, RetryDelay: time.Second, Pace: 300 * time.Millisecond}},
		{BackendOllama, Policy{Attempts: 3, RetryDelay: 2 * time.Second, Pace: 500 * time.Millisecond}},
		{BackendOpenAI, Policy{Attempts: 3, RetryDelay: time.Second, Pace: 300 * time.Millisecond}},
	}
	for _, tt := range tests {
		if got := DefaultPolicy(tt.backend); got != tt.want {
			t.Errorf("DefaultPolicy(%s) = %+v, want %+v", tt.backend, got, tt.want)
		}
	}
}

func TestNewTranslator(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{name: "default is google", cfg: Config{}, wantName: BackendGoogle},
		{name: "google", cfg: Config{Backend: "Google"}, wantName: BackendGoogle},
		{name: "ollama", cfg: Config{Backend: BackendOllama}, wantName: BackendOllama},
		{name: "openai with key", cfg: Config{Backend: BackendOpenAI, OpenAI: OpenAIConfig{APIKey: "test-key"}}, wantName: BackendOpenAI},
		{name: "openai compatible server", cfg: Config{Backend: BackendOpenAI, OpenAI: OpenAIConfig{BaseURL: "http://localhost:8080/v1"}}, wantName: BackendOpenAI},
		{name: "openai without key", cfg: Config{Backend: BackendOpenAI}, wantErr: true},
		{name: "gemini without key", cfg: Config{Backend: BackendGemini}, wantErr: true},
		{name: "unknown", cfg: Config{Backend: "deepl"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTranslator(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got translator %v", tr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTranslator failed: %v", err)
			}
			if tr.Name() != tt.wantName {
				t.Errorf("Expected backend %s, got %s", tt.wantName, tr.Name())
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Hello **world**", "en", "es")

	for _, want := range []string{
		"from English to Spanish",
		"Only provide the translation",
		"Preserve all markdown formatting",
		"Text to translate:\nHello **world**\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "Translation:") {
		t.Errorf("Prompt should end with the answer marker:\n%s", prompt)
	}
}

func TestGoogleTranslator_MapsCodes(t *testing.T) {
	var got gtranslate.TranslationParams
	g := &GoogleTranslator{translate: func(text string, params gtranslate.TranslationParams) (string, error) {
		got = params
		return "你好", nil
	}}

	out, err := g.Translate(context.Background(), "Hello", "en", "zh")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "你好" {
		t.Errorf("Expected translated text, got %q", out)
	}
	if got.From != "en" || got.To != "zh-CN" {
		t.Errorf("Expected en -> zh-CN, got %s -> %s", got.From, got.To)
	}
}

func TestGoogleTranslator_Errors(t *testing.T) {
	g := &GoogleTranslator{translate: func(string, gtranslate.TranslationParams) (string, error) {
		return "", errors.New("rate limited")
	}}

	if _, err := g.Translate(context.Background(), "Hello", "en", "es"); err == nil {
		t.Error("Expected backend error to be returned")
	}
	if err := g.IsAvailable(context.Background()); err == nil {
		t.Error("Expected IsAvailable to fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	g.translate = func(string, gtranslate.TranslationParams) (string, error) {
		called = true
		return "x", nil
	}
	if _, err := g.Translate(ctx, "Hello", "en", "es"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("Backend should not be called with a cancelled context")
	}
}

func TestOpenAITranslator_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	tr, err := NewOpenAITranslator(OpenAIConfig{APIKey: apiKey})
	if err != nil {
		t.Fatalf("NewOpenAITranslator failed: %v", err)
	}

	out, err := tr.Translate(context.Background(), "Good morning", "en", "es")
	if err != nil {
		t.Fatalf("Translation failed: %v", err)
	}
	if out == "" {
		t.Error("Expected non-empty translation")
	}
}

func TestGeminiTranslator_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	tr, err := NewGeminiTranslator(context.Background(), GeminiConfig{APIKey: apiKey})
	if err != nil {
		t.Fatalf("NewGeminiTranslator failed: %v", err)
	}

	out, err := tr.Translate(context.Background(), "Good morning", "en", "de")
	if err != nil {
		t.Fatalf("Translation failed: %v", err)
	}
	if out == "" {
		t.Error("Expected non-empty translation")
	}
}
