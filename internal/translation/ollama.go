package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOllamaURL is the generate endpoint of a local Ollama server
	DefaultOllamaURL = "http://localhost:11434/api/generate"
	// DefaultOllamaModel is the model used when none is configured
	DefaultOllamaModel = "yue-f"

	defaultOllamaTimeout = 120 * time.Second
	defaultPingTimeout   = 10 * time.Second
)

// OllamaConfig configures the Ollama backend
type OllamaConfig struct {
	URL         string
	Model       string
	Timeout     time.Duration
	PingTimeout time.Duration
}

// HTTPStatusError is returned when a backend answers with a non-200 status
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// OllamaTranslator prompts a local model through the Ollama generate API
type OllamaTranslator struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

// NewOllamaTranslator creates an Ollama backend, filling in defaults for
// empty settings
func NewOllamaTranslator(cfg OllamaConfig) *OllamaTranslator {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		cfg.URL = DefaultOllamaURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOllamaTimeout
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaultPingTimeout
	}
	return &OllamaTranslator{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Name returns the backend name
func (o *OllamaTranslator) Name() string {
	return BackendOllama
}

// Model returns the configured model
func (o *OllamaTranslator) Model() string {
	return o.cfg.Model
}

// Translate asks the model to translate text from source to target
func (o *OllamaTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	translated, err := o.generate(ctx, BuildPrompt(text, source, target))
	if err != nil {
		return "", err
	}
	if translated == "" {
		return "", fmt.Errorf("ollama: empty response from model %s", o.cfg.Model)
	}
	return translated, nil
}

// IsAvailable sends a trivial prompt with a short timeout
func (o *OllamaTranslator) IsAvailable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.PingTimeout)
	defer cancel()

	if _, err := o.generate(ctx, "Hello"); err != nil {
		return fmt.Errorf("cannot connect to ollama at %s: %w", o.cfg.URL, err)
	}
	return nil
}

func (o *OllamaTranslator) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  o.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: %w", &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama: %s", decoded.Error)
	}
	return strings.TrimSpace(decoded.Response), nil
}
