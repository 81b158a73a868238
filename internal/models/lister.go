package models

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config selects the backend whose models are listed
type Config struct {
	Backend       string
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaURL     string
}

// Lister handles listing models offered by the configured backend
type Lister struct {
	cfg        Config
	client     *openai.Client
	httpClient *http.Client
}

// NewLister creates a new model lister
func NewLister(cfg Config) *Lister {
	l := &Lister{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.Backend == "openai" {
		clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
		if cfg.OpenAIBaseURL != "" {
			clientConfig.BaseURL = cfg.OpenAIBaseURL
		}
		l.client = openai.NewClientWithConfig(clientConfig)
	}
	return l
}

// List returns the sorted model names
func (l *Lister) List(ctx context.Context) ([]string, error) {
	switch l.cfg.Backend {
	case "openai":
		return l.listOpenAI(ctx)
	case "ollama":
		return l.listOllama(ctx)
	default:
		return nil, fmt.Errorf("backend %q has no model list", l.cfg.Backend)
	}
}

// ListAvailableModels prints the models usable for translation to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	models, err := l.List(ctx)
	if err != nil {
		return err
	}

	if l.cfg.Backend == "openai" {
		models = chatModels(models)
	}

	_, _ = fmt.Fprintf(w, "Available %s models for translation:\n", l.cfg.Backend)
	if len(models) == 0 {
		_, _ = fmt.Fprintln(w, "  No models found")
		return nil
	}
	for _, m := range models {
		_, _ = fmt.Fprintf(w, "  %s\n", m)
	}
	return nil
}

func (l *Lister) listOpenAI(ctx context.Context) ([]string, error) {
	if l.cfg.OpenAIKey == "" && l.cfg.OpenAIBaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .blogtrans.yaml")
	}

	resp, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.ID)
	}
	sort.Strings(names)
	return names, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (l *Lister) listOllama(ctx context.Context) ([]string, error) {
	tagsURL, err := TagsURL(l.cfg.OllamaURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tagsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to list models: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names, nil
}

// TagsURL derives the Ollama model list endpoint from the generate
// endpoint
func TagsURL(generateURL string) (string, error) {
	if generateURL == "" {
		generateURL = "http://localhost:11434/api/generate"
	}
	u, err := url.Parse(generateURL)
	if err != nil {
		return "", fmt.Errorf("invalid ollama url %q: %w", generateURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid ollama url %q", generateURL)
	}
	u.Path = "/api/tags"
	u.RawQuery = ""
	return u.String(), nil
}

// chatModels keeps the models that can answer chat completions
func chatModels(models []string) []string {
	var result []string
	for _, m := range models {
		if strings.Contains(m, "tts") || strings.Contains(m, "audio") ||
			strings.Contains(m, "dall-e") || strings.Contains(m, "embedding") ||
			strings.Contains(m, "whisper") {
			continue
		}
		if strings.Contains(m, "gpt") || strings.Contains(m, "chat") || strings.HasPrefix(m, "o") {
			result = append(result, m)
		}
	}
	return result
}
