package translation

import (
	"context"
	"fmt"

	"github.com/bregydoc/gtranslate"

	"codeberg.org/snonux/blogtrans/internal/language"
)

// GoogleTranslator uses the public Google Translate endpoint. It needs no
// credentials.
type GoogleTranslator struct {
	translate func(text string, params gtranslate.TranslationParams) (string, error)
}

// NewGoogleTranslator creates a Google Translate backend
func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{translate: gtranslate.TranslateWithParams}
}

// Name returns the backend name
func (g *GoogleTranslator) Name() string {
	return BackendGoogle
}

// Translate translates text from source to target
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	translated, err := g.translate(text, gtranslate.TranslationParams{
		From: language.BackendCode(BackendGoogle, source),
		To:   language.BackendCode(BackendGoogle, target),
	})
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	return translated, nil
}

// IsAvailable sends a short test translation
func (g *GoogleTranslator) IsAvailable(ctx context.Context) error {
	if _, err := g.Translate(ctx, "Hello", language.Source, "es"); err != nil {
		return fmt.Errorf("google translate not reachable: %w", err)
	}
	return nil
}
