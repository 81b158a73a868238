// Package language holds the language codes the blog is published in and
// maps them to display names and backend-specific codes.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Source is the language posts are written in
const Source = "en"

// DefaultTargets returns the languages the blog is published in, excluding
// the source language
func DefaultTargets() []string {
	return []string{"ar", "bn", "de", "es", "fr", "hi", "ja", "pt", "ru", "ur", "zh"}
}

// DefaultRetranslateTargets returns the languages a full retranslation
// covers by default
func DefaultRetranslateTargets() []string {
	return []string{"es", "ar", "ru", "hi", "bn", "ur"}
}

// googleCodes maps content directory codes to the codes Google Translate
// expects where they differ
var googleCodes = map[string]string{
	"zh": "zh-CN",
}

// Normalize lower-cases and trims a language code and converts underscores
// to hyphens
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	return strings.ReplaceAll(code, "_", "-")
}

// Validate reports whether code is a well-formed BCP 47 tag
func Validate(code string) error {
	if Normalize(code) == "" {
		return fmt.Errorf("empty language code")
	}
	if _, err := language.Parse(Normalize(code)); err != nil {
		return fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return nil
}

// ParseList normalizes and validates a list of codes. Duplicates are
// dropped while keeping first occurrence order.
func ParseList(codes []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, raw := range codes {
		for _, part := range strings.Split(raw, ",") {
			code := Normalize(part)
			if code == "" || seen[code] {
				continue
			}
			if err := Validate(code); err != nil {
				return nil, err
			}
			seen[code] = true
			result = append(result, code)
		}
	}
	return result, nil
}

// DisplayName returns the English name of a language, e.g. "Spanish" for
// "es". Unknown codes are returned unchanged.
func DisplayName(code string) string {
	tag, err := language.Parse(Normalize(code))
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// BackendCode returns the code a backend expects for a content directory
// code
func BackendCode(backend, code string) string {
	code = Normalize(code)
	if backend == "google" {
		if mapped, ok := googleCodes[code]; ok {
			return mapped
		}
	}
	return code
}
