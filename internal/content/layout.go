package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/snonux/blogtrans/internal/language"
)

const (
	// DefaultBaseDir is the content directory relative to the repository root
	DefaultBaseDir = "apps/web/src/content/blog"
	// DefaultExtension is the file extension of posts
	DefaultExtension = ".mdx"
)

// ErrSourceMissing is returned when the source language directory does not
// exist
var ErrSourceMissing = errors.New("source directory not found")

// Layout describes where posts live: one directory per language below
// BaseDir, posts matched by extension
type Layout struct {
	BaseDir    string
	SourceLang string
	Extension  string
}

// NewLayout returns a layout with the default source language and
// extension
func NewLayout(baseDir string) Layout {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return Layout{
		BaseDir:    baseDir,
		SourceLang: language.Source,
		Extension:  DefaultExtension,
	}
}

// Dir returns the directory of a language
func (l Layout) Dir(lang string) string {
	return filepath.Join(l.BaseDir, lang)
}

// Path returns the path of a post in a language
func (l Layout) Path(lang, name string) string {
	return filepath.Join(l.BaseDir, lang, name)
}

// SourceDir returns the directory of the source language
func (l Layout) SourceDir() string {
	return l.Dir(l.SourceLang)
}

// ListPosts returns the sorted post file names in a language directory. A
// missing directory yields an error wrapping fs.ErrNotExist.
func (l Layout) ListPosts(lang string) ([]string, error) {
	entries, err := os.ReadDir(l.Dir(lang))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s posts: %w", lang, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), l.Extension) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// SourcePosts returns the sorted source post names, or ErrSourceMissing
func (l Layout) SourcePosts() ([]string, error) {
	names, err := l.ListPosts(l.SourceLang)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", l.SourceDir(), ErrSourceMissing)
	}
	return names, err
}

// Gap lists the source posts a language has no translation for
type Gap struct {
	Language string
	Files    []string
}

// Missing returns, per target language in the given order, the source posts
// without a file of the same name in that language. The source language is
// skipped, a missing language directory counts as empty, and languages
// without gaps are omitted.
func (l Layout) Missing(targets []string) ([]Gap, error) {
	source, err := l.SourcePosts()
	if err != nil {
		return nil, err
	}

	var gaps []Gap
	for _, lang := range targets {
		if lang == l.SourceLang {
			continue
		}
		existing, err := l.ListPosts(lang)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		have := make(map[string]bool, len(existing))
		for _, name := range existing {
			have[name] = true
		}

		var missing []string
		for _, name := range source {
			if !have[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, Gap{Language: lang, Files: missing})
		}
	}
	return gaps, nil
}

// CountMissing returns the total number of missing translations
func CountMissing(gaps []Gap) int {
	total := 0
	for _, g := range gaps {
		total += len(g.Files)
	}
	return total
}

// LanguageStats is the number of posts in one language directory
type LanguageStats struct {
	Language string
	Posts    int
}

// Stats counts the posts of every language directory below BaseDir,
// sorted by language code
func (l Layout) Stats() ([]LanguageStats, error) {
	entries, err := os.ReadDir(l.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var stats []LanguageStats
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		names, err := l.ListPosts(e.Name())
		if err != nil {
			return nil, err
		}
		stats = append(stats, LanguageStats{Language: e.Name(), Posts: len(names)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Language < stats[j].Language })
	return stats, nil
}

// Totals sums posts and counts languages
func Totals(stats []LanguageStats) (posts, languages int) {
	for _, s := range stats {
		posts += s.Posts
	}
	return posts, len(stats)
}
