package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"
)

// DefaultManualPosts are posts translated by hand. A full retranslation
// never deletes or overwrites them.
func DefaultManualPosts() []string {
	return []string{
		"im-proud-of-you.mdx",
		"one-day-at-a-time.mdx",
		"im-glad-youre-here-dont-go-anywhere.mdx",
		"navigating-contradictions-in-life.mdx",
		"disconnected.mdx",
		"confessing-my-stupidity.mdx",
	}
}

// ManualPosts returns the default manual posts followed by extra, without
// duplicates
func ManualPosts(extra ...string) []string {
	defaults := DefaultManualPosts()
	seen := make(map[string]bool, len(defaults)+len(extra))
	names := make([]string, 0, len(defaults)+len(extra))
	for _, n := range append(defaults, extra...) {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// Backuper archives translation files before they are deleted
type Backuper interface {
	Backup(relPaths []string) (string, error)
}

// Retranslator deletes and recreates machine translations
type Retranslator struct {
	driver
	manual map[string]bool
	backup Backuper
}

// RetranslateOption configures a Retranslator
type RetranslateOption func(*Retranslator)

// WithManualPosts replaces the manual-override set
func WithManualPosts(names []string) RetranslateOption {
	return func(r *Retranslator) {
		r.manual = make(map[string]bool, len(names))
		for _, n := range names {
			r.manual[n] = true
		}
	}
}

// WithBackup archives existing translations before they are deleted
func WithBackup(b Backuper) RetranslateOption {
	return func(r *Retranslator) {
		r.backup = b
	}
}

// NewRetranslator creates a full retranslation driver for the target
// languages
func NewRetranslator(layout Layout, targets []string, translator *PostTranslator, opts []Option, ropts ...RetranslateOption) *Retranslator {
	r := &Retranslator{driver: newDriver(layout, targets, translator, opts)}
	WithManualPosts(DefaultManualPosts())(r)
	for _, opt := range ropts {
		opt(r)
	}
	return r
}

// IsManual reports whether name is in the manual-override set
func (r *Retranslator) IsManual(name string) bool {
	return r.manual[name]
}

// RetranslateAll deletes every existing non-manual translation of the
// source posts in the target languages, then translates them all again.
// Manual-override posts are never touched in any language.
func (r *Retranslator) RetranslateAll(ctx context.Context) (*Report, error) {
	report := &Report{}

	sources, err := r.layout.SourcePosts()
	if err != nil {
		return report, err
	}

	var automatic []string
	for _, name := range sources {
		if !r.manual[name] {
			automatic = append(automatic, name)
		}
	}

	if r.backup != nil {
		var rel []string
		for _, lang := range r.targets {
			for _, name := range automatic {
				rel = append(rel, path.Join(lang, name))
			}
		}
		archived, err := r.backup.Backup(rel)
		if err != nil {
			return report, fmt.Errorf("failed to back up translations: %w", err)
		}
		report.Backup = archived
	}

	if err := r.deleteTranslations(automatic, report); err != nil {
		return report, err
	}

	total := len(automatic) * len(r.targets)
	r.observer.Planned(total)

	index := 0
	for _, name := range sources {
		if r.manual[name] {
			r.logger.Info("skipping manually translated post", "post", name)
			report.Skipped = append(report.Skipped, name)
			continue
		}
		for _, lang := range r.targets {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			index++
			r.observer.Starting(index, total, lang, name)
			start := time.Now()
			ev := Event{Index: index, Total: total, Language: lang, Name: name}

			rendered, fallbacks, err := r.translatePost(ctx, name, lang)
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Fallbacks += fallbacks
			ev.Fallbacks = fallbacks

			if err == nil {
				err = writeTranslation(r.layout.Path(lang, name), rendered)
			}
			if err != nil {
				r.logger.Error("failed to retranslate post", "language", lang, "post", name, "error", err)
				report.failed(lang, name, err)
				ev.Err = err
			} else {
				report.written(lang, name)
			}

			ev.Duration = time.Since(start)
			r.observer.Done(ev)
		}
	}

	return report, nil
}

func (r *Retranslator) deleteTranslations(names []string, report *Report) error {
	for _, lang := range r.targets {
		for _, name := range names {
			err := os.Remove(r.layout.Path(lang, name))
			switch {
			case err == nil:
				r.logger.Debug("deleted translation", "language", lang, "post", name)
				report.Deleted = append(report.Deleted, path.Join(lang, name))
			case errors.Is(err, fs.ErrNotExist):
			default:
				return fmt.Errorf("failed to delete %s/%s: %w", lang, name, err)
			}
		}
	}
	return nil
}

func writeTranslation(file, content string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create language directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}
