package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/blogtrans/internal/frontmatter"
)

// Option configures the sync and retranslation drivers
type Option func(*driver)

type driver struct {
	layout     Layout
	targets    []string
	translator *PostTranslator
	observer   Observer
	logger     *slog.Logger
}

func newDriver(layout Layout, targets []string, translator *PostTranslator, opts []Option) driver {
	d := driver{
		layout:     layout,
		targets:    targets,
		translator: translator,
		observer:   nopObserver{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithObserver sets the progress observer
func WithObserver(o Observer) Option {
	return func(d *driver) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// translatePost loads the source post and renders its translation. It
// returns the rendered text and the number of fallbacks.
func (d *driver) translatePost(ctx context.Context, name, lang string) (string, int, error) {
	doc, err := frontmatter.Load(d.layout.Path(d.layout.SourceLang, name))
	if err != nil {
		return "", 0, err
	}
	translated, fallbacks := d.translator.Translate(ctx, doc, lang)
	return translated.Render(), fallbacks, nil
}

// Syncer creates translations that do not exist yet
type Syncer struct {
	driver
}

// NewSyncer creates a sync driver for the target languages
func NewSyncer(layout Layout, targets []string, translator *PostTranslator, opts ...Option) *Syncer {
	return &Syncer{driver: newDriver(layout, targets, translator, opts)}
}

// Plan returns the missing translations without translating anything
func (s *Syncer) Plan() ([]Gap, error) {
	return s.layout.Missing(s.targets)
}

// SyncMissing translates every missing post. Existing files are never
// modified: targets are created exclusively and a file that appeared in the
// meantime is reported as skipped. A post that cannot be read or parsed is
// reported as failed and the run continues. ErrSourceMissing is returned
// with an empty report when there is no source directory.
func (s *Syncer) SyncMissing(ctx context.Context) (*Report, error) {
	report := &Report{}

	gaps, err := s.Plan()
	if err != nil {
		return report, err
	}

	total := CountMissing(gaps)
	s.observer.Planned(total)
	if total == 0 {
		return report, nil
	}

	index := 0
	for _, gap := range gaps {
		s.logger.Debug("syncing language", "language", gap.Language, "missing", len(gap.Files))
		for _, name := range gap.Files {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			index++
			s.observer.Starting(index, total, gap.Language, name)
			start := time.Now()

			ev := Event{Index: index, Total: total, Language: gap.Language, Name: name}
			rendered, fallbacks, err := s.translatePost(ctx, name, gap.Language)
			if ctx.Err() != nil {
				// partially translated, do not write
				return report, ctx.Err()
			}
			report.Fallbacks += fallbacks
			ev.Fallbacks = fallbacks

			switch {
			case err != nil:
				s.logger.Error("failed to translate post", "language", gap.Language, "post", name, "error", err)
				report.failed(gap.Language, name, err)
				ev.Err = err
			default:
				err = createExclusive(s.layout.Path(gap.Language, name), rendered)
				switch {
				case errors.Is(err, fs.ErrExist):
					s.logger.Warn("translation appeared during run, leaving it untouched", "language", gap.Language, "post", name)
					report.Skipped = append(report.Skipped, gap.Language+"/"+name)
					ev.Skipped = true
				case err != nil:
					s.logger.Error("failed to write translation", "language", gap.Language, "post", name, "error", err)
					report.failed(gap.Language, name, err)
					ev.Err = err
				default:
					report.written(gap.Language, name)
				}
			}

			ev.Duration = time.Since(start)
			s.observer.Done(ev)
		}
	}

	return report, nil
}

// createExclusive writes content to a new file, failing with fs.ErrExist
// when the file is already there
func createExclusive(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create language directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
