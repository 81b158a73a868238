package processor

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"codeberg.org/snonux/blogtrans/internal/archive"
	"codeberg.org/snonux/blogtrans/internal/batch"
	"codeberg.org/snonux/blogtrans/internal/chunker"
	"codeberg.org/snonux/blogtrans/internal/cli"
	"codeberg.org/snonux/blogtrans/internal/content"
	"codeberg.org/snonux/blogtrans/internal/journal"
	"codeberg.org/snonux/blogtrans/internal/language"
	"codeberg.org/snonux/blogtrans/internal/logging"
	"codeberg.org/snonux/blogtrans/internal/translation"
	"codeberg.org/snonux/blogtrans/internal/vcs"
)

// Processor runs the blogtrans commands against one content tree
type Processor struct {
	flags  *cli.Flags
	layout content.Layout
	logger *slog.Logger

	// out receives operator output, errOut the progress bar
	out    io.Writer
	errOut io.Writer

	newTranslator func(ctx context.Context, cfg translation.Config) (translation.Translator, error)
	gitRunner     vcs.Runner
	sleeper       func(time.Duration)
	lockDir       string
	now           func() time.Time
}

// NewProcessor creates a new processor from the resolved flags
func NewProcessor(flags *cli.Flags) (*Processor, error) {
	level := flags.LogLevel
	if flags.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: flags.LogFormat})
	if err != nil {
		return nil, err
	}

	source := language.Normalize(flags.SourceLang)
	if err := language.Validate(source); err != nil {
		return nil, fmt.Errorf("invalid source language: %w", err)
	}

	layout := content.NewLayout(flags.BaseDir)
	layout.SourceLang = source
	if flags.Extension != "" {
		layout.Extension = flags.Extension
	}

	return &Processor{
		flags:         flags,
		layout:        layout,
		logger:        logger,
		out:           os.Stdout,
		errOut:        os.Stderr,
		newTranslator: translation.NewTranslator,
		lockDir:       os.TempDir(),
		now:           time.Now,
	}, nil
}

// Sync creates every missing translation
func (p *Processor) Sync(ctx context.Context) error {
	targets, err := p.targets(p.flags.Languages, language.DefaultTargets())
	if err != nil {
		return err
	}

	lock, err := p.acquireLock()
	if err != nil {
		return err
	}
	defer p.releaseLock(lock)

	gaps, err := p.layout.Missing(targets)
	if err != nil {
		if errors.Is(err, content.ErrSourceMissing) {
			fmt.Fprintf(p.out, "Source directory %s not found, nothing to translate\n", p.layout.SourceDir())
		}
		return err
	}

	total := content.CountMissing(gaps)
	if total == 0 {
		fmt.Fprintln(p.out, "All translations are up to date.")
		return nil
	}

	fmt.Fprintln(p.out, "Missing translations:")
	for _, gap := range gaps {
		fmt.Fprintf(p.out, "  %s (%s): %d\n", strings.ToUpper(gap.Language), language.DisplayName(gap.Language), len(gap.Files))
	}
	fmt.Fprintf(p.out, "Total: %d\n\n", total)

	pt, client, err := p.setup(ctx)
	if err != nil {
		return err
	}

	run, err := p.startRun(ctx, "sync", client.Name())
	if err != nil {
		return err
	}
	defer run.close()

	syncer := content.NewSyncer(p.layout, targets, pt,
		content.WithLogger(p.logger),
		content.WithObserver(p.newObserver(ctx, run)))

	report, runErr := syncer.SyncMissing(ctx)
	run.finish(ctx, report, runErr)
	p.printSummary("Sync", report, client.Stats())

	if runErr != nil {
		return runErr
	}
	return failedError(report)
}

// Retranslate deletes and recreates every non-manual translation
func (p *Processor) Retranslate(ctx context.Context) error {
	targets, err := p.targets(p.flags.RetranslateLanguages, language.DefaultRetranslateTargets())
	if err != nil {
		return err
	}

	manual := content.DefaultManualPosts()
	if p.flags.ManualFile != "" {
		extra, err := batch.ReadFileNames(p.flags.ManualFile)
		if err != nil {
			return err
		}
		manual = content.ManualPosts(extra...)
	}

	lock, err := p.acquireLock()
	if err != nil {
		return err
	}
	defer p.releaseLock(lock)

	if _, err := p.layout.SourcePosts(); err != nil {
		if errors.Is(err, content.ErrSourceMissing) {
			fmt.Fprintf(p.out, "Source directory %s not found, nothing to translate\n", p.layout.SourceDir())
		}
		return err
	}

	pt, client, err := p.setup(ctx)
	if err != nil {
		return err
	}

	run, err := p.startRun(ctx, "retranslate", client.Name())
	if err != nil {
		return err
	}
	defer run.close()

	ropts := []content.RetranslateOption{content.WithManualPosts(manual)}
	if p.flags.Backup {
		ropts = append(ropts, content.WithBackup(archive.New(p.layout.BaseDir, p.flags.ArchiveDir)))
	}

	fmt.Fprintf(p.out, "Retranslating all posts into: %s\n", strings.Join(targets, ", "))
	fmt.Fprintf(p.out, "Manual translations kept: %s\n\n", strings.Join(manual, ", "))

	r := content.NewRetranslator(p.layout, targets, pt,
		[]content.Option{content.WithLogger(p.logger), content.WithObserver(p.newObserver(ctx, run))},
		ropts...)

	report, runErr := r.RetranslateAll(ctx)
	run.finish(ctx, report, runErr)

	for _, name := range report.Skipped {
		fmt.Fprintf(p.out, "Skipping %s (manual translation)\n", name)
	}
	p.printSummary("Retranslation", report, client.Stats())

	if runErr != nil {
		return runErr
	}
	return failedError(report)
}

// setup creates the translation client and the post translator for the
// configured backend
func (p *Processor) setup(ctx context.Context) (*content.PostTranslator, *translation.Client, error) {
	backend := p.backend()

	tr, err := p.newTranslator(ctx, p.translationConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s translator: %w", backend, err)
	}

	if backend == translation.BackendOllama && !p.flags.SkipPing {
		fmt.Fprintf(p.out, "Checking ollama at %s...\n", p.flags.OllamaURL)
		if err := tr.IsAvailable(ctx); err != nil {
			return nil, nil, fmt.Errorf("ollama is not reachable: %w", err)
		}
		fmt.Fprintln(p.out, "Ollama is reachable.")
	}

	opts := []translation.ClientOption{
		translation.WithPolicy(p.policy()),
		translation.WithSourceLanguage(p.layout.SourceLang),
		translation.WithLogger(p.logger),
	}
	if p.sleeper != nil {
		opts = append(opts, translation.WithSleeper(p.sleeper))
	}
	client := translation.NewClient(tr, opts...)

	ch, err := p.newChunker()
	if err != nil {
		return nil, nil, err
	}
	p.logger.Debug("translation setup", "backend", backend, "chunk_mode", ch.Mode(), "chunk_threshold", ch.Threshold())

	return content.NewPostTranslator(client, ch), client, nil
}

func (p *Processor) backend() string {
	b := strings.ToLower(strings.TrimSpace(p.flags.Backend))
	if b == "" {
		return translation.BackendGoogle
	}
	return b
}

func (p *Processor) translationConfig() translation.Config {
	return translation.Config{
		Backend: p.backend(),
		Ollama: translation.OllamaConfig{
			URL:     p.flags.OllamaURL,
			Model:   p.flags.OllamaModel,
			Timeout: p.flags.OllamaTimeout,
		},
		OpenAI: translation.OpenAIConfig{
			APIKey:  cli.GetOpenAIKey(),
			BaseURL: p.flags.OpenAIBaseURL,
			Model:   p.flags.OpenAIModel,
		},
		Gemini: translation.GeminiConfig{
			APIKey: cli.GetGeminiKey(),
			Model:  p.flags.GeminiModel,
		},
	}
}

// policy returns the backend defaults with the configured overrides
func (p *Processor) policy() translation.Policy {
	policy := translation.DefaultPolicy(p.backend())
	if p.flags.Attempts > 0 {
		policy.Attempts = p.flags.Attempts
	}
	if p.flags.RetryDelay > 0 {
		policy.RetryDelay = p.flags.RetryDelay
	}
	if p.flags.Pace > 0 {
		policy.Pace = p.flags.Pace
	}
	return policy
}

// newChunker builds the body chunker. Google gets line chunks; the LLM
// backends get whole paragraphs so they see more context.
func (p *Processor) newChunker() (*chunker.Chunker, error) {
	mode := chunker.Paragraphs
	if p.backend() == translation.BackendGoogle {
		mode = chunker.Lines
	}
	if p.flags.ChunkMode != "" {
		m, err := chunker.ParseMode(p.flags.ChunkMode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	opts := []chunker.Option{chunker.WithMode(mode)}
	if p.flags.ChunkThreshold > 0 {
		opts = append(opts, chunker.WithThreshold(p.flags.ChunkThreshold))
	}
	return chunker.New(opts...), nil
}

// targets validates the configured target languages, falling back to
// defaults when none are configured
func (p *Processor) targets(configured, defaults []string) ([]string, error) {
	codes := configured
	if len(codes) == 0 {
		codes = defaults
	}
	targets, err := language.ParseList(codes)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t == p.layout.SourceLang {
			return nil, fmt.Errorf("target languages must not include the source language %s", t)
		}
	}
	return targets, nil
}

// acquireLock takes the per content tree lock so two runs never write the
// same tree
func (p *Processor) acquireLock() (*flock.Flock, error) {
	abs, err := filepath.Abs(p.layout.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", p.layout.BaseDir, err)
	}
	sum := sha256.Sum256([]byte(abs))
	lockPath := filepath.Join(p.lockDir, fmt.Sprintf("blogtrans-%x.lock", sum[:8]))

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another blogtrans run is working on %s (lock %s)", abs, lockPath)
	}
	p.logger.Debug("acquired lock", "lock", lockPath)
	return lock, nil
}

func (p *Processor) releaseLock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		p.logger.Warn("failed to release lock", "lock", lock.Path(), "error", err)
	}
}

// journalRun records one run when the journal is enabled. The zero value
// records nothing.
type journalRun struct {
	journal *journal.Journal
	id      string
	logger  *slog.Logger
}

func (p *Processor) startRun(ctx context.Context, command, backend string) (*journalRun, error) {
	run := &journalRun{logger: p.logger}
	if p.flags.JournalPath == "" {
		return run, nil
	}

	j, err := journal.Open(p.flags.JournalPath)
	if err != nil {
		return nil, err
	}
	id, err := j.StartRun(ctx, command, backend)
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	run.journal = j
	run.id = id
	return run, nil
}

func (r *journalRun) record(ctx context.Context, post journal.Post) {
	if r.journal == nil {
		return
	}
	if err := r.journal.RecordPost(ctx, r.id, post); err != nil {
		r.logger.Warn("failed to record post in journal", "post", post.Name, "error", err)
	}
}

func (r *journalRun) finish(ctx context.Context, report *content.Report, runErr error) {
	if r.journal == nil {
		return
	}
	summary := journal.Summary{
		Written:   len(report.Written),
		Failed:    len(report.Failed),
		Skipped:   len(report.Skipped),
		Fallbacks: report.Fallbacks,
		Err:       runErr,
	}
	// the run context may already be cancelled
	if err := r.journal.FinishRun(context.WithoutCancel(ctx), r.id, summary); err != nil {
		r.logger.Warn("failed to finish journal run", "run", r.id, "error", err)
	}
}

func (r *journalRun) close() {
	if r.journal != nil {
		_ = r.journal.Close()
	}
}

func failedError(report *content.Report) error {
	if len(report.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d translations failed", len(report.Failed))
}
