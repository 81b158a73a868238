package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/snonux/blogtrans/internal/cli"
	"codeberg.org/snonux/blogtrans/internal/content"
	"codeberg.org/snonux/blogtrans/internal/frontmatter"
	"codeberg.org/snonux/blogtrans/internal/journal"
	"codeberg.org/snonux/blogtrans/internal/language"
	"codeberg.org/snonux/blogtrans/internal/models"
	"codeberg.org/snonux/blogtrans/internal/vcs"
)

// Commit stages the content directory and commits it
func (p *Processor) Commit(ctx context.Context) error {
	git := vcs.NewGit("", p.gitRunner)
	committer := vcs.NewCommitter(git, p.layout,
		vcs.WithNoVerify(!p.flags.RunHooks),
		vcs.WithClock(p.now),
		vcs.WithCommitLogger(p.logger))

	fmt.Fprintln(p.out, "Checking git status...")
	result, err := committer.Commit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, "\nTranslation statistics:")
	for _, s := range result.Stats {
		fmt.Fprintf(p.out, "  %s: %d posts\n", strings.ToUpper(s.Language), s.Posts)
	}
	fmt.Fprintf(p.out, "  Total: %d posts in %d languages\n\n", result.Posts, result.Languages)

	if !result.Committed {
		fmt.Fprintln(p.out, "No changes to commit.")
		return nil
	}

	fmt.Fprintf(p.out, "Staged files: %d\n", len(result.Staged))
	fmt.Fprintf(p.out, "Committed: %s\n", result.Message)
	if result.Status != "" {
		fmt.Fprintf(p.out, "\n%s\n", strings.TrimSpace(result.Status))
	}
	fmt.Fprintln(p.out, "\nRun 'git push' to publish the translations.")
	return nil
}

// Missing prints the translations that do not exist yet
func (p *Processor) Missing(ctx context.Context) error {
	targets, err := p.targets(p.flags.Languages, language.DefaultTargets())
	if err != nil {
		return err
	}

	gaps, err := p.layout.Missing(targets)
	if err != nil {
		if errors.Is(err, content.ErrSourceMissing) {
			fmt.Fprintf(p.out, "Source directory %s not found\n", p.layout.SourceDir())
		}
		return err
	}

	total := content.CountMissing(gaps)
	if total == 0 {
		fmt.Fprintln(p.out, "All translations are up to date.")
		return nil
	}

	rows := make([][]string, 0, len(gaps))
	for _, gap := range gaps {
		rows = append(rows, []string{
			strings.ToUpper(gap.Language),
			language.DisplayName(gap.Language),
			strconv.Itoa(len(gap.Files)),
			strings.Join(gap.Files, ", "),
		})
	}
	fmt.Fprintln(p.out, renderTable(
		[]string{"Language", "Name", "Missing", "Posts"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(p.out, "Total missing: %d\n", total)
	return nil
}

// Stats prints the number of posts per language
func (p *Processor) Stats(ctx context.Context) error {
	stats, err := p.layout.Stats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintf(p.out, "No language directories in %s\n", p.layout.BaseDir)
		return nil
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			strings.ToUpper(s.Language),
			language.DisplayName(s.Language),
			strconv.Itoa(s.Posts),
		})
	}
	fmt.Fprintln(p.out, renderTable(
		[]string{"Language", "Name", "Posts"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight}))

	posts, langs := content.Totals(stats)
	fmt.Fprintf(p.out, "Total: %d posts in %d languages\n", posts, langs)
	return nil
}

// Ping checks that the configured backend answers
func (p *Processor) Ping(ctx context.Context) error {
	backend := p.backend()
	tr, err := p.newTranslator(ctx, p.translationConfig())
	if err != nil {
		return fmt.Errorf("failed to create %s translator: %w", backend, err)
	}

	fmt.Fprintf(p.out, "Checking %s backend...\n", backend)
	start := p.now()
	if err := tr.IsAvailable(ctx); err != nil {
		return fmt.Errorf("%s backend is not reachable: %w", backend, err)
	}
	fmt.Fprintf(p.out, "✓ %s backend is reachable (%s)\n", backend, p.now().Sub(start).Round(time.Millisecond))
	return nil
}

// Models lists the models of the ollama or openai backend
func (p *Processor) Models(ctx context.Context) error {
	lister := models.NewLister(models.Config{
		Backend:       p.backend(),
		OpenAIKey:     cli.GetOpenAIKey(),
		OpenAIBaseURL: p.flags.OpenAIBaseURL,
		OllamaURL:     p.flags.OllamaURL,
	})
	return lister.ListAvailableModels(ctx, p.out)
}

// Lint reports metadata fields the line parser reads differently from a
// YAML parser. Without names every source post is checked. A name without
// a directory is looked up in the source language directory.
func (p *Processor) Lint(ctx context.Context, names []string) error {
	if len(names) == 0 {
		posts, err := p.layout.SourcePosts()
		if err != nil {
			return err
		}
		names = posts
	}

	flagged := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := name
		if filepath.Base(name) == name {
			path = p.layout.Path(p.layout.SourceLang, name)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var issues []string
		block, _, ok := frontmatter.Split(string(data))
		if !ok {
			issues = append(issues, frontmatter.ErrNoFrontmatter.Error())
		} else {
			for _, issue := range frontmatter.Lint(block) {
				issues = append(issues, issue.String())
			}
		}

		if len(issues) == 0 {
			continue
		}
		flagged++
		fmt.Fprintf(p.out, "%s:\n", path)
		for _, issue := range issues {
			fmt.Fprintf(p.out, "  %s\n", issue)
		}
	}

	if flagged > 0 {
		return fmt.Errorf("%d of %d posts have metadata issues", flagged, len(names))
	}
	fmt.Fprintf(p.out, "✓ %d posts checked, no metadata issues\n", len(names))
	return nil
}

// History prints the most recent runs from the journal
func (p *Processor) History(ctx context.Context) error {
	if p.flags.JournalPath == "" {
		return fmt.Errorf("journal is disabled: set --journal or journal.path in .blogtrans.yaml")
	}

	j, err := journal.Open(p.flags.JournalPath)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	limit := p.flags.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	runs, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "running"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.ID[:8],
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Command,
			r.Backend,
			strconv.Itoa(r.Written),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Fallbacks),
			duration,
			r.Error,
		})
	}
	fmt.Fprintln(p.out, renderTable(
		[]string{"Run", "Started", "Command", "Backend", "Written", "Failed", "Skipped", "Fallbacks", "Duration", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}))
	return nil
}
