package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/snonux/blogtrans/internal/content"
)

// CommitTimeFormat is the timestamp layout used in commit messages
const CommitTimeFormat = "2006-01-02 15:04:05"

// CommitMessage builds the message for a translation sync commit
func CommitMessage(posts, languages int, at time.Time) string {
	return fmt.Sprintf("chore: sync blog translations (%d posts in %d languages) - %s",
		posts, languages, at.Format(CommitTimeFormat))
}

// CommitResult describes what the commit driver did
type CommitResult struct {
	Stats     []content.LanguageStats
	Posts     int
	Languages int
	Staged    []string
	Message   string
	Output    string
	Status    string
	Committed bool
}

// Committer stages the content directory and commits it
type Committer struct {
	git      *Git
	layout   content.Layout
	noVerify bool
	now      func() time.Time
	logger   *slog.Logger
}

// CommitterOption configures a Committer
type CommitterOption func(*Committer)

// WithNoVerify controls whether git hooks are skipped. Defaults to true.
func WithNoVerify(noVerify bool) CommitterOption {
	return func(c *Committer) {
		c.noVerify = noVerify
	}
}

// WithClock overrides the time source for commit messages
func WithClock(now func() time.Time) CommitterOption {
	return func(c *Committer) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCommitLogger sets the logger
func WithCommitLogger(logger *slog.Logger) CommitterOption {
	return func(c *Committer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCommitter creates a commit driver for the content layout
func NewCommitter(git *Git, layout content.Layout, opts ...CommitterOption) *Committer {
	c := &Committer{
		git:      git,
		layout:   layout,
		noVerify: true,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit verifies the repository, counts posts per language, stages the
// content directory and commits it. When nothing is staged the result has
// Committed false and no error. Git failures abort with an error.
func (c *Committer) Commit(ctx context.Context) (*CommitResult, error) {
	if err := c.git.IsRepository(ctx); err != nil {
		return nil, err
	}

	stats, err := c.layout.Stats()
	if err != nil {
		return nil, err
	}
	result := &CommitResult{Stats: stats}
	result.Posts, result.Languages = content.Totals(stats)

	if err := c.git.Add(ctx, c.layout.BaseDir); err != nil {
		return result, err
	}

	staged, err := c.git.StagedFiles(ctx)
	if err != nil {
		return result, err
	}
	result.Staged = staged
	if len(staged) == 0 {
		c.logger.Info("no staged changes, nothing to commit")
		return result, nil
	}

	result.Message = CommitMessage(result.Posts, result.Languages, c.now())
	output, err := c.git.Commit(ctx, result.Message, c.noVerify)
	result.Output = output
	if errors.Is(err, ErrNothingToCommit) {
		c.logger.Info("git reported nothing to commit")
		return result, nil
	}
	if err != nil {
		return result, err
	}
	result.Committed = true

	status, err := c.git.Status(ctx)
	if err != nil {
		c.logger.Warn("failed to read git status after commit", "error", err)
	}
	result.Status = status
	return result, nil
}
