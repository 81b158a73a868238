// Package vcs stages and commits translated posts with git.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNotRepository is returned when the working directory is not inside
	// a git repository or git is not installed
	ErrNotRepository = errors.New("not a git repository or git is not installed")
	// ErrNothingToCommit is returned when git reports a clean index
	ErrNothingToCommit = errors.New("nothing to commit")
)

// Runner runs a git subcommand in dir and returns its output
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs the git binary
type ExecRunner struct {
	// Binary defaults to "git"
	Binary string
}

// Run executes git with args
func (r ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, string, error) {
	binary := r.Binary
	if binary == "" {
		binary = "git"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Git wraps the git commands the commit driver needs
type Git struct {
	runner Runner
	dir    string
}

// NewGit creates a git wrapper working in dir. An empty dir is the current
// working directory; a nil runner uses the git binary.
func NewGit(dir string, runner Runner) *Git {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Git{runner: runner, dir: dir}
}

func (g *Git) run(ctx context.Context, args ...string) (string, string, error) {
	return g.runner.Run(ctx, g.dir, args...)
}

// IsRepository checks that git works in the directory
func (g *Git) IsRepository(ctx context.Context) error {
	if _, stderr, err := g.run(ctx, "status"); err != nil {
		return fmt.Errorf("%w: %s", ErrNotRepository, strings.TrimSpace(firstNonEmpty(stderr, err.Error())))
	}
	return nil
}

// Add stages paths
func (g *Git) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add"}, paths...)
	if _, stderr, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("git add failed: %s", strings.TrimSpace(firstNonEmpty(stderr, err.Error())))
	}
	return nil
}

// StagedFiles lists the files in the index that differ from HEAD
func (g *Git) StagedFiles(ctx context.Context) ([]string, error) {
	stdout, stderr, err := g.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %s", strings.TrimSpace(firstNonEmpty(stderr, err.Error())))
	}

	var files []string
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Commit records the index with message. With noVerify the pre-commit and
// commit-msg hooks are skipped. A clean index yields ErrNothingToCommit.
func (g *Git) Commit(ctx context.Context, message string, noVerify bool) (string, error) {
	args := []string{"commit"}
	if noVerify {
		args = append(args, "--no-verify")
	}
	args = append(args, "-m", message)

	stdout, stderr, err := g.run(ctx, args...)
	if err != nil {
		if strings.Contains(strings.ToLower(stderr), "nothing to commit") ||
			strings.Contains(strings.ToLower(stdout), "nothing to commit") {
			return stdout, ErrNothingToCommit
		}
		return stdout, fmt.Errorf("git commit failed: %s", strings.TrimSpace(firstNonEmpty(stderr, err.Error())))
	}
	return stdout, nil
}

// Status returns the output of git status
func (g *Git) Status(ctx context.Context) (string, error) {
	stdout, stderr, err := g.run(ctx, "status")
	if err != nil {
		return "", fmt.Errorf("git status failed: %s", strings.TrimSpace(firstNonEmpty(stderr, err.Error())))
	}
	return stdout, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
