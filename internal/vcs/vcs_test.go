package vcs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"codeberg.org/snonux/blogtrans/internal/content"
	"codeberg.org/snonux/blogtrans/internal/testutil"
)

var fixedTime = time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC)

func newCommitter(t *testing.T, runner *testutil.FakeGitRunner, opts ...CommitterOption) (*Committer, string) {
	t.Helper()
	base := testutil.CreateContentTree(t, map[string][]string{
		"en": {"a.mdx", "b.mdx"},
		"es": {"a.mdx", "b.mdx"},
		"ar": {"a.mdx"},
	})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	all := append([]CommitterOption{WithClock(func() time.Time { return fixedTime }), WithCommitLogger(logger)}, opts...)
	return NewCommitter(NewGit("", runner), content.NewLayout(base), all...), base
}

func TestCommitMessage(t *testing.T) {
	got := CommitMessage(18, 12, fixedTime)
	want := "chore: sync blog translations (18 posts in 12 languages) - 2024-05-01 14:03:09"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCommit(t *testing.T) {
	runner := &testutil.FakeGitRunner{Results: map[string]testutil.MockResult{
		"status": {Stdout: "On branch main\nnothing to commit, working tree clean\n"},
		"diff":   {Stdout: "blog/es/b.mdx\nblog/ar/a.mdx\n\n"},
		"commit": {Stdout: "[main abc123] chore: sync\n 2 files changed\n"},
	}}
	c, base := newCommitter(t, runner)

	result, err := c.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if !result.Committed {
		t.Error("Expected commit to be made")
	}
	if result.Posts != 5 || result.Languages != 3 {
		t.Errorf("Expected 5 posts in 3 languages, got %d in %d", result.Posts, result.Languages)
	}
	if len(result.Staged) != 2 {
		t.Errorf("Expected 2 staged files, got %v", result.Staged)
	}
	wantMessage := "chore: sync blog translations (5 posts in 3 languages) - 2024-05-01 14:03:09"
	if result.Message != wantMessage {
		t.Errorf("Expected message %q, got %q", wantMessage, result.Message)
	}
	if result.Status == "" {
		t.Error("Expected git status output after commit")
	}

	wantCalls := [][]string{
		{"status"},
		{"add", base},
		{"diff", "--cached", "--name-only"},
		{"commit", "--no-verify", "-m", wantMessage},
		{"status"},
	}
	if !reflect.DeepEqual(runner.Calls, wantCalls) {
		t.Errorf("Unexpected git calls:\n got %v\nwant %v", runner.Calls, wantCalls)
	}
}

func TestCommit_WithHooks(t *testing.T) {
	runner := &testutil.FakeGitRunner{Results: map[string]testutil.MockResult{
		"diff": {Stdout: "blog/es/b.mdx\n"},
	}}
	c, _ := newCommitter(t, runner, WithNoVerify(false))

	if _, err := c.Commit(context.Background()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	for _, call := range runner.Calls {
		if call[0] == "commit" {
			for _, arg := range call {
				if arg == "--no-verify" {
					t.Error("Did not expect --no-verify")
				}
			}
		}
	}
}

func TestCommit_NotRepository(t *testing.T) {
	runner := &testutil.FakeGitRunner{Results: map[string]testutil.MockResult{
		"status": {Stderr: "fatal: not a git repository", Err: errors.New("exit status 128")},
	}}
	c, _ := newCommitter(t, runner)

	_, err := c.Commit(context.Background())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("Expected ErrNotRepository, got %v", err)
	}
	if runner.Called("add") {
		t.Error("Nothing should be staged outside a repository")
	}
}

func TestCommit_NothingStaged(t *testing.T) {
	runner := &testutil.FakeGitRunner{Results: map[string]testutil.MockResult{
		"diff": {Stdout: "\n"},
	}}
	c, _ := newCommitter(t, runner)

	result, err := c.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Committed {
		t.Error("Expected no commit")
	}
	if runner.Called("commit") {
		t.Error("git commit should not run with an empty index")
	}
}

func TestCommit_NothingToCommitStderr(t *testing.T) {
	runner := &testutil.FakeGitRunner{Results: map[string]testutil.MockResult{
		"diff":   {Stdout: "blog/es/a.mdx\n"},
		"commit": {Stderr: "Nothing To Commit, working tree clean", Err: errors.New("exit status 1")},
	}}
	c, _ := newCommitter(t, runner)

	result, err := c.Commit(context.Background())
	if err != nil {
		t.Fatalf("Expected no-op, got %v", err)
	}
	if result.Committed {
		t.Error("Expected no commit")
	}
}

func TestCommit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]testutil.MockResult
	}{
		{
			name: "add fails",
			results: map[string]testutil.MockResult{
				"add": {Stderr: "fatal: pathspec did not match", Err: errors.New("exit status 128")},
			},
		},
		{
			name: "diff fails",
			results: map[string]testutil.MockResult{
				"diff": {Err: errors.New("exit status 1")},
			},
		},
		{
			name: "commit fails",
			results: map[string]testutil.MockResult{
				"diff":   {Stdout: "blog/es/a.mdx\n"},
				"commit": {Stderr: "error: gpg failed to sign the data", Err: errors.New("exit status 128")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCommitter(t, &testutil.FakeGitRunner{Results: tt.results})
			result, err := c.Commit(context.Background())
			if err == nil {
				t.Fatal("Expected error")
			}
			if result != nil && result.Committed {
				t.Error("Expected no commit")
			}
		})
	}
}

func TestGit_StagedFiles(t *testing.T) {
	runner := &testutil.FakeGitRunner{Results: map[string]testutil.MockResult{
		"diff": {Stdout: "a\n  b  \n\nc"},
	}}
	files, err := NewGit("/repo", runner).StagedFiles(context.Background())
	if err != nil {
		t.Fatalf("StagedFiles failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"a", "b", "c"}) {
		t.Errorf("Unexpected files %v", files)
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	g := NewGit(dir, nil)
	if err := g.IsRepository(context.Background()); !errors.Is(err, ErrNotRepository) {
		// A temp dir may live inside a repository on some systems
		if err == nil {
			t.Skip("temp dir is inside a git repository")
		}
		t.Errorf("Expected ErrNotRepository, got %v", err)
	}

	if _, _, err := (ExecRunner{}).Run(context.Background(), dir, "init", "-q"); err != nil {
		t.Fatalf("git init failed: %v", err)
	}
	if err := g.IsRepository(context.Background()); err != nil {
		t.Errorf("Expected repository after init: %v", err)
	}

	testutil.CreateTestFile(t, filepath.Join(dir, "blog", "es", "a.mdx"), []byte("hola"))
	if err := g.Add(context.Background(), "blog"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	files, err := g.StagedFiles(context.Background())
	if err != nil {
		t.Fatalf("StagedFiles failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"blog/es/a.mdx"}) {
		t.Errorf("Unexpected staged files %v", files)
	}
}
