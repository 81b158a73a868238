package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// PostContent returns a post with a title, a summary and body
func PostContent(title, summary, body string) string {
	return fmt.Sprintf("---\ntitle: \"%s\"\nsummary: \"%s\"\ndate: 2024-05-01\n---\n%s", title, summary, body)
}

// CreatePost writes a post into baseDir/lang/name and returns its path
func CreatePost(t *testing.T, baseDir, lang, name, content string) string {
	t.Helper()

	path := filepath.Join(baseDir, lang, name)
	CreateTestFile(t, path, []byte(content))
	return path
}

// CreateContentTree creates a content directory with the given posts per
// language and returns its path. Every post gets generated content.
func CreateContentTree(t *testing.T, posts map[string][]string) string {
	t.Helper()

	baseDir := filepath.Join(t.TempDir(), "blog")
	for lang, names := range posts {
		if err := os.MkdirAll(filepath.Join(baseDir, lang), 0755); err != nil {
			t.Fatalf("Failed to create language directory: %v", err)
		}
		for _, name := range names {
			title := strings.TrimSuffix(name, filepath.Ext(name))
			CreatePost(t, baseDir, lang, name, PostContent(title, "About "+title, "Body of "+title+".\n"))
		}
	}
	return baseDir
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// CaptureOutput captures stdout/stderr during test execution
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	outCh := make(chan string)
	errCh := make(chan string)
	go func() {
		b, _ := io.ReadAll(rOut)
		outCh <- string(b)
	}()
	go func() {
		b, _ := io.ReadAll(rErr)
		errCh <- string(b)
	}()

	defer func() {
		os.Stdout = oldStdout
		os.Stderr = oldStderr
	}()

	f()

	_ = wOut.Close()
	_ = wErr.Close()

	return <-outCh, <-errCh
}
