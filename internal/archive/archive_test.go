package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestBackup(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir := filepath.Join(tmpDir, "blog")

	createFile(t, filepath.Join(baseDir, "es", "a.mdx"), "hola")
	createFile(t, filepath.Join(baseDir, "de", "a.mdx"), "hallo")

	a := New(baseDir, "")
	path, err := a.Backup([]string{"es/a.mdx", "de/a.mdx", "fr/missing.mdx"})
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	archiveDir := filepath.Join(tmpDir, "archive")
	if a.Dir() != archiveDir {
		t.Errorf("Expected archive dir %s, got %s", archiveDir, a.Dir())
	}
	if filepath.Dir(path) != archiveDir {
		t.Errorf("Archive created outside archive dir: %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "translations-") {
		t.Errorf("Archived directory name doesn't start with 'translations-': %s", path)
	}

	content, err := os.ReadFile(filepath.Join(path, "es", "a.mdx"))
	if err != nil || string(content) != "hola" {
		t.Errorf("Expected archived es/a.mdx, got %q (%v)", content, err)
	}
	if _, err := os.Stat(filepath.Join(path, "fr", "missing.mdx")); !os.IsNotExist(err) {
		t.Error("Missing source file should not be archived")
	}

	// Originals are copied, not moved
	if _, err := os.Stat(filepath.Join(baseDir, "es", "a.mdx")); err != nil {
		t.Errorf("Original file should remain: %v", err)
	}
}

func TestBackup_NothingToCopy(t *testing.T) {
	tmpDir := t.TempDir()
	a := New(filepath.Join(tmpDir, "blog"), "")

	path, err := a.Backup([]string{"es/none.mdx"})
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if path != "" {
		t.Errorf("Expected no archive, got %s", path)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "archive")); !os.IsNotExist(err) {
		t.Error("Archive directory should not be created")
	}
}

func TestBackup_CustomDir(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir := filepath.Join(tmpDir, "blog")
	createFile(t, filepath.Join(baseDir, "es", "a.mdx"), "hola")

	custom := filepath.Join(tmpDir, "backups")
	path, err := New(baseDir, custom).Backup([]string{"es/a.mdx"})
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if filepath.Dir(path) != custom {
		t.Errorf("Expected archive in %s, got %s", custom, path)
	}
}

func TestBackup_MultipleArchives(t *testing.T) {
	tmpDir := t.TempDir()
	baseDir := filepath.Join(tmpDir, "blog")
	createFile(t, filepath.Join(baseDir, "es", "a.mdx"), "hola")

	a := New(baseDir, "")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	a.now = func() time.Time {
		calls++
		return fixed.Add(time.Duration(calls) * time.Microsecond)
	}

	// Same second twice
	first, err := a.Backup([]string{"es/a.mdx"})
	if err != nil {
		t.Fatalf("First backup failed: %v", err)
	}
	second, err := a.Backup([]string{"es/a.mdx"})
	if err != nil {
		t.Fatalf("Second backup failed: %v", err)
	}

	if first == second {
		t.Error("Archive names are not unique")
	}

	entries, err := os.ReadDir(a.Dir())
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}
}
