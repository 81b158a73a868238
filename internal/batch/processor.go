package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadList reads a list file with one entry per line and returns the
// entries in file order. Supports:
// - Plain entries: "disconnected.mdx"
// - Comments: lines starting with "#" are ignored
// - Inline comments: "disconnected.mdx # translated by hand"
// Blank lines and duplicates are skipped.
func ReadList(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read list file: %w", err)
	}
	return ParseList(string(content)), nil
}

// ParseList parses list file content
func ParseList(content string) []string {
	var entries []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		entries = append(entries, line)
	}

	return entries
}

// ReadFileNames reads a list file of post file names. Entries are reduced
// to their base name so "en/foo.mdx" and "foo.mdx" name the same post.
func ReadFileNames(filename string) ([]string, error) {
	entries, err := ReadList(filename)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		name := filepath.Base(e)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}
