package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Archiver copies translation files into a timestamped archive directory
// next to the content directory before they are replaced
type Archiver struct {
	baseDir    string
	archiveDir string
	now        func() time.Time
}

// New creates an archiver for the content directory baseDir. Archives are
// created in the "archive" directory next to baseDir unless archiveDir is
// set.
func New(baseDir, archiveDir string) *Archiver {
	if archiveDir == "" {
		archiveDir = filepath.Join(filepath.Dir(filepath.Clean(baseDir)), "archive")
	}
	return &Archiver{
		baseDir:    baseDir,
		archiveDir: archiveDir,
		now:        time.Now,
	}
}

// Dir returns the directory archives are written to
func (a *Archiver) Dir() string {
	return a.archiveDir
}

// Backup copies the given files, relative to the content directory, into
// a new archive and returns its path. Files that do not exist are skipped.
// With nothing to copy no archive is created and the path is empty.
func (a *Archiver) Backup(relPaths []string) (string, error) {
	var existing []string
	for _, rel := range relPaths {
		if _, err := os.Stat(filepath.Join(a.baseDir, rel)); err == nil {
			existing = append(existing, rel)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(a.archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	timestamp := a.now().Format("20060102-150405")
	archivePath := filepath.Join(a.archiveDir, fmt.Sprintf("translations-%s", timestamp))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = a.now().Format("20060102-150405.000000")
		archivePath = filepath.Join(a.archiveDir, fmt.Sprintf("translations-%s", timestamp))
	}

	for _, rel := range existing {
		if err := copyFile(filepath.Join(a.baseDir, rel), filepath.Join(archivePath, rel)); err != nil {
			return "", fmt.Errorf("failed to archive %s: %w", rel, err)
		}
	}

	return archivePath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
