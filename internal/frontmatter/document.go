package frontmatter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Delimiter opens and closes the metadata block
const Delimiter = "---"

// ErrNoFrontmatter is returned for documents without a usable metadata block
var ErrNoFrontmatter = errors.New("no frontmatter block found")

// Document is a blog post. Name is the file name shared by all language
// versions of the same post.
type Document struct {
	Name     string
	Metadata *Metadata
	Body     string
}

// Split separates the metadata block from the body. The text must start
// with a delimiter line and contain a later closing delimiter line; when
// it does not, ok is false and body is the full text unchanged.
func Split(text string) (block, body string, ok bool) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	opening := Delimiter + "\n"
	if !strings.HasPrefix(normalized, opening) {
		return "", text, false
	}
	rest := normalized[len(opening):]
	closing := "\n" + Delimiter + "\n"
	idx := strings.Index(rest, closing)
	if idx < 0 {
		return "", text, false
	}
	return rest[:idx], rest[idx+len(closing):], true
}

// Parse builds a document from raw text. An absent or empty metadata block
// yields ErrNoFrontmatter.
func Parse(name, text string) (*Document, error) {
	block, body, ok := Split(text)
	if !ok || block == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNoFrontmatter)
	}
	return &Document{
		Name:     name,
		Metadata: ParseMetadata(block),
		Body:     body,
	}, nil
}

// Load reads and parses the document at path
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(filepath.Base(path), string(data))
}

// Render serializes the document in on-disk format
func (d *Document) Render() string {
	return RenderMetadata(d.Metadata) + d.Body
}
