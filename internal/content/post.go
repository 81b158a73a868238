package content

import (
	"context"
	"strings"

	"codeberg.org/snonux/blogtrans/internal/chunker"
	"codeberg.org/snonux/blogtrans/internal/frontmatter"
	"codeberg.org/snonux/blogtrans/internal/translation"
)

// TranslatedFields are the metadata fields translated along with the body
var TranslatedFields = []string{"title", "summary"}

// TextTranslator translates a piece of text and never fails. Stats is used
// to attribute fallbacks to posts.
type TextTranslator interface {
	Translate(ctx context.Context, text, target string) string
	Stats() translation.Stats
}

// PostTranslator translates a whole document
type PostTranslator struct {
	client  TextTranslator
	chunker *chunker.Chunker
}

// NewPostTranslator creates a post translator
func NewPostTranslator(client TextTranslator, ch *chunker.Chunker) *PostTranslator {
	if ch == nil {
		ch = chunker.New()
	}
	return &PostTranslator{client: client, chunker: ch}
}

// Translate returns a translated copy of doc. Title and summary are
// stripped of quote characters and translated; other fields are copied.
// The body is trimmed and translated piece by piece. The second return
// value is the number of backend fallbacks for this post.
func (p *PostTranslator) Translate(ctx context.Context, doc *frontmatter.Document, target string) (*frontmatter.Document, int) {
	before := p.client.Stats().Fallbacks

	meta := doc.Metadata.Clone()
	for _, key := range TranslatedFields {
		value, ok := meta.Get(key)
		if !ok {
			continue
		}
		meta.Set(key, p.client.Translate(ctx, strings.Trim(value, `"'`), target))
	}

	body := p.chunker.Translate(ctx, strings.TrimSpace(doc.Body), func(ctx context.Context, text string) string {
		return p.client.Translate(ctx, text, target)
	})

	translated := &frontmatter.Document{
		Name:     doc.Name,
		Metadata: meta,
		Body:     body,
	}
	return translated, p.client.Stats().Fallbacks - before
}
