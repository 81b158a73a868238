// Package chunker splits post bodies into pieces small enough for a
// translation backend while keeping paragraph and line boundaries intact.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mode selects the structural unit text is split on
type Mode string

const (
	// Lines splits on single line breaks
	Lines Mode = "lines"
	// Paragraphs splits on blank-line paragraph breaks
	Paragraphs Mode = "paragraphs"
)

// SentenceSeparator splits oversized units as a last resort
const SentenceSeparator = ". "

const (
	// DefaultLineThreshold is the piece size limit in lines mode
	DefaultLineThreshold = 2000
	// DefaultParagraphThreshold is the piece size limit in paragraphs mode
	DefaultParagraphThreshold = 3000
)

// ParseMode converts a configuration string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Lines:
		return Lines, nil
	case Paragraphs:
		return Paragraphs, nil
	default:
		return "", fmt.Errorf("unknown chunk mode: %s", s)
	}
}

// Separator returns the string units are split on and rejoined with
func (m Mode) Separator() string {
	if m == Paragraphs {
		return "\n\n"
	}
	return "\n"
}

// Piece is one unit of work for the translation backend
type Piece struct {
	Text string
	// Oversized pieces are a single unit longer than the threshold
	Oversized bool
}

// Chunker splits text into pieces under a size threshold
type Chunker struct {
	mode      Mode
	threshold int
	pack      bool
	packSet   bool
}

// Option configures a Chunker
type Option func(*Chunker)

// WithMode sets the split mode
func WithMode(mode Mode) Option {
	return func(c *Chunker) {
		if mode == Lines || mode == Paragraphs {
			c.mode = mode
		}
	}
}

// WithThreshold sets the piece size limit in characters
func WithThreshold(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithPacking controls whether consecutive units are accumulated into one
// piece. It defaults to on in lines mode and off in paragraphs mode.
func WithPacking(pack bool) Option {
	return func(c *Chunker) {
		c.pack = pack
		c.packSet = true
	}
}

// New creates a chunker. Without options it runs in lines mode with a
// 2000 character threshold.
func New(opts ...Option) *Chunker {
	c := &Chunker{mode: Lines}
	for _, opt := range opts {
		opt(c)
	}
	if c.threshold == 0 {
		c.threshold = DefaultLineThreshold
		if c.mode == Paragraphs {
			c.threshold = DefaultParagraphThreshold
		}
	}
	if !c.packSet {
		c.pack = c.mode == Lines
	}
	return c
}

// Mode returns the configured split mode
func (c *Chunker) Mode() Mode { return c.mode }

// Threshold returns the configured size limit
func (c *Chunker) Threshold() int { return c.threshold }

// Separator returns the separator pieces are joined with
func (c *Chunker) Separator() string { return c.mode.Separator() }

// Split breaks text into pieces. Joining the piece texts with Separator
// reproduces text exactly.
func (c *Chunker) Split(text string) []Piece {
	if length(text) < c.threshold {
		return []Piece{{Text: text}}
	}

	sep := c.Separator()
	var pieces []Piece
	var buf []string
	bufLen := 0

	flush := func() {
		if buf == nil {
			return
		}
		pieces = append(pieces, Piece{Text: strings.Join(buf, sep)})
		buf = nil
		bufLen = 0
	}

	for _, unit := range strings.Split(text, sep) {
		n := length(unit)
		if n > c.threshold {
			flush()
			pieces = append(pieces, Piece{Text: unit, Oversized: true})
			continue
		}
		if !c.pack {
			pieces = append(pieces, Piece{Text: unit})
			continue
		}
		if buf != nil && bufLen+length(sep)+n > c.threshold {
			flush()
		}
		if buf != nil {
			bufLen += length(sep)
		}
		buf = append(buf, unit)
		bufLen += n
	}
	flush()
	return pieces
}

// TranslateFunc translates a single piece. It never fails; a backend that
// cannot translate returns its input.
type TranslateFunc func(ctx context.Context, text string) string

// Translate splits text, translates every piece independently and
// reassembles the results in order. Whitespace-only text and pieces are
// passed through untouched. Oversized pieces are translated sentence by
// sentence.
func (c *Chunker) Translate(ctx context.Context, text string, translate TranslateFunc) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	pieces := c.Split(text)
	out := make([]string, len(pieces))
	for i, p := range pieces {
		switch {
		case strings.TrimSpace(p.Text) == "":
			out[i] = p.Text
		case p.Oversized:
			out[i] = translateSentences(ctx, p.Text, translate)
		default:
			out[i] = translate(ctx, p.Text)
		}
	}
	return strings.Join(out, c.Separator())
}

// translateSentences is the best-effort fallback for a single unit over
// the threshold. A sentence that is still too long is sent as is.
func translateSentences(ctx context.Context, text string, translate TranslateFunc) string {
	sentences := strings.Split(text, SentenceSeparator)
	for i, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		sentences[i] = translate(ctx, s)
	}
	return strings.Join(sentences, SentenceSeparator)
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
