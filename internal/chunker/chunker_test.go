package chunker

import (
	"context"
	"strings"
	"testing"
)

func upper(_ context.Context, s string) string { return strings.ToUpper(s) }

func joinPieces(pieces []Piece, sep string) string {
	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Text
	}
	return strings.Join(texts, sep)
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.Mode() != Lines {
			t.Errorf("expected lines mode, got %s", c.Mode())
		}
		if c.Threshold() != DefaultLineThreshold {
			t.Errorf("expected threshold %d, got %d", DefaultLineThreshold, c.Threshold())
		}
		if !c.pack {
			t.Error("lines mode should pack by default")
		}
	})

	t.Run("paragraph defaults", func(t *testing.T) {
		c := New(WithMode(Paragraphs))
		if c.Threshold() != DefaultParagraphThreshold {
			t.Errorf("expected threshold %d, got %d", DefaultParagraphThreshold, c.Threshold())
		}
		if c.pack {
			t.Error("paragraph mode should not pack by default")
		}
		if c.Separator() != "\n\n" {
			t.Errorf("unexpected separator %q", c.Separator())
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithThreshold(0), WithMode("words"))
		if c.Threshold() != DefaultLineThreshold || c.Mode() != Lines {
			t.Errorf("invalid options should be ignored, got %s/%d", c.Mode(), c.Threshold())
		}
	})

	t.Run("explicit packing", func(t *testing.T) {
		c := New(WithMode(Paragraphs), WithPacking(true))
		if !c.pack {
			t.Error("explicit packing should override the mode default")
		}
	})
}

func TestParseMode(t *testing.T) {
	for _, in := range []string{"lines", " Paragraphs "} {
		if _, err := ParseMode(in); err != nil {
			t.Errorf("ParseMode(%q) failed: %v", in, err)
		}
	}
	if _, err := ParseMode("sentences"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSplit_BelowThreshold(t *testing.T) {
	text := "line one\nline two\n\nparagraph"
	for _, mode := range []Mode{Lines, Paragraphs} {
		c := New(WithMode(mode), WithThreshold(len(text)+1))
		pieces := c.Split(text)
		if len(pieces) != 1 || pieces[0].Text != text {
			t.Errorf("%s: expected the text as a single piece, got %+v", mode, pieces)
		}
	}
}

func TestSplit_ThreeParagraphs(t *testing.T) {
	text := "para1\n\npara2\n\npara3"
	c := New(WithMode(Paragraphs), WithThreshold(10))

	pieces := c.Split(text)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d: %+v", len(pieces), pieces)
	}
	for i, want := range []string{"para1", "para2", "para3"} {
		if pieces[i].Text != want || pieces[i].Oversized {
			t.Errorf("piece %d = %+v, want %q", i, pieces[i], want)
		}
	}

	var calls []string
	got := c.Translate(context.Background(), text, func(_ context.Context, s string) string {
		calls = append(calls, s)
		return strings.ToUpper(s)
	})
	if got != "PARA1\n\nPARA2\n\nPARA3" {
		t.Errorf("Translate() = %q", got)
	}
	if len(calls) != 3 {
		t.Errorf("expected 3 backend calls, got %d", len(calls))
	}
}

func TestSplit_PacksLines(t *testing.T) {
	lines := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee"}
	text := strings.Join(lines, "\n")
	c := New(WithMode(Lines), WithThreshold(10))

	pieces := c.Split(text)
	want := []string{"aaaa\nbbbb", "cccc\ndddd", "eeee"}
	if len(pieces) != len(want) {
		t.Fatalf("expected %d pieces, got %+v", len(want), pieces)
	}
	for i := range want {
		if pieces[i].Text != want[i] {
			t.Errorf("piece %d = %q, want %q", i, pieces[i].Text, want[i])
		}
		if length(pieces[i].Text) > c.Threshold() {
			t.Errorf("piece %d exceeds threshold", i)
		}
	}
}

func TestSplit_OversizedUnit(t *testing.T) {
	long := "First sentence. Second sentence. Third sentence"
	text := "short\n" + long + "\ntail"
	c := New(WithMode(Lines), WithThreshold(20))

	pieces := c.Split(text)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %+v", pieces)
	}
	if pieces[0].Text != "short" || pieces[0].Oversized {
		t.Errorf("unexpected first piece %+v", pieces[0])
	}
	if pieces[1].Text != long || !pieces[1].Oversized {
		t.Errorf("expected oversized piece, got %+v", pieces[1])
	}

	var calls []string
	got := c.Translate(context.Background(), text, func(_ context.Context, s string) string {
		calls = append(calls, s)
		return strings.ToUpper(s)
	})
	want := "SHORT\nFIRST SENTENCE. SECOND SENTENCE. THIRD SENTENCE\nTAIL"
	if got != want {
		t.Errorf("Translate() = %q, want %q", got, want)
	}
	if len(calls) != 5 {
		t.Errorf("expected 5 backend calls (3 sentences + 2 pieces), got %d: %q", len(calls), calls)
	}
}

func TestSplit_OversizedWithoutSentenceBoundary(t *testing.T) {
	long := strings.Repeat("x", 50)
	c := New(WithThreshold(10))

	var calls []string
	got := c.Translate(context.Background(), long, func(_ context.Context, s string) string {
		calls = append(calls, s)
		return s
	})
	if got != long {
		t.Errorf("Translate() changed text")
	}
	if len(calls) != 1 || calls[0] != long {
		t.Errorf("expected the unit to be sent as is, got %q", calls)
	}
}

func TestSplit_Lossless(t *testing.T) {
	texts := []string{
		"para one is here\n\npara two\n\n\n\npara three has more words in it\n\n",
		"line\n\nline\nline with some more text in it\n\n\nend",
		"Sentence one. Sentence two. Sentence three is long enough to be oversized.\n\nshort",
		"ünïcödé text\n\nもう一つの段落\n\nlast",
	}
	for _, mode := range []Mode{Lines, Paragraphs} {
		for _, pack := range []bool{true, false} {
			c := New(WithMode(mode), WithThreshold(12), WithPacking(pack))
			for _, text := range texts {
				pieces := c.Split(text)
				if got := joinPieces(pieces, c.Separator()); got != text {
					t.Errorf("%s/pack=%v: rejoined %q, want %q", mode, pack, got, text)
				}
			}
		}
	}
}

func TestTranslate_WhitespaceOnly(t *testing.T) {
	c := New()
	for _, text := range []string{"", "   ", "\n\n\t"} {
		called := false
		got := c.Translate(context.Background(), text, func(_ context.Context, s string) string {
			called = true
			return "x"
		})
		if got != text {
			t.Errorf("Translate(%q) = %q", text, got)
		}
		if called {
			t.Errorf("backend called for whitespace-only input %q", text)
		}
	}
}

func TestTranslate_BlankParagraphsPassThrough(t *testing.T) {
	text := "alpha\n\n\n\nbeta"
	c := New(WithMode(Paragraphs), WithThreshold(5))

	got := c.Translate(context.Background(), text, upper)
	if got != "ALPHA\n\n\n\nBETA" {
		t.Errorf("Translate() = %q", got)
	}
}

func TestTranslate_ShortTextSingleCall(t *testing.T) {
	c := New()
	calls := 0
	got := c.Translate(context.Background(), "hello\n\nworld", func(_ context.Context, s string) string {
		calls++
		return strings.ToUpper(s)
	})
	if got != "HELLO\n\nWORLD" || calls != 1 {
		t.Errorf("Translate() = %q with %d calls", got, calls)
	}
}
