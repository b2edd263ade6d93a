package pdfembed

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_ToHTML
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	conv := newGoldmarkConverter()

	t.Run("produces full document", func(t *testing.T) {
		t.Parallel()

		out, err := conv.ToHTML(context.Background(), "# Title\n\nBody text.")
		if err != nil {
			t.Fatalf("ToHTML: %v", err)
		}
		for _, want := range []string{"<!DOCTYPE html>", "<h1", "Title</h1>", "<p>Body text.</p>"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("gfm tables", func(t *testing.T) {
		t.Parallel()

		out, err := conv.ToHTML(context.Background(), "| a | b |\n|---|---|\n| 1 | 2 |")
		if err != nil {
			t.Fatalf("ToHTML: %v", err)
		}
		if !strings.Contains(out, "<table>") {
			t.Errorf("table not rendered:\n%s", out)
		}
	})

	t.Run("raw html stays escaped", func(t *testing.T) {
		t.Parallel()

		out, err := conv.ToHTML(context.Background(), `<script>alert(1)</script>`)
		if err != nil {
			t.Fatalf("ToHTML: %v", err)
		}
		if strings.Contains(out, "<script>") {
			t.Errorf("raw HTML passed through unescaped:\n%s", out)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := conv.ToHTML(ctx, "# x"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

// ---------------------------------------------------------------------------
// TestWikiEmbeds - ![[target]] to embed span round trip
// ---------------------------------------------------------------------------

func TestWikiEmbeds(t *testing.T) {
	t.Parallel()

	conv := newGoldmarkConverter()

	tests := []struct {
		name     string
		markdown string
		wantSrc  string
	}{
		{
			name:     "plain embed",
			markdown: "Before ![[doc.pdf]] after",
			wantSrc:  "doc.pdf",
		},
		{
			name:     "embed with page fragment",
			markdown: "![[doc.pdf#page=2]]",
			wantSrc:  "doc.pdf#page=2",
		},
		{
			name:     "nested path with spaces",
			markdown: "![[reports/annual report.pdf#page=12]]",
			wantSrc:  "reports/annual report.pdf#page=12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := conv.ToHTML(context.Background(), tt.markdown)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(out, `<span class="internal-embed"`) {
				t.Fatalf("no embed span in output:\n%s", out)
			}

			// The span src must round-trip through the Markdown pipeline and
			// parse back to the original target.
			tree, _, err := parseHTML(out)
			if err != nil {
				t.Fatalf("parseHTML: %v", err)
			}
			nodes := findEmbedNodes(tree)
			if len(nodes) != 1 {
				t.Fatalf("found %d embed nodes, want 1", len(nodes))
			}
			if got := ExtractEmbedSource(nodes[0]); got != tt.wantSrc {
				t.Errorf("embed src = %q, want %q", got, tt.wantSrc)
			}
		})
	}

	t.Run("regular image syntax untouched", func(t *testing.T) {
		t.Parallel()

		out, err := conv.ToHTML(context.Background(), "![alt](image.png)")
		if err != nil {
			t.Fatalf("ToHTML: %v", err)
		}
		if !strings.Contains(out, `<img src="image.png"`) {
			t.Errorf("standard image broken:\n%s", out)
		}
		if strings.Contains(out, "internal-embed") {
			t.Errorf("standard image misread as wiki embed:\n%s", out)
		}
	})

	t.Run("multiple embeds in one document", func(t *testing.T) {
		t.Parallel()

		out, err := conv.ToHTML(context.Background(), "![[a.pdf]]\n\n![[b.pdf#page=3]]")
		if err != nil {
			t.Fatalf("ToHTML: %v", err)
		}
		if got := countSubstring(out, "internal-embed"); got != 2 {
			t.Errorf("found %d embed spans, want 2:\n%s", got, out)
		}
	})
}

func TestConvertWikiEmbeds(t *testing.T) {
	t.Parallel()

	got := convertWikiEmbeds("x ![[a b.pdf#page=2]] y")
	if strings.Contains(got, "![[") {
		t.Errorf("wiki syntax survived conversion: %q", got)
	}
	if !strings.HasPrefix(got, "x %%PDFEMBED:") {
		t.Errorf("placeholder missing: %q", got)
	}

	// Content without embeds passes through untouched.
	plain := "no embeds here"
	if convertWikiEmbeds(plain) != plain {
		t.Errorf("plain content modified")
	}
}
