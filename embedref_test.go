package pdfembed

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// ---------------------------------------------------------------------------
// TestParseEmbedSource - Reference parsing
// ---------------------------------------------------------------------------

func TestParseEmbedSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantLink string
		wantPage int
	}{
		{
			name:     "no fragment defaults to page 1",
			raw:      "doc.pdf",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "page fragment",
			raw:      "doc.pdf#page=3",
			wantLink: "doc.pdf",
			wantPage: 3,
		},
		{
			name:     "empty fragment",
			raw:      "doc.pdf#",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "fragment without page parameter",
			raw:      "doc.pdf#height=400",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "page zero degrades to 1",
			raw:      "doc.pdf#page=0",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "negative page degrades to 1",
			raw:      "doc.pdf#page=-4",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "non-numeric page degrades to 1",
			raw:      "doc.pdf#page=abc",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "empty page value degrades to 1",
			raw:      "doc.pdf#page=",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "fractional page truncates toward zero",
			raw:      "doc.pdf#page=2.7",
			wantLink: "doc.pdf",
			wantPage: 2,
		},
		{
			name:     "large page preserved for later clamping",
			raw:      "doc.pdf#page=999",
			wantLink: "doc.pdf",
			wantPage: 999,
		},
		{
			name:     "percent-encoded link text decoded",
			raw:      "my%20report.pdf#page=2",
			wantLink: "my report.pdf",
			wantPage: 2,
		},
		{
			name:     "surrounding whitespace trimmed",
			raw:      "  docs/doc.pdf  #page=5",
			wantLink: "docs/doc.pdf",
			wantPage: 5,
		},
		{
			name:     "multiple fragment parameters",
			raw:      "doc.pdf#page=4&zoom=2",
			wantLink: "doc.pdf",
			wantPage: 4,
		},
		{
			name:     "only first hash splits, garbled page degrades",
			raw:      "doc.pdf#page=2#page=9",
			wantLink: "doc.pdf",
			wantPage: 1,
		},
		{
			name:     "empty input",
			raw:      "",
			wantLink: "",
			wantPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseEmbedSource(tt.raw)
			if got.LinkText != tt.wantLink {
				t.Errorf("ParseEmbedSource(%q).LinkText = %q, want %q", tt.raw, got.LinkText, tt.wantLink)
			}
			if got.Page != tt.wantPage {
				t.Errorf("ParseEmbedSource(%q).Page = %d, want %d", tt.raw, got.Page, tt.wantPage)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLooksLikePDF - Document type filter
// ---------------------------------------------------------------------------

func TestLooksLikePDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{name: "plain pdf", source: "doc.pdf", want: true},
		{name: "uppercase extension", source: "DOC.PDF", want: true},
		{name: "mixed case", source: "doc.Pdf", want: true},
		{name: "with page fragment", source: "doc.pdf#page=2", want: true},
		{name: "nested path", source: "a/b/doc.pdf", want: true},
		{name: "not a pdf", source: "image.png", want: false},
		{name: "pdf in middle of name", source: "doc.pdf.png", want: false},
		{name: "fragment only", source: "#page=2", want: false},
		{name: "empty", source: "", want: false},
		{name: "trailing whitespace", source: "doc.pdf  ", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := LooksLikePDF(tt.source); got != tt.want {
				t.Errorf("LooksLikePDF(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExtractEmbedSource - Attribute extraction
// ---------------------------------------------------------------------------

func TestExtractEmbedSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "src attribute",
			html: `<span src="doc.pdf"></span>`,
			want: "doc.pdf",
		},
		{
			name: "data-src attribute",
			html: `<span data-src="doc.pdf#page=2"></span>`,
			want: "doc.pdf#page=2",
		},
		{
			name: "data-href attribute",
			html: `<span data-href="doc.pdf"></span>`,
			want: "doc.pdf",
		},
		{
			name: "data attribute on object",
			html: `<object data="doc.pdf"></object>`,
			want: "doc.pdf",
		},
		{
			name: "src wins over data-href",
			html: `<span src="a.pdf" data-href="b.pdf"></span>`,
			want: "a.pdf",
		},
		{
			name: "empty src falls through to data-src",
			html: `<span src="" data-src="b.pdf"></span>`,
			want: "b.pdf",
		},
		{
			name: "no source attributes",
			html: `<span class="internal-embed"></span>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node := firstElement(t, tt.html)
			if got := ExtractEmbedSource(node); got != tt.want {
				t.Errorf("ExtractEmbedSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

// firstElement parses an HTML fragment and returns its first element node.
func firstElement(t *testing.T, fragment string) *html.Node {
	t.Helper()

	tree, _, err := parseHTML(fragment)
	if err != nil {
		t.Fatalf("parseHTML(%q): %v", fragment, err)
	}

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tree)

	if found == nil {
		t.Fatalf("no element in fragment %q", fragment)
	}
	return found
}

// renderTree renders a parsed tree back to a string for assertions.
func renderTree(t *testing.T, tree *html.Node, isFragment bool) string {
	t.Helper()

	out, err := renderHTML(tree, isFragment)
	if err != nil {
		t.Fatalf("renderHTML: %v", err)
	}
	return out
}

// countSubstring counts non-overlapping occurrences of sub in s.
func countSubstring(s, sub string) int {
	return strings.Count(s, sub)
}
