package pdfembed

import (
	"bytes"
	"context"
	"fmt"
	htmlutil "html"
	"net/url"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
</head>
<body>
%s
</body>
</html>`

// Wiki-style embed syntax ![[target]] is not CommonMark; it is converted to
// a placeholder before Goldmark runs (raw HTML would be escaped since
// WithUnsafe is off) and expanded to an embed span afterwards. The payload
// is query-escaped so it survives both Markdown and HTML escaping intact.
var (
	wikiEmbedPattern        = regexp.MustCompile(`!\[\[([^\[\]\n]+)\]\]`)
	embedPlaceholderPattern = regexp.MustCompile(`%%PDFEMBED:([A-Za-z0-9%._~*+-]+)%%`)
)

// htmlConverter abstracts Markdown to HTML conversion.
type htmlConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// goldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type goldmarkConverter struct {
	md goldmark.Markdown
}

// newGoldmarkConverter creates a goldmarkConverter with GFM extensions and
// syntax highlighting.
func newGoldmarkConverter() *goldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes for smaller HTML
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>
			html.WithXHTML(),     // Self-closing tags
			// Note: WithUnsafe() intentionally NOT used; embed spans are
			// emitted via the placeholder pass instead of raw HTML.
		),
	)
	return &goldmarkConverter{md: md}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *goldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content = convertWikiEmbeds(content)

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		page := fmt.Sprintf(htmlTemplate, buf.String())
		done <- result{html: expandEmbedPlaceholders(page)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// convertWikiEmbeds replaces ![[target]] with an opaque placeholder token.
func convertWikiEmbeds(content string) string {
	return wikiEmbedPattern.ReplaceAllStringFunc(content, func(m string) string {
		target := wikiEmbedPattern.FindStringSubmatch(m)[1]
		return "%%PDFEMBED:" + url.QueryEscape(target) + "%%"
	})
}

// expandEmbedPlaceholders converts placeholder tokens back into embed spans
// that the Replacer discovers.
func expandEmbedPlaceholders(htmlContent string) string {
	return embedPlaceholderPattern.ReplaceAllStringFunc(htmlContent, func(m string) string {
		payload := embedPlaceholderPattern.FindStringSubmatch(m)[1]
		target, err := url.QueryUnescape(payload)
		if err != nil {
			return m
		}
		return `<span class="internal-embed" src="` + htmlutil.EscapeString(target) + `"></span>`
	})
}
