package pdfembed

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// defaultImageStyle makes the substituted image fill its container width
// while preserving aspect ratio.
const defaultImageStyle = "width: 100%; height: auto;"

// embedClassMarkers identify span elements the host renderer emits for
// markdown-style embeds.
var embedClassMarkers = []string{"internal-embed", "markdown-embed"}

// findEmbedNodes collects all embed-like nodes in document order:
// iframe, embed and object elements, plus spans carrying an embed class.
func findEmbedNodes(root *html.Node) []*html.Node {
	var nodes []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if isEmbedNode(n) {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return nodes
}

// isEmbedNode reports whether n matches one of the embed selectors.
func isEmbedNode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "iframe", "embed", "object":
		return true
	case "span":
		classes := attrValue(n, "class")
		for _, marker := range embedClassMarkers {
			if hasClass(classes, marker) {
				return true
			}
		}
	}
	return false
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// hasClass reports whether the space-separated class list contains name.
func hasClass(classList, name string) bool {
	for _, c := range strings.Fields(classList) {
		if c == name {
			return true
		}
	}
	return false
}

// buildImageNode creates the img element that replaces an embed node.
// The class attribute is carried forward from the source node so caller
// styling hooks keep working on the substituted image.
func buildImageNode(sourceNode *html.Node, dataURL string) *html.Node {
	img := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "src", Val: dataURL},
			{Key: "style", Val: defaultImageStyle},
		},
	}
	if class := attrValue(sourceNode, "class"); class != "" {
		img.Attr = append(img.Attr, html.Attribute{Key: "class", Val: class})
	}
	return img
}

// replaceNode swaps old for replacement in the tree in a single step.
// No-op when old has no parent (already detached).
func replaceNode(old, replacement *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node and whether it was a fragment.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.TrimSpace(content)
	lower := strings.ToLower(trimmed)

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrHTMLParse, err)
		}
		return doc, false, nil
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", fmt.Errorf("%w: %v", ErrHTMLParse, err)
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}
	return buf.String(), nil
}
