package pdfembed

import (
	"context"
	"sync"

	"golang.org/x/net/html"
)

// Replacer finds PDF embed references in a document tree and substitutes
// each with a rasterized image of the referenced page.
//
// Replacement is best-effort: a node whose reference cannot be resolved,
// decoded or rendered is left untouched, and the run as a whole still
// succeeds. Exporting a document must not abort because one embedded PDF
// is bad.
type Replacer struct {
	vault    Vault
	renderer pageRenderer
	opts     RenderOptions
}

// NewReplacer creates a Replacer reading documents from vault.
// Pass nil opts for defaults (scale 1.5, JPEG, concurrency 3).
func NewReplacer(vault Vault, opts *RenderOptions) (*Replacer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	normalized := opts.normalized()
	return &Replacer{
		vault:    vault,
		renderer: newFitzRenderer(normalized),
		opts:     normalized,
	}, nil
}

// ReplaceEmbeds substitutes all PDF embeds under tree in place.
//
// fromPath is the vault-relative location of the document being exported,
// used for relative link resolution. scratchDir receives one image file per
// distinct (document, page) render; create it with CreateScratchRoot and
// remove it with RemoveAll after the surrounding export completes.
//
// Embeds sharing a (document, page, scale, type) identity render exactly
// once and receive identical images. At most Concurrency renders execute
// simultaneously. The call returns only after every node has settled;
// no background work outlives it.
func (r *Replacer) ReplaceEmbeds(ctx context.Context, tree *html.Node, fromPath, scratchDir string) error {
	nodes := findEmbedNodes(tree)
	if len(nodes) == 0 {
		return nil
	}

	cache := newRenderCache()
	sem := newLimiter(r.opts.Concurrency)

	// html.Node is not safe for concurrent mutation; swaps serialize on treeMu.
	var treeMu sync.Mutex
	var wg sync.WaitGroup

	for _, node := range nodes {
		wg.Add(1)
		go func(n *html.Node) {
			defer wg.Done()
			r.replaceNode(ctx, n, fromPath, scratchDir, cache, sem, &treeMu)
		}(node)
	}
	wg.Wait()

	return ctx.Err()
}

// replaceNode handles one embed node end to end. Every failure path leaves
// the node unmodified.
func (r *Replacer) replaceNode(ctx context.Context, n *html.Node, fromPath, scratchDir string, cache *renderCache, sem limiter, treeMu *sync.Mutex) {
	source := ExtractEmbedSource(n)
	if source == "" || !LooksLikePDF(source) {
		return
	}

	parsed := ParseEmbedSource(source)
	doc, ok := Resolve(r.vault, parsed.LinkText, fromPath)
	if !ok {
		return
	}

	// The pending computation is registered before the render starts, so
	// nodes discovering the same key join it instead of rendering again.
	// Waiters on a shared key do not consume limiter slots.
	key := renderKey(doc.Path(), parsed.Page, r.opts)
	res, err := cache.do(ctx, key, func() (*RenderResult, error) {
		if err := sem.acquire(ctx); err != nil {
			return nil, err
		}
		defer sem.release()
		return r.renderer.Render(ctx, r.vault, doc, parsed.Page, scratchDir)
	})
	if err != nil {
		return
	}

	treeMu.Lock()
	replaceNode(n, buildImageNode(n, res.DataURL))
	treeMu.Unlock()
}

// ReplaceEmbedsHTML is the string-level convenience form of ReplaceEmbeds.
// It accepts both full documents and fragments and preserves which of the
// two it was given.
func (r *Replacer) ReplaceEmbedsHTML(ctx context.Context, htmlContent, fromPath, scratchDir string) (string, error) {
	tree, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	if err := r.ReplaceEmbeds(ctx, tree, fromPath, scratchDir); err != nil {
		return "", err
	}

	return renderHTML(tree, isFragment)
}
