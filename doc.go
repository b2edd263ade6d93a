// Package pdfembed replaces PDF embed references in a rendered document
// tree with rasterized images of the referenced pages, so a downstream
// HTML-to-PDF exporter never has to understand nested documents.
//
// # Quick Start
//
// Point a Replacer at a vault directory and run it over a document tree:
//
//	vault, err := pdfembed.NewDirVault("/path/to/vault")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scratch, err := pdfembed.CreateScratchRoot()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pdfembed.RemoveAll(scratch)
//
//	replacer, err := pdfembed.NewReplacer(vault, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := replacer.ReplaceEmbedsHTML(ctx, htmlContent, "notes/weekly.md", scratch)
//
// Embed nodes (iframe, embed, object, and spans with an internal-embed
// class) whose source looks like "doc.pdf#page=2" are substituted in place
// by img elements carrying a self-contained data URL. Nodes that cannot be
// resolved or rendered are left untouched; a bad embedded document never
// aborts the run.
//
// # Rendering
//
// Pages are rasterized with go-fitz (MuPDF) at Scale times their native
// dimensions and encoded as JPEG or PNG. Embeds addressing the same
// (document, page, scale, type) render exactly once per run, and at most
// RenderOptions.Concurrency renders execute simultaneously.
//
// # Export Pipeline
//
// Service wires the substitution into a complete markdown-to-PDF exporter
// (Goldmark, then embed substitution, then headless Chrome via go-rod):
//
//	svc := pdfembed.New(pdfembed.WithVault(vault))
//	defer svc.Close()
//
//	pdf, err := svc.Convert(ctx, pdfembed.Input{
//	    Markdown:   content,
//	    SourcePath: "notes/weekly.md",
//	})
//
// For batch conversion, use ServicePool to manage multiple browser
// instances:
//
//	pool := pdfembed.NewServicePool(4, pdfembed.WithVault(vault))
//	defer pool.Close()
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
//
// # Requirements
//
// Page rasterization needs MuPDF via CGo (go-fitz). PDF generation requires
// Chrome/Chromium; go-rod downloads a managed Chromium on first run. For
// containers and CI, set ROD_BROWSER_BIN to a preinstalled binary.
package pdfembed
