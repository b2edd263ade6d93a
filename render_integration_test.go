//go:build integration

package pdfembed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalPDF builds a valid two-page PDF from scratch, tracking byte offsets
// so the cross-reference table is correct.
func minimalPDF() []byte {
	var b strings.Builder
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	b.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>")
	obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return []byte(b.String())
}

func TestFitzRenderer_Render_Integration(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "doc.pdf"), minimalPDF(), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	vault, err := NewDirVault(root)
	if err != nil {
		t.Fatalf("NewDirVault: %v", err)
	}
	doc, ok := vault.LookupPath("doc.pdf")
	if !ok {
		t.Fatal("doc.pdf not indexed")
	}

	t.Run("renders a data URL and scratch file", func(t *testing.T) {
		t.Parallel()

		renderer := newFitzRenderer(RenderOptions{Scale: 1.5, ImageType: ImageTypeJPEG})
		scratchDir := t.TempDir()

		res, err := renderer.Render(context.Background(), vault, doc, 1, scratchDir)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		if !strings.HasPrefix(res.DataURL, "data:image/jpeg;base64,") {
			t.Errorf("DataURL prefix wrong: %.40s", res.DataURL)
		}
		info, err := os.Stat(res.ScratchFile)
		if err != nil {
			t.Fatalf("scratch file missing: %v", err)
		}
		if info.Size() == 0 {
			t.Error("scratch file is empty")
		}
		if filepath.Dir(res.ScratchFile) != scratchDir {
			t.Errorf("scratch file %q outside scratch dir %q", res.ScratchFile, scratchDir)
		}
	})

	t.Run("png output", func(t *testing.T) {
		t.Parallel()

		renderer := newFitzRenderer(RenderOptions{Scale: 1, ImageType: ImageTypePNG})
		res, err := renderer.Render(context.Background(), vault, doc, 1, t.TempDir())
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.HasPrefix(res.DataURL, "data:image/png;base64,") {
			t.Errorf("DataURL prefix wrong: %.40s", res.DataURL)
		}
		if !strings.HasSuffix(res.ScratchFile, ".png") {
			t.Errorf("scratch file extension wrong: %q", res.ScratchFile)
		}
	})

	t.Run("out of range page clamps instead of failing", func(t *testing.T) {
		t.Parallel()

		renderer := newFitzRenderer(RenderOptions{Scale: 1, ImageType: ImageTypeJPEG})
		if _, err := renderer.Render(context.Background(), vault, doc, 999, t.TempDir()); err != nil {
			t.Fatalf("Render page 999: %v", err)
		}
	})

	t.Run("garbage bytes fail with decode error", func(t *testing.T) {
		t.Parallel()

		badRoot := t.TempDir()
		if err := os.WriteFile(filepath.Join(badRoot, "bad.pdf"), []byte("not a pdf"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		badVault, err := NewDirVault(badRoot)
		if err != nil {
			t.Fatalf("NewDirVault: %v", err)
		}
		badDoc, _ := badVault.LookupPath("bad.pdf")

		renderer := newFitzRenderer(RenderOptions{Scale: 1, ImageType: ImageTypeJPEG})
		if _, err := renderer.Render(context.Background(), badVault, badDoc, 1, t.TempDir()); err == nil {
			t.Error("expected decode error for garbage bytes")
		}
	})
}

// TestReplacer_Integration exercises the full markdown-to-HTML substitution
// path against a real PDF rendered by MuPDF.
func TestReplacer_Integration(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "doc.pdf"), minimalPDF(), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	vault, err := NewDirVault(root)
	if err != nil {
		t.Fatalf("NewDirVault: %v", err)
	}

	service := New(WithVault(vault))
	defer service.Close()

	result, err := service.Convert(context.Background(), Input{
		Markdown:   "# Note\n\n![[doc.pdf#page=2]]",
		SourcePath: "note.md",
		HTMLOnly:   true,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	html := string(result)
	if !strings.Contains(html, `<img src="data:image/jpeg;base64,`) {
		t.Errorf("embed not replaced with data URL image:\n%.200s", html)
	}
	if strings.Contains(html, "internal-embed\" src=") {
		t.Errorf("unreplaced embed span remains:\n%.200s", html)
	}
}
