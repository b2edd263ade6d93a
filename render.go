package pdfembed

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// nativeDPI is the resolution at which a page renders at its native
// dimensions; Scale multiplies it.
const nativeDPI = 72

// pageRenderer abstracts page rasterization to enable testing without MuPDF.
type pageRenderer interface {
	Render(ctx context.Context, vault Vault, doc Document, page int, scratchDir string) (*RenderResult, error)
}

// Compile-time interface check.
var _ pageRenderer = (*fitzRenderer)(nil)

// fitzRenderer rasterizes PDF pages using go-fitz (MuPDF).
type fitzRenderer struct {
	scale     float64
	imageType ImageType
}

func newFitzRenderer(opts RenderOptions) *fitzRenderer {
	return &fitzRenderer{
		scale:     opts.Scale,
		imageType: opts.ImageType,
	}
}

// Render rasterizes one page of doc to an image, returning a data URL and
// persisting a copy into scratchDir.
//
// Out-of-range pages clamp to the nearest valid page: a stale page fragment
// should not abort an otherwise-valid embed. All MuPDF resources are
// released before returning, on every exit path.
func (r *fitzRenderer) Render(ctx context.Context, vault Vault, doc Document, page int, scratchDir string) (*RenderResult, error) {
	data, err := vault.ReadBytes(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadDocument, doc.Path(), err)
	}

	fdoc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeDocument, doc.Path(), err)
	}
	defer fdoc.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clamped := clampPage(page, fdoc.NumPage())

	// go-fitz pages are 0-based.
	img, err := fdoc.ImageDPI(clamped-1, nativeDPI*r.scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s page %d: %v", ErrRasterPage, doc.Path(), clamped, err)
	}

	encoded, err := encodeImage(img, r.imageType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s page %d: %v", ErrEncodeImage, doc.Path(), clamped, err)
	}

	dataURL := "data:" + r.imageType.MIME() + ";base64," + base64.StdEncoding.EncodeToString(encoded)

	scratchFile := filepath.Join(scratchDir, scratchFileName(doc.Path(), clamped, r.scale)+r.imageType.Ext())
	if err := os.WriteFile(scratchFile, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteScratch, err)
	}

	return &RenderResult{
		DataURL:     dataURL,
		ScratchFile: scratchFile,
	}, nil
}

// clampPage clamps a 1-based page request into [1, total].
func clampPage(page, total int) int {
	if total < 1 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// encodeImage serializes an image at the given type. JPEG uses a fixed
// quality factor; PNG is lossless.
func encodeImage(img image.Image, imageType ImageType) ([]byte, error) {
	var buf bytes.Buffer
	switch imageType {
	case ImageTypePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// scratchFileName derives a deterministic, collision-free file name (without
// extension) from the render identity. Characters outside a safe set are
// percent-encoded so repeated runs of the same document produce stable names.
func scratchFileName(documentPath string, page int, scale float64) string {
	return sanitizeScratchName(fmt.Sprintf("%s-p%d-s%g", documentPath, page, scale))
}

// sanitizeScratchName percent-encodes every byte outside [A-Za-z0-9._-].
func sanitizeScratchName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
