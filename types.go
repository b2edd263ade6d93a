package pdfembed

import (
	"fmt"
	"strings"
	"time"
)

// ImageType identifies an output encoding for rendered pages.
type ImageType string

// Supported output encodings.
const (
	// ImageTypeJPEG is the default: small output, good for page scans.
	ImageTypeJPEG ImageType = "jpeg"

	// ImageTypePNG is lossless, preferred for line art and text-heavy pages.
	ImageTypePNG ImageType = "png"
)

// jpegQuality is the encoder quality for lossy output (out of 100).
const jpegQuality = 90

// MIME returns the MIME type for data URLs.
func (t ImageType) MIME() string {
	switch t {
	case ImageTypePNG:
		return "image/png"
	default:
		return "image/jpeg"
	}
}

// Ext returns the file extension including the dot.
func (t ImageType) Ext() string {
	switch t {
	case ImageTypePNG:
		return ".png"
	default:
		return ".jpg"
	}
}

// isValidImageType checks if t is a known encoding (case-insensitive).
func isValidImageType(t ImageType) bool {
	switch ImageType(strings.ToLower(string(t))) {
	case ImageTypeJPEG, ImageTypePNG:
		return true
	}
	return false
}

// Render option bounds and defaults.
const (
	MinScale     = 0.1
	MaxScale     = 10.0
	DefaultScale = 1.5

	// DefaultConcurrency bounds simultaneous page renders; MuPDF holds the
	// full decoded document in memory per render.
	DefaultConcurrency = 3
)

// RenderOptions configures page rasterization and scheduling.
type RenderOptions struct {
	Scale       float64   // linear multiplier on native page dimensions
	ImageType   ImageType // output encoding
	Concurrency int       // max simultaneous renders, clamped to >= 1
}

// DefaultRenderOptions returns options with default values.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		Scale:       DefaultScale,
		ImageType:   ImageTypeJPEG,
		Concurrency: DefaultConcurrency,
	}
}

// Validate checks that render options are valid.
// Zero-valued fields mean "use the default" and always pass: a nil receiver,
// a zero Scale and an empty ImageType are all filled in by normalized.
func (o *RenderOptions) Validate() error {
	if o == nil {
		return nil
	}

	if o.Scale != 0 && (o.Scale < MinScale || o.Scale > MaxScale) {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidScale, o.Scale, MinScale, MaxScale)
	}

	if o.ImageType != "" && !isValidImageType(o.ImageType) {
		return fmt.Errorf("%w: %q", ErrInvalidImageType, o.ImageType)
	}

	return nil
}

// normalized returns a copy with defaults applied for zero fields.
func (o *RenderOptions) normalized() RenderOptions {
	out := RenderOptions{
		Scale:       DefaultScale,
		ImageType:   ImageTypeJPEG,
		Concurrency: DefaultConcurrency,
	}
	if o == nil {
		return out
	}
	if o.Scale > 0 {
		out.Scale = o.Scale
	}
	if o.ImageType != "" {
		out.ImageType = ImageType(strings.ToLower(string(o.ImageType)))
	}
	if o.Concurrency > 0 {
		out.Concurrency = o.Concurrency
	}
	if out.Concurrency < 1 {
		out.Concurrency = 1
	}
	return out
}

// RenderResult is the outcome of rasterizing one document page.
type RenderResult struct {
	// DataURL is a self-contained image representation usable directly
	// as an img element's src, without further host lookup.
	DataURL string

	// ScratchFile is the path of the persisted copy inside the run's
	// scratch directory. Owned by the scratch lifecycle, not the caller.
	ScratchFile string
}

// Input contains conversion parameters for Service.Convert.
type Input struct {
	Markdown   string         // Markdown content (required)
	SourcePath string         // vault-relative path of the note, for link resolution
	Render     *RenderOptions // render settings (optional, nil = defaults)
	HTMLOnly   bool           // skip PDF generation, return the HTML bytes
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
}
