package pdfembed

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrHTMLParse      = errors.New("HTML parsing failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page rendering errors, one per pipeline stage.
	ErrReadDocument   = errors.New("failed to read document bytes")
	ErrDecodeDocument = errors.New("failed to decode document")
	ErrRasterPage     = errors.New("failed to rasterize page")
	ErrEncodeImage    = errors.New("failed to encode page image")
	ErrWriteScratch   = errors.New("failed to write scratch file")

	// Render options validation errors.
	ErrInvalidScale     = errors.New("invalid render scale")
	ErrInvalidImageType = errors.New("invalid image type")

	// Scratch space errors.
	ErrScratchRoot = errors.New("failed to create scratch directory")
)
