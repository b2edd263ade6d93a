package main

import (
	"errors"
	"os"

	pdfembed "github.com/alnah/go-pdfembed"
	"github.com/alnah/go-pdfembed/internal/config"
)

// Exit codes for the pdfembed CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful export
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, pdfembed.ErrBrowserConnect) ||
		errors.Is(err, pdfembed.ErrPageCreate) ||
		errors.Is(err, pdfembed.ErrPageLoad) ||
		errors.Is(err, pdfembed.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, pdfembed.ErrScratchRoot) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, pdfembed.ErrEmptyMarkdown) ||
		errors.Is(err, pdfembed.ErrInvalidScale) ||
		errors.Is(err, pdfembed.ErrInvalidImageType) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
