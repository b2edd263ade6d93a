package pdfembed

import (
	"context"
	"fmt"
	"time"
)

// defaultTimeout bounds a single browser render.
const defaultTimeout = 2 * time.Minute

// Service orchestrates the note-to-PDF export pipeline:
// markdown -> HTML -> PDF embed substitution -> PDF.
type Service struct {
	cfg           serviceConfig
	vault         Vault
	htmlConverter htmlConverter
	pdfConverter  pdfConverter
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithVault, WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg:           serviceConfig{timeout: defaultTimeout},
		htmlConverter: newGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if s.pdfConverter == nil {
		s.pdfConverter = newRodConverter(s.cfg.timeout)
	}

	return s
}

// WithTimeout sets the browser render timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cfg.timeout = d
		}
	}
}

// WithVault enables PDF embed substitution, resolving embed references
// against v. Without a vault, embeds pass through untouched.
func WithVault(v Vault) Option {
	return func(s *Service) {
		s.vault = v
	}
}

// Convert runs the full pipeline and returns the PDF as bytes
// (or the intermediate HTML when input.HTMLOnly is set).
// The context is used for cancellation and timeout.
func (s *Service) Convert(ctx context.Context, input Input) ([]byte, error) {
	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}
	if err := input.Render.Validate(); err != nil {
		return nil, err
	}

	htmlContent, err := s.htmlConverter.ToHTML(ctx, input.Markdown)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	if s.vault != nil {
		htmlContent, err = s.replaceEmbeds(ctx, htmlContent, input)
		if err != nil {
			return nil, fmt.Errorf("replacing embeds: %w", err)
		}
	}

	if input.HTMLOnly {
		return []byte(htmlContent), nil
	}

	pdfBytes, err := s.pdfConverter.ToPDF(ctx, htmlContent)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	return pdfBytes, nil
}

// replaceEmbeds brackets one embed-substitution run with its scratch
// directory. The scratch files only need to outlive the data-URL encoding,
// so the directory is removed before returning.
func (s *Service) replaceEmbeds(ctx context.Context, htmlContent string, input Input) (string, error) {
	replacer, err := NewReplacer(s.vault, input.Render)
	if err != nil {
		return "", err
	}

	scratchDir, err := CreateScratchRoot()
	if err != nil {
		return "", err
	}
	defer RemoveAll(scratchDir)

	return replacer.ReplaceEmbedsHTML(ctx, htmlContent, input.SourcePath, scratchDir)
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.pdfConverter != nil {
		return s.pdfConverter.Close()
	}
	return nil
}
