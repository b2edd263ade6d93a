package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	pdfembed "github.com/alnah/go-pdfembed"
	"github.com/alnah/go-pdfembed/internal/config"
	"github.com/alnah/go-pdfembed/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter is the interface for the conversion service.
type Converter interface {
	Convert(ctx context.Context, input pdfembed.Input) ([]byte, error)
}

// Compile-time interface implementation check.
var _ Converter = (*pdfembed.Service)(nil)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire() Converter
	Release(Converter)
	Size() int
}

// servicePool adapts pdfembed.ServicePool to the Pool interface.
type servicePool struct {
	p *pdfembed.ServicePool
}

func (s servicePool) Acquire() Converter { return s.p.Acquire() }
func (s servicePool) Size() int          { return s.p.Size() }

func (s servicePool) Release(c Converter) {
	if svc, ok := c.(*pdfembed.Service); ok {
		s.p.Release(svc)
	}
}

// exportResult holds the outcome of a single conversion.
type exportResult struct {
	inputPath  string
	outputPath string
	err        error
	duration   time.Duration
}

// runExport orchestrates the export process.
func runExport(ctx context.Context, flags *exportFlags, inputs []string, logger *log.Logger) error {
	if len(inputs) == 0 {
		return ErrNoInput
	}
	if flags.workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, flags.workers)
	}

	// Load configuration; CLI flags win over config values.
	cfg := config.DefaultConfig()
	if flags.config != "" {
		loaded, err := config.LoadConfig(flags.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	mergeFlags(flags, cfg)

	for _, input := range inputs {
		if !isMarkdownPath(input) {
			return fmt.Errorf("%w: %s", ErrInvalidExtension, input)
		}
		if !fileutil.FileExists(input) {
			return fmt.Errorf("%w: %s: %s", ErrReadMarkdown, input, os.ErrNotExist)
		}
	}

	timeout, err := resolveTimeout(cfg.Export.Timeout)
	if err != nil {
		return err
	}

	vaultDir, err := resolveVaultDir(cfg.Vault.Dir, inputs[0])
	if err != nil {
		return err
	}
	logger.Debug("indexing vault", "dir", vaultDir)
	vault, err := pdfembed.NewDirVault(vaultDir)
	if err != nil {
		return fmt.Errorf("indexing vault: %w", err)
	}

	renderOpts := &pdfembed.RenderOptions{
		Scale:       cfg.Render.Scale,
		ImageType:   pdfembed.ImageType(cfg.Render.ImageType),
		Concurrency: cfg.Render.Concurrency,
	}
	if err := renderOpts.Validate(); err != nil {
		return err
	}

	opts := []pdfembed.Option{pdfembed.WithVault(vault)}
	if timeout > 0 {
		opts = append(opts, pdfembed.WithTimeout(timeout))
	}

	poolSize := pdfembed.ResolvePoolSize(cfg.Export.Workers)
	logger.Debug("pool sized", "workers", poolSize)
	pool := pdfembed.NewServicePool(poolSize, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing pool", "err", err)
		}
	}()

	return exportBatch(ctx, inputs, servicePool{pool}, vault, renderOpts, cfg, logger)
}

// exportBatch converts all inputs in parallel, bounded by the pool size.
// Per-file failures are logged; the first one is returned after all files
// have been attempted.
func exportBatch(ctx context.Context, inputs []string, pool Pool, vault *pdfembed.DirVault, renderOpts *pdfembed.RenderOptions, cfg *config.Config, logger *log.Logger) error {
	results := make([]exportResult, len(inputs))
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			svc := pool.Acquire()
			defer pool.Release(svc)
			results[i] = exportFile(ctx, svc, input, vault, renderOpts, cfg)
		}(i, input)
	}
	wg.Wait()

	var firstErr error
	for _, res := range results {
		if res.err != nil {
			logger.Error("export failed", "input", res.inputPath, "err", res.err)
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		logger.Info("exported", "input", res.inputPath, "output", res.outputPath, "took", res.duration.Round(time.Millisecond))
	}
	return firstErr
}

// exportFile converts a single markdown file.
func exportFile(ctx context.Context, svc Converter, inputPath string, vault *pdfembed.DirVault, renderOpts *pdfembed.RenderOptions, cfg *config.Config) exportResult {
	start := time.Now()
	res := exportResult{inputPath: inputPath}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		res.err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		return res
	}

	output, err := svc.Convert(ctx, pdfembed.Input{
		Markdown:   string(content),
		SourcePath: vaultRelPath(vault, inputPath),
		Render:     renderOpts,
		HTMLOnly:   cfg.Export.HTMLOnly,
	})
	if err != nil {
		res.err = err
		return res
	}

	outPath, err := outputPath(inputPath, cfg.Output.DefaultDir, cfg.Export.HTMLOnly)
	if err != nil {
		res.err = err
		return res
	}
	if err := os.WriteFile(outPath, output, filePermissions); err != nil {
		res.err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return res
	}

	res.outputPath = outPath
	res.duration = time.Since(start)
	return res
}

// mergeFlags overlays explicitly set CLI flags onto the config.
func mergeFlags(flags *exportFlags, cfg *config.Config) {
	if flags.vault != "" {
		cfg.Vault.Dir = flags.vault
	}
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.scale > 0 {
		cfg.Render.Scale = flags.scale
	}
	if flags.imageType != "" {
		cfg.Render.ImageType = flags.imageType
	}
	if flags.concurrency > 0 {
		cfg.Render.Concurrency = flags.concurrency
	}
	if flags.workers > 0 {
		cfg.Export.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Export.Timeout = flags.timeout
	}
	if flags.htmlOnly {
		cfg.Export.HTMLOnly = true
	}
}

// resolveTimeout parses the configured timeout, 0 meaning library default.
func resolveTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	return d, nil
}

// resolveVaultDir picks the vault root: explicit config/flag value, or the
// first input file's directory.
func resolveVaultDir(configured, firstInput string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	abs, err := filepath.Abs(firstInput)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}

// vaultRelPath returns inputPath relative to the vault root, for link
// resolution. Falls back to the bare file name for paths outside the vault.
func vaultRelPath(vault *pdfembed.DirVault, inputPath string) string {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return filepath.Base(inputPath)
	}
	rel, err := filepath.Rel(vault.Root(), abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(inputPath)
	}
	return filepath.ToSlash(rel)
}

// isMarkdownPath reports whether path has a markdown extension.
func isMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// outputPath derives the output file path from the input path.
func outputPath(inputPath, outDir string, htmlOnly bool) (string, error) {
	ext := ".pdf"
	if htmlOnly {
		ext = ".html"
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ext
	if outDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base), nil
	}

	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return filepath.Join(outDir, base), nil
}
