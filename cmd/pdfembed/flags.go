package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// exportFlags holds all flags for the export command.
type exportFlags struct {
	config      string
	vault       string
	output      string
	scale       float64
	imageType   string
	concurrency int
	workers     int
	timeout     string
	htmlOnly    bool
	verbose     bool
	quiet       bool
	version     bool
}

const usageText = `Usage: pdfembed [flags] <note.md> [note.md ...]

Exports markdown notes to PDF, replacing PDF embeds like ![[doc.pdf#page=2]]
with rasterized page images.

Flags:
%s`

// parseFlags parses command-line arguments into flags and positional args.
func parseFlags(args []string) (*exportFlags, []string, error) {
	flags := &exportFlags{}

	fs := flag.NewFlagSet("pdfembed", flag.ContinueOnError)
	fs.StringVarP(&flags.config, "config", "c", "", "YAML config file")
	fs.StringVar(&flags.vault, "vault", "", "vault root directory (default: input file's directory)")
	fs.StringVarP(&flags.output, "out", "o", "", "output directory (default: alongside input)")
	fs.Float64Var(&flags.scale, "scale", 0, "render scale multiplier (default 1.5)")
	fs.StringVar(&flags.imageType, "image-type", "", "page image encoding: jpeg or png (default jpeg)")
	fs.IntVar(&flags.concurrency, "concurrency", 0, "max simultaneous page renders (default 3)")
	fs.IntVarP(&flags.workers, "workers", "w", 0, "browser pool size (default: auto)")
	fs.StringVarP(&flags.timeout, "timeout", "t", "", "browser render timeout, e.g. 2m")
	fs.BoolVar(&flags.htmlOnly, "html-only", false, "write HTML instead of PDF")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	fs.BoolVarP(&flags.quiet, "quiet", "q", false, "errors only")
	fs.BoolVar(&flags.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), usageText, fs.FlagUsages())
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}

	return flags, fs.Args(), nil
}
