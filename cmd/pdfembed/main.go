package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, inputs, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	if flags.version {
		fmt.Println("pdfembed " + Version)
		os.Exit(ExitSuccess)
	}

	logger := loggerFor(os.Stderr, flags.verbose, flags.quiet)

	// Configure GOMAXPROCS with conditional logging.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	if err := runExport(context.Background(), flags, inputs, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(exitCodeFor(err))
	}
}
