package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger writing to w at the given level.
// Timestamps are formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// loggerFor picks the log level from the verbosity flags.
// --quiet wins over --verbose.
func loggerFor(w io.Writer, verbose, quiet bool) *log.Logger {
	level := log.InfoLevel
	switch {
	case quiet:
		level = log.ErrorLevel
	case verbose:
		level = log.DebugLevel
	}
	return newLogger(w, level)
}
