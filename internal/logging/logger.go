package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger provides optional verbose logging and lightweight timing helpers
// on top of a charmbracelet logger.
type Logger struct {
	l       *log.Logger
	Verbose bool
}

func New(writer io.Writer, verbose bool) Logger {
	l := log.NewWithOptions(writer, log.Options{ReportTimestamp: false})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return Logger{l: l, Verbose: verbose}
}

func (l Logger) Verbosef(format string, args ...any) {
	if l.l == nil || !l.Verbose {
		return
	}
	l.l.Debugf(format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}
