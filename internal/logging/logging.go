// Package logging constructs the structured logger threaded through every
// component of the server. It is a thin wrapper over charm.land/log/v2 so
// callers depend on a small interface instead of the concrete logger type.
package logging

import (
	"io"
	"os"

	charmlog "charm.land/log/v2"
	"github.com/mattn/go-isatty"
)

// Logger is the subset of charmlog.Logger every component depends on.
// Keeping it narrow lets tests substitute a no-op implementation without
// pulling in the real sink.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
	With(keyvals ...interface{}) *charmlog.Logger
}

// New builds the process-wide logger writing to w. When w is a terminal
// (checked with go-isatty, as the teacher's CLI surface does) the logger
// renders in the friendly colored form; otherwise it emits logfmt, which is
// what an editor's output channel or a log file expects.
func New(w io.Writer, name string) *charmlog.Logger {
	opts := charmlog.Options{
		ReportTimestamp: true,
		Prefix:          name,
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		opts.Formatter = charmlog.TextFormatter
	} else {
		opts.Formatter = charmlog.LogfmtFormatter
	}
	return charmlog.NewWithOptions(w, opts)
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{})
}
