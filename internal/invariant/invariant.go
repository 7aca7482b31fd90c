// Package invariant implements the internal consistency checks shared by the
// layout calculator and the descriptor builder.
//
// A failed check is a programming error: a broken capability table or an
// upstream construction bug, never bad input. Builds tagged imglayout_debug
// panic on the first failure; release builds log a warning through the
// package logger and carry on with the best-effort result.
package invariant

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger updates the logger used to report failed checks.
// Called from imglayout.SetLogger when the root logger changes.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Check reports whether cond holds. When it does not, the failure is
// handled according to the build mode and false is returned so callers can
// pick a fallback.
func Check(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	fail(fmt.Sprintf(format, args...))
	return false
}

// Failures returns the number of failed checks seen by this process.
func Failures() uint64 {
	return failures.Load()
}

var failures atomic.Uint64
