package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. It backs the default logger so the engine stays silent
// until the host application opts in.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the logger used by every engine package. Passing nil restores the
// silent default. Safe to call concurrently with logging.
//
// Levels used by the engine:
//   - slog.LevelDebug: variation compiles, cache hits, buffer allocations
//   - slog.LevelInfo: precache begin/end, technique library loads
//   - slog.LevelWarn: skipped precache records, failed hot reloads
//   - slog.LevelError: malformed technique passes, shader compile failures
//
// Parameters:
//   - l: the logger to install, or nil for the silent default
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the currently installed engine logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
