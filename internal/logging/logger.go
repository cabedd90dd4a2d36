// Package logging holds the process-wide structured logger and the SQLite
// provenance log written next to archived snapshots.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// #region logger
// nopHandler discards every record. Enabled reports false so callers skip
// formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l for every livefig package. Nil restores silence.
//
// Levels in use:
//   - [slog.LevelDebug]: parameter changes, snapshot sizes, provenance rows
//   - [slog.LevelInfo]: archive commits, checkouts, server start
//   - [slog.LevelWarn]: rejected rpc calls, failed generations
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// #endregion logger

// #region setup
// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// "off" and "" disable logging and report ok=false.
func ParseLevel(s string) (level slog.Level, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return 0, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	}
	return 0, false, fmt.Errorf("parse log level: unknown level %q", s)
}

// Setup installs a text handler writing to w at the named level.
func Setup(w io.Writer, level string) error {
	lvl, ok, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if !ok {
		SetLogger(nil)
		return nil
	}
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// #endregion setup
