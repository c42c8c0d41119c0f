// Package log is a small verbosity-driven wrapper around log/slog used by the
// CLI. Output goes to stderr so the report and summary on stdout stay clean.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Level is a verbosity level selected with repeated -v flags.
type Level int

const (
	LevelQuiet Level = iota // warnings and errors only
	LevelInfo               // -v: queries, discarded issues, counts
	LevelDebug              // -vv: API calls, cache hits
	LevelTrace              // -vvv: request level detail
)

const slogLevelTrace = slog.Level(-8)

var (
	verbosity  Level
	logger     *slog.Logger
	output     io.Writer
	inProgress bool
)

// Initialize sets up the global logger for the given verbosity.
func Initialize(level Level, w io.Writer) {
	verbosity = level
	output = w

	var slogLevel slog.Level
	switch {
	case level >= LevelTrace:
		slogLevel = slogLevelTrace
	case level >= LevelDebug:
		slogLevel = slog.LevelDebug
	case level >= LevelInfo:
		slogLevel = slog.LevelInfo
	default:
		slogLevel = slog.LevelWarn
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       slogLevel,
		ReplaceAttr: replaceAttr,
	}))
}

// replaceAttr drops timestamps below debug level; a batch run reads better
// without them.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && verbosity < LevelDebug {
		return slog.Attr{}
	}
	if a.Key == slog.LevelKey && a.Value.Any() == slogLevelTrace {
		return slog.String(slog.LevelKey, "TRACE")
	}
	return a
}

// Info logs at info level (-v).
func Info(msg string, args ...any) {
	if Enabled(LevelInfo) {
		clearProgress()
		logger.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv).
func Debug(msg string, args ...any) {
	if Enabled(LevelDebug) {
		clearProgress()
		logger.Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv).
func Trace(msg string, args ...any) {
	if Enabled(LevelTrace) {
		clearProgress()
		logger.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn always logs.
func Warn(msg string, args ...any) {
	clearProgress()
	logger.Warn(msg, args...)
}

// Error always logs.
func Error(msg string, args ...any) {
	clearProgress()
	logger.Error(msg, args...)
}

// Progress rewrites the current terminal line. Shown from info level up.
func Progress(format string, args ...any) {
	if Enabled(LevelInfo) {
		inProgress = true
		_, _ = fmt.Fprintf(output, "\r"+format, args...)
	}
}

// ProgressDone terminates a progress line.
func ProgressDone() {
	if Enabled(LevelInfo) && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// clearProgress moves past a pending progress line before a log record.
func clearProgress() {
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

// Enabled reports whether messages at level are emitted.
func Enabled(level Level) bool {
	return verbosity >= level
}

// Verbosity returns the configured verbosity.
func Verbosity() Level {
	return verbosity
}

func init() {
	Initialize(LevelQuiet, os.Stderr)
}
