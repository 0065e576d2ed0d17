// Package log is a structured logger on top of log/slog. Records are written
// to stderr by default: the stdout of the compiler and of its worker processes
// carries JSON and must stay clean.
package log

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"time"
)

const errorKey = "LOG_ERROR"

// Levels beyond slog's built-in four. levelMaxVerbosity lets every record
// through.
const (
	levelMaxVerbosity slog.Level = math.MinInt
	LevelTrace        slog.Level = -8
	LevelDebug                   = slog.LevelDebug
	LevelInfo                    = slog.LevelInfo
	LevelWarn                    = slog.LevelWarn
	LevelError                   = slog.LevelError
	LevelCrit         slog.Level = 12
)

// verbosityLevels is indexed by the --verbosity value.
var verbosityLevels = []slog.Level{LevelCrit, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

// FromLegacyLevel converts a --verbosity number to a slog level, clamping
// values outside 0..5.
// 将 --verbosity 数值转换为 slog 级别，超出范围的值会被截断。
func FromLegacyLevel(lvl int) slog.Level {
	return verbosityLevels[max(0, min(lvl, len(verbosityLevels)-1))]
}

var levelNames = map[slog.Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelCrit:  "crit",
}

// LevelString returns the lower-case name of l, "unknown" for custom levels.
func LevelString(l slog.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// LevelAlignedString returns the upper-case name of l padded to five columns.
func LevelAlignedString(l slog.Level) string {
	name, ok := levelNames[l]
	if !ok {
		return "unknown level"
	}
	return fmt.Sprintf("%-5s", strings.ToUpper(name))
}

// Logger writes leveled records with key/value context. Loggers derived with
// With share the parent's handler and prepend its attributes.
// Logger 按级别写入带键值上下文的日志记录。
type Logger interface {
	With(ctx ...interface{}) Logger
	// New is an alias for With.
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})

	// Write emits a record at an arbitrary level.
	Write(level slog.Level, msg string, attrs ...any)

	Enabled(ctx context.Context, level slog.Level) bool
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger wraps h into a Logger.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) Handler() slog.Handler { return l.inner.Handler() }

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) With(ctx ...interface{}) Logger { return &logger{l.inner.With(ctx...)} }

func (l *logger) New(ctx ...interface{}) Logger { return l.With(ctx...) }

// Write records the call site two frames up: every exported entry point,
// package-level or method, calls Write directly.
func (l *logger) Write(level slog.Level, msg string, attrs ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pc [1]uintptr
	runtime.Callers(3, pc[:])

	if len(attrs)%2 != 0 {
		attrs = append(attrs, nil, errorKey, "Normalized odd number of arguments by adding nil")
	}
	r := slog.NewRecord(time.Now(), level, msg, pc[0])
	r.Add(attrs...)
	l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.Write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.Write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.Write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.Write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.Write(LevelError, msg, ctx...) }
