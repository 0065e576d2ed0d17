package log

import (
	"log/slog"
	"sync/atomic"
)

// root is the process-wide logger. Until the CLI installs one with
// SetDefault every record is dropped, so a worker process started with
// --recursive-process stays silent unless it configures logging itself.
// 进程级日志记录器；在 SetDefault 之前丢弃所有记录。
var root atomic.Pointer[Logger]

func init() {
	var discard Logger = &logger{slog.New(DiscardHandler())}
	root.Store(&discard)
}

// SetDefault replaces the process-wide logger. When l is backed by slog it
// also becomes the slog default, so third-party packages logging through
// slog share the compiler's handler.
func SetDefault(l Logger) {
	root.Store(&l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the process-wide logger.
func Root() Logger {
	return *root.Load()
}

// New derives a logger from Root carrying the given key/value pairs, e.g.
//
//	log.New("path", "a.sol:A").Debug("segment compiled", "segment", "deploy")
func New(ctx ...interface{}) Logger {
	return Root().With(ctx...)
}

// The shortcuts below call Write directly instead of the Logger level
// methods so the caller frame sits at the same depth on every path.

func Debug(msg string, ctx ...interface{}) { Root().Write(LevelDebug, msg, ctx...) }

func Info(msg string, ctx ...interface{}) { Root().Write(LevelInfo, msg, ctx...) }

func Warn(msg string, ctx ...interface{}) { Root().Write(LevelWarn, msg, ctx...) }

func Error(msg string, ctx ...interface{}) { Root().Write(LevelError, msg, ctx...) }
