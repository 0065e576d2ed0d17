package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

// Format selects how records are rendered.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatJSON     Format = "json"
	FormatLogfmt   Format = "logfmt"
)

// ParseFormat maps a --log.format value to a Format. The empty string means
// terminal output.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatTerminal, nil
	case FormatTerminal, FormatJSON, FormatLogfmt:
		return f, nil
	}
	return "", fmt.Errorf("unknown log format: %v", s)
}

// NewHandler builds a handler for the given format writing records at or
// above lvl to wr. Colors only apply to terminal output.
func NewHandler(f Format, wr io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(wr, &slog.HandlerOptions{ReplaceAttr: replaceJSON, Level: lvl})
	case FormatLogfmt:
		return slog.NewTextHandler(wr, &slog.HandlerOptions{ReplaceAttr: replaceLogfmt, Level: lvl})
	}
	return &TerminalHandler{wr: wr, lvl: lvl, useColor: useColor, fieldPadding: make(map[string]int)}
}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler { return discardHandler{} }

type discardHandler struct{}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }

// TerminalHandler renders records for a human reading stderr:
//
//	INFO [10-17|09:12:01.731] project/contract/compile.go:88 Compiled contract contract=a.sol:A
//
// Attribute values are padded to the widest value seen per key so that
// consecutive lines about the same contracts line up.
// 面向终端的处理器，按键对齐属性值。
type TerminalHandler struct {
	mu           sync.Mutex
	wr           io.Writer
	lvl          slog.Level
	useColor     bool
	attrs        []slog.Attr
	fieldPadding map[string]int

	buf []byte
}

// NewTerminalHandler returns a terminal handler that lets every level through;
// filtering is left to a wrapping GlogHandler.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewHandler(FormatTerminal, wr, levelMaxVerbosity, useColor).(*TerminalHandler)
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf = h.format(h.buf[:0], r, h.useColor)
	_, err := h.wr.Write(h.buf)
	return err
}

// Source returns file:line of the call site, ":0" if the record has none.
func (h *TerminalHandler) Source(r slog.Record) slog.Value {
	if r.PC == 0 {
		return slog.StringValue(":0")
	}
	f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	return slog.StringValue(fmt.Sprintf("%s:%d", trimSourcePath(f.File), f.Line))
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

// WithGroup flattens groups: attributes keep their own keys.
func (h *TerminalHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:           h.wr,
		lvl:          h.lvl,
		useColor:     h.useColor,
		attrs:        append(append([]slog.Attr{}, h.attrs...), attrs...),
		fieldPadding: make(map[string]int),
	}
}

func replaceLogfmt(_ []string, attr slog.Attr) slog.Attr { return replaceAttr(attr, true) }

func replaceJSON(_ []string, attr slog.Attr) slog.Attr { return replaceAttr(attr, false) }

// replaceAttr shortens the time and level keys and renders numbers and
// Stringers as plain strings. Nil pointers print as "<nil>".
func replaceAttr(attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() != slog.KindTime {
			break
		}
		if logfmt {
			return slog.String("t", attr.Value.Time().Format(timeFormat))
		}
		return slog.Attr{Key: "t", Value: attr.Value}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
	}

	var s string
	switch v := attr.Value.Any().(type) {
	case time.Time:
		if !logfmt {
			return attr
		}
		s = v.Format(timeFormat)
	case *big.Int:
		s = nilOr(v == nil, v.String)
	case *uint256.Int:
		s = nilOr(v == nil, v.Dec)
	case fmt.Stringer:
		if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
			s = "<nil>"
		} else {
			s = v.String()
		}
	default:
		return attr
	}
	attr.Value = slog.StringValue(s)
	return attr
}

func nilOr(isNil bool, str func() string) string {
	if isNil {
		return "<nil>"
	}
	return str()
}
