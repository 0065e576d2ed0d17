package log

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

const (
	timeFormat     = "2006-01-02T15:04:05-0700"
	termTimeFormat = "01-02|15:04:05.000"
	termMsgJust    = 40 // 存在属性时，消息字段对齐的宽度
	termMaxPadding = 40 // 属性值对齐的最大填充宽度
)

var spaces = []byte(strings.Repeat(" ", max(termMsgJust, termMaxPadding)))

// TerminalStringer is implemented by values that have a shorter rendering for
// the console than their String method, e.g. abbreviated hashes.
type TerminalStringer interface {
	TerminalString() string
}

var levelColors = map[slog.Level]string{
	LevelCrit:  "\x1b[35m",
	LevelError: "\x1b[31m",
	LevelWarn:  "\x1b[33m",
	LevelInfo:  "\x1b[32m",
	LevelDebug: "\x1b[36m",
	LevelTrace: "\x1b[34m",
}

func (h *TerminalHandler) format(buf []byte, r slog.Record, usecolor bool) []byte {
	color := ""
	if usecolor {
		color = levelColors[r.Level]
	}
	b := bytes.NewBuffer(buf)

	level := LevelAlignedString(r.Level)
	if color != "" {
		level = color + level + "\x1b[0m"
	}
	msg := escapeMessage(r.Message)
	b.WriteString(level)
	b.WriteByte('[')
	writeTimeTermFormat(b, r.Time)
	fmt.Fprintf(b, "] %s %s", h.Source(r).String(), msg)

	if r.NumAttrs()+len(h.attrs) > 0 && len(msg) < termMsgJust {
		b.Write(spaces[:termMsgJust-len(msg)])
	}
	h.formatAttributes(b, r, color)
	return b.Bytes()
}

// formatAttributes writes " key=value" pairs and the final newline. Every
// value but the last is padded to the widest value seen for its key.
func (h *TerminalHandler) formatAttributes(buf *bytes.Buffer, r slog.Record, color string) {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	for i, attr := range attrs {
		buf.WriteByte(' ')
		key := appendEscapeString(nil, attr.Key)
		if color != "" {
			buf.WriteString(color)
			buf.Write(key)
			buf.WriteString("\x1b[0m")
		} else {
			buf.Write(key)
		}
		buf.WriteByte('=')

		val := FormatSlogValue(attr.Value, buf.AvailableBuffer())
		width := utf8.RuneCount(val)
		pad := h.fieldPadding[attr.Key]
		if pad < width && width <= termMaxPadding {
			pad = width
			h.fieldPadding[attr.Key] = pad
		}
		buf.Write(val)
		if i < len(attrs)-1 && pad > width {
			buf.Write(spaces[:pad-width])
		}
	}
	buf.WriteByte('\n')
}

// FormatSlogValue renders v for the terminal, appending to tmp. Integers of
// six digits or more get thousand separators.
// FormatSlogValue 格式化 slog.Value 以便输出到终端，大整数带千位分隔符。
func FormatSlogValue(v slog.Value, tmp []byte) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendEscapeString(tmp, v.String())
	case slog.KindInt64:
		return appendGrouped(tmp, strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return appendGrouped(tmp, strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return strconv.AppendFloat(tmp, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(tmp, v.Bool())
	case slog.KindTime:
		return v.Time().AppendFormat(tmp, timeFormat)
	case slog.KindDuration:
		return appendEscapeString(tmp, v.Duration().String())
	}

	value := v.Any()
	if value == nil {
		return append(tmp, "<nil>"...)
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return append(tmp, "<nil>"...)
	}
	switch value := value.(type) {
	case *big.Int:
		return appendGrouped(tmp, value.String())
	case *uint256.Int:
		return appendGrouped(tmp, value.Dec())
	case error:
		return appendEscapeString(tmp, value.Error())
	case TerminalStringer:
		return appendEscapeString(tmp, value.TerminalString())
	case fmt.Stringer:
		return appendEscapeString(tmp, value.String())
	}
	return appendEscapeString(tmp, fmt.Sprintf("%+v", value))
}

// appendGrouped appends the decimal string dec, inserting a comma every three
// digits when it has more than five.
func appendGrouped(dst []byte, dec string) []byte {
	digits := strings.TrimPrefix(dec, "-")
	if len(digits) <= 5 {
		return append(dst, dec...)
	}
	if len(digits) != len(dec) {
		dst = append(dst, '-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	dst = append(dst, digits[:lead]...)
	for i := lead; i < len(digits); i += 3 {
		dst = append(dst, ',')
		dst = append(dst, digits[i:i+3]...)
	}
	return dst
}

// appendEscapeString appends s, quoted if it contains a space or '=' and
// Go-escaped if it contains control, quote or non-ASCII characters.
func appendEscapeString(dst []byte, s string) []byte {
	quote := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '=':
			quote = true
		case r <= '"' || r > '~':
			return strconv.AppendQuote(dst, s)
		}
	}
	if quote {
		dst = append(dst, '"')
		dst = append(dst, s...)
		return append(dst, '"')
	}
	return append(dst, s...)
}

// escapeMessage quotes a log message only if it holds control characters
// other than CR, LF and TAB, non-ASCII, or '='. Spaces are fine.
func escapeMessage(s string) string {
	for _, r := range s {
		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < ' ' || r > '~' || r == '=' {
			return strconv.Quote(s)
		}
	}
	return s
}

// trimSourcePath keeps the last two path elements of a source file,
// e.g. "contract/compile.go".
func trimSourcePath(file string) string {
	if i := strings.LastIndexByte(file, '/'); i > 0 {
		if j := strings.LastIndexByte(file[:i], '/'); j >= 0 {
			return file[j+1:]
		}
	}
	return file
}

// writeTimeTermFormat writes t as "MM-DD|HH:MM:SS.mmm".
func writeTimeTermFormat(buf *bytes.Buffer, t time.Time) {
	buf.Write(t.AppendFormat(buf.AvailableBuffer(), termTimeFormat))
}
