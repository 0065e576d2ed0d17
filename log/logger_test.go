package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTimeTermFormat(t *testing.T) {
	b := bytes.NewBufferString("")
	writeTimeTermFormat(b, time.Date(2024, 3, 7, 9, 5, 1, 42_000_000, time.UTC))
	assert.Equal(t, "03-07|09:05:01.042", b.String())
}

func TestTerminalHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewHandler(FormatTerminal, out, LevelInfo, false))
	l.Debug("hidden")
	l.Info("Compiled contract", "contract", "a.sol:A", "size", 1234567)

	line := out.String()
	require.Equal(t, 1, strings.Count(line, "\n"))
	assert.True(t, strings.HasPrefix(line, "INFO ["))
	assert.Contains(t, line, "log/logger_test.go:")
	assert.Contains(t, line, "contract=a.sol:A")
	assert.Contains(t, line, "size=1,234,567")
}

func TestOddAttributes(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewHandler(FormatLogfmt, out, LevelTrace, false))
	l.Warn("odd", "key")
	assert.Contains(t, out.String(), "LOG_ERROR=")
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewHandler(FormatJSON, out, LevelDebug, false))
	l.Trace("hidden")
	l.Debug("Spawned worker", "path", "a.sol:A", "size", big.NewInt(42))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "debug", rec["lvl"])
	assert.Equal(t, "Spawned worker", rec["msg"])
	assert.Equal(t, "a.sol:A", rec["path"])
	assert.Equal(t, "42", rec["size"])
	assert.Contains(t, rec, "t")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTerminal, "terminal": FormatTerminal, "json": FormatJSON, "logfmt": FormatLogfmt} {
		f, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, f)
	}
	_, err := ParseFormat("yaml")
	assert.EqualError(t, err, "unknown log format: yaml")
}

func TestSetDefault(t *testing.T) {
	prev := Root()
	t.Cleanup(func() { SetDefault(prev) })

	out := new(bytes.Buffer)
	SetDefault(NewLogger(NewHandler(FormatLogfmt, out, LevelInfo, false)))
	New("path", "a.sol:A").Info("compiled")
	Debug("hidden")
	assert.Contains(t, out.String(), "path=a.sol:A")
	assert.NotContains(t, out.String(), "hidden")
}

func TestGlogVerbosity(t *testing.T) {
	out := new(bytes.Buffer)
	h := NewGlogHandler(NewTerminalHandler(out, false))
	h.Verbosity(FromLegacyLevel(3))
	l := NewLogger(h)

	l.Debug("debug")
	assert.Empty(t, out.String())
	l.Info("info")
	assert.Contains(t, out.String(), "info")

	require.NoError(t, h.Vmodule("logger_test.go=5"))
	l.Trace("traced")
	assert.Contains(t, out.String(), "traced")

	assert.ErrorIs(t, h.Vmodule("logger_test.go"), errVmoduleSyntax)
	assert.ErrorIs(t, h.Vmodule("a=b"), errVmoduleSyntax)
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}

func TestFormatSlogValue(t *testing.T) {
	big1, _ := new(big.Int).SetString("-123456789012345678901234567890", 10)
	tests := []struct {
		value any
		want  string
	}{
		{uint256.NewInt(100), "100"},
		{new(uint256.Int).Lsh(uint256.NewInt(1), 100), "1,267,650,600,228,229,401,496,703,205,376"},
		{big1, "-123,456,789,012,345,678,901,234,567,890"},
		{(*big.Int)(nil), "<nil>"},
		{"with space", `"with space"`},
	}
	for _, test := range tests {
		got := string(FormatSlogValue(slog.AnyValue(test.value), nil))
		assert.Equal(t, test.want, got)
	}
}

func TestCompileVmoduleRule(t *testing.T) {
	tests := []struct {
		rule, file string
		match      bool
	}{
		{"compile.go", "/src/solx/project/contract/compile.go", true},
		{"compile.go", "/src/solx/project/contract/xcompile.go", false},
		{"evmasm", "/src/solx/codegen/evmasm/backend.go", true},
		{"evmasm", "/src/solx/codegen/evmasm/sub/backend.go", false},
		{"codegen/*", "/src/solx/codegen/evmasm/sub/backend.go", true},
		{"codegen/*", "/src/solx/process/process.go", false},
	}
	for _, test := range tests {
		got := compileVmoduleRule(test.rule).MatchString(test.file)
		assert.Equal(t, test.match, got, "%s ~ %s", test.rule, test.file)
	}
}
