package log

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// errVmoduleSyntax is returned when a --log.vmodule rule is malformed.
var errVmoduleSyntax = errors.New("expect comma-separated list of filename=N")

// dropLevel is above every real level: call sites matching no rule get it.
const dropLevel = LevelCrit + 1

// GlogHandler filters records by a global verbosity that individual source
// files or packages can raise, in the manner of glog's -vmodule. The level
// a call site resolves to is cached by program counter.
// GlogHandler 在全局级别之上按源文件模式提升日志级别。
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32
	override atomic.Bool // any vmodule rules installed

	lock      sync.RWMutex
	rules     []vmoduleRule
	siteCache map[uintptr]slog.Level
}

type vmoduleRule struct {
	file  *regexp.Regexp
	level slog.Level
}

// NewGlogHandler wraps h. Until Verbosity is called only LevelInfo (the zero
// level) and above pass.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	return &GlogHandler{origin: h, siteCache: make(map[uintptr]slog.Level)}
}

// Verbosity sets the global level.
func (h *GlogHandler) Verbosity(level slog.Level) {
	h.level.Store(int32(level))
}

// Vmodule installs per-file overrides. Rules are comma separated
// pattern=N pairs with N a --verbosity number:
//
//	compile.go=5     every file named compile.go
//	evmasm=4         every file of a package whose path ends in evmasm
//	codegen/*=4      every file below a codegen directory
//
// Later rules win when several match. An empty ruleset removes all overrides.
func (h *GlogHandler) Vmodule(ruleset string) error {
	rules, err := parseVmodule(ruleset)
	if err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.rules = rules
	h.siteCache = make(map[uintptr]slog.Level)
	h.override.Store(len(rules) != 0)
	return nil
}

func parseVmodule(ruleset string) ([]vmoduleRule, error) {
	var rules []vmoduleRule
	for _, rule := range strings.Split(ruleset, ",") {
		if rule == "" {
			continue
		}
		name, lvl, ok := strings.Cut(rule, "=")
		name, lvl = strings.TrimSpace(name), strings.TrimSpace(lvl)
		if !ok || name == "" || lvl == "" || strings.Contains(lvl, "=") {
			return nil, errVmoduleSyntax
		}
		n, err := strconv.Atoi(lvl)
		if err != nil {
			return nil, errVmoduleSyntax
		}
		level := FromLegacyLevel(n)
		if level == LevelCrit {
			// Crit always passes the global filter.
			continue
		}
		rules = append(rules, vmoduleRule{compileVmoduleRule(name), level})
	}
	return rules, nil
}

// compileVmoduleRule turns a slash separated file pattern into a regexp
// anchored at the end of a source path. "*" components match any number of
// directories; a pattern without .go suffix names a package directory.
func compileVmoduleRule(name string) *regexp.Regexp {
	var re strings.Builder
	re.WriteString(".*")
	for _, comp := range strings.Split(name, "/") {
		switch comp {
		case "":
		case "*":
			re.WriteString("(/.*)?")
		default:
			re.WriteString("/" + regexp.QuoteMeta(comp))
		}
	}
	if !strings.HasSuffix(name, ".go") {
		re.WriteString(`/[^/]+\.go`)
	}
	re.WriteString("$")
	return regexp.MustCompile(re.String())
}

func (h *GlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.override.Load() || slog.Level(h.level.Load()) <= lvl
}

func (h *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(h.origin.WithAttrs(attrs))
}

func (h *GlogHandler) WithGroup(name string) slog.Handler {
	return h.derive(h.origin.WithGroup(name))
}

// derive copies the filter state onto a handler wrapping origin.
func (h *GlogHandler) derive(origin slog.Handler) *GlogHandler {
	h.lock.RLock()
	res := &GlogHandler{
		origin:    origin,
		rules:     slices.Clone(h.rules),
		siteCache: maps.Clone(h.siteCache),
	}
	h.lock.RUnlock()
	res.level.Store(h.level.Load())
	res.override.Store(h.override.Load())
	return res
}

func (h *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if slog.Level(h.level.Load()) <= r.Level || h.siteLevel(r.PC) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	return nil
}

// siteLevel resolves the vmodule level of the call site at pc.
func (h *GlogHandler) siteLevel(pc uintptr) slog.Level {
	h.lock.RLock()
	lvl, ok := h.siteCache[pc]
	h.lock.RUnlock()
	if ok {
		return lvl
	}

	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	lvl = dropLevel
	h.lock.Lock()
	defer h.lock.Unlock()
	for _, rule := range h.rules {
		if rule.file.MatchString(frame.File) {
			lvl = rule.level
		}
	}
	h.siteCache[pc] = lvl
	return lvl
}
