// Copyright 2024 The solx Authors
// This file is part of the solx library.
//
// The solx library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The solx library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the solx library. If not, see <http://www.gnu.org/licenses/>.

// Package evmasm is a code generation backend lowering Yul and legacy
// assembly straight to EVM bytecode through the core/asm assembler.
package evmasm

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/core/asm"
	"github.com/sunyihoo/solx/core/vm"
	"github.com/sunyihoo/solx/ir/evmla"
	"github.com/sunyihoo/solx/ir/yul"
	"github.com/sunyihoo/solx/log"
	"github.com/sunyihoo/solx/solc"
	"github.com/sunyihoo/solx/solc/standardjson"
)

// Label widths. Optimized code pushes labels with two bytes unless the
// program is too large for them.
const (
	wideLabel   = 4
	narrowLabel = 2
)

var (
	errNotDeclared     = errors.New("code emitted without declaration")
	errAlreadyEmitted  = errors.New("code emitted twice")
	errUnsupportedCode = errors.New("unsupported code representation")
)

// Config tunes the generated code.
type Config struct {
	// Push0 allows the PUSH0 opcode in code generated from Yul. Legacy
	// assembly decides by the frontend version instead.
	Push0 bool
}

// DefaultConfig targets Shanghai and later.
var DefaultConfig = Config{Push0: true}

// Backend creates generation contexts.
type Backend struct {
	cfg      Config
	contexts atomic.Int64
	log      log.Logger
}

// New creates a backend.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg, log: log.New("backend", "evmasm")}
}

// NewContext implements codegen.Backend.
func (b *Backend) NewContext(module string, segment codegen.CodeSegment, cfg *codegen.ContextConfig) codegen.Context {
	b.contexts.Add(1)
	if cfg == nil {
		cfg = &codegen.ContextConfig{Optimizer: codegen.DefaultOptimizerSettings()}
	}
	b.log.Debug("Created generation context", "module", module, "segment", segment, "optimizer", cfg.Optimizer)
	return &context{
		backend: b,
		module:  module,
		segment: segment,
		cfg:     cfg,
	}
}

// Shutdown implements codegen.Backend.
func (b *Backend) Shutdown() {
	b.log.Debug("Backend shut down", "contexts", b.contexts.Load())
}

// Contexts returns the number of contexts created so far.
func (b *Backend) Contexts() int64 {
	return b.contexts.Load()
}

// context generates one segment.
type context struct {
	backend *Backend
	module  string
	segment codegen.CodeSegment
	cfg     *codegen.ContextConfig

	yulData      *codegen.YulData
	evmlaData    *codegen.EVMLAData
	solidityData *codegen.SolidityData

	declared codegen.Code
	emitted  bool
	push0    bool
	items    []asm.Item
	diags    []*standardjson.Error

	// Yul declarations.
	functions []*yul.FunctionDefinition
}

func (c *context) Segment() codegen.CodeSegment { return c.segment }

func (c *context) SetYulData(d codegen.YulData) { c.yulData = &d }

func (c *context) SetEVMLAData(d codegen.EVMLAData) { c.evmlaData = &d }

func (c *context) SetSolidityData(d codegen.SolidityData) { c.solidityData = &d }

// Declare implements codegen.Context.
func (c *context) Declare(code codegen.Code) error {
	var err error
	switch code := code.(type) {
	case *yul.Object:
		c.functions, err = declareYul(code)
	case *evmla.Assembly:
		err = declareEVMLA(code)
	default:
		return fmt.Errorf("%w: %T", errUnsupportedCode, code)
	}
	if err != nil {
		return err
	}
	c.declared = code
	return nil
}

// Emit implements codegen.Context.
func (c *context) Emit(code codegen.Code) error {
	if c.declared == nil || c.declared != code {
		return errNotDeclared
	}
	if c.emitted {
		return errAlreadyEmitted
	}
	c.emitted = true
	if c.cfg.Debug != nil {
		if err := c.cfg.Debug.DumpIR(c.module, c.segment, code); err != nil {
			c.warn("IR dump failed: %v", err)
		}
	}
	switch code := code.(type) {
	case *yul.Object:
		c.push0 = c.backend.cfg.Push0
		return c.emitYul(code)
	case *evmla.Assembly:
		c.push0 = c.evmlaData != nil && c.evmlaData.Version.GTE(solc.FirstPush0Version)
		return c.emitEVMLA(code)
	}
	return fmt.Errorf("%w: %T", errUnsupportedCode, code)
}

// Build implements codegen.Context.
func (c *context) Build() (*codegen.Buffer, []*standardjson.Error) {
	width := wideLabel
	if c.cfg.Optimizer.IsOptimized() {
		width = narrowLabel
	}
	comp := c.assemble(width)
	if width == narrowLabel && comp.Len() > 0xffff {
		comp = c.assemble(wideLabel)
	}
	bytecode, errs := comp.Compile()
	for _, err := range errs {
		c.errorf("%v", err)
	}
	buffer := &codegen.Buffer{
		Bytecode:   bytecode,
		Immutables: make(codegen.Immutables),
	}
	for name, offsets := range comp.Immutables() {
		for _, offset := range offsets {
			buffer.Immutables[name] = append(buffer.Immutables[name], uint64(offset))
		}
	}
	for _, f := range comp.Fixups() {
		buffer.Relocations = append(buffer.Relocations, codegen.Relocation{
			Offset: uint64(f.Offset),
			Size:   f.Size,
			Kind:   codegen.RelocationKind(f.Tag),
			Symbol: f.Symbol,
		})
	}
	if c.cfg.Debug != nil {
		if err := c.cfg.Debug.DumpAssembly(c.module, c.segment, bytecode); err != nil {
			c.warn("assembly dump failed: %v", err)
		}
	}
	c.backend.log.Debug("Built segment", "module", c.module, "segment", c.segment, "size", len(bytecode), "immutables", buffer.Immutables.Count(), "errors", len(c.diags))
	return buffer, c.diags
}

func (c *context) assemble(labelWidth int) *asm.Compiler {
	comp := asm.NewCompiler(asm.Config{LabelWidth: labelWidth, Push0: c.push0})
	comp.Feed(c.items...)
	return comp
}

func (c *context) emit(items ...asm.Item) {
	c.items = append(c.items, items...)
}

// errorf records a non-fatal generator error.
func (c *context) errorf(format string, args ...any) {
	c.diags = append(c.diags, standardjson.NewError(fmt.Sprintf("%s: %s", c.module, fmt.Sprintf(format, args...)), nil))
}

// assignImmutable stores the value below the top of the stack at every
// placeholder of the immutable, relative to the memory offset on top of the
// stack, and consumes both.
func (c *context) assignImmutable(name string) {
	if c.solidityData == nil {
		c.errorf("immutable %q assigned outside of deploy code", name)
		c.emit(asm.Op(vm.POP), asm.Op(vm.POP))
		return
	}
	offsets := c.solidityData.Immutables[name]
	if len(offsets) == 0 {
		c.emit(asm.Op(vm.POP), asm.Op(vm.POP))
		return
	}
	for i, offset := range offsets {
		if i != len(offsets)-1 {
			c.emit(asm.Op(vm.DUP2), asm.Op(vm.DUP2))
		}
		c.emit(asm.PushUint64(offset), asm.Op(vm.ADD), asm.Op(vm.MSTORE))
	}
}

func (c *context) warn(format string, args ...any) {
	c.diags = append(c.diags, standardjson.NewWarning(fmt.Sprintf("%s: %s", c.module, fmt.Sprintf(format, args...)), nil))
}
