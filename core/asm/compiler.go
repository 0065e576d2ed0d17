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

package asm

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/sunyihoo/solx/core/vm"
)

// 标签 (Labels): 标记代码中的特定位置，作为跳转目标。labels 映射存储标签名称和它们在字节码中的偏移量。
// 不可变量 (Immutables): 运行时代码中以 PUSH32 占位的值，部署时按偏移量回填。
// 重定位 (Fixups): 数据段偏移/大小以及库地址的占位符，交给下游链接器回填。

// ItemKind enumerates the assembly items understood by the Compiler.
type ItemKind int

const (
	Operation     ItemKind = iota // plain opcode
	Push                          // PUSH of a constant value
	PushLabel                     // PUSH of a label position
	Label                         // label definition, emitted as JUMPDEST
	PushImmutable                 // PUSH32 placeholder of an immutable read
	PushSymbol                    // PUSH placeholder resolved by the linker
	PushCodeSize                  // PUSH of the size of the assembled program
	Data                          // raw bytes appended verbatim
	Mark                          // label definition without a JUMPDEST, e.g. for data
)

// Item is a single assembly item fed into the Compiler.
// Item 是输入编译器的单个汇编项。
type Item struct {
	Kind  ItemKind
	Op    vm.OpCode
	Value []byte // push constant (big-endian, minimal) or raw data
	Name  string // label, immutable or symbol name
	Size  int    // placeholder width for PushSymbol
	Tag   string // placeholder kind for PushSymbol
}

// Op creates an operation item.
func Op(op vm.OpCode) Item { return Item{Kind: Operation, Op: op} }

// PushInt creates a constant push item.
func PushInt(v *uint256.Int) Item {
	return Item{Kind: Push, Value: v.Bytes()}
}

// PushUint64 creates a constant push item.
func PushUint64(v uint64) Item {
	return PushInt(uint256.NewInt(v))
}

// PushBytes creates a constant push item from big-endian bytes.
func PushBytes(b []byte) Item {
	return Item{Kind: Push, Value: trimLeadingZeros(b)}
}

// PushTag creates a push of the position of the named label.
func PushTag(name string) Item { return Item{Kind: PushLabel, Name: name} }

// Tag creates a label definition.
func Tag(name string) Item { return Item{Kind: Label, Name: name} }

// Fixup is a placeholder left in the output for a later linking stage.
type Fixup struct {
	Offset int    // offset of the placeholder bytes (after the PUSH opcode)
	Size   int    // placeholder width in bytes
	Tag    string // placeholder kind, e.g. "dataoffset", "datasize", "library"
	Symbol string // referenced object or library
}

// Config tunes the output of the Compiler.
type Config struct {
	// LabelWidth is the number of bytes used to push label positions and the
	// program size. Defaults to 4.
	LabelWidth int
	// Push0 allows the PUSH0 opcode (Shanghai and later) for zero constants.
	Push0 bool
	// Debug prints every emitted byte to stderr.
	Debug bool
}

// Compiler contains information about the fed assembly items
// and holds the state of the program while it is assembled.
// Compiler 包含已输入汇编项的信息，并保存程序在汇编过程中的状态。
type Compiler struct {
	items []Item
	out   []byte

	labels     map[string]int
	immutables map[string][]int
	fixups     []Fixup
	errors     []error

	pc int

	cfg Config
}

// NewCompiler returns a new allocated compiler.
// NewCompiler 返回一个新的已分配的编译器。
func NewCompiler(cfg Config) *Compiler {
	if cfg.LabelWidth == 0 {
		cfg.LabelWidth = 4
	}
	return &Compiler{
		labels:     make(map[string]int),
		immutables: make(map[string][]int),
		cfg:        cfg,
	}
}

// Feed feeds items into the compiler.
//
// feed is the first pass in the compile stage as it collects the defined labels in the
// program and keeps a program counter which is used to determine the locations of the
// jump dests. Every item has a size known up front, so the labels can then be used in
// the second stage to push the right position.
// feed 是编译阶段的第一遍：收集标签并维护程序计数器，用于确定跳转目标的位置。
func (c *Compiler) Feed(items ...Item) {
	for _, i := range items {
		if i.Kind == Label || i.Kind == Mark {
			if _, exists := c.labels[i.Name]; exists {
				c.errors = append(c.errors, fmt.Errorf("label %q defined twice", i.Name))
			}
			c.labels[i.Name] = c.pc
		}
		c.pc += c.size(i)
		c.items = append(c.items, i)
	}
	if c.cfg.Debug {
		fmt.Fprintln(os.Stderr, "found", len(c.labels), "labels")
	}
}

// Len returns the size in bytes of the program fed so far.
func (c *Compiler) Len() int { return c.pc }

// size returns the number of bytes an item occupies in the output.
func (c *Compiler) size(i Item) int {
	switch i.Kind {
	case Operation, Label:
		return 1
	case Push:
		if len(i.Value) == 0 && c.cfg.Push0 {
			return 1
		}
		return 1 + max(len(i.Value), 1)
	case PushLabel, PushCodeSize:
		return 1 + c.cfg.LabelWidth
	case PushImmutable:
		return 33
	case PushSymbol:
		return 1 + i.Size
	case Data:
		return len(i.Value)
	case Mark:
		return 0
	}
	return 0
}

// Compile compiles the fed items and returns the EVM bytecode alongside all
// errors that were found. Errors do not stop the compilation: every problem
// is reported in one pass.
// Compile 编译所有输入项并返回字节码以及发现的全部错误。
func (c *Compiler) Compile() ([]byte, []error) {
	errs := c.errors
	c.out = make([]byte, 0, c.pc)
	for _, i := range c.items {
		if err := c.compileItem(i); err != nil {
			errs = append(errs, err)
		}
	}
	return c.out, errs
}

// Immutables returns the offsets of the immutable placeholders by name.
func (c *Compiler) Immutables() map[string][]int {
	return c.immutables
}

// Fixups returns the linker placeholders left in the output.
func (c *Compiler) Fixups() []Fixup {
	return c.fixups
}

func (c *Compiler) compileItem(i Item) error {
	switch i.Kind {
	case Operation:
		c.outputOpcode(i.Op)
	case Label:
		c.outputOpcode(vm.JUMPDEST)
	case Push:
		if len(i.Value) > 32 {
			return fmt.Errorf("push of %d bytes > 32 bytes", len(i.Value))
		}
		if len(i.Value) == 0 {
			if c.cfg.Push0 {
				c.outputOpcode(vm.PUSH0)
				return nil
			}
			c.outputOpcode(vm.PUSH1)
			c.outputBytes([]byte{0})
			return nil
		}
		// PUSH1 (0x60) to PUSH32 (0x7f)
		// The opcode is calculated based on the length of the value being pushed.
		c.outputOpcode(vm.PushN(len(i.Value)))
		c.outputBytes(i.Value)
	case PushLabel:
		pos, ok := c.labels[i.Name]
		if !ok {
			c.outputPadded(0)
			return fmt.Errorf("undefined label %q", i.Name)
		}
		return c.outputPadded(pos)
	case PushCodeSize:
		return c.outputPadded(c.pc)
	case PushImmutable:
		c.outputOpcode(vm.PUSH32)
		c.immutables[i.Name] = append(c.immutables[i.Name], len(c.out))
		c.outputBytes(make([]byte, 32))
	case PushSymbol:
		if i.Size < 1 || i.Size > 32 {
			return fmt.Errorf("invalid placeholder width %d for %q", i.Size, i.Name)
		}
		c.outputOpcode(vm.PushN(i.Size))
		c.fixups = append(c.fixups, Fixup{Offset: len(c.out), Size: i.Size, Tag: i.Tag, Symbol: i.Name})
		c.outputBytes(make([]byte, i.Size))
	case Data:
		c.outputBytes(i.Value)
	case Mark:
	default:
		return fmt.Errorf("unknown assembly item kind %d", i.Kind)
	}
	return nil
}

// outputPadded pushes a position with the configured label width.
func (c *Compiler) outputPadded(pos int) error {
	width := c.cfg.LabelWidth
	value := big.NewInt(int64(pos)).Bytes()
	c.outputOpcode(vm.PushN(width))
	if len(value) > width {
		c.outputBytes(make([]byte, width))
		return fmt.Errorf("position %d does not fit into %d bytes", pos, width)
	}
	c.outputBytes(append(make([]byte, width-len(value)), value...))
	return nil
}

func (c *Compiler) outputOpcode(op vm.OpCode) {
	if c.cfg.Debug {
		fmt.Fprintf(os.Stderr, "%d: %v\n", len(c.out), op)
	}
	c.out = append(c.out, byte(op))
}

// output pushes the value v to the binary stack.
func (c *Compiler) outputBytes(b []byte) {
	if c.cfg.Debug {
		fmt.Fprintf(os.Stderr, "%d: %x\n", len(c.out), b)
	}
	c.out = append(c.out, b...)
}

// ParseNumber parses a decimal or 0x-prefixed hexadecimal 256 bit number.
// ParseNumber 解析十进制或 0x 前缀的十六进制 256 位数字。
func ParseNumber(text string) (*uint256.Int, error) {
	base := 10
	digits := text
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base, digits = 16, text[2:]
	}
	if digits == "" {
		return nil, errors.New("invalid number")
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok || b.Sign() < 0 {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("number %q exceeds 256 bits", text)
	}
	return v, nil
}

// IsPush returns whether the string op is either any of
// push(N).
func IsPush(op string) bool {
	return strings.EqualFold(op, "PUSH")
}

// IsJump returns whether the string op is jump(i)
func IsJump(op string) bool {
	return strings.EqualFold(op, "JUMPI") || strings.EqualFold(op, "JUMP")
}

// ToBinary converts text to a vm.OpCode
// ToBinary 将文本转换为 vm.OpCode，第二个返回值表示名称是否已知。
func ToBinary(text string) (vm.OpCode, bool) {
	return vm.LookupOp(strings.ToUpper(text))
}

func trimLeadingZeros(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}
