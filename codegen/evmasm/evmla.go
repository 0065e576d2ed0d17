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

package evmasm

import (
	"encoding/hex"
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/core/asm"
	"github.com/sunyihoo/solx/core/vm"
	"github.com/sunyihoo/solx/ir/evmla"
)

// 遗留汇编降级 (Legacy assembly lowering): 指令几乎一一对应到汇编项，
// 伪指令（tag、PUSH [$]、PUSHLIB 等）转换为标签、占位符或不可变量操作。

// Pseudo instructions of the legacy assembly.
const (
	instrTag             = "tag"
	instrPush            = "PUSH"
	instrPushTag         = "PUSH [tag]"
	instrPushDataOffset  = "PUSH [$]"
	instrPushDataSize    = "PUSH #[$]"
	instrPushData        = "PUSH data"
	instrPushLib         = "PUSHLIB"
	instrPushImmutable   = "PUSHIMMUTABLE"
	instrAssignImmutable = "ASSIGNIMMUTABLE"
	instrPushSize        = "PUSHSIZE"
	instrPushDeployAddr  = "PUSHDEPLOYADDRESS"
)

func tagLabel(value string) string { return "tag_" + value }

// evmlaOpcode returns the opcode of a plain instruction. Sized pushes are
// always spelled "PUSH" with a value.
func evmlaOpcode(name string) (vm.OpCode, bool) {
	op, ok := asm.ToBinary(name)
	if !ok || (op.IsPush() && op != vm.PUSH0) {
		return 0, false
	}
	return op, true
}

// declareEVMLA checks that every instruction is known and that every data
// reference can be resolved.
func declareEVMLA(a *evmla.Assembly) error {
	var errs *multierror.Error
	tags := make(map[string]struct{})
	for i, instr := range a.Code {
		fail := func(format string, args ...any) {
			errs = multierror.Append(errs, fmt.Errorf("instruction %d (%s): %s", i, instr.Name, fmt.Sprintf(format, args...)))
		}
		switch instr.Name {
		case instrTag:
			if _, ok := tags[instr.Arg()]; ok {
				fail("tag %q defined twice", instr.Arg())
			}
			tags[instr.Arg()] = struct{}{}
		case instrPush:
			if _, err := asm.ParseNumber("0x" + instr.Arg()); err != nil {
				fail("%v", err)
			}
		case instrPushDataOffset, instrPushDataSize:
			if _, err := a.DataSymbol(evmla.DataKey(instr.Arg())); err != nil {
				fail("%v", err)
			}
		case instrPushData:
			d, ok := a.Data[instr.Arg()]
			if !ok || d.Assembly != nil || d.Path != "" {
				fail("data entry %q is not a data blob", instr.Arg())
			} else if _, err := hex.DecodeString(d.Hash); err != nil {
				fail("data entry %q: %v", instr.Arg(), err)
			}
		case instrPushTag, instrPushLib, instrPushImmutable, instrAssignImmutable:
			if instr.Value == nil {
				fail("missing value")
			}
		case instrPushSize, instrPushDeployAddr:
		default:
			if _, ok := evmlaOpcode(instr.Name); !ok {
				fail("unknown instruction")
			}
		}
	}
	return errs.ErrorOrNil()
}

func (c *context) emitEVMLA(a *evmla.Assembly) error {
	blobs := make(map[string][]byte)
	for _, instr := range a.Code {
		switch instr.Name {
		case instrTag:
			c.emit(asm.Tag(tagLabel(instr.Arg())))
		case instrPushTag:
			c.emit(asm.PushTag(tagLabel(instr.Arg())))
		case instrPush:
			v, err := asm.ParseNumber("0x" + instr.Arg())
			if err != nil {
				return err
			}
			c.emit(asm.PushInt(v))
		case instrPushDataOffset, instrPushDataSize:
			symbol, err := a.DataSymbol(evmla.DataKey(instr.Arg()))
			if err != nil {
				return err
			}
			kind := codegen.RelocationDataOffset
			if instr.Name == instrPushDataSize {
				kind = codegen.RelocationDataSize
			}
			c.emit(asm.Item{Kind: asm.PushSymbol, Size: 4, Tag: string(kind), Name: symbol})
		case instrPushData:
			blob, err := hex.DecodeString(a.Data[instr.Arg()].Hash)
			if err != nil {
				return err
			}
			blobs[instr.Arg()] = blob
			c.emit(asm.PushTag(dataLabel(instr.Arg())))
		case instrPushLib:
			c.emit(asm.Item{Kind: asm.PushSymbol, Size: 20, Tag: string(codegen.RelocationLibrary), Name: instr.Arg()})
		case instrPushDeployAddr:
			c.emit(asm.Item{Kind: asm.PushSymbol, Size: 20, Tag: string(codegen.RelocationDeployAddress), Name: a.FullPath})
		case instrPushImmutable:
			c.emit(asm.Item{Kind: asm.PushImmutable, Name: instr.Arg()})
		case instrAssignImmutable:
			c.assignImmutable(instr.Arg())
		case instrPushSize:
			c.emit(asm.Item{Kind: asm.PushCodeSize})
		default:
			op, ok := evmlaOpcode(instr.Name)
			if !ok {
				return fmt.Errorf("unknown instruction %q", instr.Name)
			}
			c.emit(asm.Op(op))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(blobs)) {
		c.emit(asm.Item{Kind: asm.Mark, Name: dataLabel(key)}, asm.Item{Kind: asm.Data, Value: blobs[key]})
	}
	return nil
}
