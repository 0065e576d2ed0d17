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

// Package asm assembles the instruction stream of the reference code generator
// into EVM bytecode and disassembles bytecode for debug listings.
package asm

import (
	"fmt"

	"github.com/sunyihoo/solx/core/vm"
)

// Instruction is one decoded opcode with its push immediate, if any.
type Instruction struct {
	PC  int
	Op  vm.OpCode
	Arg []byte // nil unless Op is PUSH1..PUSH32
}

func (in Instruction) String() string {
	if len(in.Arg) == 0 {
		return fmt.Sprintf("%05x: %v", in.PC, in.Op)
	}
	return fmt.Sprintf("%05x: %v %#x", in.PC, in.Op, in.Arg)
}

// Decode splits code into instructions. A push whose immediate runs past the
// end of code stops decoding; the instructions before it are returned along
// with the error.
// Decode 将字节码拆分为指令，遇到不完整的 PUSH 时返回已解码部分和错误。
func Decode(code []byte) ([]Instruction, error) {
	var instrs []Instruction
	for pc := 0; pc < len(code); {
		in := Instruction{PC: pc, Op: vm.OpCode(code[pc])}
		next := pc + 1 + in.Op.PushSize()
		if next > len(code) {
			return instrs, fmt.Errorf("incomplete instruction at %v", pc)
		}
		if next > pc+1 {
			in.Arg = code[pc+1 : next]
		}
		instrs = append(instrs, in)
		pc = next
	}
	return instrs, nil
}

// Disassemble renders code one instruction per line as "pc: OP [arg]".
func Disassemble(code []byte) ([]string, error) {
	instrs, err := Decode(code)
	lines := make([]string, len(instrs))
	for i, in := range instrs {
		lines[i] = in.String()
	}
	return lines, err
}
