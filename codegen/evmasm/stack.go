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
	"slices"

	"github.com/sunyihoo/solx/core/asm"
	"github.com/sunyihoo/solx/core/vm"
)

// 栈模型 (Stack model): 记录每个栈槽中保存的变量名（匿名临时值为空字符串），
// 以便通过 DUPn/SWAPn 访问变量。EVM 只能访问栈顶 16 个元素。

// maxStackReach is the deepest slot DUPn and SWAPn can reach.
const maxStackReach = 16

// stack models the EVM stack of the code being generated.
type stack struct {
	ctx   *context
	slots []string // bottom first; anonymous values are ""
}

func (s *stack) height() int { return len(s.slots) }

func (s *stack) push(name string) { s.slots = append(s.slots, name) }

func (s *stack) pushN(n int) {
	for range n {
		s.push("")
	}
}

func (s *stack) drop(n int) { s.slots = s.slots[:len(s.slots)-n] }

// lookup returns the index of the innermost slot holding the variable.
func (s *stack) lookup(name string) (int, bool) {
	for i := len(s.slots) - 1; i >= 0; i-- {
		if s.slots[i] == name {
			return i, true
		}
	}
	return 0, false
}

// dup pushes a copy of slot i.
func (s *stack) dup(i int) {
	depth := len(s.slots) - i
	if depth > maxStackReach {
		s.ctx.errorf("stack too deep: %q is %d slots deep", s.slots[i], depth)
		depth = maxStackReach
	}
	s.ctx.emit(asm.Op(vm.DupN(depth)))
	s.push("")
}

// swap exchanges the top slot with slot i.
func (s *stack) swap(i int) {
	top := len(s.slots) - 1
	if i == top {
		return
	}
	depth := top - i
	if depth > maxStackReach {
		s.ctx.errorf("stack too deep: %q is %d slots deep", s.slots[i], depth+1)
		depth = maxStackReach
	}
	s.ctx.emit(asm.Op(vm.SwapN(depth)))
	s.slots[i], s.slots[top] = s.slots[top], s.slots[i]
}

// pop discards the top slot.
func (s *stack) pop() {
	s.ctx.emit(asm.Op(vm.POP))
	s.drop(1)
}

// popTo discards slots until the stack is n slots high.
func (s *stack) popTo(n int) {
	for len(s.slots) > n {
		s.pop()
	}
}

// emitPops emits the pops unwinding the stack to n slots without changing
// the model, for jumps out of a scope.
func (s *stack) emitPops(n int) {
	for range len(s.slots) - n {
		s.ctx.emit(asm.Op(vm.POP))
	}
}

// store moves the top slot into slot i, consuming it.
func (s *stack) store(i int) {
	s.swap(i)
	s.slots[i], s.slots[len(s.slots)-1] = s.slots[len(s.slots)-1], s.slots[i]
	s.pop()
}

// shuffle removes the slots above base not named in target and orders the
// remaining ones as target, bottom first. Every name of target must be on
// the stack above base exactly once.
func (s *stack) shuffle(base int, target []string) {
	for {
		i := -1
		for j := len(s.slots) - 1; j >= base; j-- {
			if !slices.Contains(target, s.slots[j]) {
				i = j
				break
			}
		}
		if i < 0 {
			break
		}
		s.swap(i)
		s.pop()
	}
	for p, name := range target {
		pos := base + p
		if s.slots[pos] == name {
			continue
		}
		cur := slices.Index(s.slots[pos:], name) + pos
		s.swap(cur)
		s.swap(pos)
	}
}
