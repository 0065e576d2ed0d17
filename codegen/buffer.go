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

package codegen

import (
	"maps"
	"slices"
)

// Immutables maps immutable variable names to the offsets of their 32 byte
// placeholders in the runtime bytecode.
// 不可变量映射：变量名 -> 运行时字节码中 32 字节占位符的偏移量，部署代码据此回填。
type Immutables map[string][]uint64

// Names returns the immutable names, sorted.
func (im Immutables) Names() []string {
	return slices.Sorted(maps.Keys(im))
}

// Count returns the total number of placeholders.
func (im Immutables) Count() int {
	n := 0
	for _, offsets := range im {
		n += len(offsets)
	}
	return n
}

// RelocationKind is the kind of value a relocation is patched with.
type RelocationKind string

const (
	RelocationDataOffset    RelocationKind = "dataoffset"
	RelocationDataSize      RelocationKind = "datasize"
	RelocationLibrary       RelocationKind = "library"
	RelocationDeployAddress RelocationKind = "deployaddress"
)

// Relocation is a placeholder in the bytecode left for the linker.
type Relocation struct {
	Offset uint64         `json:"offset"`
	Size   int            `json:"size"`
	Kind   RelocationKind `json:"kind"`
	Symbol string         `json:"symbol"`
}

// Buffer is the output of a finalized generation context.
type Buffer struct {
	Bytecode    []byte
	Immutables  Immutables
	Relocations []Relocation
}

// ExtractImmutables returns a copy of the immutable placement map.
func (b *Buffer) ExtractImmutables() Immutables {
	out := make(Immutables, len(b.Immutables))
	for name, offsets := range b.Immutables {
		out[name] = slices.Clone(offsets)
	}
	return out
}
