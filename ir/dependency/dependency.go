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

// Package dependency tracks the contracts a code segment may create or reference.
package dependency

import (
	"encoding/json"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// 依赖 (Dependencies): 一个代码段可能通过 dataoffset/datasize 引用的其它合约对象。
// 链接阶段需要这些标识符，把被引用对象的字节码嵌入到当前段中。

// Set holds the identifier of a code segment and the identifiers of the
// objects it references.
type Set struct {
	Identifier string
	Inner      mapset.Set[string]
}

// New creates an empty dependency set for the given segment identifier.
func New(identifier string) *Set {
	return &Set{
		Identifier: identifier,
		Inner:      mapset.NewThreadUnsafeSet[string](),
	}
}

// Push records a dependency. The segment itself is never recorded.
func (s *Set) Push(identifier string) {
	if identifier == s.Identifier {
		return
	}
	s.Inner.Add(identifier)
}

// Contains reports whether identifier is a dependency.
func (s *Set) Contains(identifier string) bool {
	return s.Inner.Contains(identifier)
}

// Sorted returns the dependencies in lexicographic order.
func (s *Set) Sorted() []string {
	return SortedSlice(s.Inner)
}

// Len returns the number of dependencies.
func (s *Set) Len() int {
	return s.Inner.Cardinality()
}

type setJSON struct {
	Identifier string   `json:"identifier"`
	Inner      []string `json:"inner"`
}

// MarshalJSON implements json.Marshaler.
func (s Set) MarshalJSON() ([]byte, error) {
	inner := []string{}
	if s.Inner != nil {
		inner = SortedSlice(s.Inner)
	}
	return json.Marshal(setJSON{Identifier: s.Identifier, Inner: inner})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Set) UnmarshalJSON(input []byte) error {
	var dec setJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	s.Identifier = dec.Identifier
	s.Inner = mapset.NewThreadUnsafeSet(dec.Inner...)
	return nil
}

// SortedSlice returns the members of a string set in lexicographic order.
// Every set that crosses a process or output boundary is serialized this way
// so that the output is deterministic.
func SortedSlice(set mapset.Set[string]) []string {
	if set == nil {
		return []string{}
	}
	out := set.ToSlice()
	slices.Sort(out)
	return out
}
