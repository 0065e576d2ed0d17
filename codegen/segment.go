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

// Package codegen defines the contract between the contract compiler and a
// code generation backend: segments, generation contexts and their output.
package codegen

import "fmt"

// 代码段 (Code segment): 部署代码只在合约创建时执行一次，运行时代码服务之后的每次调用。

// CodeSegment is one of the two halves of a contract's bytecode.
type CodeSegment int

const (
	Deploy CodeSegment = iota
	Runtime
)

// String implements fmt.Stringer.
func (s CodeSegment) String() string {
	switch s {
	case Deploy:
		return "deploy"
	case Runtime:
		return "runtime"
	}
	return fmt.Sprintf("CodeSegment(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CodeSegment) MarshalText() ([]byte, error) {
	switch s {
	case Deploy, Runtime:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("invalid code segment %d", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CodeSegment) UnmarshalText(input []byte) error {
	switch string(input) {
	case "deploy":
		*s = Deploy
	case "runtime":
		*s = Runtime
	default:
		return fmt.Errorf("invalid code segment %q", input)
	}
	return nil
}
