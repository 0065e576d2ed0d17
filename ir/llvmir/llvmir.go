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

// Package llvmir carries LLVM IR modules handed over by a frontend. The code
// generator accepts them on the wire but does not compile them.
package llvmir

// LLVMIR is a textual LLVM IR module.
type LLVMIR struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// New wraps an LLVM IR module read from path.
func New(path, source string) *LLVMIR {
	return &LLVMIR{Path: path, Source: source}
}
