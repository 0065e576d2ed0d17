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

// Package solc describes the Solidity frontend the code generator consumes
// output from.
package solc

import (
	"sync"

	"github.com/blang/semver"
)

// DefaultVersion is the frontend release the code generator is built against.
const DefaultVersion = "0.8.28"

// FirstPush0Version is the first release emitting PUSH0 by default.
var FirstPush0Version = semver.MustParse("0.8.20")

// Compiler is a Solidity frontend.
type Compiler struct {
	Version semver.Version
}

var (
	defaultOnce     sync.Once
	defaultCompiler *Compiler
)

// Default returns the default frontend. It is resolved once per process.
// Default 返回默认前端编译器，每个进程只解析一次。
func Default() *Compiler {
	defaultOnce.Do(func() {
		defaultCompiler = &Compiler{Version: semver.MustParse(DefaultVersion)}
	})
	return defaultCompiler
}

// SupportsPush0 reports whether the frontend targets an EVM with PUSH0.
func (c *Compiler) SupportsPush0() bool {
	return c.Version.GTE(FirstPush0Version)
}
