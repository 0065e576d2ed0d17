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
	"github.com/blang/semver"
	"github.com/sunyihoo/solx/solc/standardjson"
)

// Code is the segment view handed to a context: a *yul.Object or an
// *evmla.Assembly.
type Code any

// YulData is the segment-shared data of the Yul pipeline.
type YulData struct {
	// IdentifierPaths maps Yul object identifiers to contract paths.
	IdentifierPaths map[string]string
}

// Resolve returns the contract path of a Yul object identifier, or the
// identifier itself when it is unknown.
func (d *YulData) Resolve(identifier string) string {
	if d != nil {
		if path, ok := d.IdentifierPaths[identifier]; ok {
			return path
		}
	}
	return identifier
}

// EVMLAData is the segment-shared data of the legacy assembly pipeline.
type EVMLAData struct {
	// Version is the frontend version the assembly was produced by.
	Version semver.Version
}

// SolidityData is the data the deploy code needs from the runtime code.
type SolidityData struct {
	Immutables Immutables
}

// ContextConfig holds the settings shared by all contexts of a compilation.
type ContextConfig struct {
	Optimizer   OptimizerSettings
	LLVMOptions []string
	Debug       *DebugConfig
}

// Backend creates generation contexts.
type Backend interface {
	// NewContext creates an isolated context generating one segment of the
	// named module.
	NewContext(module string, segment CodeSegment, cfg *ContextConfig) Context
	// Shutdown releases the global state of the backend. It is called once
	// per process, after the last context is built.
	Shutdown()
}

// Context generates the code of one segment. The methods are called in
// order: the Set*Data setters, Declare, Emit and finally Build.
// Context 生成单个代码段：先 Declare 注册符号，再 Emit 生成代码，最后 Build 得到字节码。
type Context interface {
	Segment() CodeSegment
	SetYulData(YulData)
	SetEVMLAData(EVMLAData)
	SetSolidityData(SolidityData)

	// Declare registers the symbols of the code. It fails on malformed IR.
	Declare(code Code) error
	// Emit generates the code.
	Emit(code Code) error
	// Build finalizes the context. Generator diagnostics are returned
	// alongside the buffer instead of failing the build.
	Build() (*Buffer, []*standardjson.Error)
}
