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

// Package ir defines the intermediate representations a contract can be
// handed to the code generator in.
package ir

import (
	"encoding/json"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/solx/ir/evmla"
	"github.com/sunyihoo/solx/ir/llvmir"
	"github.com/sunyihoo/solx/ir/yul"
)

// IR is one of *yul.Yul, *evmla.EVMLA or *llvmir.LLVMIR. The set of variants
// is closed: the From constructors are the only way to build one.
// IR 是三种中间表示之一，变体集合是封闭的。
type IR interface {
	isIR()
}

type (
	yulIR    struct{ *yul.Yul }
	evmlaIR  struct{ *evmla.EVMLA }
	llvmirIR struct{ *llvmir.LLVMIR }
)

func (yulIR) isIR()    {}
func (evmlaIR) isIR()  {}
func (llvmirIR) isIR() {}

// FromYul wraps a Yul object tree.
func FromYul(y *yul.Yul) IR { return yulIR{y} }

// FromEVMLA wraps a legacy assembly.
func FromEVMLA(e *evmla.EVMLA) IR { return evmlaIR{e} }

// FromLLVMIR wraps an LLVM IR module.
func FromLLVMIR(l *llvmir.LLVMIR) IR { return llvmirIR{l} }

// Visitor receives the variant held by an IR.
type Visitor[T any] struct {
	Yul    func(*yul.Yul) T
	EVMLA  func(*evmla.EVMLA) T
	LLVMIR func(*llvmir.LLVMIR) T
}

// Match calls the visitor function of the variant held by ir.
func Match[T any](ir IR, v Visitor[T]) T {
	switch ir := ir.(type) {
	case yulIR:
		return v.Yul(ir.Yul)
	case evmlaIR:
		return v.EVMLA(ir.EVMLA)
	case llvmirIR:
		return v.LLVMIR(ir.LLVMIR)
	}
	panic(fmt.Sprintf("unknown IR variant %T", ir))
}

// Yul returns the Yul variant, if held.
func Yul(ir IR) (*yul.Yul, bool) {
	y, ok := ir.(yulIR)
	return y.Yul, ok
}

// EVMLA returns the EVMLA variant, if held.
func EVMLA(ir IR) (*evmla.EVMLA, bool) {
	e, ok := ir.(evmlaIR)
	return e.EVMLA, ok
}

// LLVMIR returns the LLVM IR variant, if held.
func LLVMIR(ir IR) (*llvmir.LLVMIR, bool) {
	l, ok := ir.(llvmirIR)
	return l.LLVMIR, ok
}

// DrainFactoryDependencies removes and returns the factory dependencies of
// the IR. LLVM IR has none.
func DrainFactoryDependencies(ir IR) mapset.Set[string] {
	return Match(ir, Visitor[mapset.Set[string]]{
		Yul:   (*yul.Yul).DrainFactoryDependencies,
		EVMLA: (*evmla.EVMLA).DrainFactoryDependencies,
		LLVMIR: func(*llvmir.LLVMIR) mapset.Set[string] {
			return mapset.NewThreadUnsafeSet[string]()
		},
	})
}

// UnlinkedLibraries returns the libraries the IR references. LLVM IR has none.
func UnlinkedLibraries(ir IR) mapset.Set[string] {
	return Match(ir, Visitor[mapset.Set[string]]{
		Yul:   (*yul.Yul).UnlinkedLibraries,
		EVMLA: (*evmla.EVMLA).UnlinkedLibraries,
		LLVMIR: func(*llvmir.LLVMIR) mapset.Set[string] {
			return mapset.NewThreadUnsafeSet[string]()
		},
	})
}

// Identifier returns the Yul object identifier, the assembly path or the
// LLVM IR module path.
func Identifier(ir IR) string {
	return Match(ir, Visitor[string]{
		Yul:    func(y *yul.Yul) string { return y.Object.Identifier },
		EVMLA:  func(e *evmla.EVMLA) string { return e.Assembly.FullPath },
		LLVMIR: func(l *llvmir.LLVMIR) string { return l.Path },
	})
}

var errVariant = errors.New("IR must hold exactly one of Yul, EVMLA, LLVMIR")

type irJSON struct {
	Yul    *yul.Yul       `json:"Yul,omitempty"`
	EVMLA  *evmla.EVMLA   `json:"EVMLA,omitempty"`
	LLVMIR *llvmir.LLVMIR `json:"LLVMIR,omitempty"`
}

// Marshal encodes an IR externally tagged, e.g. {"Yul": {...}}.
func Marshal(ir IR) ([]byte, error) {
	return json.Marshal(Match(ir, Visitor[irJSON]{
		Yul:    func(y *yul.Yul) irJSON { return irJSON{Yul: y} },
		EVMLA:  func(e *evmla.EVMLA) irJSON { return irJSON{EVMLA: e} },
		LLVMIR: func(l *llvmir.LLVMIR) irJSON { return irJSON{LLVMIR: l} },
	}))
}

// Unmarshal decodes an externally tagged IR.
func Unmarshal(input []byte) (IR, error) {
	var dec irJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return nil, err
	}
	var (
		set int
		ir  IR
	)
	if dec.Yul != nil {
		set, ir = set+1, FromYul(dec.Yul)
	}
	if dec.EVMLA != nil {
		set, ir = set+1, FromEVMLA(dec.EVMLA)
	}
	if dec.LLVMIR != nil {
		set, ir = set+1, FromLLVMIR(dec.LLVMIR)
	}
	if set != 1 {
		return nil, errVariant
	}
	if err := Validate(ir); err != nil {
		return nil, err
	}
	return ir, nil
}

// Validate checks that the variant carries its root: the Yul object or the
// EVMLA assembly. Everything downstream of decoding relies on it.
func Validate(ir IR) error {
	return Match(ir, Visitor[error]{
		Yul:    (*yul.Yul).Validate,
		EVMLA:  (*evmla.EVMLA).Validate,
		LLVMIR: func(*llvmir.LLVMIR) error { return nil },
	})
}
