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
	"os"
	"strings"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/common/hexutil"
	"github.com/sunyihoo/solx/ir/evmla"
	"github.com/sunyihoo/solx/ir/yul"
	"github.com/sunyihoo/solx/solc/standardjson"
)

var unoptimized = &codegen.ContextConfig{Optimizer: codegen.OptimizerSettings{Mode: "0"}}

func generate(t *testing.T, ctx codegen.Context, code codegen.Code) (*codegen.Buffer, []*standardjson.Error) {
	t.Helper()
	require.NoError(t, ctx.Declare(code))
	require.NoError(t, ctx.Emit(code))
	return ctx.Build()
}

func yulObject(id string, stmts ...yul.Statement) *yul.Object {
	return &yul.Object{Identifier: id, Code: yul.NewBlock(stmts...)}
}

func TestYulBuiltins(t *testing.T) {
	b := New(DefaultConfig)
	ctx := b.NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, yulObject("A_deployed",
		yul.Expr(yul.Call("mstore", yul.Num(64), yul.Num(128))),
	))
	assert.Empty(t, errs)
	assert.Equal(t, "608060405200", hex.EncodeToString(buf.Bytecode))
	assert.Equal(t, codegen.Runtime, ctx.Segment())
	assert.EqualValues(t, 1, b.Contexts())
}

func TestYulImmutables(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, yulObject("A_deployed",
		yul.Let(yul.Call("loadimmutable", yul.Str("x")), "a"),
		yul.Expr(yul.Call("sstore", yul.Num(0), yul.Id("a"))),
		yul.Expr(yul.Call("sstore", yul.Num(1), yul.Call("loadimmutable", yul.Str("x")))),
	))
	assert.Empty(t, errs)
	assert.Equal(t, codegen.Immutables{"x": {1, 37}}, buf.ExtractImmutables())
	assert.Len(t, buf.Bytecode, 74)
	assert.Equal(t, "805f55", hex.EncodeToString(buf.Bytecode[33:36]))
	assert.Equal(t, "60015550", hex.EncodeToString(buf.Bytecode[69:73]))
}

func TestYulSetImmutable(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Deploy, unoptimized)
	ctx.SetSolidityData(codegen.SolidityData{Immutables: codegen.Immutables{"x": {1, 37}}})
	buf, errs := generate(t, ctx, yulObject("A",
		yul.Expr(yul.Call("setimmutable", yul.Num(0), yul.Str("x"), yul.Num(42))),
	))
	assert.Empty(t, errs)
	assert.Equal(t, "602a5f8181600101526025015200", hex.EncodeToString(buf.Bytecode))
}

func TestYulSetImmutableInRuntime(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Runtime, unoptimized)
	_, errs := generate(t, ctx, yulObject("A_deployed",
		yul.Expr(yul.Call("setimmutable", yul.Num(0), yul.Str("x"), yul.Num(42))),
	))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "outside of deploy code")
}

func TestYulDataReferences(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Deploy, unoptimized)
	ctx.SetYulData(codegen.YulData{IdentifierPaths: map[string]string{"B_2": "b.sol:B"}})
	buf, errs := generate(t, ctx, yulObject("A",
		yul.Expr(yul.Call("datacopy", yul.Num(0), yul.Call("dataoffset", yul.Str("A_deployed")), yul.Call("datasize", yul.Str("A_deployed")))),
		yul.Expr(yul.Call("pop", yul.Call("datasize", yul.Str("B_2")))),
		yul.Expr(yul.Call("return", yul.Num(0), yul.Call("datasize", yul.Str("A_deployed")))),
	))
	assert.Empty(t, errs)
	assert.Equal(t, []codegen.Relocation{
		{Offset: 1, Size: 4, Kind: codegen.RelocationDataSize, Symbol: "A_deployed"},
		{Offset: 6, Size: 4, Kind: codegen.RelocationDataOffset, Symbol: "A_deployed"},
		{Offset: 13, Size: 4, Kind: codegen.RelocationDataSize, Symbol: "b.sol:B"},
		{Offset: 19, Size: 4, Kind: codegen.RelocationDataSize, Symbol: "A_deployed"},
	}, buf.Relocations)
	assert.Equal(t, "630000000063000000005f3963000000005063000000005ff300", hex.EncodeToString(buf.Bytecode))
}

func TestYulDataBlob(t *testing.T) {
	object := yulObject("A_deployed",
		yul.Expr(yul.Call("datacopy", yul.Num(0), yul.Call("dataoffset", yul.Str("meta")), yul.Call("datasize", yul.Str("meta")))),
	)
	object.Data = map[string]hexutil.Bytes{"meta": {0xaa, 0xbb}}
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, object)
	assert.Empty(t, errs)
	// PUSH1 2, PUSH4 data, PUSH0, CODECOPY, STOP, data
	assert.Equal(t, "6002630000000a5f3900aabb", hex.EncodeToString(buf.Bytecode))
}

func TestYulLinkerSymbol(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, yulObject("A_deployed",
		yul.Expr(yul.Call("pop", yul.Call("linkersymbol", yul.Str("l.sol:L")))),
	))
	assert.Empty(t, errs)
	assert.Equal(t, []codegen.Relocation{{Offset: 1, Size: 20, Kind: codegen.RelocationLibrary, Symbol: "l.sol:L"}}, buf.Relocations)
	assert.Equal(t, "73"+strings.Repeat("00", 20)+"5000", hex.EncodeToString(buf.Bytecode))
}

func TestYulFunctionCall(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, yulObject("A_deployed",
		&yul.FunctionDefinition{
			Name:       "f",
			Parameters: []string{"a", "b"},
			Returns:    []string{"r"},
			Body:       yul.NewBlock(yul.Set(yul.Call("add", yul.Id("a"), yul.Id("b")), "r")),
		},
		yul.Expr(yul.Call("sstore", yul.Num(0), yul.Call("f", yul.Num(1), yul.Num(2)))),
	))
	assert.Empty(t, errs)
	want := "630000000f" + "6002" + "6001" + "6300000013" + "56" + "5b" + "5f" + "55" + "00" +
		"5b" + "5f" + "82" + "82" + "01" + "90" + "50" + "5b" + "90" + "50" + "90" + "50" + "90" + "56"
	assert.Equal(t, want, hex.EncodeToString(buf.Bytecode))
}

func TestYulControlFlow(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, &codegen.ContextConfig{Optimizer: codegen.DefaultOptimizerSettings()})
	buf, errs := generate(t, ctx, yulObject("A_deployed",
		&yul.ForLoop{
			Pre:       yul.NewBlock(yul.Let(yul.Num(0), "i")),
			Condition: yul.Call("lt", yul.Id("i"), yul.Num(10)),
			Post:      yul.NewBlock(yul.Set(yul.Call("add", yul.Id("i"), yul.Num(1)), "i")),
			Body: yul.NewBlock(
				&yul.If{Condition: yul.Call("eq", yul.Id("i"), yul.Num(5)), Body: yul.NewBlock(&yul.Break{})},
				&yul.Switch{
					Expression: yul.Call("calldataload", yul.Num(0)),
					Cases: []*yul.Case{
						{Value: yul.Num(1), Body: yul.NewBlock(&yul.Continue{})},
						{Value: yul.Num(2), Body: yul.NewBlock(yul.Expr(yul.Call("sstore", yul.Id("i"), yul.Num(1))))},
					},
					Default: yul.NewBlock(yul.Let(yul.Num(7), "x"), yul.Expr(yul.Call("sstore", yul.Id("x"), yul.Id("i")))),
				},
			),
		},
	))
	assert.Empty(t, errs)
	assert.NotEmpty(t, buf.Bytecode)
	assert.Equal(t, byte(0x61), buf.Bytecode[7], "optimized code pushes labels with two bytes")
}

func TestYulStackTooDeep(t *testing.T) {
	params := make([]string, 17)
	for i := range params {
		params[i] = string(rune('a' + i))
	}
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	_, errs := generate(t, ctx, yulObject("A_deployed",
		&yul.FunctionDefinition{
			Name:       "deep",
			Parameters: params,
			Body:       yul.NewBlock(yul.Expr(yul.Call("sstore", yul.Num(0), yul.Id("q")))),
		},
	))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "stack too deep")
}

func TestYulDeclareErrors(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	code := yulObject("A_deployed",
		&yul.FunctionDefinition{Name: "f", Body: yul.NewBlock()},
		&yul.FunctionDefinition{Name: "f", Body: yul.NewBlock()},
		yul.Expr(yul.Call("nope")),
		yul.Expr(yul.Call("mstore", yul.Num(1))),
		yul.Expr(yul.Call("pop", yul.Call("datasize", yul.Id("x")))),
	)
	err := ctx.Declare(code)
	require.Error(t, err)
	for _, want := range []string{`"f" declared twice`, `undefined function "nope"`, `expects 2 arguments, got 1`, `must be a literal`} {
		assert.Contains(t, err.Error(), want)
	}
	assert.ErrorIs(t, ctx.Emit(code), errNotDeclared)
}

func TestYulUnsupportedBuiltin(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	_, errs := generate(t, ctx, yulObject("A_deployed",
		yul.Expr(yul.Call("verbatim_0i_0o", yul.Str("\x60\x00"))),
	))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "not supported")
}

func TestEmitTwice(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("m", codegen.Runtime, nil)
	code := yulObject("A_deployed")
	require.NoError(t, ctx.Declare(code))
	require.NoError(t, ctx.Emit(code))
	assert.ErrorIs(t, ctx.Emit(code), errAlreadyEmitted)
	assert.ErrorIs(t, ctx.Declare("text"), errUnsupportedCode)
}

func deployAssembly() *evmla.Assembly {
	word := strings.Repeat("0", 64)
	runtime := &evmla.Assembly{Code: []evmla.Instruction{
		evmla.OpValue("PUSHIMMUTABLE", "7"),
		evmla.OpValue("PUSH", "0"),
		evmla.Op("MSTORE"),
		evmla.OpValue("tag", "1"),
		evmla.OpValue("PUSH [tag]", "1"),
		evmla.Op("JUMP"),
	}}
	return &evmla.Assembly{
		Code: []evmla.Instruction{
			evmla.OpValue("PUSH", "80"),
			evmla.OpValue("PUSH", "40"),
			evmla.Op("MSTORE"),
			evmla.OpValue("PUSH #[$]", word),
			evmla.Op("DUP1"),
			evmla.OpValue("PUSH [$]", word),
			evmla.OpValue("PUSH", "0"),
			evmla.Op("CODECOPY"),
			evmla.OpValue("PUSH", "0"),
			evmla.Op("RETURN"),
		},
		Data:     map[string]*evmla.Data{"0": {Assembly: runtime}},
		FullPath: "a.sol:A",
	}
}

func TestEVMLADeploy(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Deploy, unoptimized)
	ctx.SetEVMLAData(codegen.EVMLAData{Version: semver.MustParse("0.8.28")})
	buf, errs := generate(t, ctx, deployAssembly())
	assert.Empty(t, errs)
	assert.Equal(t, "608060405263000000008063000000005f395ff3", hex.EncodeToString(buf.Bytecode))
	assert.Equal(t, []codegen.Relocation{
		{Offset: 6, Size: 4, Kind: codegen.RelocationDataSize, Symbol: "a.sol:A.runtime"},
		{Offset: 12, Size: 4, Kind: codegen.RelocationDataOffset, Symbol: "a.sol:A.runtime"},
	}, buf.Relocations)
}

func TestEVMLARuntime(t *testing.T) {
	runtime, err := deployAssembly().RuntimeCode()
	require.NoError(t, err)

	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	ctx.SetEVMLAData(codegen.EVMLAData{Version: semver.MustParse("0.8.28")})
	buf, errs := generate(t, ctx, runtime)
	assert.Empty(t, errs)
	assert.Equal(t, codegen.Immutables{"7": {1}}, buf.Immutables)
	assert.Equal(t, "5f525b630000002356", hex.EncodeToString(buf.Bytecode[33:]))

	// Before PUSH0 a zero takes two bytes.
	ctx = New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	ctx.SetEVMLAData(codegen.EVMLAData{Version: semver.MustParse("0.8.19")})
	buf, errs = generate(t, ctx, runtime)
	assert.Empty(t, errs)
	assert.Equal(t, "6000525b630000002456", hex.EncodeToString(buf.Bytecode[33:]))
}

func TestEVMLAAssignImmutable(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Deploy, unoptimized)
	ctx.SetSolidityData(codegen.SolidityData{Immutables: codegen.Immutables{"7": {1}}})
	buf, errs := generate(t, ctx, &evmla.Assembly{Code: []evmla.Instruction{
		evmla.OpValue("PUSH", "2a"),
		evmla.OpValue("PUSH", "80"),
		evmla.OpValue("ASSIGNIMMUTABLE", "7"),
		evmla.OpValue("ASSIGNIMMUTABLE", "unused"),
	}})
	assert.Empty(t, errs)
	assert.Equal(t, "602a608060010152"+"5050", hex.EncodeToString(buf.Bytecode))
}

func TestEVMLAData(t *testing.T) {
	code := &evmla.Assembly{
		Code: []evmla.Instruction{evmla.OpValue("PUSH data", "1"), evmla.Op("STOP")},
		Data: map[string]*evmla.Data{"1": {Hash: "aabb"}},
	}
	ctx := New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, code)
	assert.Empty(t, errs)
	assert.Equal(t, "630000000600aabb", hex.EncodeToString(buf.Bytecode))

	ctx = New(DefaultConfig).NewContext("a.sol:A.runtime", codegen.Runtime, &codegen.ContextConfig{Optimizer: codegen.DefaultOptimizerSettings()})
	buf, errs = generate(t, ctx, code)
	assert.Empty(t, errs)
	assert.Equal(t, "61000400aabb", hex.EncodeToString(buf.Bytecode))
}

func TestEVMLALibraries(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("l.sol:L", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, &evmla.Assembly{
		Code:     []evmla.Instruction{evmla.OpValue("PUSHLIB", "m.sol:M"), evmla.Op("PUSHDEPLOYADDRESS"), evmla.Op("PUSHSIZE")},
		FullPath: "l.sol:L",
	})
	assert.Empty(t, errs)
	assert.Equal(t, []codegen.Relocation{
		{Offset: 1, Size: 20, Kind: codegen.RelocationLibrary, Symbol: "m.sol:M"},
		{Offset: 22, Size: 20, Kind: codegen.RelocationDeployAddress, Symbol: "l.sol:L"},
	}, buf.Relocations)
	assert.Equal(t, "630000002f", hex.EncodeToString(buf.Bytecode[42:]))
}

func TestEVMLADeclareErrors(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Deploy, unoptimized)
	err := ctx.Declare(&evmla.Assembly{Code: []evmla.Instruction{
		evmla.OpValue("tag", "1"),
		evmla.OpValue("tag", "1"),
		evmla.Op("FROB"),
		evmla.Op("PUSH1"),
		evmla.OpValue("PUSH [$]", "01"),
		evmla.OpValue("PUSH", "zz"),
	}})
	require.Error(t, err)
	for _, want := range []string{`tag "1" defined twice`, "(FROB): unknown instruction", "(PUSH1): unknown instruction", `data entry "1" not found`, "invalid number"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestBuildReportsAssemblerErrors(t *testing.T) {
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Runtime, unoptimized)
	buf, errs := generate(t, ctx, &evmla.Assembly{Code: []evmla.Instruction{evmla.OpValue("PUSH [tag]", "9"), evmla.Op("JUMP")}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `undefined label "tag_9"`)
	assert.Len(t, buf.Bytecode, 6, "bytecode is produced alongside the errors")
}

func TestDebugDumps(t *testing.T) {
	dir := t.TempDir()
	debug := &codegen.DebugConfig{OutputDirectory: dir}
	ctx := New(DefaultConfig).NewContext("a.sol:A", codegen.Runtime, &codegen.ContextConfig{Optimizer: codegen.DefaultOptimizerSettings(), Debug: debug})
	_, errs := generate(t, ctx, yulObject("A_deployed", yul.Expr(yul.Call("stop"))))
	assert.Empty(t, errs)

	_, err := os.Stat(debug.Path("a.sol:A", codegen.Runtime, "ir.txt"))
	assert.NoError(t, err)
	listing, err := os.ReadFile(debug.Path("a.sol:A", codegen.Runtime, "asm"))
	require.NoError(t, err)
	assert.Equal(t, "00000: STOP\n00001: STOP\n", string(listing))
}
