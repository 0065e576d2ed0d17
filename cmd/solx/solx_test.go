// Copyright 2024 The solx Authors
// This file is part of solx.
//
// solx is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// solx is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with solx. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/solx/common"
	"github.com/sunyihoo/solx/internal/reexec"
	"github.com/sunyihoo/solx/ir"
	"github.com/sunyihoo/solx/ir/llvmir"
	"github.com/sunyihoo/solx/ir/yul"
	"github.com/sunyihoo/solx/metadata"
	"github.com/sunyihoo/solx/project/contract"
	"github.com/sunyihoo/solx/solc/standardjson"
)

func TestMain(m *testing.M) {
	// The worker is registered by init.
	if reexec.Init() {
		return
	}
	os.Exit(m.Run())
}

func yulContract(path, name string) *contract.Contract {
	id := name + "_1"
	object := &yul.Object{
		Identifier: id,
		Code: yul.NewBlock(
			yul.Expr(yul.Call("datacopy", yul.Num(0), yul.Call("dataoffset", yul.Str(id+"_deployed")), yul.Call("datasize", yul.Str(id+"_deployed")))),
			yul.Expr(yul.Call("return", yul.Num(0), yul.Call("datasize", yul.Str(id+"_deployed")))),
		),
		Objects: []*yul.Object{{
			Identifier: id + "_deployed",
			Code: yul.NewBlock(
				yul.Expr(yul.Call("sstore", yul.Num(0), yul.Call("linkersymbol", yul.Str("l.sol:L")))),
			),
		}},
	}
	return contract.New(common.NewContractName(path, name), ir.FromYul(yul.New(object)), `{"language":"Solidity"}`)
}

func testProject(t *testing.T, selection string) *project {
	t.Helper()
	var settings standardjson.Settings
	require.NoError(t, json.Unmarshal([]byte(`{
		"optimizer": {"mode": "z"},
		"libraries": {"l.sol": {"L": "0x0000000000000000000000000000000000001234"}},
		"metadata": {"bytecodeHash": "keccak256"},
		"outputSelection": `+selection+`
	}`), &settings))
	return &project{
		Settings: settings,
		Contracts: []*contract.Contract{
			yulContract("a.sol", "A"),
			yulContract("b.sol", "B"),
			contract.New(common.NewContractName("c.ll", ""), ir.FromLLVMIR(llvmir.New("c.ll", "")), ""),
		},
		IdentifierPaths: map[string]string{"A_1": "a.sol:A", "B_1": "b.sol:B"},
	}
}

func TestCompileProject(t *testing.T) {
	p := testProject(t, `{"*": {"*": ["evm.bytecode", "evm.deployedBytecode", "metadata"]}}`)
	out, err := compileProject(context.Background(), p, &compilerConfig{Threads: 2})
	require.NoError(t, err)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, contract.ErrUnsupportedIR.Error(), out.Errors[0].Message)
	assert.Equal(t, "c.ll", out.Errors[0].SourceLocation.File)

	for _, file := range []string{"a.sol", "b.sol"} {
		require.Contains(t, out.Contracts, file)
	}
	a := out.Contracts["a.sol"]["A"]
	require.NotNil(t, a)
	require.NotNil(t, a.EVM)
	assert.NotEmpty(t, a.EVM.Bytecode.Object)
	assert.Empty(t, a.EVM.DeployedBytecode.UnlinkedLibraries, "l.sol:L is deployed")
	require.NotNil(t, a.MetadataHash)
	assert.Equal(t, metadata.HashKeccak256, a.MetadataHash.Type)
	assert.Contains(t, a.Metadata, `"solx"`)
}

func TestCompileProjectSelection(t *testing.T) {
	p := testProject(t, `{"a.sol": {"A": ["metadata", "irOptimized"]}, "b.sol": {"*": ["evm.deployedBytecode"]}}`)
	out, err := compileProject(context.Background(), p, &compilerConfig{Threads: 1})
	require.NoError(t, err)

	a := out.Contracts["a.sol"]["A"]
	assert.Nil(t, a.EVM)
	assert.NotEmpty(t, a.Metadata)

	b := out.Contracts["b.sol"]["B"]
	assert.Empty(t, b.Metadata)
	require.NotNil(t, b.EVM)
	assert.Nil(t, b.EVM.Bytecode)
	assert.NotNil(t, b.EVM.DeployedBytecode)
}

func TestCompileProjectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := compileProject(ctx, testProject(t, `{}`), &compilerConfig{Threads: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProjectValidate(t *testing.T) {
	a := yulContract("a.sol", "A")
	p := &project{
		Settings:  standardjson.Settings{Optimizer: standardjson.Optimizer{Mode: "9"}},
		Contracts: []*contract.Contract{
			a,
			nil,
			a,
			contract.New(common.NewContractName("e.sol", "E"), ir.FromYul(&yul.Yul{}), ""),
		},
	}
	err := p.validate()
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 4)
	assert.Contains(t, merr.Errors[2].Error(), "contract e.sol:E: missing yul object")

	p.Settings.Optimizer.Mode = "1"
	p.Contracts = p.Contracts[:1]
	assert.NoError(t, p.validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "solx.toml")
	require.NoError(t, os.WriteFile(file, []byte("[Compiler]\nThreads = 3\nLLVMOptions = [\"-x\"]\n"), 0o644))

	cfg := defaultConfig()
	require.NoError(t, loadConfig(file, &cfg))
	assert.Equal(t, 3, cfg.Compiler.Threads)
	assert.Equal(t, []string{"-x"}, cfg.Compiler.LLVMOptions)
	assert.Nil(t, cfg.Compiler.debugConfig())

	require.NoError(t, os.WriteFile(file, []byte("[Compiler]\nThreadz = 3\n"), 0o644))
	err := loadConfig(file, &cfg)
	assert.ErrorContains(t, err, "field 'Threadz' is not defined")
}

func TestApp(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "project.json")
	data, err := json.Marshal(testProject(t, `{"*": {"*": ["evm.bytecode"]}}`))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, data, 0o644))

	var buf bytes.Buffer
	app.Writer = &buf
	defer func() { app.Writer = os.Stdout }()
	require.NoError(t, app.Run([]string{"solx", "--threads", "2", "--debug-output-dir", filepath.Join(dir, "dump"), file}))

	var out output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.NotNil(t, out.Contracts["b.sol"]["B"].EVM.Bytecode)
	assert.Len(t, out.Errors, 1)

	dumps, err := os.ReadDir(filepath.Join(dir, "dump"))
	require.NoError(t, err)
	assert.NotEmpty(t, dumps)

	assert.Error(t, app.Run([]string{"solx"}))
}
