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

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/codegen/evmasm"
	"github.com/sunyihoo/solx/common"
	"github.com/sunyihoo/solx/ir"
	"github.com/sunyihoo/solx/ir/evmla"
	"github.com/sunyihoo/solx/ir/llvmir"
	"github.com/sunyihoo/solx/ir/yul"
	"github.com/sunyihoo/solx/metadata"
	"github.com/sunyihoo/solx/solc/standardjson"
	"pgregory.net/rapid"
)

// recorder is a backend logging every call made to its contexts.
type recorder struct {
	events     []string
	immutables codegen.Immutables // returned by runtime builds
	seeded     *codegen.SolidityData
	emitErr    error
	diags      []*standardjson.Error
	shutdown   bool
}

type recorderContext struct {
	r       *recorder
	module  string
	segment codegen.CodeSegment
}

func (r *recorder) NewContext(module string, segment codegen.CodeSegment, _ *codegen.ContextConfig) codegen.Context {
	r.events = append(r.events, fmt.Sprintf("new %s %s", segment, module))
	return &recorderContext{r: r, module: module, segment: segment}
}

func (r *recorder) Shutdown() { r.shutdown = true }

func (c *recorderContext) log(event string) {
	c.r.events = append(c.r.events, event+" "+c.segment.String())
}

func (c *recorderContext) Segment() codegen.CodeSegment { return c.segment }
func (c *recorderContext) SetYulData(codegen.YulData)    { c.log("yul") }
func (c *recorderContext) SetEVMLAData(codegen.EVMLAData) { c.log("evmla") }

func (c *recorderContext) SetSolidityData(d codegen.SolidityData) {
	c.log("solidity")
	c.r.seeded = &d
}

func (c *recorderContext) Declare(codegen.Code) error { c.log("declare"); return nil }

func (c *recorderContext) Emit(codegen.Code) error {
	c.log("emit")
	if c.segment == codegen.Deploy {
		return c.r.emitErr
	}
	return nil
}

func (c *recorderContext) Build() (*codegen.Buffer, []*standardjson.Error) {
	c.log("build")
	buf := &codegen.Buffer{Bytecode: []byte(c.module)}
	if c.segment == codegen.Runtime {
		buf.Immutables = c.r.immutables
	}
	return buf, c.r.diags
}

func yulContract(withRuntime bool) *Contract {
	deploy := &yul.Object{
		Identifier: "A_1",
		Code: yul.NewBlock(
			yul.Expr(yul.Call("datacopy", yul.Num(0), yul.Call("dataoffset", yul.Str("A_1_deployed")), yul.Call("datasize", yul.Str("A_1_deployed")))),
			yul.Expr(yul.Call("setimmutable", yul.Num(0), yul.Str("x"), yul.Call("caller"))),
			yul.Expr(yul.Call("return", yul.Num(0), yul.Call("datasize", yul.Str("A_1_deployed")))),
		),
		FactoryDependencies: mapset.NewThreadUnsafeSet("b.sol:B"),
	}
	if withRuntime {
		deploy.Objects = []*yul.Object{{
			Identifier: "A_1_deployed",
			Code: yul.NewBlock(
				yul.Expr(yul.Call("sstore", yul.Num(0), yul.Call("loadimmutable", yul.Str("x")))),
				yul.Expr(yul.Call("sstore", yul.Num(1), yul.Call("linkersymbol", yul.Str("l.sol:L")))),
				yul.Expr(yul.Call("sstore", yul.Num(2), yul.Call("linkersymbol", yul.Str("m.sol:M")))),
				yul.Expr(yul.Call("pop", yul.Call("datasize", yul.Str("B_2")))),
			),
		}}
	}
	return New(common.NewContractName("a.sol", "A"), ir.FromYul(yul.New(deploy)), `{"language":"Solidity"}`)
}

func evmlaContract() *Contract {
	word := "0000000000000000000000000000000000000000000000000000000000000000"
	runtime := &evmla.Assembly{Code: []evmla.Instruction{
		evmla.OpValue("PUSHIMMUTABLE", "5"),
		evmla.OpValue("PUSHLIB", "l.sol:L"),
		evmla.Op("SSTORE"),
		evmla.Op("STOP"),
	}}
	deploy := &evmla.Assembly{
		Code: []evmla.Instruction{
			evmla.Op("CALLER"),
			evmla.OpValue("PUSH", "0"),
			evmla.OpValue("ASSIGNIMMUTABLE", "5"),
			evmla.OpValue("PUSH #[$]", word),
			evmla.OpValue("PUSH [$]", word),
			evmla.OpValue("PUSH", "0"),
			evmla.Op("CODECOPY"),
			evmla.OpValue("PUSH #[$]", word),
			evmla.OpValue("PUSH", "0"),
			evmla.Op("RETURN"),
		},
		Data: map[string]*evmla.Data{
			"0": {Assembly: runtime},
			"1": {Path: "b.sol:B"},
		},
		FullPath: "a.sol:A",
	}
	return New(common.NewContractName("a.sol", "A"), ir.FromEVMLA(evmla.New(deploy)), "{}")
}

func defaultConfig() *Config {
	return &Config{
		IdentifierPaths:   map[string]string{"B_2": "b.sol:B"},
		DeployedLibraries: mapset.NewThreadUnsafeSet[string](),
		MetadataHashType:  metadata.HashKeccak256,
		Optimizer:         codegen.DefaultOptimizerSettings(),
	}
}

func TestCompileOrder(t *testing.T) {
	r := &recorder{immutables: codegen.Immutables{"x": {1, 40}}}
	build, err := yulContract(true).Compile(r, defaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"new runtime a.sol:A.runtime", "yul runtime", "declare runtime", "emit runtime", "build runtime",
		"new deploy a.sol:A.deploy", "solidity deploy", "yul deploy", "declare deploy", "emit deploy", "build deploy",
	}, r.events)
	require.NotNil(t, r.seeded)
	assert.Equal(t, codegen.Immutables{"x": {1, 40}}, r.seeded.Immutables)
	assert.Equal(t, "A_1", build.Deploy.Identifier)
	assert.Equal(t, "A_1_deployed", build.Runtime.Identifier)
	assert.True(t, build.Deploy.FromYul)
	assert.False(t, r.shutdown, "shutdown is left to the worker")
}

func TestCompileSeedsImmutableCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		im := codegen.Immutables{}
		n := rapid.IntRange(0, 20).Draw(t, "n")
		for i := range n {
			name := rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, fmt.Sprintf("name%d", i))
			im[name] = append(im[name], uint64(i*33+1))
		}
		r := &recorder{immutables: im}
		if _, err := yulContract(true).Compile(r, defaultConfig()); err != nil {
			t.Fatal(err)
		}
		if got := r.seeded.Immutables.Count(); got != n {
			t.Fatalf("deploy context seeded with %d offsets, want %d", got, n)
		}
	})
}

func TestCompileNoRuntimeCode(t *testing.T) {
	r := &recorder{}
	build, err := yulContract(false).Compile(r, defaultConfig())
	assert.Nil(t, build)
	assert.ErrorIs(t, err, ErrNoRuntimeCode)
	assert.EqualError(t, err, "contract `A_1` has no runtime code")
	assert.Empty(t, r.events)
}

func TestCompileLLVMIR(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(common.NewContractName(rapid.String().Draw(t, "path"), ""),
			ir.FromLLVMIR(llvmir.New(rapid.String().Draw(t, "module"), rapid.String().Draw(t, "source"))),
			rapid.String().Draw(t, "metadata"))
		build, err := c.Compile(&recorder{}, defaultConfig())
		if build != nil || !errors.Is(err, ErrUnsupportedIR) {
			t.Fatalf("got %v, %v", build, err)
		}
	})
}

func TestCompileEmitError(t *testing.T) {
	r := &recorder{emitErr: errors.New("boom")}
	_, err := yulContract(true).Compile(r, defaultConfig())
	assert.EqualError(t, err, "deploy code generator: boom")
}

func TestCompileKeepsGeneratorErrors(t *testing.T) {
	r := &recorder{diags: []*standardjson.Error{standardjson.NewWarning("w", nil)}}
	build, err := yulContract(true).Compile(r, defaultConfig())
	require.NoError(t, err)
	assert.Len(t, build.Errors(), 2)
	assert.NotEmpty(t, build.Deploy.Bytecode)
}

func TestCompileMetadata(t *testing.T) {
	for _, ht := range []metadata.HashType{metadata.HashNone, metadata.HashKeccak256, metadata.HashIPFS} {
		cfg := defaultConfig()
		cfg.MetadataHashType = ht
		build, err := yulContract(true).Compile(&recorder{}, cfg)
		require.NoError(t, err)

		var meta map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(build.Metadata), &meta))
		assert.Contains(t, meta, metadata.Key)
		assert.Contains(t, meta, "language")
		assert.Equal(t, metadata.Compute(ht, build.Metadata), build.MetadataHash)
		if ht == metadata.HashNone {
			assert.Nil(t, build.MetadataHash)
		}
	}
}

func TestUnlinkedLibrariesFiltered(t *testing.T) {
	all := []string{"l.sol:L", "m.sol:M"}
	rapid.Check(t, func(t *rapid.T) {
		deployed := rapid.SliceOfDistinct(rapid.SampledFrom(append(all, "x.sol:X")), rapid.ID[string]).Draw(t, "deployed")
		cfg := defaultConfig()
		cfg.DeployedLibraries = mapset.NewThreadUnsafeSet(deployed...)

		build, err := yulContract(true).Compile(&recorder{}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		want := mapset.NewThreadUnsafeSet(all...).Difference(cfg.DeployedLibraries)
		got := mapset.NewThreadUnsafeSet(build.Runtime.UnlinkedLibraries...)
		if !got.Equal(want) {
			t.Fatalf("unlinked %v, want %v", got, want)
		}
		if len(build.Deploy.UnlinkedLibraries) != 0 {
			t.Fatalf("deploy code links %v", build.Deploy.UnlinkedLibraries)
		}
	})

	c := yulContract(true)
	assert.Equal(t, 0, c.UnlinkedLibraries(mapset.NewThreadUnsafeSet(all...)).Cardinality())
	assert.Equal(t, 2, c.UnlinkedLibraries(nil).Cardinality())
}

func TestCompileYulDependencies(t *testing.T) {
	c := yulContract(true)
	build, err := c.Compile(&recorder{}, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"A_1_deployed"}, build.Deploy.Dependencies.Sorted())
	assert.Equal(t, []string{"B_2"}, build.Runtime.Dependencies.Sorted())
}

func TestCompileYul(t *testing.T) {
	c := yulContract(true)
	assert.Equal(t, "A_1", c.Identifier())
	assert.Equal(t, []string{"b.sol:B"}, ir.DrainFactoryDependencies(c.IR).ToSlice())

	build, err := c.Compile(evmasm.New(evmasm.DefaultConfig), defaultConfig())
	require.NoError(t, err)
	assert.Empty(t, build.Errors())

	im := build.Runtime.Bytecode[:33]
	assert.Equal(t, byte(0x7f), im[0], "runtime reads the immutable from a PUSH32 placeholder")
	// The deploy code stores the caller at the placeholder offset 1.
	assert.Contains(t, string(build.Deploy.Bytecode), string([]byte{0x33, 0x5f, 0x60, 0x01, 0x01, 0x52}))
	assert.Equal(t, []string{"l.sol:L", "m.sol:M"}, build.Runtime.UnlinkedLibraries)
	assert.Equal(t, codegen.RelocationDataSize, build.Runtime.Relocations[len(build.Runtime.Relocations)-1].Kind)
	assert.Equal(t, "b.sol:B", build.Runtime.Relocations[len(build.Runtime.Relocations)-1].Symbol)
}

func TestCompileEVMLA(t *testing.T) {
	c := evmlaContract()
	assert.Equal(t, "a.sol:A", c.Identifier())

	build, err := c.Compile(evmasm.New(evmasm.DefaultConfig), defaultConfig())
	require.NoError(t, err)
	assert.Empty(t, build.Errors())

	assert.Equal(t, "a.sol:A", build.Deploy.Identifier)
	assert.Equal(t, "a.sol:A.runtime", build.Runtime.Identifier)
	assert.False(t, build.Deploy.FromYul)
	assert.Equal(t, []string{"a.sol:A.runtime", "b.sol:B"}, build.Deploy.Dependencies.Sorted())
	assert.Equal(t, []string{"l.sol:L"}, build.Runtime.UnlinkedLibraries)
	assert.Equal(t, []string{"l.sol:L"}, build.Deploy.UnlinkedLibraries)
	// CALLER, PUSH0, PUSH1 1, ADD, MSTORE
	assert.Equal(t, []byte{0x33, 0x5f, 0x60, 0x01, 0x01, 0x52}, []byte(build.Deploy.Bytecode[:6]))

	// The deploy assembly keeps its runtime code.
	e, ok := ir.EVMLA(c.IR)
	require.True(t, ok)
	_, err = e.Assembly.RuntimeCode()
	assert.NoError(t, err)
}

func TestCompileEVMLAWithoutRuntime(t *testing.T) {
	c := New(common.NewContractName("a.sol", "A"), ir.FromEVMLA(evmla.New(&evmla.Assembly{FullPath: "a.sol:A"})), "")
	_, err := c.Compile(&recorder{}, defaultConfig())
	assert.ErrorIs(t, err, evmla.ErrNoRuntimeCode)
}

func TestContractJSON(t *testing.T) {
	enc, err := json.Marshal(evmlaContract())
	require.NoError(t, err)

	var dec Contract
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, "a.sol:A", dec.Name.FullPath)
	assert.Equal(t, "a.sol:A", dec.Identifier())
	_, ok := ir.EVMLA(dec.IR)
	assert.True(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`{"name":{"path":"a.sol","full_path":"a.sol"},"ir":{},"source_metadata":""}`), &dec))
}
