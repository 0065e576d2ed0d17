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

// Package contract compiles a single contract: the runtime code first, then
// the deploy code seeded with the immutables of the runtime code.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/common"
	"github.com/sunyihoo/solx/evmbuild"
	"github.com/sunyihoo/solx/ir"
	"github.com/sunyihoo/solx/ir/dependency"
	"github.com/sunyihoo/solx/ir/evmla"
	"github.com/sunyihoo/solx/ir/llvmir"
	"github.com/sunyihoo/solx/ir/yul"
	"github.com/sunyihoo/solx/log"
	"github.com/sunyihoo/solx/metadata"
	"github.com/sunyihoo/solx/solc"
)

// 两阶段编译 (Two-phase compilation): 运行时代码必须先于部署代码生成，
// 因为部署代码需要运行时代码中不可变量占位符的偏移量来回填其值。

var (
	// ErrNoRuntimeCode is returned for Yul objects without a runtime object.
	ErrNoRuntimeCode = errors.New("has no runtime code")
	// ErrUnsupportedIR is returned for LLVM IR contracts.
	ErrUnsupportedIR = errors.New("LLVM IR is not supported yet")
)

// Contract is a contract ready for code generation.
type Contract struct {
	Name           common.ContractName
	IR             ir.IR
	SourceMetadata string
}

// New creates a contract.
func New(name common.ContractName, code ir.IR, sourceMetadata string) *Contract {
	return &Contract{Name: name, IR: code, SourceMetadata: sourceMetadata}
}

type contractJSON struct {
	Name           common.ContractName `json:"name"`
	IR             json.RawMessage     `json:"ir"`
	SourceMetadata string              `json:"source_metadata"`
}

// MarshalJSON implements json.Marshaler.
func (c *Contract) MarshalJSON() ([]byte, error) {
	code, err := ir.Marshal(c.IR)
	if err != nil {
		return nil, err
	}
	return json.Marshal(contractJSON{Name: c.Name, IR: code, SourceMetadata: c.SourceMetadata})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Contract) UnmarshalJSON(input []byte) error {
	var dec contractJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	code, err := ir.Unmarshal(dec.IR)
	if err != nil {
		return fmt.Errorf("contract %s: %w", dec.Name.FullPath, err)
	}
	c.Name, c.IR, c.SourceMetadata = dec.Name, code, dec.SourceMetadata
	return nil
}

// Identifier returns the Yul object identifier, the assembly full path or
// the LLVM IR module path.
func (c *Contract) Identifier() string {
	return ir.Identifier(c.IR)
}

// UnlinkedLibraries returns the libraries of the contract not yet deployed.
func (c *Contract) UnlinkedLibraries(deployed mapset.Set[string]) mapset.Set[string] {
	return notDeployed(ir.UnlinkedLibraries(c.IR), deployed)
}

func notDeployed(libraries, deployed mapset.Set[string]) mapset.Set[string] {
	out := mapset.NewThreadUnsafeSet[string]()
	libraries.Each(func(library string) bool {
		if deployed == nil || !deployed.Contains(library) {
			out.Add(library)
		}
		return false
	})
	return out
}

// Config holds the settings of a contract compilation.
type Config struct {
	IdentifierPaths   map[string]string
	DeployedLibraries mapset.Set[string]
	MetadataHashType  metadata.HashType
	Optimizer         codegen.OptimizerSettings
	LLVMOptions       []string
	Debug             *codegen.DebugConfig
}

// segment is everything needed to generate one segment.
type segment struct {
	identifier string
	module     string
	kind       codegen.CodeSegment
	code       codegen.Code
	deps       *dependency.Set
	libraries  mapset.Set[string]
	fromYul    bool
	seed       func(codegen.Context)
}

// Compile generates the deploy and runtime code of the contract. The
// contract is consumed: its IR is modified and must not be reused.
func (c *Contract) Compile(backend codegen.Backend, cfg *Config) (*evmbuild.Contract, error) {
	if _, ok := ir.LLVMIR(c.IR); ok {
		return nil, ErrUnsupportedIR
	}
	version := solc.Default().Version
	identifier := c.Identifier()
	logger := log.New("contract", c.Name.FullPath)

	metadataString, err := metadata.New(cfg.Optimizer.Metadata(), cfg.LLVMOptions).InsertInto(c.SourceMetadata)
	if err != nil {
		return nil, err
	}
	metadataHash := metadata.Compute(cfg.MetadataHashType, metadataString)

	ctxConfig := &codegen.ContextConfig{
		Optimizer:   cfg.Optimizer,
		LLVMOptions: cfg.LLVMOptions,
		Debug:       cfg.Debug,
	}

	var runtime, deploy *segment
	err = ir.Match(c.IR, ir.Visitor[error]{
		Yul: func(code *yul.Yul) error {
			runtimeObject := code.TakeRuntimeCode()
			if runtimeObject == nil {
				return fmt.Errorf("contract `%s` %w", identifier, ErrNoRuntimeCode)
			}
			yulData := codegen.YulData{IdentifierPaths: cfg.IdentifierPaths}
			runtime = &segment{
				identifier: runtimeObject.Identifier,
				module:     c.Name.FullPath + "." + codegen.Runtime.String(),
				kind:       codegen.Runtime,
				code:       runtimeObject,
				deps:       runtimeObject.EVMDependencies(nil),
				libraries:  notDeployed(runtimeObject.UnlinkedLibraries(), cfg.DeployedLibraries),
				fromYul:    true,
				seed:       func(ctx codegen.Context) { ctx.SetYulData(yulData) },
			}
			deploy = &segment{
				identifier: code.Object.Identifier,
				module:     c.Name.FullPath + "." + codegen.Deploy.String(),
				kind:       codegen.Deploy,
				code:       code.Object,
				deps:       code.Object.EVMDependencies(runtimeObject),
				libraries:  notDeployed(code.UnlinkedLibraries(), cfg.DeployedLibraries),
				fromYul:    true,
				seed:       func(ctx codegen.Context) { ctx.SetYulData(yulData) },
			}
			return nil
		},
		EVMLA: func(code *evmla.EVMLA) error {
			projection, err := code.Assembly.RuntimeCode()
			if err != nil {
				return fmt.Errorf("contract `%s`: %w", identifier, err)
			}
			runtimeAssembly := *projection
			runtimeAssembly.SetFullPath(code.Assembly.FullPath)

			deployID := c.Name.FullPath
			runtimeID := c.Name.FullPath + evmla.RuntimeSuffix
			runtimeDeps := dependency.New(runtimeID)
			runtimeAssembly.AccumulateEVMDependencies(runtimeDeps)
			deployDeps := dependency.New(deployID)
			code.AccumulateEVMDependencies(deployDeps)

			evmlaData := codegen.EVMLAData{Version: version}
			runtime = &segment{
				identifier: runtimeID,
				module:     runtimeID,
				kind:       codegen.Runtime,
				code:       &runtimeAssembly,
				deps:       runtimeDeps,
				libraries:  notDeployed(runtimeAssembly.UnlinkedLibraries(), cfg.DeployedLibraries),
				seed:       func(ctx codegen.Context) { ctx.SetEVMLAData(evmlaData) },
			}
			deploy = &segment{
				identifier: deployID,
				module:     deployID,
				kind:       codegen.Deploy,
				code:       code.Assembly,
				deps:       deployDeps,
				libraries:  notDeployed(code.UnlinkedLibraries(), cfg.DeployedLibraries),
				seed:       func(ctx codegen.Context) { ctx.SetEVMLAData(evmlaData) },
			}
			return nil
		},
		LLVMIR: func(*llvmir.LLVMIR) error { return ErrUnsupportedIR },
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Generating runtime code", "identifier", runtime.identifier, "libraries", runtime.libraries.Cardinality())
	runtimeObject, runtimeBuffer, err := c.generate(backend, ctxConfig, runtime, nil)
	if err != nil {
		return nil, err
	}
	immutables := runtimeBuffer.ExtractImmutables()

	logger.Debug("Generating deploy code", "identifier", deploy.identifier, "immutables", immutables.Count())
	deployObject, _, err := c.generate(backend, ctxConfig, deploy, &codegen.SolidityData{Immutables: immutables})
	if err != nil {
		return nil, err
	}
	logger.Debug("Compiled contract", "deploy", len(deployObject.Bytecode), "runtime", len(runtimeObject.Bytecode), "errors", len(deployObject.Errors)+len(runtimeObject.Errors))
	return evmbuild.NewContract(c.Name, deployObject, runtimeObject, metadataHash, metadataString), nil
}

// generate runs a fresh context through declare, emit and build.
func (c *Contract) generate(backend codegen.Backend, cfg *codegen.ContextConfig, s *segment, solidity *codegen.SolidityData) (*evmbuild.Object, *codegen.Buffer, error) {
	ctx := backend.NewContext(s.module, s.kind, cfg)
	if solidity != nil {
		ctx.SetSolidityData(*solidity)
	}
	s.seed(ctx)
	if err := ctx.Declare(s.code); err != nil {
		return nil, nil, fmt.Errorf("%s code declaration: %w", s.kind, err)
	}
	if err := ctx.Emit(s.code); err != nil {
		return nil, nil, fmt.Errorf("%s code generator: %w", s.kind, err)
	}
	buffer, errs := ctx.Build()
	object := evmbuild.NewObject(s.identifier, c.Name, buffer, s.fromYul, s.kind, s.deps, s.libraries, errs)
	return object, buffer, nil
}
