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

// Package evmbuild holds the build artifacts of contracts compiled to EVM
// bytecode.
package evmbuild

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/common"
	"github.com/sunyihoo/solx/common/hexutil"
	"github.com/sunyihoo/solx/ir/dependency"
	"github.com/sunyihoo/solx/metadata"
	"github.com/sunyihoo/solx/solc/standardjson"
)

// Object is the bytecode of one segment of a contract.
type Object struct {
	Identifier   string              `json:"identifier"`
	ContractName common.ContractName `json:"contract_name"`
	Bytecode     hexutil.Bytes       `json:"bytecode"`
	// FromYul is set when the object was generated from Yul rather than
	// legacy assembly. Linking treats the two differently.
	FromYul           bool                  `json:"from_yul"`
	CodeSegment       codegen.CodeSegment   `json:"code_segment"`
	Dependencies      *dependency.Set       `json:"dependencies"`
	UnlinkedLibraries []string              `json:"unlinked_libraries"`
	Relocations       []codegen.Relocation  `json:"relocations,omitempty"`
	Errors            []*standardjson.Error `json:"errors"`
}

// NewObject creates a segment object. The libraries are stored sorted.
func NewObject(identifier string, name common.ContractName, buffer *codegen.Buffer, fromYul bool, segment codegen.CodeSegment, deps *dependency.Set, libraries mapset.Set[string], errs []*standardjson.Error) *Object {
	if errs == nil {
		errs = []*standardjson.Error{}
	}
	return &Object{
		Identifier:        identifier,
		ContractName:      name,
		Bytecode:          buffer.Bytecode,
		FromYul:           fromYul,
		CodeSegment:       segment,
		Dependencies:      deps,
		UnlinkedLibraries: dependency.SortedSlice(libraries),
		Relocations:       buffer.Relocations,
		Errors:            errs,
	}
}

// Contract is the build of a contract: both segments and the metadata.
type Contract struct {
	Name         common.ContractName `json:"name"`
	Deploy       *Object             `json:"deploy_object"`
	Runtime      *Object             `json:"runtime_object"`
	MetadataHash *metadata.Hash      `json:"metadata_hash"`
	Metadata     string              `json:"metadata"`
}

// NewContract creates a contract build.
func NewContract(name common.ContractName, deploy, runtime *Object, hash *metadata.Hash, meta string) *Contract {
	return &Contract{
		Name:         name,
		Deploy:       deploy,
		Runtime:      runtime,
		MetadataHash: hash,
		Metadata:     meta,
	}
}

// Errors returns the generator errors of both segments, deploy first.
func (c *Contract) Errors() []*standardjson.Error {
	var out []*standardjson.Error
	for _, o := range []*Object{c.Deploy, c.Runtime} {
		if o != nil {
			out = append(out, o.Errors...)
		}
	}
	return out
}

// UnlinkedLibraries returns the libraries either segment still needs linked.
func (c *Contract) UnlinkedLibraries() []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, o := range []*Object{c.Deploy, c.Runtime} {
		if o != nil {
			set.Append(o.UnlinkedLibraries...)
		}
	}
	return dependency.SortedSlice(set)
}
