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

// Package evmla holds the legacy EVM assembly emitted by solc for contracts
// compiled without the IR pipeline.
package evmla

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/solx/ir/dependency"
)

// 遗留汇编 (Legacy assembly): solc 的 --asm-json 输出。".code" 是指令列表，
// ".data" 保存子汇编（"0" 为运行时代码）、数据块以及被引用合约的路径。

// RuntimeDataKey is the data entry holding the runtime code of a deploy assembly.
const RuntimeDataKey = "0"

// RuntimeSuffix is appended to a contract path to name its runtime code.
const RuntimeSuffix = ".runtime"

// ErrNoRuntimeCode is returned when a deploy assembly has no runtime sub-assembly.
var ErrNoRuntimeCode = errors.New("runtime code data not found")

// EVMLA is the legacy assembly representation of a contract.
type EVMLA struct {
	Assembly *Assembly `json:"assembly"`
}

// New wraps an assembly.
func New(assembly *Assembly) *EVMLA {
	return &EVMLA{Assembly: assembly}
}

var errMissingAssembly = errors.New("missing evmla assembly")

// Validate reports an EVMLA IR without a root assembly.
func (e *EVMLA) Validate() error {
	if e.Assembly == nil {
		return errMissingAssembly
	}
	return nil
}

// Instruction is a single legacy assembly item.
type Instruction struct {
	Name     string  `json:"name"`
	Value    *string `json:"value,omitempty"`
	JumpType string  `json:"jumpType,omitempty"`
	Source   *int    `json:"source,omitempty"`
	Begin    int     `json:"begin"`
	End      int     `json:"end"`
}

// Op builds an instruction without a value.
func Op(name string) Instruction { return Instruction{Name: name} }

// OpValue builds an instruction carrying a value.
func OpValue(name, value string) Instruction {
	return Instruction{Name: name, Value: &value}
}

// Arg returns the instruction value, or the empty string.
func (i Instruction) Arg() string {
	if i.Value == nil {
		return ""
	}
	return *i.Value
}

// Assembly is a legacy assembly.
type Assembly struct {
	Code                []Instruction      `json:".code"`
	Data                map[string]*Data   `json:".data,omitempty"`
	FullPath            string             `json:"-"`
	FactoryDependencies mapset.Set[string] `json:"-"`
}

type assemblyJSON struct {
	Code                []Instruction    `json:".code"`
	Data                map[string]*Data `json:".data,omitempty"`
	FullPath            string           `json:"full_path,omitempty"`
	FactoryDependencies []string         `json:"factory_dependencies,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (a *Assembly) MarshalJSON() ([]byte, error) {
	enc := assemblyJSON{
		Code:     a.Code,
		Data:     a.Data,
		FullPath: a.FullPath,
	}
	if enc.Code == nil {
		enc.Code = []Instruction{}
	}
	if a.FactoryDependencies != nil && a.FactoryDependencies.Cardinality() > 0 {
		enc.FactoryDependencies = dependency.SortedSlice(a.FactoryDependencies)
	}
	return json.Marshal(enc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Assembly) UnmarshalJSON(input []byte) error {
	var dec assemblyJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	a.Code = dec.Code
	a.Data = dec.Data
	a.FullPath = dec.FullPath
	a.FactoryDependencies = mapset.NewThreadUnsafeSet(dec.FactoryDependencies...)
	return nil
}

// Data is an entry of the ".data" section: exactly one of the fields is set.
type Data struct {
	Assembly *Assembly // nested assembly
	Hash     string    // hex encoded data blob
	Path     string    // path of a contract referenced by the code
}

// MarshalJSON implements json.Marshaler.
func (d *Data) MarshalJSON() ([]byte, error) {
	switch {
	case d.Assembly != nil:
		return json.Marshal(d.Assembly)
	case d.Path != "":
		return json.Marshal(struct {
			Path string `json:"path"`
		}{d.Path})
	default:
		return json.Marshal(d.Hash)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Data) UnmarshalJSON(input []byte) error {
	input = bytes.TrimSpace(input)
	if len(input) > 0 && input[0] == '"' {
		return json.Unmarshal(input, &d.Hash)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return err
	}
	if raw, ok := fields["path"]; ok {
		return json.Unmarshal(raw, &d.Path)
	}
	if _, ok := fields[".code"]; !ok {
		return errors.New("assembly data entry is neither an assembly, a path nor a hash")
	}
	d.Assembly = new(Assembly)
	return json.Unmarshal(input, d.Assembly)
}

// RuntimeCode returns the runtime sub-assembly. The deploy assembly keeps it.
func (a *Assembly) RuntimeCode() (*Assembly, error) {
	if d, ok := a.Data[RuntimeDataKey]; ok && d.Assembly != nil {
		return d.Assembly, nil
	}
	return nil, ErrNoRuntimeCode
}

// SetFullPath sets the contract path the assembly belongs to.
func (a *Assembly) SetFullPath(path string) {
	a.FullPath = path
}

// DataKey normalizes a "PUSH [$]" / "PUSH #[$]" argument, a zero-padded hex
// index, to the key of the referenced ".data" entry.
func DataKey(value string) string {
	key := strings.TrimLeft(value, "0")
	if key == "" {
		return RuntimeDataKey
	}
	return key
}

// DataSymbol returns the identifier of the object referenced by the data
// entry, as recorded in the dependencies of this assembly.
func (a *Assembly) DataSymbol(key string) (string, error) {
	d, ok := a.Data[key]
	if !ok {
		return "", fmt.Errorf("data entry %q not found", key)
	}
	switch {
	case d.Assembly != nil && key == RuntimeDataKey:
		return a.FullPath + RuntimeSuffix, nil
	case d.Assembly != nil:
		return d.Assembly.FullPath, nil
	case d.Path != "":
		return d.Path, nil
	}
	return "", fmt.Errorf("data entry %q is not a code reference", key)
}

// UnlinkedLibraries returns the libraries pushed with PUSHLIB in the
// assembly and all nested assemblies.
func (a *Assembly) UnlinkedLibraries() mapset.Set[string] {
	libraries := mapset.NewThreadUnsafeSet[string]()
	var walk func(*Assembly)
	walk = func(a *Assembly) {
		for _, instr := range a.Code {
			if instr.Name == "PUSHLIB" && instr.Value != nil {
				libraries.Add(*instr.Value)
			}
		}
		for _, d := range a.Data {
			if d.Assembly != nil {
				walk(d.Assembly)
			}
		}
	}
	walk(a)
	return libraries
}

// AccumulateEVMDependencies records the code references of the ".data"
// section. The runtime entry of a deploy assembly is recorded as
// "<path>.runtime".
func (a *Assembly) AccumulateEVMDependencies(deps *dependency.Set) {
	for key, d := range a.Data {
		if d.Assembly == nil && d.Path == "" {
			continue
		}
		if symbol, err := a.DataSymbol(key); err == nil && symbol != "" {
			deps.Push(symbol)
		}
	}
}

// UnlinkedLibraries returns the libraries referenced by the contract.
func (e *EVMLA) UnlinkedLibraries() mapset.Set[string] {
	return e.Assembly.UnlinkedLibraries()
}

// AccumulateEVMDependencies records the deploy code references.
func (e *EVMLA) AccumulateEVMDependencies(deps *dependency.Set) {
	e.Assembly.AccumulateEVMDependencies(deps)
}

// DrainFactoryDependencies empties the factory dependencies of the outer
// assembly and returns them. Nested assemblies keep their own sets.
func (e *EVMLA) DrainFactoryDependencies() mapset.Set[string] {
	out := e.Assembly.FactoryDependencies
	if out == nil {
		out = mapset.NewThreadUnsafeSet[string]()
	}
	e.Assembly.FactoryDependencies = mapset.NewThreadUnsafeSet[string]()
	return out
}
