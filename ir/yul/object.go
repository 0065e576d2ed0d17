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

// Package yul holds Yul objects: the code of a contract segment together with
// the sub-objects it deploys or references.
package yul

import (
	"encoding/json"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/solx/common/hexutil"
	"github.com/sunyihoo/solx/ir/dependency"
)

// Yul 对象 (Yul Object): 部署代码对象 "X" 内嵌运行时代码对象 "X_deployed"，
// 以及通过 datasize/dataoffset 引用的其它合约对象。

// DeployedSuffix is appended to the identifier of a deploy object to name its
// runtime sub-object.
const DeployedSuffix = "_deployed"

// Yul is the Yul representation of a contract.
type Yul struct {
	Object *Object `json:"object"`
}

// New wraps an object.
func New(object *Object) *Yul {
	return &Yul{Object: object}
}

var errMissingObject = errors.New("missing yul object")

// Validate reports a Yul IR without a root object.
func (y *Yul) Validate() error {
	if y.Object == nil {
		return errMissingObject
	}
	return nil
}

// Object is a Yul object.
type Object struct {
	Identifier          string                   `json:"identifier"`
	Code                *Block                   `json:"code"`
	Objects             []*Object                `json:"objects,omitempty"`
	Data                map[string]hexutil.Bytes `json:"data,omitempty"`
	FactoryDependencies mapset.Set[string]       `json:"-"`
}

type objectJSON struct {
	Identifier          string                   `json:"identifier"`
	Code                *Block                   `json:"code"`
	Objects             []*Object                `json:"objects,omitempty"`
	Data                map[string]hexutil.Bytes `json:"data,omitempty"`
	FactoryDependencies []string                 `json:"factory_dependencies"`
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	code := o.Code
	if code == nil {
		code = &Block{}
	}
	return json.Marshal(objectJSON{
		Identifier:          o.Identifier,
		Code:                code,
		Objects:             o.Objects,
		Data:                o.Data,
		FactoryDependencies: dependency.SortedSlice(o.FactoryDependencies),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(input []byte) error {
	var dec objectJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	for i, sub := range dec.Objects {
		if sub == nil {
			return fmt.Errorf("object %q: sub-object %d is null", dec.Identifier, i)
		}
	}
	o.Identifier = dec.Identifier
	o.Code = orEmpty(dec.Code)
	o.Objects = dec.Objects
	o.Data = dec.Data
	o.FactoryDependencies = mapset.NewThreadUnsafeSet(dec.FactoryDependencies...)
	return nil
}

// TakeRuntimeCode removes and returns the runtime sub-object named
// "<identifier>_deployed". It returns nil if there is none.
func (y *Yul) TakeRuntimeCode() *Object {
	name := y.Object.Identifier + DeployedSuffix
	for i, sub := range y.Object.Objects {
		if sub.Identifier == name {
			y.Object.Objects = append(y.Object.Objects[:i:i], y.Object.Objects[i+1:]...)
			return sub
		}
	}
	return nil
}

// UnlinkedLibraries returns the libraries referenced through linkersymbol
// anywhere in the object tree.
func (y *Yul) UnlinkedLibraries() mapset.Set[string] {
	return y.Object.UnlinkedLibraries()
}

// UnlinkedLibraries returns the libraries referenced through linkersymbol in
// the object and its sub-objects.
func (o *Object) UnlinkedLibraries() mapset.Set[string] {
	libraries := mapset.NewThreadUnsafeSet[string]()
	var walk func(*Object)
	walk = func(o *Object) {
		libraries.Append(literalArguments(o.Code, "linkersymbol")...)
		for _, sub := range o.Objects {
			walk(sub)
		}
	}
	walk(o)
	return libraries
}

// EVMDependencies returns the objects referenced by the code of this object
// through dataoffset and datasize. The runtime object, when given, is always
// a dependency of the deploy code.
func (o *Object) EVMDependencies(runtime *Object) *dependency.Set {
	deps := dependency.New(o.Identifier)
	for _, name := range literalArguments(o.Code, "dataoffset", "datasize") {
		deps.Push(name)
	}
	if runtime != nil {
		deps.Push(runtime.Identifier)
	}
	return deps
}

// DrainFactoryDependencies empties the factory dependencies of the top-level
// object and returns them. Sub-objects keep their own sets.
func (y *Yul) DrainFactoryDependencies() mapset.Set[string] {
	out := y.Object.FactoryDependencies
	if out == nil {
		out = mapset.NewThreadUnsafeSet[string]()
	}
	y.Object.FactoryDependencies = mapset.NewThreadUnsafeSet[string]()
	return out
}

// Sub returns the direct sub-object with the given identifier.
func (o *Object) Sub(identifier string) *Object {
	for _, sub := range o.Objects {
		if sub.Identifier == identifier {
			return sub
		}
	}
	return nil
}
