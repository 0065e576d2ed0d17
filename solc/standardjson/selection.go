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

package standardjson

import (
	"encoding/json"
	"maps"
	"slices"
)

// Selector is an output selection flag, e.g. "abi" or "evm.bytecode".
type Selector string

const (
	SelectorAll              Selector = "*"
	SelectorABI              Selector = "abi"
	SelectorMetadata         Selector = "metadata"
	SelectorDevdoc           Selector = "devdoc"
	SelectorUserdoc          Selector = "userdoc"
	SelectorStorageLayout    Selector = "storageLayout"
	SelectorAST              Selector = "ast"
	SelectorMethodIdentifier Selector = "evm.methodIdentifiers"
	SelectorEVMLA            Selector = "evm.legacyAssembly"
	SelectorYul              Selector = "irOptimized"
	SelectorBytecode         Selector = "evm.bytecode"
	SelectorDeployedBytecode Selector = "evm.deployedBytecode"
	SelectorAssembly         Selector = "evm.assembly"
)

// IRSelector returns the selector of the IR the code generator consumes.
func IRSelector(viaIR bool) Selector {
	if viaIR {
		return SelectorYul
	}
	return SelectorEVMLA
}

// IsReceivedFromSolc reports whether the frontend produces the output, as
// opposed to the code generator.
func (s Selector) IsReceivedFromSolc() bool {
	switch s {
	case SelectorBytecode, SelectorDeployedBytecode, SelectorAssembly:
		return false
	}
	return true
}

// Selection is the output selection: file -> contract -> selectors.
type Selection struct {
	inner map[string]map[string]map[Selector]struct{}
}

// NewSelection selects the IR required for compilation for all contracts.
func NewSelection(viaIR bool) Selection {
	s := Selection{inner: map[string]map[string]map[Selector]struct{}{}}
	s.Add("*", "*", IRSelector(viaIR))
	return s
}

// Add selects a flag for a contract.
func (s *Selection) Add(file, contract string, selector Selector) {
	if s.inner == nil {
		s.inner = make(map[string]map[string]map[Selector]struct{})
	}
	if s.inner[file] == nil {
		s.inner[file] = make(map[string]map[Selector]struct{})
	}
	if s.inner[file][contract] == nil {
		s.inner[file][contract] = make(map[Selector]struct{})
	}
	s.inner[file][contract][selector] = struct{}{}
}

// Contains reports whether a flag is selected for the contract, taking
// wildcards into account.
func (s Selection) Contains(file, contract string, selector Selector) bool {
	for _, f := range []string{file, "*"} {
		for _, c := range []string{contract, "*"} {
			set := s.inner[f][c]
			if _, ok := set[selector]; ok {
				return true
			}
			if _, ok := set[SelectorAll]; ok {
				return true
			}
		}
	}
	return false
}

// Extend adds the IR required for compilation to every selected contract.
func (s *Selection) Extend(viaIR bool) {
	for _, file := range s.inner {
		for _, contract := range file {
			contract[IRSelector(viaIR)] = struct{}{}
		}
	}
}

// RetainSolc keeps only the selectors produced by the frontend.
func (s *Selection) RetainSolc() {
	for _, file := range s.inner {
		for _, contract := range file {
			for selector := range contract {
				if !selector.IsReceivedFromSolc() {
					delete(contract, selector)
				}
			}
		}
	}
}

// ToPrune returns the flags added by the compiler but not requested by the
// user, which are removed from the output before it is returned.
func (s Selection) ToPrune(viaIR bool) []Selector {
	return []Selector{IRSelector(viaIR)}
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.inner) == 0
}

// MarshalJSON implements json.Marshaler; selectors are sorted.
func (s Selection) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string][]Selector, len(s.inner))
	for file, contracts := range s.inner {
		out[file] = make(map[string][]Selector, len(contracts))
		for contract, selectors := range contracts {
			out[file][contract] = slices.Sorted(maps.Keys(selectors))
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Selection) UnmarshalJSON(input []byte) error {
	var dec map[string]map[string][]Selector
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	s.inner = make(map[string]map[string]map[Selector]struct{}, len(dec))
	for file, contracts := range dec {
		s.inner[file] = make(map[string]map[Selector]struct{}, len(contracts))
		for contract, selectors := range contracts {
			set := make(map[Selector]struct{}, len(selectors))
			for _, selector := range selectors {
				set[selector] = struct{}{}
			}
			s.inner[file][contract] = set
		}
	}
	return nil
}
