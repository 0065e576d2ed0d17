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

// Package standardjson holds the parts of the solc standard JSON interface
// the code generator reads and produces.
package standardjson

import (
	"encoding/json"
	"slices"

	"github.com/sunyihoo/solx/metadata"
)

// Optimizer is the "optimizer" section of the settings.
type Optimizer struct {
	// Mode is the optimization level: one of 0, 1, 2, 3, s, z.
	Mode         string `json:"mode,omitempty"`
	SizeFallback bool   `json:"sizeFallback,omitempty"`
}

// DefaultOptimizer returns the optimizer section used when none is given.
func DefaultOptimizer() Optimizer {
	return Optimizer{Mode: "3"}
}

// Metadata is the "metadata" section of the settings.
type Metadata struct {
	BytecodeHash      metadata.HashType `json:"bytecodeHash"`
	UseLiteralContent bool              `json:"useLiteralContent,omitempty"`
}

// Settings is the "settings" section of a standard JSON input.
type Settings struct {
	Optimizer       Optimizer `json:"optimizer"`
	Libraries       Libraries `json:"libraries,omitempty"`
	Remappings      []string  `json:"remappings,omitempty"`
	EVMVersion      string    `json:"evmVersion,omitempty"`
	ViaIR           bool      `json:"viaIR,omitempty"`
	OutputSelection Selection `json:"outputSelection"`
	Metadata        Metadata  `json:"metadata"`
	// LLVMOptions are extra code generator flags; they are never passed on
	// to the frontend.
	LLVMOptions []string `json:"-"`
}

// NewSettings creates the settings with the IR required for compilation
// selected.
func NewSettings(optimizer Optimizer, libraries Libraries, remappings []string, evmVersion string, viaIR bool, selection Selection, meta Metadata, llvmOptions []string) *Settings {
	remappings = slices.Clone(remappings)
	slices.Sort(remappings)
	remappings = slices.Compact(remappings)
	return &Settings{
		Optimizer:       optimizer,
		Libraries:       libraries,
		Remappings:      remappings,
		EVMVersion:      evmVersion,
		ViaIR:           viaIR,
		OutputSelection: selection,
		Metadata:        meta,
		LLVMOptions:     llvmOptions,
	}
}

// ExtendSelection adds the IR required for compilation to the output selection.
func (s *Settings) ExtendSelection() {
	s.OutputSelection.Extend(s.ViaIR)
}

// SelectionToPrune returns the flags to remove from the final output.
func (s *Settings) SelectionToPrune() []Selector {
	return s.OutputSelection.ToPrune(s.ViaIR)
}

// UnmarshalJSON implements json.Unmarshaler, filling in defaults.
func (s *Settings) UnmarshalJSON(input []byte) error {
	type settings Settings
	dec := settings{
		Optimizer: DefaultOptimizer(),
		Metadata:  Metadata{BytecodeHash: metadata.HashIPFS},
	}
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	*s = Settings(dec)
	if s.Optimizer.Mode == "" {
		s.Optimizer.Mode = DefaultOptimizer().Mode
	}
	if s.OutputSelection.IsEmpty() {
		s.OutputSelection = NewSelection(s.ViaIR)
	}
	return nil
}
