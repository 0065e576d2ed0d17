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

package codegen

import (
	"fmt"
	"strings"

	"github.com/sunyihoo/solx/metadata"
)

// OptimizerSettings selects the optimization level of the generated code.
type OptimizerSettings struct {
	// Mode is one of 0, 1, 2, 3 (performance) or s, z (size).
	Mode         string `json:"mode"`
	SizeFallback bool   `json:"size_fallback"`
}

const optimizerModes = "0123sz"

// NewOptimizerSettings validates an optimization mode.
func NewOptimizerSettings(mode string, sizeFallback bool) (OptimizerSettings, error) {
	if len(mode) != 1 || !strings.Contains(optimizerModes, mode) {
		return OptimizerSettings{}, fmt.Errorf("invalid optimization mode %q, expected one of %s", mode, strings.Join(strings.Split(optimizerModes, ""), ", "))
	}
	return OptimizerSettings{Mode: mode, SizeFallback: sizeFallback}, nil
}

// DefaultOptimizerSettings returns the settings used when none are given.
func DefaultOptimizerSettings() OptimizerSettings {
	return OptimizerSettings{Mode: "3"}
}

// IsOptimized reports whether any optimization is enabled.
func (s OptimizerSettings) IsOptimized() bool {
	return s.Mode != "" && s.Mode != "0"
}

// IsSizeOptimized reports whether code size is preferred over performance.
func (s OptimizerSettings) IsSizeOptimized() bool {
	return s.Mode == "s" || s.Mode == "z" || s.SizeFallback
}

// backEnd returns the back-end level; size modes run the back end at 3.
func (s OptimizerSettings) backEnd() string {
	switch s.Mode {
	case "s", "z":
		return "3"
	case "":
		return "0"
	}
	return s.Mode
}

// String returns the short form, e.g. "M3B3" or "MzB3".
func (s OptimizerSettings) String() string {
	mode := s.Mode
	if mode == "" {
		mode = "0"
	}
	out := "M" + mode + "B" + s.backEnd()
	if s.SizeFallback {
		out += "(size fallback)"
	}
	return out
}

// Metadata returns the settings as recorded in the contract metadata.
func (s OptimizerSettings) Metadata() metadata.Optimizer {
	return metadata.Optimizer{Mode: s.Mode, SizeFallback: s.SizeFallback}
}
