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
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sunyihoo/solx/core/asm"
)

// DebugConfig enables dumping the intermediate artifacts of code generation.
type DebugConfig struct {
	OutputDirectory string `json:"output_directory"`
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpIR writes a dump of the IR of a segment.
func (c *DebugConfig) DumpIR(module string, segment CodeSegment, code Code) error {
	return c.write(module, segment, "ir.txt", []byte(dumpConfig.Sdump(code)))
}

// DumpAssembly writes the disassembly of the bytecode of a segment.
func (c *DebugConfig) DumpAssembly(module string, segment CodeSegment, bytecode []byte) error {
	// Trailing data may not decode as instructions.
	lines, err := asm.Disassemble(bytecode)
	if err != nil {
		lines = append(lines, "; "+err.Error())
	}
	return c.write(module, segment, "asm", []byte(strings.Join(lines, "\n")+"\n"))
}

// Path returns the file a dump of the segment is written to.
func (c *DebugConfig) Path(module string, segment CodeSegment, ext string) string {
	name := strings.NewReplacer("/", "_", ":", ".", "\\", "_").Replace(module)
	return filepath.Join(c.OutputDirectory, fmt.Sprintf("%s.%s.%s", name, segment, ext))
}

func (c *DebugConfig) write(module string, segment CodeSegment, ext string, data []byte) error {
	if err := os.MkdirAll(c.OutputDirectory, 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.Path(module, segment, ext), data, 0o644)
}
