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

// Package utils contains internal helper functions for solx commands.
package utils

import (
	"runtime"

	"github.com/sunyihoo/solx/internal/flags"
	"github.com/urfave/cli/v2"
)

// Compiler flags. Each is also read from SOLX_<NAME>, see flags.AutoEnvVars.

var (
	// Compiler settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.CompilerCategory,
	}
	LLVMOptionsFlag = &cli.StringSliceFlag{
		Name:     "llvm-options",
		Usage:    "Extra code generator options, recorded in the contract metadata",
		Category: flags.CompilerCategory,
	}

	// Output settings
	DebugOutputDirFlag = flags.DirectoryFlag(
		"debug-output-dir",
		"Directory to dump the IR and assembly of every compiled segment to",
		flags.OutputCategory,
	)

	// Performance tuning settings
	ThreadsFlag = &cli.IntFlag{
		Name:     "threads",
		Usage:    "Maximum number of contracts compiled concurrently",
		Value:    runtime.NumCPU(),
		Category: flags.PerfCategory,
	}
)
