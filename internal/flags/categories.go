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

package flags

import "github.com/urfave/cli/v2"

// Help sections of --help. Flags without a category go under MISC.
// --help 输出中的标志分组。
const (
	CompilerCategory = "COMPILER"
	OutputCategory   = "OUTPUT"
	PerfCategory     = "PERFORMANCE TUNING"
	LoggingCategory  = "LOGGING AND DEBUGGING"
	MiscCategory     = "MISC"
)

func init() {
	for _, f := range []cli.Flag{cli.HelpFlag, cli.VersionFlag} {
		if f, ok := f.(*cli.BoolFlag); ok {
			f.Category = MiscCategory
		}
	}
}
