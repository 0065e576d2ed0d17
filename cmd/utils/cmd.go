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

package utils

import (
	"fmt"
	"os"
)

// Fatalf formats a message to standard error and exits the program.
// The message is never written to standard output, which carries the
// compiler output.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}
