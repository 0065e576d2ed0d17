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
	"fmt"
	"maps"
	"slices"
)

// Libraries maps source files to library names to deployed addresses.
type Libraries map[string]map[string]string

// LinkerSymbols returns the "path:name" symbols of the deployed libraries,
// sorted.
func (l Libraries) LinkerSymbols() []string {
	var out []string
	for _, file := range slices.Sorted(maps.Keys(l)) {
		for _, name := range slices.Sorted(maps.Keys(l[file])) {
			out = append(out, fmt.Sprintf("%s:%s", file, name))
		}
	}
	return out
}

// IsEmpty reports whether no library is specified.
func (l Libraries) IsEmpty() bool {
	return len(l) == 0
}
