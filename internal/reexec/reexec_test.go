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

package reexec

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	Register("--reexec-test", func() {
		os.Stdout.WriteString("worker " + os.Args[2])
		os.Exit(0)
	})
}

func TestMain(m *testing.M) {
	if Init() {
		return
	}
	os.Exit(m.Run())
}

func TestSelfFlagDispatch(t *testing.T) {
	out, err := exec.Command(Self(), "--reexec-test", "a.sol:A").Output()
	require.NoError(t, err)
	assert.Equal(t, "worker a.sol:A", string(out))
}

func TestRegisterTwice(t *testing.T) {
	assert.True(t, Registered("--reexec-test"))
	assert.False(t, Registered("--unknown"))
	assert.Panics(t, func() { Register("--reexec-test", func() {}) })
}
