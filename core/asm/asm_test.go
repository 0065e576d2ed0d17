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

package asm

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexString(b []byte) string { return hex.EncodeToString(b) }

func TestDecode(t *testing.T) {
	for i, tc := range []struct {
		want    int
		code    string
		wantErr string
	}{
		{2, "61000000", ""},                        // push2 stop
		{0, "6100", "incomplete instruction at 0"}, // truncated push2
		{2, "5900", ""},                            // msize stop
		{0, "", ""},
		{3, "5f5b00", ""}, // push0 jumpdest stop
		{1, "7f" + hexString(make([]byte, 32)), ""},
		{1, "00" + "7f" + hexString(make([]byte, 31)), "incomplete instruction at 1"},
	} {
		code, _ := hex.DecodeString(tc.code)
		instrs, err := Decode(code)
		if tc.wantErr != "" {
			assert.EqualError(t, err, tc.wantErr, "test %d", i)
		} else {
			assert.NoError(t, err, "test %d", i)
		}
		assert.Len(t, instrs, tc.want, "test %d", i)
	}
}

func TestDecodePush0HasNoArg(t *testing.T) {
	instrs, err := Decode([]byte{0x5f, 0x60, 0x2a})
	require.NoError(t, err)
	assert.Equal(t, []Instruction{
		{PC: 0, Op: 0x5f},
		{PC: 1, Op: 0x60, Arg: []byte{0x2a}},
	}, instrs)
}

func TestDisassemble(t *testing.T) {
	c := NewCompiler(Config{LabelWidth: 2})
	c.Feed(PushTag("end"), Op(0x56), Tag("end"), PushUint64(1), Op(0x00))
	code, errs := c.Compile()
	require.Empty(t, errs)

	instrs, err := Disassemble(code)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00000: PUSH2 0x0004",
		"00003: JUMP",
		"00004: JUMPDEST",
		"00005: PUSH1 0x01",
		"00007: STOP",
	}, instrs)

	// Trailing metadata that does not decode keeps the listing so far.
	instrs, err = Disassemble(append(code, 0x61, 0x01))
	assert.EqualError(t, err, "incomplete instruction at 8")
	assert.Len(t, instrs, 5)
}
