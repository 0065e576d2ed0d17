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

package metadata

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/solx/crypto"
	"pgregory.net/rapid"
)

func TestParseHashType(t *testing.T) {
	for name, want := range map[string]HashType{"none": HashNone, "Keccak256": HashKeccak256, "IPFS": HashIPFS} {
		got, err := ParseHashType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseHashType("sha1")
	assert.Error(t, err)

	var ht HashType
	require.NoError(t, json.Unmarshal([]byte(`"ipfs"`), &ht))
	assert.Equal(t, HashIPFS, ht)
}

func TestComputeNone(t *testing.T) {
	assert.Nil(t, Compute(HashNone, "{}"))
}

func TestKeccak256(t *testing.T) {
	h := Compute(HashKeccak256, "")
	require.NotNil(t, h)
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(h.Bytes))
}

func TestIPFS(t *testing.T) {
	// ipfs add --cid-version=0 of a file containing "hello world\n".
	h := Compute(HashIPFS, "hello world\n")
	require.NotNil(t, h)
	require.Len(t, h.Bytes, 34)
	assert.Equal(t, []byte{0x12, 0x20}, []byte(h.Bytes[:2]))
}

func TestDagPBFile(t *testing.T) {
	assert.Equal(t, []byte{0x0a, 0x07, 0x08, 0x02, 0x12, 0x01, 'x', 0x18, 0x01}, dagPBFile([]byte("x")))
	assert.Equal(t, []byte{0x0a, 0x04, 0x08, 0x02, 0x18, 0x00}, dagPBFile(nil))
}

func TestHashDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ht := rapid.SampledFrom([]HashType{HashKeccak256, HashIPFS}).Draw(t, "type")
		s := rapid.StringN(1, -1, -1).Draw(t, "metadata")
		a, b := Compute(ht, s), Compute(ht, s)
		if !assert.ObjectsAreEqual(a, b) {
			t.Fatalf("hash of %q differs between runs", s)
		}
		flipped := []byte(s)
		flipped[rapid.IntRange(0, len(s)-1).Draw(t, "byte")] ^= byte(1 << rapid.IntRange(0, 7).Draw(t, "bit"))
		if c := Compute(ht, string(flipped)); assert.ObjectsAreEqual(a.Bytes, c.Bytes) {
			t.Fatalf("hash collision for %q", s)
		}
	})
}

func TestInsertInto(t *testing.T) {
	m := New(Optimizer{Mode: "3"}, nil)
	out, err := m.InsertInto(`{"compiler":{"version":"0.8.28"},"language":"Solidity"}`)
	require.NoError(t, err)

	var dec map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &dec))
	assert.Contains(t, dec, "compiler")
	assert.Contains(t, dec, "language")
	assert.JSONEq(t, `{"version":"`+m.Version+`","optimizer_settings":{"mode":"3","size_fallback":false},"llvm_options":[]}`, string(dec[Key]))

	empty, err := m.InsertInto("")
	require.NoError(t, err)
	assert.Contains(t, empty, `"solx"`)

	_, err = m.InsertInto("[1,2]")
	assert.Error(t, err)
}

func TestInsertIntoKeepsSourceText(t *testing.T) {
	m := New(Optimizer{Mode: "z"}, []string{"-x<y>"})
	source := `{"sources":{"a.sol":{"content":"if (a < b && c > d) {}"}}}`
	out, err := m.InsertInto(source)
	require.NoError(t, err)
	assert.Contains(t, out, `"content":"if (a < b && c > d) {}"`)
	assert.Contains(t, out, `"llvm_options":["-x<y>"]`)
	assert.NotContains(t, out, `\u00`)
	assert.False(t, strings.HasSuffix(out, "\n"))

	// The hash covers the unescaped text.
	want := crypto.Keccak256Hash([]byte(out)).Bytes()
	assert.Equal(t, want, []byte(Compute(HashKeccak256, out).Bytes))
}
