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

// Package crypto holds the hash primitives used for metadata digests.
package crypto

import (
	"github.com/sunyihoo/solx/common"
	"golang.org/x/crypto/sha3"
)

// keccak256 streams every part of data through one legacy (pre-NIST padding)
// Keccak-256 state, the variant the EVM uses.
func keccak256(out []byte, data [][]byte) {
	d := sha3.NewLegacyKeccak256()
	for _, part := range data {
		d.Write(part)
	}
	d.Sum(out[:0])
}

// Keccak256 returns the digest of the concatenation of data.
// Keccak256 返回所有输入拼接后的哈希值。
func Keccak256(data ...[]byte) []byte {
	out := make([]byte, 0, common.HashLength)
	keccak256(out, data)
	return out[:common.HashLength]
}

// Keccak256Hash is Keccak256 returning a common.Hash.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	keccak256(h[:], data)
	return h
}
