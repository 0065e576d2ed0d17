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

// Package metadata builds the compiler metadata embedded into contract
// builds and computes its content hash.
package metadata

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sunyihoo/solx/common/hexutil"
	"github.com/sunyihoo/solx/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

// 元数据哈希 (Metadata hash): 对最终元数据字符串的 UTF-8 字节计算摘要。
// keccak256 直接哈希；ipfs 先封装为 UnixFS 文件节点（dag-pb），再计算 sha2-256 多重哈希。

// HashType selects the metadata hash function.
type HashType int

const (
	HashNone HashType = iota
	HashKeccak256
	HashIPFS
)

var hashTypeNames = map[HashType]string{
	HashNone:      "none",
	HashKeccak256: "keccak256",
	HashIPFS:      "ipfs",
}

// String implements fmt.Stringer.
func (t HashType) String() string {
	if name, ok := hashTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("HashType(%d)", int(t))
}

// ParseHashType parses a hash type name, case-insensitively.
func ParseHashType(name string) (HashType, error) {
	for t, n := range hashTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return HashNone, fmt.Errorf("unknown metadata hash type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t HashType) MarshalText() ([]byte, error) {
	if _, ok := hashTypeNames[t]; !ok {
		return nil, fmt.Errorf("invalid metadata hash type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *HashType) UnmarshalText(input []byte) error {
	parsed, err := ParseHashType(string(input))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Hash is a metadata digest.
type Hash struct {
	Type  HashType      `json:"type"`
	Bytes hexutil.Bytes `json:"bytes"`
}

// Compute hashes the metadata string with the given hash function. It
// returns nil for HashNone.
func Compute(t HashType, metadata string) *Hash {
	switch t {
	case HashKeccak256:
		return Keccak256([]byte(metadata))
	case HashIPFS:
		return IPFS([]byte(metadata))
	}
	return nil
}

// Keccak256 returns the keccak256 digest of data.
func Keccak256(data []byte) *Hash {
	return &Hash{Type: HashKeccak256, Bytes: crypto.Keccak256Hash(data).Bytes()}
}

// Multihash prefix of a 32 byte sha2-256 digest.
const (
	multihashSHA256 = 0x12
	multihashLength = 0x20
)

// IPFS returns the IPFS multihash of data stored as a single-chunk UnixFS
// file, as solc appends to the CBOR metadata.
func IPFS(data []byte) *Hash {
	digest := sha256.Sum256(dagPBFile(data))
	return &Hash{Type: HashIPFS, Bytes: append([]byte{multihashSHA256, multihashLength}, digest[:]...)}
}

// dagPBFile encodes data as a dag-pb node wrapping a UnixFS file message:
//
//	PBNode{Data: unixfs.Data{Type: File, Data: data, filesize: len(data)}}
func dagPBFile(data []byte) []byte {
	const unixfsFile = 2

	var unixfs []byte
	unixfs = protowire.AppendTag(unixfs, 1, protowire.VarintType)
	unixfs = protowire.AppendVarint(unixfs, unixfsFile)
	if len(data) > 0 {
		unixfs = protowire.AppendTag(unixfs, 2, protowire.BytesType)
		unixfs = protowire.AppendBytes(unixfs, data)
	}
	unixfs = protowire.AppendTag(unixfs, 3, protowire.VarintType)
	unixfs = protowire.AppendVarint(unixfs, uint64(len(data)))

	var node []byte
	node = protowire.AppendTag(node, 1, protowire.BytesType)
	return protowire.AppendBytes(node, unixfs)
}

// String returns the hex encoding of the digest.
func (h *Hash) String() string {
	return hexutil.Encode(h.Bytes)
}

// MarshalJSON is provided so that nil hashes encode as null.
func (h *Hash) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	type hash Hash
	return json.Marshal((*hash)(h))
}
