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

package common

import (
	"encoding/hex"
	"strings"

	"github.com/sunyihoo/solx/common/hexutil"
)

// Lengths of hashes in bytes.
const (
	// HashLength is the expected length of the hash
	HashLength = 32
)

// Hash represents the 32 byte Keccak256 hash of arbitrary data.
// Hash 表示任意数据的 32 字节 Keccak256 哈希。
type Hash [HashLength]byte

// BytesToHash sets b to hash.
// If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash) Hex() string { return hexutil.Encode(h[:]) }

// String implements the stringer interface and is used also by the logger when
// doing full logging into a file.
func (h Hash) String() string {
	return h.Hex()
}

// TerminalString implements log.TerminalStringer, formatting a string for console
// output during logging.
func (h Hash) TerminalString() string {
	return hex.EncodeToString(h[:3]) + ".." + hex.EncodeToString(h[29:])
}

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// MarshalText returns the hex representation of h.
func (h Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// ContractName is the name of a contract: the source path it was declared in
// and its short name inside that source.
// ContractName 由源文件路径和合约短名组成；FullPath 为 "path:name"。
type ContractName struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	FullPath string `json:"full_path"`
}

// NewContractName creates a contract name. The full path is `path:name`, or
// just the path when the short name is unknown (Yul and LLVM IR sources).
func NewContractName(path, name string) ContractName {
	full := path
	if name != "" {
		full = path + ":" + name
	}
	return ContractName{Path: path, Name: name, FullPath: full}
}

// ParseContractName splits a dotted `path:name` identifier into its components.
// The last colon separates the short name since paths may contain colons on
// some platforms.
func ParseContractName(fullPath string) ContractName {
	if i := strings.LastIndex(fullPath, ":"); i > 0 && i < len(fullPath)-1 {
		return NewContractName(fullPath[:i], fullPath[i+1:])
	}
	return NewContractName(fullPath, "")
}

// String implements fmt.Stringer.
func (n ContractName) String() string {
	return n.FullPath
}
