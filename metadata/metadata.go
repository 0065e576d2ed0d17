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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sunyihoo/solx/internal/version"
)

// Key is the key the compiler metadata is inserted under.
const Key = "solx"

// Optimizer is the optimizer configuration recorded in the metadata.
type Optimizer struct {
	Mode         string `json:"mode"`
	SizeFallback bool   `json:"size_fallback"`
}

// Metadata is the code generator part of a contract's metadata.
type Metadata struct {
	Version     string    `json:"version"`
	Optimizer   Optimizer `json:"optimizer_settings"`
	LLVMOptions []string  `json:"llvm_options"`
}

// New creates the metadata of the running compiler.
func New(optimizer Optimizer, llvmOptions []string) *Metadata {
	if llvmOptions == nil {
		llvmOptions = []string{}
	}
	return &Metadata{
		Version:     version.Semver().String(),
		Optimizer:   optimizer,
		LLVMOptions: llvmOptions,
	}
}

// InsertInto adds the metadata to the frontend metadata, a JSON object, and
// returns the final metadata string. An empty source is treated as an empty
// object.
// InsertInto 将编译器元数据插入前端元数据 JSON 对象的 "solx" 键下。
func (m *Metadata) InsertInto(source string) (string, error) {
	object := make(map[string]json.RawMessage)
	if strings.TrimSpace(source) != "" {
		if err := json.Unmarshal([]byte(source), &object); err != nil {
			return "", fmt.Errorf("invalid source metadata: %w", err)
		}
		if object == nil {
			object = make(map[string]json.RawMessage)
		}
	}
	enc, err := marshalNoEscape(m)
	if err != nil {
		return "", err
	}
	object[Key] = enc
	out, err := marshalNoEscape(object)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// marshalNoEscape is json.Marshal without HTML escaping: the metadata string
// is hashed, so source text such as "a < b && c" must stay byte for byte.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
