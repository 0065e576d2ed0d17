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
	"strings"
)

// 标准 JSON 错误 (Standard JSON error): solc --standard-json 输出中 "errors" 数组的元素。
// 编译器生成的诊断信息和子进程失败都以这种结构返回给调用方。

// Severity levels of an Error.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// SourceLocation points to the source an error is about.
type SourceLocation struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// NewSourceLocation creates a location covering a whole file.
func NewSourceLocation(file string) *SourceLocation {
	return &SourceLocation{File: file, Start: -1, End: -1}
}

// Error is a structured compiler diagnostic.
type Error struct {
	Component        string          `json:"component"`
	ErrorCode        *string         `json:"errorCode"`
	FormattedMessage string          `json:"formattedMessage"`
	Message          string          `json:"message"`
	Severity         string          `json:"severity"`
	SourceLocation   *SourceLocation `json:"sourceLocation,omitempty"`
	Type             string          `json:"type"`
}

// NewError creates an error diagnostic.
func NewError(message string, location *SourceLocation) *Error {
	return newDiagnostic("Error", SeverityError, message, location)
}

// NewWarning creates a warning diagnostic.
func NewWarning(message string, location *SourceLocation) *Error {
	return newDiagnostic("Warning", SeverityWarning, message, location)
}

// Errorf creates an error diagnostic from a format string.
func Errorf(location *SourceLocation, format string, args ...any) *Error {
	return NewError(fmt.Sprintf(format, args...), location)
}

func newDiagnostic(typ, severity, message string, location *SourceLocation) *Error {
	var b strings.Builder
	b.WriteString(typ)
	b.WriteString(": ")
	b.WriteString(message)
	if location != nil && location.File != "" {
		b.WriteString("\n --> ")
		b.WriteString(location.File)
		b.WriteByte('\n')
	}
	return &Error{
		Component:        "general",
		FormattedMessage: b.String(),
		Message:          message,
		Severity:         severity,
		SourceLocation:   location,
		Type:             typ,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.FormattedMessage
}

// IsError reports whether the diagnostic is an error rather than a warning.
func (e *Error) IsError() bool {
	return e.Severity == SeverityError
}

// CollectErrors returns the error-severity diagnostics of a list.
func CollectErrors(diagnostics []*Error) []*Error {
	var out []*Error
	for _, d := range diagnostics {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}
