// This file originates from Docker/Moby,
// https://github.com/moby/moby/blob/master/pkg/reexec/
// Licensed under Apache License 2.0: https://github.com/moby/moby/blob/master/LICENSE
// Copyright 2013-2018 Docker, Inc.

//go:build !linux

package reexec

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Self resolves the compiler binary from os.Args[0]: a bare name is looked up
// on PATH, anything else is made absolute. The result is what worker
// processes are spawned from when no executable has been set explicitly.
// 从 os.Args[0] 解析当前可执行文件路径。
func Self() string {
	name := os.Args[0]
	if filepath.Base(name) == name {
		if found, err := exec.LookPath(name); err == nil {
			return found
		}
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		// Abs only fails when the working directory is gone.
		return name
	}
	return abs
}
