// This file originates from Docker/Moby,
// https://github.com/moby/moby/blob/master/pkg/reexec/reexec.go
// Licensed under Apache License 2.0: https://github.com/moby/moby/blob/master/LICENSE
// Copyright 2013-2018 Docker, Inc.
//
// Package reexec facilitates the busybox style reexec of the solx binary.
// Handlers are registered with a name; the process dispatches to one of them
// when the name is either argv[0] of the exec or its first argument, so a
// worker can be started as `solx --recursive-process <path>`.

package reexec

import (
	"fmt"
	"os"
)

// reexec 的概念：同一个二进制文件在启动时根据参数决定是运行正常的命令行程序，
// 还是运行某个已注册的入口（例如编译子进程）。

var registeredInitializers = make(map[string]func())

// Register adds an initialization func under the specified name
// Register 在指定名称下注册一个初始化函数。
func Register(name string, initializer func()) {
	if _, exists := registeredInitializers[name]; exists {
		panic(fmt.Sprintf("reexec func already registered under name %q", name))
	}
	registeredInitializers[name] = initializer
}

// Registered reports whether an initializer exists under the name.
func Registered(name string) bool {
	_, ok := registeredInitializers[name]
	return ok
}

// Init is called as the first part of the exec process and returns true if an
// initialization function was called.
// Init 是 exec 过程的第一部分调用，如果调用了初始化函数，则返回 true。
func Init() bool {
	if initializer, ok := registeredInitializers[os.Args[0]]; ok {
		initializer()
		return true
	}
	if len(os.Args) > 1 {
		if initializer, ok := registeredInitializers[os.Args[1]]; ok {
			initializer()
			return true
		}
	}
	return false
}
