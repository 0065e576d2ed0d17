// This file originates from Docker/Moby,
// https://github.com/moby/moby/blob/master/pkg/reexec/
// Licensed under Apache License 2.0: https://github.com/moby/moby/blob/master/LICENSE
// Copyright 2013-2018 Docker, Inc.

//go:build linux

package reexec

// Self points worker processes at /proc/self/exe, which keeps resolving to
// the running compiler even if the file on disk is replaced mid-build.
func Self() string {
	return "/proc/self/exe"
}
