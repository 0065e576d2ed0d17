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

// Package version reports the compiler release and the revision it was built
// from.
package version

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/blang/semver"
	"github.com/sunyihoo/solx/version"
)

const modulePath = "github.com/sunyihoo/solx"

// Release is major.minor.patch followed by the release channel, e.g.
// "0.1.0-unstable". It is what contract metadata records as the compiler
// version, so it carries no commit information.
var Release = fmt.Sprintf("%d.%d.%d-%s", version.Major, version.Minor, version.Patch, version.Meta)

// Semver returns Release parsed as a semantic version.
// Semver 返回解析后的语义化版本，不包含提交信息。
func Semver() semver.Version {
	return semver.MustParse(Release)
}

// Linker-injected revision, e.g.
//
//	go build -ldflags "-X github.com/sunyihoo/solx/internal/version.gitCommit=..."
var gitCommit, gitDate string

// VCSInfo is the revision the binary was built from. Date is YYYYMMDD.
type VCSInfo struct {
	Commit string
	Date   string
	Dirty  bool
}

// VCS returns the build revision: linker-injected values when present,
// otherwise the VCS stamp the go tool embeds into main module builds.
// VCS 返回构建时的版本控制信息，优先使用链接时注入的值。
func VCS() (VCSInfo, bool) {
	if gitCommit != "" {
		return VCSInfo{Commit: gitCommit, Date: gitDate}, true
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path != modulePath {
		return VCSInfo{}, false
	}
	return buildInfoVCS(info)
}

func buildInfoVCS(info *debug.BuildInfo) (VCSInfo, bool) {
	var vcs VCSInfo
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			vcs.Commit = s.Value
		case "vcs.modified":
			vcs.Dirty = s.Value == "true"
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				vcs.Date = t.UTC().Format("20060102")
			}
		}
	}
	return vcs, vcs.Commit != "" && vcs.Date != ""
}

// Full is the string printed by --version: Release, then the short commit,
// then the commit date for non-stable channels, then "dirty" for builds from a
// modified tree.
func Full(vcs VCSInfo) string {
	s := Release
	if len(vcs.Commit) >= 8 {
		s += "-" + vcs.Commit[:8]
	}
	if version.Meta != "stable" && vcs.Date != "" {
		s += "-" + vcs.Date
	}
	if vcs.Dirty {
		s += "-dirty"
	}
	return s
}
