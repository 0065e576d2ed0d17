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

package flags

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

// DirectoryString is a flag value that expands ~ and $VARS and cleans the
// path as it is set, so ~/solx-debug/../out reads back as /home/me/out.
type DirectoryString string

func (s *DirectoryString) String() string { return string(*s) }

func (s *DirectoryString) Set(value string) error {
	*s = DirectoryString(expandPath(value))
	return nil
}

// DirectoryFlag returns a flag holding an expanded directory path. Read it
// back with ctx.String.
// DirectoryFlag 返回一个将输入扩展为规范路径的目录标志。
func DirectoryFlag(name, usage, category string) *cli.GenericFlag {
	return &cli.GenericFlag{
		Name:     name,
		Usage:    usage,
		Category: category,
		Value:    new(DirectoryString),
	}
}

// AutoEnvVars binds every flag to the environment variable EnvName(prefix,
// name) unless it already lists its own.
func AutoEnvVars(flags []cli.Flag, prefix string) {
	for _, f := range flags {
		env := []string{EnvName(prefix, f.Names()[0])}
		switch f := f.(type) {
		case *cli.StringFlag:
			f.EnvVars = withDefault(f.EnvVars, env)
		case *cli.StringSliceFlag:
			f.EnvVars = withDefault(f.EnvVars, env)
		case *cli.IntFlag:
			f.EnvVars = withDefault(f.EnvVars, env)
		case *cli.BoolFlag:
			f.EnvVars = withDefault(f.EnvVars, env)
		case *cli.GenericFlag:
			f.EnvVars = withDefault(f.EnvVars, env)
		}
	}
}

func withDefault(have, def []string) []string {
	if len(have) > 0 {
		return have
	}
	return def
}

// expandPath replaces a leading ~ with the home directory, expands
// environment variables and cleans the result. ~otheruser is left alone.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// HomeDir returns $HOME, falling back to the user database.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
