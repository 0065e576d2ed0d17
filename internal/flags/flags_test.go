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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestPathExpansion(t *testing.T) {
	home := HomeDir()
	t.Setenv("DDDXXX", "/tmp")
	tests := map[string]string{
		"/home/someuser/tmp": "/home/someuser/tmp",
		"~/tmp":              home + "/tmp",
		"~thisOtherUser/b/":  "~thisOtherUser/b",
		"$DDDXXX/a/b":        "/tmp/a/b",
		"/a/b/":              "/a/b",
		"":                   "",
	}
	for test, expected := range tests {
		assert.Equal(t, expected, expandPath(test), test)
	}
}

func TestDirectoryFlag(t *testing.T) {
	dir := t.TempDir()
	flag := DirectoryFlag("debug-output-dir", "", OutputCategory)

	app := NewApp("test")
	app.Flags = []cli.Flag{flag}
	var got string
	app.Action = func(ctx *cli.Context) error {
		got = ctx.String(flag.Name)
		return nil
	}
	require.NoError(t, app.Run([]string{"solx", "--debug-output-dir", dir + "/x/../y"}))
	assert.Equal(t, filepath.Join(dir, "y"), got)
}

func TestAutoEnvVars(t *testing.T) {
	threads := &cli.IntFlag{Name: "threads"}
	dump := DirectoryFlag("debug-output-dir", "", OutputCategory)
	own := &cli.StringFlag{Name: "config", EnvVars: []string{"MY_CONFIG"}}
	AutoEnvVars([]cli.Flag{threads, dump, own}, "SOLXTEST")

	assert.Equal(t, []string{"SOLXTEST_THREADS"}, threads.EnvVars)
	assert.Equal(t, []string{"SOLXTEST_DEBUG_OUTPUT_DIR"}, dump.EnvVars)
	assert.Equal(t, []string{"MY_CONFIG"}, own.EnvVars)

	dir := t.TempDir()
	t.Setenv("SOLXTEST_THREADS", "3")
	t.Setenv("SOLXTEST_DEBUG_OUTPUT_DIR", dir+"/a/..")
	app := NewApp("test")
	app.Flags = []cli.Flag{threads, dump}
	app.Action = func(ctx *cli.Context) error {
		assert.Equal(t, 3, ctx.Int("threads"))
		assert.Equal(t, dir, ctx.String("debug-output-dir"))
		assert.True(t, ctx.IsSet("debug-output-dir"))
		return nil
	}
	require.NoError(t, app.Run([]string{"solx"}))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SOLX_DEBUG_OUTPUT_DIR", EnvName("SOLX", "debug-output-dir"))
	assert.Equal(t, "SOLX_LOG_FORMAT", EnvName("SOLX", "log.format"))
}

func TestEnvWithPrefix(t *testing.T) {
	t.Setenv("SOLXTEST_THREADS", "4")
	os.Unsetenv("SOLXTEST_OTHER")
	assert.Equal(t, map[string]string{"SOLXTEST_THREADS": "4"}, envWithPrefix("SOLXTEST"))
}
