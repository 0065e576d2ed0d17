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
	"fmt"
	"os"
	"strings"

	"github.com/sunyihoo/solx/internal/version"
	"github.com/sunyihoo/solx/log"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
// NewApp 创建一个带有合理默认值的命令行应用。
func NewApp(usage string) *cli.App {
	git, _ := version.VCS()
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = version.Full(git)
	app.Usage = usage
	app.Copyright = "Copyright 2024 The solx Authors"
	return app
}

// CheckEnvVars iterates over all the environment variables and checks if any of
// them look like a CLI flag but is not consumed. This can be used to detect old
// or mistyped names.
// CheckEnvVars 检查看起来像命令行标志但未被使用的环境变量。
func CheckEnvVars(ctx *cli.Context, flags []cli.Flag, prefix string) {
	known := make(map[string]string)
	for _, f := range flags {
		docflag, ok := f.(cli.DocGenerationFlag)
		if !ok {
			continue
		}
		for _, envVar := range docflag.GetEnvVars() {
			known[envVar] = f.Names()[0]
		}
	}
	for key, value := range envWithPrefix(prefix) {
		if name, ok := known[key]; ok {
			log.Info("Config environment variable found", "envvar", key, "flag", name, "value", value)
			continue
		}
		log.Warn("Unknown config environment variable", "envvar", key)
	}
}

func envWithPrefix(prefix string) map[string]string {
	res := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix+"_") {
			continue
		}
		res[key] = value
	}
	return res
}

// EnvName returns the environment variable bound to a flag name,
// e.g. ("SOLX", "debug-output-dir") -> "SOLX_DEBUG_OUTPUT_DIR".
func EnvName(prefix, name string) string {
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return fmt.Sprintf("%s_%s", prefix, strings.ToUpper(name))
}
