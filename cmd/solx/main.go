// Copyright 2024 The solx Authors
// This file is part of solx.
//
// solx is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// solx is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with solx. If not, see <http://www.gnu.org/licenses/>.

// solx is the command-line interface of the solx EVM code generator.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/sunyihoo/solx/cmd/utils"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/codegen/evmasm"
	"github.com/sunyihoo/solx/internal/debug"
	"github.com/sunyihoo/solx/internal/flags"
	"github.com/sunyihoo/solx/internal/reexec"
	"github.com/sunyihoo/solx/process"
	"github.com/urfave/cli/v2"
)

const envPrefix = "SOLX"

var app = flags.NewApp("the solx EVM code generator")

var compilerFlags = []cli.Flag{
	utils.ConfigFileFlag,
	utils.LLVMOptionsFlag,
	utils.DebugOutputDirFlag,
	utils.ThreadsFlag,
}

func init() {
	// Every contract is compiled by a copy of this binary.
	process.Register(func() codegen.Backend {
		return evmasm.New(evmasm.DefaultConfig)
	})

	app.Action = solx
	app.ArgsUsage = "<project.json>"
	app.Flags = slices.Concat(compilerFlags, debug.Flags)
	flags.AutoEnvVars(app.Flags, envPrefix)
	app.Before = func(ctx *cli.Context) error {
		flags.CheckEnvVars(ctx, app.Flags, envPrefix)
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if reexec.Init() {
		return
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// solx compiles the project named on the command line and prints the
// combined output.
func solx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one project file")
	}
	cfg := loadBaseConfig(ctx)
	p, err := loadProject(ctx.Args().First())
	if err != nil {
		return err
	}

	sigctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
	defer stop()
	out, err := compileProject(sigctx, p, &cfg.Compiler)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
