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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"unicode"

	"github.com/naoina/toml"
	"github.com/sunyihoo/solx/cmd/utils"
	"github.com/sunyihoo/solx/codegen"
	"github.com/urfave/cli/v2"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// compilerConfig holds the settings not carried by the project file.
type compilerConfig struct {
	Threads        int
	DebugOutputDir string   `toml:",omitempty"`
	LLVMOptions    []string `toml:",omitempty"`
}

type solxConfig struct {
	Compiler compilerConfig
}

func defaultConfig() solxConfig {
	return solxConfig{
		Compiler: compilerConfig{Threads: runtime.NumCPU()},
	}
}

func loadConfig(file string, cfg *solxConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the solxConfig based on the given command line
// parameters and config file.
func loadBaseConfig(ctx *cli.Context) solxConfig {
	// Load defaults
	cfg := defaultConfig()

	// Load config file.
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}

	// Apply flags.
	applyCompilerFlags(ctx, &cfg.Compiler)
	return cfg
}

func applyCompilerFlags(ctx *cli.Context, cfg *compilerConfig) {
	if ctx.IsSet(utils.ThreadsFlag.Name) {
		cfg.Threads = ctx.Int(utils.ThreadsFlag.Name)
	}
	if ctx.IsSet(utils.DebugOutputDirFlag.Name) {
		cfg.DebugOutputDir = ctx.String(utils.DebugOutputDirFlag.Name)
	}
	if ctx.IsSet(utils.LLVMOptionsFlag.Name) {
		cfg.LLVMOptions = ctx.StringSlice(utils.LLVMOptionsFlag.Name)
	}
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
}

// debugConfig returns the dump settings, nil if dumps are disabled.
func (c *compilerConfig) debugConfig() *codegen.DebugConfig {
	if c.DebugOutputDir == "" {
		return nil
	}
	return &codegen.DebugConfig{OutputDirectory: c.DebugOutputDir}
}
