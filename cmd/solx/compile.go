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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/common/hexutil"
	"github.com/sunyihoo/solx/evmbuild"
	"github.com/sunyihoo/solx/internal/version"
	"github.com/sunyihoo/solx/ir"
	"github.com/sunyihoo/solx/log"
	"github.com/sunyihoo/solx/metadata"
	"github.com/sunyihoo/solx/process"
	"github.com/sunyihoo/solx/project/contract"
	"github.com/sunyihoo/solx/solc/standardjson"
	"golang.org/x/sync/errgroup"
)

// project is the input file: frontend settings and the IR of every contract.
type project struct {
	Settings        standardjson.Settings `json:"settings"`
	Contracts       []*contract.Contract  `json:"contracts"`
	IdentifierPaths map[string]string     `json:"identifier_paths"`
}

func loadProject(file string) (*project, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var p project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return &p, nil
}

// validate reports every malformed contract at once.
func (p *project) validate() error {
	var result *multierror.Error
	seen := make(map[string]bool, len(p.Contracts))
	for i, c := range p.Contracts {
		if c == nil || c.IR == nil {
			result = multierror.Append(result, fmt.Errorf("contract %d: missing IR", i))
			continue
		}
		if err := ir.Validate(c.IR); err != nil {
			result = multierror.Append(result, fmt.Errorf("contract %s: %w", c.Name.FullPath, err))
			continue
		}
		if seen[c.Name.FullPath] {
			result = multierror.Append(result, fmt.Errorf("contract %s: duplicate", c.Name.FullPath))
		}
		seen[c.Name.FullPath] = true
	}
	if _, err := codegen.NewOptimizerSettings(p.Settings.Optimizer.Mode, p.Settings.Optimizer.SizeFallback); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

type bytecodeOutput struct {
	Object            hexutil.Bytes        `json:"object"`
	UnlinkedLibraries []string             `json:"unlinkedLibraries,omitempty"`
	Relocations       []codegen.Relocation `json:"relocations,omitempty"`
}

func newBytecodeOutput(o *evmbuild.Object) *bytecodeOutput {
	return &bytecodeOutput{Object: o.Bytecode, UnlinkedLibraries: o.UnlinkedLibraries, Relocations: o.Relocations}
}

type evmOutput struct {
	Bytecode         *bytecodeOutput `json:"bytecode,omitempty"`
	DeployedBytecode *bytecodeOutput `json:"deployedBytecode,omitempty"`
}

type contractOutput struct {
	Metadata     string         `json:"metadata,omitempty"`
	MetadataHash *metadata.Hash `json:"metadataHash,omitempty"`
	EVM          *evmOutput     `json:"evm,omitempty"`
}

// output is the combined result printed to stdout.
type output struct {
	Contracts map[string]map[string]*contractOutput `json:"contracts"`
	Errors    []*standardjson.Error                 `json:"errors"`
	Version   string                                `json:"version"`
}

// add records a build, keeping only the selected outputs.
func (o *output) add(settings *standardjson.Settings, build *evmbuild.Contract) {
	o.Errors = append(o.Errors, build.Errors()...)

	file, name := build.Name.Path, build.Name.Name
	if name == "" {
		name = build.Deploy.Identifier
	}
	pruned := settings.SelectionToPrune()
	selected := func(s standardjson.Selector) bool {
		return !slices.Contains(pruned, s) && settings.OutputSelection.Contains(file, name, s)
	}

	out := new(contractOutput)
	if selected(standardjson.SelectorMetadata) {
		out.Metadata, out.MetadataHash = build.Metadata, build.MetadataHash
	}
	if selected(standardjson.SelectorBytecode) || selected(standardjson.SelectorDeployedBytecode) {
		out.EVM = new(evmOutput)
		if selected(standardjson.SelectorBytecode) {
			out.EVM.Bytecode = newBytecodeOutput(build.Deploy)
		}
		if selected(standardjson.SelectorDeployedBytecode) {
			out.EVM.DeployedBytecode = newBytecodeOutput(build.Runtime)
		}
	}
	if o.Contracts[file] == nil {
		o.Contracts[file] = make(map[string]*contractOutput)
	}
	o.Contracts[file][name] = out
}

// compileProject compiles every contract of the project in a worker process,
// at most cfg.Threads at a time. Contract failures are reported in the output;
// the returned error is set only if the compilation was interrupted.
func compileProject(ctx context.Context, p *project, cfg *compilerConfig) (*output, error) {
	optimizer, err := codegen.NewOptimizerSettings(p.Settings.Optimizer.Mode, p.Settings.Optimizer.SizeFallback)
	if err != nil {
		return nil, err
	}
	libraries := p.Settings.Libraries.LinkerSymbols()
	log.Info("Compiling project", "contracts", len(p.Contracts), "optimizer", optimizer, "threads", cfg.Threads, "libraries", len(libraries))

	var (
		builds = make([]*evmbuild.Contract, len(p.Contracts))
		failed = make([]*standardjson.Error, len(p.Contracts))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, c := range p.Contracts {
		input := &process.Input{
			Contract:          c,
			IdentifierPaths:   p.IdentifierPaths,
			DeployedLibraries: libraries,
			MetadataHashType:  p.Settings.Metadata.BytecodeHash,
			OptimizerSettings: optimizer,
			LLVMOptions:       cfg.LLVMOptions,
			DebugConfig:       cfg.debugConfig(),
		}
		g.Go(func() error {
			out, err := process.Call[process.Output](gctx, c.Name.Path, input)
			var serr *standardjson.Error
			switch {
			case errors.As(err, &serr):
				log.Debug("Contract failed", "contract", c.Name.FullPath, "err", serr.Message)
				failed[i] = serr
			case err != nil:
				return err
			default:
				builds[i] = out.Build
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &output{
		Contracts: make(map[string]map[string]*contractOutput),
		Errors:    []*standardjson.Error{},
		Version:   version.Semver().String(),
	}
	for i := range p.Contracts {
		if failed[i] != nil {
			out.Errors = append(out.Errors, failed[i])
			continue
		}
		out.add(&p.Settings, builds[i])
	}
	return out, nil
}
