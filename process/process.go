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

// Package process runs the compilation of a single contract in a child
// process. The parent writes one JSON Input to the child's stdin and reads
// one JSON Result back from its stdout.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sunyihoo/solx/codegen"
	"github.com/sunyihoo/solx/evmbuild"
	"github.com/sunyihoo/solx/internal/debug"
	"github.com/sunyihoo/solx/internal/reexec"
	"github.com/sunyihoo/solx/log"
	"github.com/sunyihoo/solx/metadata"
	"github.com/sunyihoo/solx/project/contract"
	"github.com/sunyihoo/solx/solc/standardjson"
)

// 进程隔离 (Process isolation): 每个合约在独立的子进程中完成代码生成，
// 后端崩溃或内存泄漏不会影响其它合约的编译。

// RecursiveProcessFlag makes the executable act as a worker.
const RecursiveProcessFlag = "--recursive-process"

// ErrExecutableFrozen is returned when the executable is overridden after it
// has already been resolved or set.
var ErrExecutableFrozen = errors.New("executable path already resolved")

// Input is the request sent to a worker.
type Input struct {
	Contract          *contract.Contract        `json:"contract"`
	IdentifierPaths   map[string]string         `json:"identifier_paths"`
	DeployedLibraries []string                  `json:"deployed_libraries"`
	MetadataHashType  metadata.HashType         `json:"metadata_hash_type"`
	OptimizerSettings codegen.OptimizerSettings `json:"optimizer_settings"`
	LLVMOptions       []string                  `json:"llvm_options"`
	DebugConfig       *codegen.DebugConfig      `json:"debug_config"`
}

// Config returns the compilation settings carried by the input.
func (in *Input) Config() *contract.Config {
	return &contract.Config{
		IdentifierPaths:   in.IdentifierPaths,
		DeployedLibraries: mapset.NewThreadUnsafeSet(in.DeployedLibraries...),
		MetadataHashType:  in.MetadataHashType,
		Optimizer:         in.OptimizerSettings,
		LLVMOptions:       in.LLVMOptions,
		Debug:             in.DebugConfig,
	}
}

// Output is the successful response of a worker.
type Output struct {
	Build *evmbuild.Contract `json:"build"`
}

// Result is the envelope written by a worker: exactly one of Ok and Err is set.
type Result[T any] struct {
	Ok  *T                  `json:"Ok,omitempty"`
	Err *standardjson.Error `json:"Err,omitempty"`
}

func (r *Result[T]) validate() error {
	if (r.Ok == nil) == (r.Err == nil) {
		return errors.New("exactly one of Ok and Err must be set")
	}
	return nil
}

// Run handles one request: it reads the input from stdin, compiles the
// contract with the backend and writes the result to stdout. The returned
// error is only set if the result could not be written.
func Run(backend codegen.Backend, stdin io.Reader, stdout io.Writer) error {
	defer backend.Shutdown()

	var result Result[Output]
	if output, err := handle(backend, stdin); err != nil {
		result.Err = err
	} else {
		result.Ok = output
	}
	if err := json.NewEncoder(stdout).Encode(&result); err != nil {
		return fmt.Errorf("stdout writing error: %w", err)
	}
	return nil
}

func handle(backend codegen.Backend, stdin io.Reader) (*Output, *standardjson.Error) {
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, standardjson.Errorf(nil, "stdin reading error: %v", err)
	}
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, standardjson.Errorf(nil, "stdin parsing error: %v", err)
	}
	if input.Contract == nil {
		return nil, standardjson.Errorf(nil, "stdin parsing error: missing contract")
	}
	log.Debug("Compiling contract", "contract", input.Contract.Name.FullPath)

	build, err := input.Contract.Compile(backend, input.Config())
	if err != nil {
		return nil, standardjson.NewError(err.Error(), standardjson.NewSourceLocation(input.Contract.Name.Path))
	}
	return &Output{Build: build}, nil
}

// Main is the worker entry point. It returns the process exit code, which is
// zero whenever a result was written.
func Main(backend codegen.Backend) int {
	if err := Run(backend, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// Register installs the worker under RecursiveProcessFlag. The executable
// must call reexec.Init first thing in main.
func Register(newBackend func() codegen.Backend) {
	reexec.Register(RecursiveProcessFlag, func() {
		os.Exit(Main(newBackend()))
	})
}

// executableCell is a write-once executable path.
type executableCell struct {
	mu     sync.Mutex
	path   string
	frozen bool
}

var executable executableCell

func (c *executableCell) set(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return ErrExecutableFrozen
	}
	c.path, c.frozen = path, true
	return nil
}

func (c *executableCell) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.path, c.frozen = reexec.Self(), true
	}
	return c.path
}

// SetExecutable overrides the executable spawned as worker. It fails once
// the executable has been set or used.
func SetExecutable(path string) error {
	return executable.set(path)
}

// Executable returns the executable spawned as worker, the running binary
// unless overridden.
func Executable() string {
	return executable.get()
}

// Call compiles in a worker process. The path identifies the contract in
// diagnostics.
func Call[O any](ctx context.Context, path string, input any) (O, error) {
	return call[O](ctx, Executable(), path, input)
}

func call[O any](ctx context.Context, exe, path string, input any) (O, error) {
	var zero O
	location := standardjson.NewSourceLocation(path)

	payload, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("%s: input encoding error: %w", path, err)
	}
	cmd := exec.CommandContext(ctx, exe, RecursiveProcessFlag, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return zero, standardjson.Errorf(location, "%q subprocess spawning error: %v", exe, err)
	}
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return zero, fmt.Errorf("%s: %w", path, ctx.Err())
		}
		return zero, standardjson.Errorf(location, "%q subprocess spawning error: %v", exe, err)
	}
	logger := log.New("path", path, "pid", cmd.Process.Pid)
	logger.Trace("Spawned worker")

	_, werr := stdin.Write(payload)
	stdin.Close()
	err = cmd.Wait()
	if ctx.Err() != nil {
		return zero, fmt.Errorf("%s: %w", path, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return zero, standardjson.Errorf(location, "%q subprocess waiting error: %v", exe, err)
		}
		return zero, standardjson.Errorf(location, "%q subprocess failed with exit code %d:\n%s\n%s",
			exe, exitErr.ExitCode(), stdout.String(), stderr.String())
	}
	if werr != nil {
		return zero, standardjson.Errorf(location, "%q subprocess stdin writing error: %v", exe, werr)
	}

	result, err := decodeResult[O](stdout.Bytes())
	if err != nil {
		debug.LoudPanic(fmt.Sprintf("%q subprocess stdout parsing error: %v (stderr: %s)", exe, err, stderr.String()))
	}
	logger.Trace("Worker finished", "ok", result.Ok != nil)
	if result.Err != nil {
		return zero, result.Err
	}
	return *result.Ok, nil
}

// decodeResult strictly decodes exactly one envelope.
func decodeResult[O any](data []byte) (*Result[O], error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var result Result[O]
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after result")
	}
	if err := result.validate(); err != nil {
		return nil, err
	}
	return &result, nil
}
