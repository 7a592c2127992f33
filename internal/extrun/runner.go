// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extrun runs the external tools the pipeline collaborates with:
// the structural pre-converter, the style checker, and the dependency
// analyzer. Tool absence is detectable up front so each caller can degrade
// instead of failing mid-document.
package extrun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Executor abstracts command execution for testing.
type Executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec Executor = &osExecutor{}

// Tool is one external binary with availability detection.
type Tool struct {
	bin  string
	exec Executor
}

// NewTool returns a Tool for the named binary using the production executor.
func NewTool(bin string) *Tool {
	return newTool(bin, defaultExec)
}

// NewToolWithExecutor returns a Tool backed by a custom executor; tests use
// this to avoid touching the real PATH.
func NewToolWithExecutor(bin string, exec Executor) *Tool {
	return newTool(bin, exec)
}

func newTool(bin string, exec Executor) *Tool {
	return &Tool{bin: bin, exec: exec}
}

// Name returns the tool's binary name.
func (t *Tool) Name() string { return t.bin }

// Available reports whether the binary exists on PATH.
func (t *Tool) Available() bool {
	if t.bin == "" {
		return false
	}
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

// Run executes the tool with stdin piped in and returns captured stdout.
// A non-zero exit with output still returns the output alongside the error
// so callers that tolerate partial results (the style checker exits non-zero
// when it finds violations) can inspect both.
func (t *Tool) Run(ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	var out, errBuf bytes.Buffer
	err := t.exec.RunPiped(ctx, t.bin, args, stdin, &out, &errBuf)
	if err != nil {
		return out.String(), fmt.Errorf("running %s: %w (stderr: %s)", t.bin, err, errBuf.String())
	}
	return out.String(), nil
}
