// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lint runs the external style checker and normalizes its findings
// into uniform records for the repair engine.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docpipe/internal/extrun"
	"github.com/pdiddy/docpipe/pkg/types"
)

// valeIssue is the checker's native JSON record for one violation.
type valeIssue struct {
	Check       string `json:"Check"`
	Severity    string `json:"Severity"`
	Line        int    `json:"Line"`
	Span        [2]int `json:"Span"`
	Match       string `json:"Match"`
	Message     string `json:"Message"`
	Description string `json:"Description"`
	Action      struct {
		Name   string   `json:"Name"`
		Params []string `json:"Params"`
	} `json:"Action"`
}

// Runner executes the style checker over converted documents.
type Runner struct {
	tool *extrun.Tool
	cfg  types.LinterConfig
}

// NewRunner builds a Runner for the configured checker binary.
func NewRunner(cfg types.LinterConfig) *Runner {
	return &Runner{tool: extrun.NewTool(cfg.Bin), cfg: cfg}
}

// NewRunnerWithTool injects a tool; tests use this to avoid the real PATH.
func NewRunnerWithTool(cfg types.LinterConfig, tool *extrun.Tool) *Runner {
	return &Runner{tool: tool, cfg: cfg}
}

// Available reports whether the checker binary is on PATH.
func (r *Runner) Available() bool { return r.tool.Available() }

// WriteConfig generates the checker's ini file next to the target so the
// run picks up the configured styles and alert level. New style rules
// become auto-fixable with no code change here: any rule that carries a
// suggestion is actionable downstream.
func (r *Runner) WriteConfig(dir string) (string, error) {
	styles := "Vale"
	if len(r.cfg.Styles) > 0 {
		styles = strings.Join(r.cfg.Styles, ", ")
	}

	var b strings.Builder
	if r.cfg.StylesPath != "" {
		fmt.Fprintf(&b, "StylesPath = %s\n", r.cfg.StylesPath)
	}
	fmt.Fprintf(&b, "MinAlertLevel = %s\n\n", r.cfg.MinAlertLevel)
	b.WriteString("[*.{adoc,md}]\n")
	fmt.Fprintf(&b, "BasedOnStyles = %s\n", styles)

	// The output tree may not exist yet on a fresh run.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating checker config directory: %w", err)
	}
	path := filepath.Join(dir, ".vale.ini")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing checker config: %w", err)
	}
	return path, nil
}

// Run lints the file at path and returns normalized findings. A missing
// checker binary degrades to zero findings with a warning; the checker's
// non-zero exit on violations is expected and its JSON output is still
// consumed.
func (r *Runner) Run(ctx context.Context, path, configPath string) ([]types.Finding, []string, error) {
	if !r.Available() {
		return nil, []string{fmt.Sprintf("style checker %q not found; skipping lint", r.cfg.Bin)}, nil
	}

	args := []string{"--output=JSON"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	args = append(args, path)

	out, runErr := r.tool.Run(ctx, nil, args...)
	if strings.TrimSpace(out) == "" {
		if runErr != nil {
			return nil, []string{fmt.Sprintf("style checker produced no output: %v", runErr)}, nil
		}
		return nil, nil, nil
	}

	var raw map[string][]valeIssue
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing checker output: %w", err)
	}

	var issues []valeIssue
	for _, fileIssues := range raw {
		issues = append(issues, fileIssues...)
	}
	return Normalize(issues, r.cfg), nil, nil
}
