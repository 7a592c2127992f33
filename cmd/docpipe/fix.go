// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpipe/internal/kb"
	"github.com/pdiddy/docpipe/internal/lint"
	"github.com/pdiddy/docpipe/internal/repair"
)

var fixCmd = &cobra.Command{
	Use:   "fix [file]",
	Short: "Repair style violations in a document in place",
	Long: `Fix lints one document, applies every actionable repair, and rewrites
the file. Terms corrected by the fallback strategy are recorded in the
knowledge base so later runs enforce them document-wide.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := kb.Load(cfg.KnowledgeBase)
	if err != nil {
		return err
	}

	runner := lint.NewRunner(cfg.Linter)
	configPath := ""
	if runner.Available() {
		configPath, err = runner.WriteConfig(filepath.Dir(args[0]))
		if err != nil {
			return err
		}
	}

	findings, warnings, err := runner.Run(context.Background(), args[0], configPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var resolver repair.SubjectResolver
	if r := repair.NewExecResolver(cfg.Grammar); r != nil {
		resolver = r
	}
	engine := repair.NewEngine(store, cfg.Grammar, resolver)

	repaired, actions, repairWarnings, err := engine.Repair(context.Background(), string(data), findings)
	if err != nil {
		return err
	}
	for _, w := range repairWarnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(actions) > 0 {
		if err := os.WriteFile(args[0], []byte(repaired), 0o644); err != nil {
			return fmt.Errorf("writing repaired %s: %w", args[0], err)
		}
		if err := store.Persist(); err != nil {
			return err
		}
	}

	fmt.Printf("%s: %d finding(s), %d repair(s)\n", args[0], len(findings), len(actions))
	return nil
}

func init() {
	rootCmd.AddCommand(fixCmd)
}
