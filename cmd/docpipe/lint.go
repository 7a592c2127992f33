// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpipe/internal/lint"
)

var lintCmd = &cobra.Command{
	Use:   "lint [file]",
	Short: "Check a document against the configured style rules",
	Long: `Lint runs the external style checker on one document and prints the
normalized findings. A missing checker binary reports a warning and exits
cleanly with zero findings.`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	lint.WriteReport(os.Stdout, args[0], findings)
	if failOn, _ := cmd.Flags().GetBool("fail-on-findings"); failOn && len(findings) > 0 {
		return fmt.Errorf("%d finding(s)", len(findings))
	}
	return nil
}

func init() {
	lintCmd.Flags().Bool("fail-on-findings", false, "exit non-zero when any finding is reported")

	rootCmd.AddCommand(lintCmd)
}
