// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpipe/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert, lint, and optionally repair the whole input tree",
	Long: `Run processes every source document under the input directory:
conversion to AsciiDoc, style checking, and (with --fix) automatic repair
of actionable findings. Learned term corrections are persisted to the
knowledge base at the end of a --fix run.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	lintOnly, _ := cmd.Flags().GetBool("lint-only")
	fix, _ := cmd.Flags().GetBool("fix")
	jobs, _ := cmd.Flags().GetInt("jobs")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	if file != "" {
		// Single-file mode narrows discovery to the file's directory.
		cfg.Paths.InputDir = file
	}

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := pipeline.Options{LintOnly: lintOnly, Fix: fix}
	summary, _, err := p.RunAll(context.Background(), opts, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed", summary.Failed)
	}
	return nil
}

func init() {
	runCmd.Flags().String("file", "", "process a single file instead of the input tree")
	runCmd.Flags().Bool("lint-only", false, "skip conversion; check existing documents in place")
	runCmd.Flags().Bool("fix", false, "apply repairs and persist learned terms")
	runCmd.Flags().Int("jobs", 0, "documents processed in parallel (0 = use config)")

	rootCmd.AddCommand(runCmd)
}
