// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpipe/internal/nav"
)

var navCmd = &cobra.Command{
	Use:   "nav [sidebars.js]",
	Short: "Generate an AsciiDoc navigation file from a sidebar definition",
	Long: `Nav extracts the sidebar object from a Docusaurus sidebars.js file and
writes nav.adoc into the output directory, with one cross-reference line
per document in declaration order.`,
	Args: cobra.ExactArgs(1),
	RunE: runNav,
}

func runNav(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(cfg.Paths.OutputDir, "nav.adoc")
	}

	if err := nav.Generate(args[0], out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func init() {
	navCmd.Flags().String("out", "", "navigation file path (default: <output-dir>/nav.adoc)")

	rootCmd.AddCommand(navCmd)
}
