// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpipe/internal/catalog"
	"github.com/pdiddy/docpipe/internal/convert"
	"github.com/pdiddy/docpipe/internal/extrun"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a Markdown document to AsciiDoc",
	Long: `Convert runs the structural conversion on one document and prints the
result to stdout. Shielded blocks (admonitions, collapsible sections, tab
groups) are rebuilt in AsciiDoc syntax; documents already in the target
syntax pass through unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	// The title index is optional here; without it every link keeps its label.
	var titles convert.TitleLookup
	if cat, err := catalog.Open(cfg.Paths.CatalogDir); err == nil {
		defer cat.Close()
		titles = cat
	}

	var pre *extrun.Tool
	if native, _ := cmd.Flags().GetBool("native"); !native && cfg.Conversion.PreconverterBin != "" {
		pre = extrun.NewTool(cfg.Conversion.PreconverterBin)
	}

	engine := convert.NewEngine(cfg.Conversion, titles, pre)
	out, warnings, err := engine.ConvertDocument(context.Background(), string(data), 0)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Print(out)
	return nil
}

func init() {
	convertCmd.Flags().Bool("native", false, "skip the external pre-converter; use native rules only")

	rootCmd.AddCommand(convertCmd)
}
