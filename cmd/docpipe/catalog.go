// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpipe/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the document catalog (scan)",
	Long: `Catalog maintains the SQLite index of source documents. The converter
consults it to drop link labels for targets that declare their own title.`,
}

var catalogScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index source documents and their titles",
	Long: `Scan walks the input directory, extracts each document's declared title
(frontmatter or first level-one heading), and records it in the catalog.
Documents unchanged since the last scan are skipped.`,
	RunE: runCatalogScan,
}

func runCatalogScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.Open(cfg.Paths.CatalogDir)
	if err != nil {
		return err
	}
	defer cat.Close()

	summary, err := cat.Scan(context.Background(), cfg.Paths.InputDir,
		cfg.Conversion.SourceExtensions, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

func init() {
	catalogCmd.AddCommand(catalogScanCmd)
	rootCmd.AddCommand(catalogCmd)
}
