// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docpipe CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpipe/internal/catalog"
	"github.com/pdiddy/docpipe/internal/convert"
	"github.com/pdiddy/docpipe/internal/extrun"
	"github.com/pdiddy/docpipe/internal/kb"
	"github.com/pdiddy/docpipe/internal/lint"
	"github.com/pdiddy/docpipe/internal/pipeline"
	"github.com/pdiddy/docpipe/internal/repair"
	"github.com/pdiddy/docpipe/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docpipe CLI.
var rootCmd = &cobra.Command{
	Use:   "docpipe",
	Short: "Markdown-to-AsciiDoc documentation pipeline",
	Long: `docpipe converts Markdown documentation trees to AsciiDoc, checks the
output against configured style rules, and repairs what it can. Special
blocks (admonitions, collapsible sections, tab groups) are shielded from
the converter and rebuilt in the target syntax.

Each pipeline stage is a subcommand: convert, lint, fix, nav, and catalog.
The run command chains convert, lint, and (with --fix) repair over the
whole input tree.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docpipe.yaml or ~/.config/docpipe/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docpipe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docpipe"))
		}
	}

	viper.SetEnvPrefix("DOCPIPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the pipeline configuration from viper with
// working defaults for everything left unset.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	cfg.Defaults()
	return cfg, nil
}

// buildPipeline assembles all stage engines from the configuration. The
// returned cleanup closes the catalog database.
func buildPipeline(cfg types.PipelineConfig) (*pipeline.Pipeline, func(), error) {
	store, err := kb.Load(cfg.KnowledgeBase)
	if err != nil {
		return nil, nil, err
	}

	cat, err := catalog.Open(cfg.Paths.CatalogDir)
	if err != nil {
		return nil, nil, err
	}

	var pre *extrun.Tool
	if cfg.Conversion.PreconverterBin != "" {
		pre = extrun.NewTool(cfg.Conversion.PreconverterBin)
	}
	engine := convert.NewEngine(cfg.Conversion, cat, pre)

	linter := lint.NewRunner(cfg.Linter)

	var resolver repair.SubjectResolver
	if r := repair.NewExecResolver(cfg.Grammar); r != nil {
		resolver = r
	}
	repairer := repair.NewEngine(store, cfg.Grammar, resolver)

	p := pipeline.New(cfg, engine, linter, repairer, store, cat)
	return p, func() { cat.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
