package types

import "time"

// PathsConfig holds the directory layout the pipeline works in.
type PathsConfig struct {
	// InputDir is the directory scanned for source Markdown documents.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir is the directory converted AsciiDoc documents are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// CatalogDir is the directory holding the document catalog database.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir" mapstructure:"catalog_dir"`
}

// ConversionConfig holds settings for the structural converter.
type ConversionConfig struct {
	// PreconverterBin is the external pre-converter binary (default "pandoc").
	// An empty value or a missing binary disables the pre-converter; the
	// native rule table then handles every element.
	PreconverterBin string `json:"preconverter_bin" yaml:"preconverter_bin" mapstructure:"preconverter_bin"`

	// SourceExtensions lists the file extensions treated as source documents.
	SourceExtensions []string `json:"source_extensions" yaml:"source_extensions" mapstructure:"source_extensions"`

	// ExtensionMap rewrites link extensions when building cross-references
	// (e.g. "md" -> "adoc").
	ExtensionMap map[string]string `json:"extension_map" yaml:"extension_map" mapstructure:"extension_map"`

	// PathNormalization lists regex/replacement pairs applied to link paths
	// before cross-reference emission.
	PathNormalization []RewriteRule `json:"path_normalization" yaml:"path_normalization" mapstructure:"path_normalization"`

	// RulePriorities overrides the priority of named conversion rules.
	// Higher priority rules run first.
	RulePriorities map[string]int `json:"rule_priorities" yaml:"rule_priorities" mapstructure:"rule_priorities"`
}

// RewriteRule is a single regex rewrite applied during path normalization.
type RewriteRule struct {
	Regex       string `json:"regex" yaml:"regex" mapstructure:"regex"`
	Replacement string `json:"replacement" yaml:"replacement" mapstructure:"replacement"`
}

// LinterConfig holds settings for the external style checker.
type LinterConfig struct {
	// Bin is the style checker binary (default "vale").
	Bin string `json:"bin" yaml:"bin" mapstructure:"bin"`

	// StylesPath is the directory containing style rule packages.
	StylesPath string `json:"styles_path" yaml:"styles_path" mapstructure:"styles_path"`

	// Styles lists the style packages enabled in the generated config.
	Styles []string `json:"styles" yaml:"styles" mapstructure:"styles"`

	// MinAlertLevel is the minimum severity reported (default "suggestion").
	MinAlertLevel string `json:"min_alert_level" yaml:"min_alert_level" mapstructure:"min_alert_level"`

	// SuggestionPattern extracts a quoted replacement candidate from a
	// finding message when the checker supplies no structured action.
	SuggestionPattern string `json:"suggestion_pattern" yaml:"suggestion_pattern" mapstructure:"suggestion_pattern"`

	// RemovalTrigger marks findings whose repair is deletion: a message
	// containing this substring (default "removing") asks for the flagged
	// text to be removed rather than replaced.
	RemovalTrigger string `json:"removal_trigger" yaml:"removal_trigger" mapstructure:"removal_trigger"`

	// IgnoredPlaceholders lists structured action values that are rule
	// templates rather than real replacements and must not be applied.
	IgnoredPlaceholders []string `json:"ignored_placeholders" yaml:"ignored_placeholders" mapstructure:"ignored_placeholders"`
}

// GrammarConfig holds settings for the tense-shift strategy.
type GrammarConfig struct {
	// AnalyzerBin is the external dependency-analysis binary. It receives a
	// clause on stdin and prints the grammatical subject and its number as
	// JSON. Empty or missing disables the tense-shift strategy.
	AnalyzerBin string `json:"analyzer_bin" yaml:"analyzer_bin" mapstructure:"analyzer_bin"`

	// VerbOverrides maps a base verb to its progressive form, consulted
	// before the algorithmic conjugation (e.g. "be" -> "being").
	VerbOverrides map[string]string `json:"verb_overrides" yaml:"verb_overrides" mapstructure:"verb_overrides"`
}

// KnowledgeBaseConfig holds settings for the persistent term store.
type KnowledgeBaseConfig struct {
	// Path is the YAML file the knowledge base is loaded from and
	// persisted to (default "data/knowledge.yaml").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// BrandTerms seeds configured-origin entries: variant -> canonical form.
	BrandTerms map[string]string `json:"brand_terms" yaml:"brand_terms" mapstructure:"brand_terms"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Paths         PathsConfig         `json:"paths" yaml:"paths" mapstructure:"paths"`
	Conversion    ConversionConfig    `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Linter        LinterConfig        `json:"linter" yaml:"linter" mapstructure:"linter"`
	Grammar       GrammarConfig       `json:"grammar" yaml:"grammar" mapstructure:"grammar"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base" mapstructure:"knowledge_base"`

	// Jobs is the number of documents processed in parallel (default 1).
	Jobs int `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
}

// Defaults fills zero-valued fields with working defaults.
func (c *PipelineConfig) Defaults() {
	if c.Paths.InputDir == "" {
		c.Paths.InputDir = "data/inputs"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "data/outputs"
	}
	if c.Paths.CatalogDir == "" {
		c.Paths.CatalogDir = "data/catalog"
	}
	if c.Conversion.PreconverterBin == "" {
		c.Conversion.PreconverterBin = "pandoc"
	}
	if len(c.Conversion.SourceExtensions) == 0 {
		c.Conversion.SourceExtensions = []string{".md", ".mdx"}
	}
	if len(c.Conversion.ExtensionMap) == 0 {
		c.Conversion.ExtensionMap = map[string]string{"md": "adoc", "mdx": "adoc"}
	}
	if c.Linter.Bin == "" {
		c.Linter.Bin = "vale"
	}
	if c.Linter.MinAlertLevel == "" {
		c.Linter.MinAlertLevel = "suggestion"
	}
	if c.Linter.SuggestionPattern == "" {
		c.Linter.SuggestionPattern = `'(.*?)'`
	}
	if c.Linter.RemovalTrigger == "" {
		c.Linter.RemovalTrigger = "removing"
	}
	if c.KnowledgeBase.Path == "" {
		c.KnowledgeBase.Path = "data/knowledge.yaml"
	}
	if c.Jobs <= 0 {
		c.Jobs = 1
	}
}

// RunTimestamp formats t the way pipeline records store times.
func RunTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
