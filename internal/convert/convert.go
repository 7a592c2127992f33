// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements Markdown-to-AsciiDoc structural conversion
// with an ordered, priority-driven rule table and an optional external
// pre-converter backend.
package convert

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/docpipe/internal/extrun"
	"github.com/pdiddy/docpipe/internal/shield"
	"github.com/pdiddy/docpipe/pkg/types"
)

// TitleLookup reports whether a target document declares an explicit title.
// The converter uses it to decide between labeled and empty-label
// cross-references.
type TitleLookup interface {
	HasTitle(docID string) (bool, error)
}

// Context carries per-pass conversion state into rules.
type Context struct {
	// Depth is the block nesting depth: 0 for top-level text, >0 inside a
	// shielded block body. Structural headings cannot survive inside the
	// target's example blocks, so rules demote them when Depth > 0.
	Depth int

	// Preconverted marks a buffer the external pre-converter already
	// translated: single-asterisk spans in it are target bold, not source
	// italic, and the italic mapping must leave them alone.
	Preconverted bool

	// Titles resolves cross-reference targets; nil keeps every label.
	Titles TitleLookup

	Config types.ConversionConfig

	warnings []string
}

// Warn records a recovered conversion problem.
func (c *Context) Warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// rule is one element conversion, applied to non-fence text in priority
// order, highest first. Tables outrank everything so row syntax stays
// intact; emphasis runs before the rules that emit single-asterisk markers
// (demoted headings, list bullets) so the italic mapping never touches
// generated output.
type rule struct {
	name     string
	priority int
	apply    func(text string, ctx *Context) string
}

// defaultRules returns the built-in rule table. Configuration can reorder
// it by name through ConversionConfig.RulePriorities.
func defaultRules() []rule {
	return []rule{
		{name: "tables", priority: 90, apply: convertTables},
		{name: "emphasis", priority: 85, apply: convertEmphasis},
		{name: "headings", priority: 80, apply: convertHeadings},
		{name: "lists", priority: 70, apply: convertLists},
		{name: "images", priority: 65, apply: convertImages},
		{name: "links", priority: 60, apply: convertLinks},
	}
}

// Engine converts documents. One engine serves any number of documents;
// it holds no per-document state.
type Engine struct {
	cfg    types.ConversionConfig
	titles TitleLookup
	pre    *extrun.Tool
	rules  []rule
}

// NewEngine builds a converter. titles may be nil (labels always kept);
// pre may be nil (native rules only).
func NewEngine(cfg types.ConversionConfig, titles TitleLookup, pre *extrun.Tool) *Engine {
	rules := defaultRules()
	for i := range rules {
		if p, ok := cfg.RulePriorities[rules[i].name]; ok {
			rules[i].priority = p
		}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].priority > rules[j].priority })
	return &Engine{cfg: cfg, titles: titles, pre: pre, rules: rules}
}

// ConvertDocument runs the full shield -> convert -> restore pipeline over
// content. Block bodies recurse through the same pipeline with depth+1.
// Warnings report recovered structural problems; the error return is
// reserved for internal failures (leaked placeholders), never for
// malformed input.
func (e *Engine) ConvertDocument(ctx context.Context, content string, depth int) (string, []string, error) {
	sh, err := shield.Shield(content)
	if err != nil {
		return "", nil, err
	}
	warnings := append([]string{}, sh.Warnings...)

	buf := sh.Buffer
	preconverted := false
	if depth == 0 && e.pre != nil && e.pre.Available() {
		out, err := e.pre.Run(ctx, strings.NewReader(buf),
			"-f", "markdown", "-t", "asciidoc", "--wrap=none")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("pre-converter failed, using native rules: %v", err))
		} else {
			buf = out
			preconverted = true
		}
	}

	buf, w := e.convert(buf, depth, preconverted)
	warnings = append(warnings, w...)

	restored, w2, err := shield.Restore(buf, sh, depth, func(body string, d int) (string, []string, error) {
		return e.ConvertDocument(ctx, body, d)
	})
	warnings = append(warnings, w2...)
	if err != nil {
		return "", warnings, err
	}

	return strings.TrimRight(restored, "\n") + "\n", warnings, nil
}

// Convert applies the native rule table to buffer. Fenced code is isolated
// first so its content passes through byte-for-byte; only the fence
// delimiters themselves are rewritten.
func (e *Engine) Convert(buffer string, depth int) (string, []string) {
	return e.convert(buffer, depth, false)
}

func (e *Engine) convert(buffer string, depth int, preconverted bool) (string, []string) {
	ctx := &Context{Depth: depth, Preconverted: preconverted, Titles: e.titles, Config: e.cfg}

	segments := splitFences(buffer, ctx)
	var out strings.Builder
	for _, seg := range segments {
		if seg.fence {
			out.WriteString(seg.text)
			continue
		}
		text := seg.text
		for _, r := range e.rules {
			text = r.apply(text, ctx)
		}
		out.WriteString(text)
	}
	return out.String(), ctx.warnings
}
