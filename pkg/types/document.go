// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind identifies a shieldable structural block in the source dialect.
type BlockKind string

const (
	BlockAdmonition  BlockKind = "admonition"
	BlockCollapsible BlockKind = "collapsible"
	BlockTabGroup    BlockKind = "tab-group"
)

// Span is a half-open byte range [Start, End) into a document buffer.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// BlockDescriptor records one shielded structural block. Descriptors exist
// only for the duration of a single conversion pass; restoration consumes
// them.
type BlockDescriptor struct {
	// ID is unique within one document pass and maps 1:1 to a placeholder.
	ID int

	// Kind is the block type: admonition, collapsible, or tab-group.
	Kind BlockKind

	// Label carries the admonition type (note, tip, warning, ...) or the
	// tab item label; empty for collapsible blocks.
	Label string

	// Title is the optional block title or summary line.
	Title string

	// Body is the block content, itself recursively convertible.
	Body string

	// Depth is the nesting depth, 0 for top-level blocks.
	Depth int

	// Source is the byte span the block occupied in the original buffer.
	Source Span

	// Items holds the tab items of a tab-group block, in source order.
	Items []TabItem
}

// TabItem is one tab of a tab-group block.
type TabItem struct {
	Label string
	Body  string
}

// Document is a working buffer plus a revision counter. The counter
// increments on every mutating pass so callers can tell whether a repair
// pass ran over already-repaired text.
type Document struct {
	// ID is the document identifier, the input path relative to the input
	// directory without extension (e.g. "guides/install").
	ID string `json:"id" yaml:"id"`

	// Path is the source file path.
	Path string `json:"path" yaml:"path"`

	// Content is the current working buffer.
	Content string `json:"-" yaml:"-"`

	// Revision counts mutating passes applied to Content.
	Revision int `json:"revision" yaml:"revision"`
}

// Bump records one mutating pass over the buffer.
func (d *Document) Bump(content string) {
	d.Content = content
	d.Revision++
}
