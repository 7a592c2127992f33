// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nav generates an AsciiDoc navigation file from a Docusaurus
// sidebar definition. The sidebar object literal is lifted out of the
// JavaScript source, reshaped into JSON, and walked in declaration order.
package nav

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

var (
	sidebarsAssignRe = regexp.MustCompile(`(?s)(?:const[ \t]+sidebars[ \t]*=|module\.exports[ \t]*=)[ \t]*\{`)
	bareKeyRe        = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)\s*:`)
	lineCommentRe    = regexp.MustCompile(`(?m)^\s*//.*$`)
	trailingCommaRe  = regexp.MustCompile(`,(\s*[}\]])`)
)

// Generate reads a sidebar definition at srcPath and writes the navigation
// document to dstPath. Document ids become cross-references into the
// converted tree; category labels become unlinked list entries. A sidebar
// that cannot be parsed fails this call only, never the surrounding run.
func Generate(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading sidebar definition: %w", err)
	}

	literal, err := extractLiteral(string(data))
	if err != nil {
		return fmt.Errorf("extracting sidebar object from %s: %w", srcPath, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(jsToJSON(literal)), &root); err != nil {
		return fmt.Errorf("parsing sidebar object from %s: %w", srcPath, err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return fmt.Errorf("sidebar definition in %s is not an object", srcPath)
	}

	var b strings.Builder
	// Mapping content alternates key, value; iteration preserves the
	// order the sidebars were declared in.
	for i := 0; i+1 < len(doc.Content); i += 2 {
		renderItems(&b, doc.Content[i+1], 1)
	}

	if err := os.WriteFile(dstPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing navigation file: %w", err)
	}
	return nil
}

// extractLiteral finds the sidebar assignment and returns the balanced
// object literal that follows it.
func extractLiteral(src string) (string, error) {
	loc := sidebarsAssignRe.FindStringIndex(src)
	if loc == nil {
		return "", fmt.Errorf("no sidebar assignment found")
	}
	start := loc[1] - 1 // the opening brace matched by the pattern

	depth := 0
	inString := byte(0)
	for i := start; i < len(src); i++ {
		c := src[i]
		if inString != 0 {
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inString = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced braces in sidebar object")
}

// jsToJSON reshapes a sidebar object literal into JSON: comments out,
// bare keys quoted, single quotes doubled, trailing commas dropped.
func jsToJSON(literal string) string {
	out := lineCommentRe.ReplaceAllString(literal, "")
	out = bareKeyRe.ReplaceAllString(out, `$1"$2":`)
	out = strings.ReplaceAll(out, "'", `"`)
	out = trailingCommaRe.ReplaceAllString(out, "$1")
	return out
}

// renderItems walks one sidebar value, emitting a list line per entry.
func renderItems(b *strings.Builder, node *yaml.Node, depth int) {
	switch node.Kind {
	case yaml.SequenceNode:
		for _, child := range node.Content {
			renderItems(b, child, depth)
		}
	case yaml.ScalarNode:
		writeEntry(b, depth, node.Value, "")
	case yaml.MappingNode:
		fields := mappingFields(node)
		switch {
		case fields["items"] != nil:
			label := fields["label"].valueOr("")
			// A category with a landing page links to it; a bare category
			// is an unlinked list entry.
			if id, ok := categoryLandingPage(fields); ok {
				writeEntry(b, depth, id, label)
			} else {
				fmt.Fprintf(b, "%s %s\n", strings.Repeat("*", depth), label)
			}
			renderItems(b, fields["items"].node, depth+1)
		case fields["id"] != nil:
			writeEntry(b, depth, fields["id"].node.Value, fields["label"].valueOr(""))
		}
	}
}

// writeEntry emits one cross-reference line. An empty label falls back to
// the title-cased final path segment of the document id.
func writeEntry(b *strings.Builder, depth int, docID, label string) {
	if label == "" {
		label = titleFromID(docID)
	}
	fmt.Fprintf(b, "%s xref:%s.adoc[%s]\n", strings.Repeat("*", depth), docID, label)
}

// categoryLandingPage returns the document id a category links to, if any.
func categoryLandingPage(fields map[string]*field) (string, bool) {
	link := fields["link"]
	if link == nil || link.node.Kind != yaml.MappingNode {
		return "", false
	}
	lf := mappingFields(link.node)
	if lf["id"] == nil {
		return "", false
	}
	return lf["id"].node.Value, true
}

// field wraps an optional mapping value so missing keys read cleanly.
type field struct {
	node *yaml.Node
}

func (f *field) valueOr(def string) string {
	if f == nil || f.node == nil {
		return def
	}
	return f.node.Value
}

func mappingFields(node *yaml.Node) map[string]*field {
	fields := map[string]*field{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = &field{node: node.Content[i+1]}
	}
	return fields
}

// titleFromID turns a document id like "guides/getting-started" into
// "Getting Started".
func titleFromID(docID string) string {
	seg := docID
	if idx := strings.LastIndex(seg, "/"); idx >= 0 {
		seg = seg[idx+1:]
	}
	words := strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
