// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shield

import (
	"fmt"
	"strings"

	"github.com/pdiddy/docpipe/pkg/types"
)

// BodyConverter converts a block body through the full pipeline before the
// body is wrapped in target block syntax. depth is the block nesting depth
// of the body (1 for the body of a top-level block).
type BodyConverter func(body string, depth int) (string, []string, error)

// admonitionNames maps source admonition kinds to AsciiDoc admonition labels.
var admonitionNames = map[string]string{
	"note":    "NOTE",
	"info":    "NOTE",
	"tip":     "TIP",
	"warning": "WARNING",
	"caution": "CAUTION",
	"danger":  "IMPORTANT",
}

// Restore expands every placeholder in buffer into the target syntax of its
// descriptor. Each descriptor body is recursively converted via convertBody
// so formatting inside a block converts correctly. Descriptors are consumed;
// a placeholder surviving in the output is an internal error.
func Restore(buffer string, res *Result, depth int, convertBody BodyConverter) (string, []string, error) {
	var warnings []string
	out := buffer

	// Placeholders are replaced innermost-id-last so a descriptor body that
	// itself produced placeholders (never the case today, but cheap to keep
	// ordered) resolves deterministically.
	for _, desc := range res.Blocks {
		rendered, w, err := render(desc, depth, convertBody)
		warnings = append(warnings, w...)
		if err != nil {
			return "", warnings, fmt.Errorf("restoring block %d (%s): %w", desc.ID, desc.Kind, err)
		}
		out = strings.Replace(out, res.placeholder(desc.ID), rendered, 1)
	}

	if strings.Contains(out, res.token) {
		return "", warnings, fmt.Errorf("placeholder token leaked into restored output")
	}
	return out, warnings, nil
}

func render(desc types.BlockDescriptor, depth int, convertBody BodyConverter) (string, []string, error) {
	switch desc.Kind {
	case BlockLiteral:
		return desc.Body, nil, nil

	case types.BlockAdmonition:
		body, warnings, err := convertBody(desc.Body, depth+1)
		if err != nil {
			return "", warnings, err
		}
		body = strings.TrimRight(body, "\n")
		name, ok := admonitionNames[desc.Label]
		if !ok {
			name = "NOTE"
			warnings = append(warnings, fmt.Sprintf("unknown admonition kind %q rendered as NOTE", desc.Label))
		}
		var b strings.Builder
		fmt.Fprintf(&b, "[%s]\n", name)
		if desc.Title != "" {
			fmt.Fprintf(&b, ".%s\n", desc.Title)
		}
		d := exampleDelim(depth)
		b.WriteString(d + "\n" + body + "\n" + d)
		return b.String(), warnings, nil

	case types.BlockCollapsible:
		body, warnings, err := convertBody(desc.Body, depth+1)
		if err != nil {
			return "", warnings, err
		}
		body = strings.TrimRight(body, "\n")
		var b strings.Builder
		if desc.Title != "" {
			fmt.Fprintf(&b, ".%s\n", desc.Title)
		}
		b.WriteString("[%collapsible]\n")
		d := exampleDelim(depth)
		b.WriteString(d + "\n" + body + "\n" + d)
		return b.String(), warnings, nil

	case types.BlockTabGroup:
		var warnings []string
		var b strings.Builder
		b.WriteString("[tabs]\n")
		d := tabsDelim(depth)
		b.WriteString(d + "\n")
		for i, item := range desc.Items {
			body, w, err := convertBody(item.Body, depth+1)
			warnings = append(warnings, w...)
			if err != nil {
				return "", warnings, err
			}
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s::\n+\n--\n%s\n--\n", item.Label, strings.TrimRight(body, "\n"))
		}
		b.WriteString(d)
		return b.String(), warnings, nil

	default:
		// A close tag with no sensible host (e.g. a stray tab item at top
		// level) keeps its body verbatim rather than losing text.
		return desc.Body, []string{fmt.Sprintf("block kind %q has no target syntax; body kept verbatim", desc.Kind)}, nil
	}
}

// exampleDelim returns the example-block delimiter for a block at the given
// nesting depth. Nested blocks use longer runs so delimiters cannot collide.
func exampleDelim(depth int) string {
	return strings.Repeat("=", 4+depth)
}

// tabsDelim returns the tabs-block delimiter for the given nesting depth.
func tabsDelim(depth int) string {
	return strings.Repeat("=", 6+depth)
}
