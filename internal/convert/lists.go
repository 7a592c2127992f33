// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

var listItemRe = regexp.MustCompile(`^([ \t]*)(?:([-+*])|(\d+[.)]))[ \t]+(\S.*)$`)

// convertLists rewrites indentation-nested Markdown list items into
// AsciiDoc marker-repetition lists. Depth comes from each line's
// indentation width relative to its nearest ancestor item, not from line
// sequence; marker kind is independent per level. A depth decrease pops
// back to the matching ancestor level.
func convertLists(text string, ctx *Context) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	// Stack of ancestor indentation widths; its height is the current depth.
	var indents []int

	for _, ln := range lines {
		m := listItemRe.FindStringSubmatch(ln)
		if m == nil {
			// Blank lines inside a list keep the stack alive; any other
			// text ends the list.
			if strings.TrimSpace(ln) != "" {
				indents = indents[:0]
			}
			out = append(out, ln)
			continue
		}

		indent := indentWidth(m[1])
		for len(indents) > 0 && indent < indents[len(indents)-1] {
			indents = indents[:len(indents)-1]
		}
		if len(indents) == 0 || indent > indents[len(indents)-1] {
			indents = append(indents, indent)
		}
		depth := len(indents)

		marker := "*"
		if m[3] != "" {
			marker = "."
		}
		out = append(out, strings.Repeat(marker, depth)+" "+m[4])
	}

	return strings.Join(out, "\n")
}

// indentWidth measures leading whitespace with tabs counting as four columns.
func indentWidth(ws string) int {
	w := 0
	for _, r := range ws {
		if r == '\t' {
			w += 4
		} else {
			w++
		}
	}
	return w
}
