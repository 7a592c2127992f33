// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

var (
	tableSepRe  = regexp.MustCompile(`^\|?[ \t:|-]+\|?[ \t]*$`)
	cellBreakRe = regexp.MustCompile(`<br[ \t]*/?>`)
)

// convertTables rewrites Markdown pipe tables into AsciiDoc tables. Column
// alignment markers map to the cols attribute; explicit in-cell line breaks
// become the inline ` +` break, never a cell split. A table without a valid
// alignment row is malformed and stays literal with a warning. Existing
// AsciiDoc tables (|=== delimited) pass through untouched.
func convertTables(text string, ctx *Context) string {
	lines := strings.Split(text, "\n")
	var out []string

	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		if trimmed == "|===" {
			// Target-syntax table: copy through to the closing delimiter.
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) != "|===" {
				j++
			}
			if j >= len(lines) {
				out = append(out, lines[i:]...)
				return strings.Join(out, "\n")
			}
			out = append(out, lines[i:j+1]...)
			i = j + 1
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			j := i
			for j < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[j]), "|") {
				j++
			}
			group := lines[i:j]
			converted, ok := convertTableGroup(group, ctx)
			if ok {
				out = append(out, converted...)
			} else {
				out = append(out, group...)
			}
			i = j
			continue
		}

		out = append(out, lines[i])
		i++
	}

	return strings.Join(out, "\n")
}

func convertTableGroup(group []string, ctx *Context) ([]string, bool) {
	if len(group) < 2 || !tableSepRe.MatchString(strings.TrimSpace(group[1])) ||
		!strings.Contains(group[1], "-") {
		ctx.Warn("table without alignment row left as literal text: %q", strings.TrimSpace(group[0]))
		return nil, false
	}

	header := splitRow(group[0])
	aligns := alignments(splitRow(group[1]))
	if len(aligns) != len(header) {
		ctx.Warn("table alignment row width mismatch; left as literal text")
		return nil, false
	}

	out := []string{
		`[cols="` + strings.Join(aligns, ",") + `",options="header"]`,
		"|===",
		renderRow(header),
	}
	for _, row := range group[2:] {
		out = append(out, "", renderRow(splitRow(row)))
	}
	out = append(out, "|===")
	return out, true
}

// splitRow breaks a Markdown table row into trimmed cells.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := strings.Split(row, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// alignments maps separator cells (:--, :-:, --:) to AsciiDoc markers.
func alignments(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[i] = "^"
		case right:
			out[i] = ">"
		default:
			out[i] = "<"
		}
	}
	return out
}

func renderRow(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = "|" + cellBreakRe.ReplaceAllString(c, " +\n")
	}
	return strings.Join(parts, " ")
}
