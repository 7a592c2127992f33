// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shield isolates nested structural blocks (admonitions,
// collapsible sections, tab groups) behind opaque placeholder tokens so the
// generic conversion rules cannot corrupt them, and re-expands the
// placeholders into target syntax afterwards.
package shield

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/docpipe/pkg/types"
)

// BlockLiteral marks a span that is restored verbatim: either text already
// in target block syntax, or an unterminated block left unconverted.
const BlockLiteral types.BlockKind = "literal"

var (
	admonOpenRe  = regexp.MustCompile(`^(:{3,})([a-zA-Z]+)(?:[ \t]+(.+?))?[ \t]*$`)
	admonCloseRe = regexp.MustCompile(`^(:{3,})[ \t]*$`)
	detailsOpen  = regexp.MustCompile(`^<details[^>]*>[ \t]*$`)
	detailsClose = regexp.MustCompile(`^</details>[ \t]*$`)
	tabsOpen     = regexp.MustCompile(`^<Tabs[^>]*>[ \t]*$`)
	tabsClose    = regexp.MustCompile(`^</Tabs>[ \t]*$`)
	tabItemOpen  = regexp.MustCompile(`^<TabItem[^>]*>[ \t]*$`)
	tabItemClose = regexp.MustCompile(`^</TabItem>[ \t]*$`)
	summaryRe    = regexp.MustCompile(`^<summary>(.*)</summary>[ \t]*$`)

	// Target-syntax recognition, used to pass already-converted blocks
	// through untouched.
	adocAttrRe  = regexp.MustCompile(`^\[(NOTE|TIP|IMPORTANT|WARNING|CAUTION|%collapsible|tabs)\][ \t]*$`)
	adocDelimRe = regexp.MustCompile(`^(={4,})[ \t]*$`)
)

const maxTokenAttempts = 3

// Result is the outcome of shielding one buffer.
type Result struct {
	// Buffer is the working text with each matched block replaced by a
	// placeholder line.
	Buffer string

	// Blocks holds one descriptor per shielded span, in document order.
	Blocks []types.BlockDescriptor

	// Warnings lists recovered structural problems (unterminated openers).
	Warnings []string

	token string
}

// line is one source line with its byte offset into the original buffer.
type line struct {
	text  string
	start int
	end   int // exclusive, includes the trailing newline if present
}

// frame is one open delimiter on the matcher stack.
type frame struct {
	kind     types.BlockKind
	colons   int // admonition colon-run length
	label    string
	title    string
	openLine int
}

// Shield scans content for structural blocks and replaces each fully
// matched top-level span with a placeholder. Matching is stack-based so
// blocks of the same or different kinds nest by proper bracket order.
// An opening delimiter with no closer before end of document leaves its
// span unshielded-equivalent: the span is preserved verbatim, a warning is
// recorded, and the rest of the document is processed normally.
func Shield(content string) (*Result, error) {
	token, err := placeholderToken(content)
	if err != nil {
		return nil, err
	}

	res := &Result{token: token}
	lines := splitLines(content)

	var out strings.Builder
	var stack []frame
	spanStart := -1 // byte offset of the outermost open frame

	flushLiteral := func(from, to int, warn string) {
		body := content[from:to]
		res.Warnings = append(res.Warnings, warn)
		res.Blocks = append(res.Blocks, types.BlockDescriptor{
			ID:     len(res.Blocks),
			Kind:   BlockLiteral,
			Body:   body,
			Source: types.Span{Start: from, End: to},
		})
		out.WriteString(res.placeholder(len(res.Blocks)-1) + "\n")
	}

	i := 0
	for i < len(lines) {
		ln := lines[i]

		if len(stack) == 0 {
			// Already-converted target blocks pass through unmodified.
			if end, ok := matchTargetBlock(lines, i); ok {
				res.Blocks = append(res.Blocks, types.BlockDescriptor{
					ID:     len(res.Blocks),
					Kind:   BlockLiteral,
					Body:   content[ln.start:lines[end].end],
					Source: types.Span{Start: ln.start, End: lines[end].end},
				})
				out.WriteString(res.placeholder(len(res.Blocks)-1) + "\n")
				i = end + 1
				continue
			}
		}

		opened, f := classifyOpen(ln.text)
		closed, closeKind, closeColons := classifyClose(ln.text)

		switch {
		case opened:
			if len(stack) == 0 {
				spanStart = ln.start
			}
			f.openLine = i
			stack = append(stack, f)

		case closed && len(stack) > 0 && matchesTop(stack, closeKind, closeColons):
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				desc := buildDescriptor(content, lines, top, i)
				desc.ID = len(res.Blocks)
				desc.Source = types.Span{Start: spanStart, End: ln.end}
				res.Blocks = append(res.Blocks, desc)
				out.WriteString(res.placeholder(desc.ID) + "\n")
				spanStart = -1
			}

		default:
			if len(stack) == 0 {
				out.WriteString(ln.text)
				if ln.end > ln.start+len(ln.text) {
					out.WriteString("\n")
				}
			}
		}
		i++
	}

	if len(stack) > 0 {
		// Unterminated opener: preserve the whole span from the outermost
		// opener to end of document, unconverted.
		first := stack[0]
		warn := fmt.Sprintf("unterminated %s block opened at line %d; span left unconverted",
			first.kind, first.openLine+1)
		flushLiteral(spanStart, len(content), warn)
	}

	res.Buffer = out.String()
	return res, nil
}

// placeholder renders the opaque marker line for block id.
func (r *Result) placeholder(id int) string {
	return fmt.Sprintf("%s-%d", r.token, id)
}

// Token exposes the placeholder prefix for leak checks.
func (r *Result) Token() string { return r.token }

// placeholderToken generates a marker prefix guaranteed absent from the
// document. Collisions are improbable; when one occurs a fresh token is
// drawn, and repeated failure is a structural error.
func placeholderToken(content string) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		id := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
		token := "dpblock-" + id
		if !strings.Contains(content, token) {
			return token, nil
		}
	}
	return "", fmt.Errorf("could not generate a collision-free placeholder token")
}

func splitLines(content string) []line {
	var lines []line
	start := 0
	for start <= len(content) {
		idx := strings.IndexByte(content[start:], '\n')
		if idx < 0 {
			if start < len(content) {
				lines = append(lines, line{text: content[start:], start: start, end: len(content)})
			}
			break
		}
		lines = append(lines, line{text: content[start : start+idx], start: start, end: start + idx + 1})
		start += idx + 1
	}
	return lines
}

func classifyOpen(text string) (bool, frame) {
	if m := admonOpenRe.FindStringSubmatch(text); m != nil {
		return true, frame{kind: types.BlockAdmonition, colons: len(m[1]), label: strings.ToLower(m[2]), title: strings.TrimSpace(m[3])}
	}
	if detailsOpen.MatchString(text) {
		return true, frame{kind: types.BlockCollapsible}
	}
	if tabsOpen.MatchString(text) {
		return true, frame{kind: types.BlockTabGroup}
	}
	if tabItemOpen.MatchString(text) {
		// Tab items never shield on their own; they only keep the bracket
		// nesting honest inside a tab group.
		return true, frame{kind: "tab-item"}
	}
	return false, frame{}
}

func classifyClose(text string) (bool, types.BlockKind, int) {
	if m := admonCloseRe.FindStringSubmatch(text); m != nil {
		return true, types.BlockAdmonition, len(m[1])
	}
	if detailsClose.MatchString(text) {
		return true, types.BlockCollapsible, 0
	}
	if tabsClose.MatchString(text) {
		return true, types.BlockTabGroup, 0
	}
	if tabItemClose.MatchString(text) {
		return true, "tab-item", 0
	}
	return false, "", 0
}

// matchesTop reports whether a close token pairs with the innermost open
// frame. Admonition closers must match the opener's colon-run length;
// a mismatched run is treated as body content, not a closer.
func matchesTop(stack []frame, kind types.BlockKind, colons int) bool {
	top := stack[len(stack)-1]
	if top.kind != kind {
		return false
	}
	if kind == types.BlockAdmonition && top.colons != colons {
		return false
	}
	return true
}

func buildDescriptor(content string, lines []line, top frame, closeLine int) types.BlockDescriptor {
	bodyStart := lines[top.openLine].end
	bodyEnd := lines[closeLine].start
	body := content[bodyStart:bodyEnd]

	desc := types.BlockDescriptor{
		Kind:  top.kind,
		Label: top.label,
		Title: top.title,
	}

	switch top.kind {
	case types.BlockCollapsible:
		// The summary line is the block title; it is not part of the body.
		bodyLines := strings.Split(body, "\n")
		var kept []string
		for _, bl := range bodyLines {
			if desc.Title == "" {
				if m := summaryRe.FindStringSubmatch(strings.TrimSpace(bl)); m != nil {
					desc.Title = strings.TrimSpace(m[1])
					continue
				}
			}
			kept = append(kept, bl)
		}
		desc.Body = strings.TrimPrefix(strings.Join(kept, "\n"), "\n")

	case types.BlockTabGroup:
		desc.Body = body
		desc.Items = splitTabItems(body)

	default:
		desc.Body = body
	}

	desc.Body = strings.Trim(desc.Body, "\n")
	return desc
}

var (
	tabLabelRe = regexp.MustCompile(`label="([^"]*)"`)
	tabValueRe = regexp.MustCompile(`value="([^"]*)"`)
)

// splitTabItems extracts the TabItem bodies of a tab group, ignoring tab
// items that belong to a nested inner tab group.
func splitTabItems(body string) []types.TabItem {
	var items []types.TabItem
	var cur []string
	var label string
	depth := 0     // TabItem nesting
	tabsDepth := 0 // nested <Tabs> inside an item body

	for _, ln := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(ln)
		switch {
		case tabsOpen.MatchString(trimmed):
			tabsDepth++
			if depth > 0 {
				cur = append(cur, ln)
			}
		case tabsClose.MatchString(trimmed):
			tabsDepth--
			if depth > 0 {
				cur = append(cur, ln)
			}
		case tabItemOpen.MatchString(trimmed) && tabsDepth == 0:
			depth++
			if depth == 1 {
				label = "Tab " + fmt.Sprint(len(items)+1)
				if m := tabLabelRe.FindStringSubmatch(trimmed); m != nil {
					label = m[1]
				} else if m := tabValueRe.FindStringSubmatch(trimmed); m != nil {
					label = m[1]
				}
				cur = nil
			} else {
				cur = append(cur, ln)
			}
		case tabItemClose.MatchString(trimmed) && tabsDepth == 0:
			depth--
			if depth == 0 {
				items = append(items, types.TabItem{Label: label, Body: strings.Trim(strings.Join(cur, "\n"), "\n")})
			} else {
				cur = append(cur, ln)
			}
		default:
			if depth > 0 {
				cur = append(cur, ln)
			}
		}
	}
	return items
}

// matchTargetBlock recognizes a span already in AsciiDoc block syntax:
// an attribute line ([NOTE], [%collapsible], [tabs]), optionally preceded
// or followed by a .Title line, delimited by a matching ==== pair. Returns
// the index of the closing delimiter line.
func matchTargetBlock(lines []line, i int) (int, bool) {
	j := i
	// A block title may precede the attribute line ([%collapsible] form).
	if strings.HasPrefix(lines[j].text, ".") && !strings.HasPrefix(lines[j].text, "..") {
		if j+1 < len(lines) && adocAttrRe.MatchString(lines[j+1].text) {
			j++
		} else {
			return 0, false
		}
	}
	if !adocAttrRe.MatchString(lines[j].text) {
		return 0, false
	}
	j++
	// Optional title line after the attribute ([NOTE] form).
	if j < len(lines) && strings.HasPrefix(lines[j].text, ".") && !strings.HasPrefix(lines[j].text, "..") {
		j++
	}
	if j >= len(lines) {
		return 0, false
	}
	m := adocDelimRe.FindStringSubmatch(lines[j].text)
	if m == nil {
		return 0, false
	}
	delim := m[1]
	for k := j + 1; k < len(lines); k++ {
		if lines[k].text == delim {
			return k, true
		}
	}
	return 0, false
}
