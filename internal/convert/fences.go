// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("^(`{3,})([A-Za-z0-9_+-]*)[ \t]*$")
	listingRe    = regexp.MustCompile(`^-{4,}[ \t]*$`)
	sourceAttrRe = regexp.MustCompile(`^\[source[^\]]*\][ \t]*$`)
	fenceLangRe  = regexp.MustCompile("^`{3,}")
)

// segment is a run of lines that is either protected code (fence == true,
// already in target syntax) or convertible text.
type segment struct {
	fence bool
	text  string
}

// splitFences cuts buffer into code and text segments. Markdown fences are
// rewritten to AsciiDoc source blocks with the language tag and the fenced
// content preserved byte-for-byte; existing AsciiDoc listing blocks pass
// through so reconversion never touches code. An unterminated fence is left
// as literal text with a warning.
func splitFences(buffer string, ctx *Context) []segment {
	lines := strings.Split(buffer, "\n")
	var segs []segment
	var text []string

	flushText := func() {
		if len(text) > 0 {
			segs = append(segs, segment{text: strings.Join(text, "\n") + "\n"})
			text = nil
		}
	}

	i := 0
	for i < len(lines) {
		ln := lines[i]

		if m := fenceOpenRe.FindStringSubmatch(ln); m != nil {
			end := findFenceClose(lines, i+1, m[1])
			if end < 0 {
				ctx.Warn("unterminated code fence at line %d; left as literal text", i+1)
				flushText()
				segs = append(segs, segment{fence: true, text: strings.Join(lines[i:], "\n")})
				return segs
			}
			flushText()
			var b strings.Builder
			if m[2] != "" {
				b.WriteString("[source," + m[2] + "]\n")
			}
			b.WriteString("----\n")
			for _, code := range lines[i+1 : end] {
				b.WriteString(code + "\n")
			}
			b.WriteString("----\n")
			segs = append(segs, segment{fence: true, text: b.String()})
			i = end + 1
			continue
		}

		// Existing AsciiDoc listing block: [source,...] + ---- ... ----,
		// or a bare ---- pair.
		start := i
		if sourceAttrRe.MatchString(ln) && i+1 < len(lines) && listingRe.MatchString(lines[i+1]) {
			i++
		}
		if listingRe.MatchString(lines[i]) {
			end := -1
			for j := i + 1; j < len(lines); j++ {
				if lines[j] == lines[i] {
					end = j
					break
				}
			}
			if end >= 0 {
				flushText()
				segs = append(segs, segment{fence: true, text: strings.Join(lines[start:end+1], "\n") + "\n"})
				i = end + 1
				continue
			}
		}
		i = start

		text = append(text, ln)
		i++
	}

	// Drop the phantom empty line Split produces after a trailing newline.
	if len(text) > 0 && text[len(text)-1] == "" {
		text = text[:len(text)-1]
		if len(text) == 0 {
			return segs
		}
	}
	flushText()
	return segs
}

// findFenceClose returns the index of the line closing a fence opened with
// the given backtick run, or -1.
func findFenceClose(lines []string, from int, open string) int {
	for j := from; j < len(lines); j++ {
		run := fenceLangRe.FindString(lines[j])
		if run != "" && len(run) >= len(open) && strings.TrimSpace(lines[j]) == run {
			return j
		}
	}
	return -1
}
