// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)

	imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:[ \t]+"[^"]*")?\)`)

	// Markdown links; a preceding ! belongs to the image rule, which runs
	// at higher priority and leaves no such pattern behind.
	linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// Pandoc emits link: macros for relative targets; they normalize the
	// same way raw Markdown links do.
	linkMacroRe = regexp.MustCompile(`link:((?:[^ \[]|\\ )+)\[([^\]]*)\]`)

	boldItalicRe = regexp.MustCompile(`\*\*\*([^*\n]+)\*\*\*`)
	boldRe       = regexp.MustCompile(`\*\*([^*\n]+(?:\*[^*\n]+)*)\*\*`)

	// Single-asterisk italic; the delimiters must hug non-space text so
	// list bullets and arithmetic never match.
	italicRe = regexp.MustCompile(`\*([^*\s](?:[^*\n]*[^*\s])?)\*`)
)

// convertHeadings maps heading levels 1:1 by marker count. Inside a
// shielded block body a heading becomes bold text instead: the target's
// example blocks cannot host structural headings without breaking the
// block's own delimiters.
func convertHeadings(text string, ctx *Context) string {
	return headingRe.ReplaceAllStringFunc(text, func(s string) string {
		m := headingRe.FindStringSubmatch(s)
		title := strings.TrimSpace(m[2])
		if ctx.Depth > 0 {
			return "*" + title + "*"
		}
		return strings.Repeat("=", len(m[1])) + " " + title
	})
}

// convertImages rewrites Markdown images to AsciiDoc image macros: the
// block macro when the image stands alone on a line, the inline macro
// otherwise.
func convertImages(text string, ctx *Context) string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if !imageRe.MatchString(ln) {
			continue
		}
		standalone := imageRe.FindString(strings.TrimSpace(ln)) == strings.TrimSpace(ln)
		lines[i] = imageRe.ReplaceAllStringFunc(ln, func(s string) string {
			m := imageRe.FindStringSubmatch(s)
			if standalone {
				return "image::" + m[2] + "[" + m[1] + "]"
			}
			return "image:" + m[2] + "[" + m[1] + "]"
		})
	}
	return strings.Join(lines, "\n")
}

// convertLinks rewrites Markdown links. External targets become URL macros;
// relative targets whose extension appears in the extension map become
// cross-references. Anything else stays literal.
func convertLinks(text string, ctx *Context) string {
	text = linkRe.ReplaceAllStringFunc(text, func(s string) string {
		m := linkRe.FindStringSubmatch(s)
		label, target := m[1], strings.TrimSpace(m[2])

		if isExternal(target) {
			return target + "[" + label + "]"
		}
		if xref, ok := crossReference(label, target, ctx); ok {
			return xref
		}
		return s
	})

	return linkMacroRe.ReplaceAllStringFunc(text, func(s string) string {
		m := linkMacroRe.FindStringSubmatch(s)
		target, label := m[1], m[2]
		if isExternal(target) {
			return s
		}
		if xref, ok := crossReference(label, target, ctx); ok {
			return xref
		}
		return s
	})
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:")
}

// convertEmphasis maps bold, italic, and combined bold-italic onto the
// target's delimiter pairs in one pass: combined and bold spans are set
// aside as tokens before the italic rule runs, so single-asterisk matching
// sees only source text, never this pass's own bold output. A span whose
// underscores do not pair up is mis-nested and stays literal with a
// warning. Underscore italics share syntax with the target and pass
// through.
func convertEmphasis(text string, ctx *Context) string {
	var stash []string
	save := func(s string) string {
		stash = append(stash, s)
		return fmt.Sprintf("\x00e%d\x00", len(stash)-1)
	}

	text = boldItalicRe.ReplaceAllStringFunc(text, func(s string) string {
		m := boldItalicRe.FindStringSubmatch(s)
		if strings.Count(m[1], "_")%2 != 0 {
			ctx.Warn("mis-nested emphasis left as literal text: %q", s)
			return save(s)
		}
		return save("*_" + m[1] + "_*")
	})

	text = boldRe.ReplaceAllStringFunc(text, func(s string) string {
		m := boldRe.FindStringSubmatch(s)
		if strings.Count(m[1], "_")%2 != 0 {
			ctx.Warn("mis-nested emphasis left as literal text: %q", s)
			return save(s)
		}
		return save("*" + m[1] + "*")
	})

	if !ctx.Preconverted {
		text = italicRe.ReplaceAllStringFunc(text, func(s string) string {
			m := italicRe.FindStringSubmatch(s)
			if strings.Count(m[1], "_")%2 != 0 {
				ctx.Warn("mis-nested emphasis left as literal text: %q", s)
				return s
			}
			return "_" + m[1] + "_"
		})
	}

	for i, s := range stash {
		text = strings.Replace(text, fmt.Sprintf("\x00e%d\x00", i), s, 1)
	}
	return text
}
