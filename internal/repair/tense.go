// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/docpipe/pkg/types"
)

// willRe matches the forbidden future-tense construction: the modal plus
// the base verb, with an optional negation kept in place.
var willRe = regexp.MustCompile(`(?i)\b(will)([ \t]+not)?[ \t]+([a-zA-Z]+)\b`)

// tenseActions rewrites flagged future-tense constructions to present
// progressive. The grammatical subject of the enclosing clause decides the
// auxiliary (is/are); without the dependency-analysis capability the whole
// strategy is a no-op.
func (e *Engine) tenseActions(ctx context.Context, buffer string, offsets []int, findings []types.Finding) ([]types.RepairAction, []string) {
	var actions []types.RepairAction
	var warnings []string

	triggered := map[int]bool{}
	for _, f := range findings {
		if tenseTrigger(f) {
			triggered[f.Line] = true
		}
	}
	if len(triggered) == 0 {
		return nil, nil
	}
	if e.resolver == nil {
		return nil, []string{"dependency analysis unavailable; tense-shift repairs skipped"}
	}

	lineNos := make([]int, 0, len(triggered))
	for lineNo := range triggered {
		lineNos = append(lineNos, lineNo)
	}
	sort.Ints(lineNos)

	for _, lineNo := range lineNos {
		if lineNo < 1 || lineNo > len(offsets) {
			continue
		}
		lineStart := offsets[lineNo-1]
		lineEnd := len(buffer)
		if lineNo < len(offsets) {
			lineEnd = offsets[lineNo] - 1
		}
		line := buffer[lineStart:lineEnd]

		for _, loc := range willRe.FindAllStringSubmatchIndex(line, -1) {
			not := ""
			if loc[4] >= 0 {
				not = "not "
			}
			verb := line[loc[6]:loc[7]]

			subject, found, err := e.resolver.Resolve(ctx, line)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("subject resolution failed on line %d: %v", lineNo, err))
				continue
			}

			aux := "is"
			if found && subject.Plural {
				aux = "are"
			}
			replacement := aux + " " + not + progressiveForm(verb, e.grammar.VerbOverrides)

			actions = append(actions, types.RepairAction{
				Target:      types.Span{Start: lineStart + loc[0], End: lineStart + loc[1]},
				Strategy:    types.StrategyTenseShift,
				Replacement: replacement,
			})
		}
	}
	return actions, warnings
}

// tenseTrigger reports whether a finding flags the future-tense rule.
func tenseTrigger(f types.Finding) bool {
	if strings.HasSuffix(f.Rule, ".Will") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(f.Match), "will")
}

// progressiveForm conjugates a base verb to its -ing form. Per-verb
// overrides win; otherwise trailing silent e is elided and a final
// consonant-vowel-consonant cluster doubles its last consonant.
func progressiveForm(verb string, overrides map[string]string) string {
	lemma := strings.ToLower(verb)
	if form, ok := overrides[lemma]; ok {
		return form
	}

	switch {
	case strings.HasSuffix(lemma, "e") && !strings.HasSuffix(lemma, "ee"):
		return lemma[:len(lemma)-1] + "ing"
	case len(lemma) > 2 &&
		!isVowel(lemma[len(lemma)-1]) &&
		isVowel(lemma[len(lemma)-2]) &&
		!isVowel(lemma[len(lemma)-3]):
		return lemma + lemma[len(lemma)-1:] + "ing"
	default:
		return lemma + "ing"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
