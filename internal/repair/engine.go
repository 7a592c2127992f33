// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repair applies ranked repair strategies to spans flagged by the
// style checker, plus document-wide term enforcement independent of
// findings. Edits are collected as span-tagged actions, overlaps are
// resolved by strategy precedence, and the surviving set is applied in a
// single rightmost-first sweep so no edit invalidates another's offsets.
package repair

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/docpipe/internal/kb"
	"github.com/pdiddy/docpipe/pkg/types"
)

// Engine repairs one buffer per call. It is safe for concurrent use by
// parallel document jobs; the knowledge base handles its own locking.
type Engine struct {
	kb       *kb.Store
	grammar  types.GrammarConfig
	resolver SubjectResolver
}

// NewEngine builds a repair engine. resolver may be nil, in which case the
// tense-shift strategy degrades to a no-op while the others run normally.
func NewEngine(store *kb.Store, grammar types.GrammarConfig, resolver SubjectResolver) *Engine {
	return &Engine{kb: store, grammar: grammar, resolver: resolver}
}

// learnCandidate pairs a pending edit with the term it would record.
type learnCandidate struct {
	action    types.RepairAction
	term      string
	canonical string
}

// Repair applies all four strategies to buffer. Every strategy re-checks
// its trigger against the current text, so a second pass over repaired
// output produces no actions.
func (e *Engine) Repair(ctx context.Context, buffer string, findings []types.Finding) (string, []types.RepairAction, []string, error) {
	var warnings []string
	offsets := lineOffsets(buffer)

	var candidates []types.RepairAction
	var learns []learnCandidate

	suggestions, w := e.suggestionActions(buffer, offsets, findings)
	warnings = append(warnings, w...)
	candidates = append(candidates, suggestions...)

	candidates = append(candidates, e.brandActions(buffer)...)

	tense, w := e.tenseActions(ctx, buffer, offsets, findings)
	warnings = append(warnings, w...)
	candidates = append(candidates, tense...)

	learns, w = e.learnActions(buffer, offsets, findings)
	warnings = append(warnings, w...)
	for _, lc := range learns {
		candidates = append(candidates, lc.action)
	}

	winners, w := resolveOverlaps(candidates)
	warnings = append(warnings, w...)

	// Record learned terms only for edits that actually win.
	for _, lc := range learns {
		if !containsAction(winners, lc.action) {
			continue
		}
		if err := e.kb.Learn(lc.term, lc.canonical, types.OriginLearned); err != nil {
			warnings = append(warnings, fmt.Sprintf("knowledge base rejected %q: %v", lc.term, err))
		}
	}

	repaired := applySweep(buffer, winners)
	return repaired, winners, warnings, nil
}

// suggestionActions builds edits for findings that carry a replacement,
// and deletions for findings that ask for the flagged text to be removed.
func (e *Engine) suggestionActions(buffer string, offsets []int, findings []types.Finding) ([]types.RepairAction, []string) {
	var actions []types.RepairAction
	var warnings []string

	for _, f := range findings {
		if f.Remove {
			span, ok := findingSpan(buffer, offsets, f)
			if !ok {
				continue
			}
			// One following space is deleted with the word.
			end := span.End
			if end < len(buffer) && buffer[end] == ' ' {
				end++
			}
			actions = append(actions, types.RepairAction{
				Target:      types.Span{Start: span.Start, End: end},
				Strategy:    types.StrategySuggestion,
				Replacement: "",
				SourceRule:  f.Rule,
			})
			continue
		}
		if !f.Actionable() {
			continue
		}
		span, ok := findingSpan(buffer, offsets, f)
		if !ok {
			// The flagged text is gone; a previous pass already fixed it.
			continue
		}
		if buffer[span.Start:span.End] == f.Suggestion {
			continue
		}
		actions = append(actions, types.RepairAction{
			Target:      span,
			Strategy:    types.StrategySuggestion,
			Replacement: f.Suggestion,
			SourceRule:  f.Rule,
		})
	}
	return actions, warnings
}

// brandActions scans the whole document for term variants and normalizes
// them to canonical form, including occurrences the checker never flagged.
func (e *Engine) brandActions(buffer string) []types.RepairAction {
	var actions []types.RepairAction

	for _, key := range e.kb.Keys() {
		entry, _ := e.kb.Lookup(key)
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(buffer, -1) {
			if buffer[loc[0]:loc[1]] == entry.Canonical {
				continue
			}
			actions = append(actions, types.RepairAction{
				Target:      types.Span{Start: loc[0], End: loc[1]},
				Strategy:    types.StrategyBrandEnforce,
				Replacement: entry.Canonical,
			})
		}
	}
	return actions
}

// learnActions handles flagged spelling errors with no suggestion and no
// knowledge base entry: a capitalization heuristic fixes the span and the
// term is queued for learning.
func (e *Engine) learnActions(buffer string, offsets []int, findings []types.Finding) ([]learnCandidate, []string) {
	var learns []learnCandidate

	for _, f := range findings {
		if f.Actionable() || !strings.Contains(strings.ToLower(f.Rule), "spelling") {
			continue
		}
		word := f.Match
		if word == "" {
			continue
		}
		if _, exists := e.kb.Lookup(word); exists {
			// Brand enforcement already covers known terms.
			continue
		}
		canonical := capitalize(word)
		if canonical == word {
			continue
		}
		span, ok := findingSpan(buffer, offsets, f)
		if !ok {
			continue
		}
		learns = append(learns, learnCandidate{
			action: types.RepairAction{
				Target:      span,
				Strategy:    types.StrategyLearn,
				Replacement: canonical,
				SourceRule:  f.Rule,
			},
			term:      word,
			canonical: canonical,
		})
	}
	return learns, nil
}

// resolveOverlaps picks exactly one winner per overlapping span set by
// strategy precedence. An overlap between equal-precedence actions is a
// conflict: the earlier span wins and the loser is reported, never both
// applied.
func resolveOverlaps(candidates []types.RepairAction) ([]types.RepairAction, []string) {
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := candidates[i].Strategy.Precedence(), candidates[j].Strategy.Precedence()
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Target.Start < candidates[j].Target.Start
	})

	var winners []types.RepairAction
	var warnings []string
	for _, c := range candidates {
		conflict := false
		for _, w := range winners {
			if c.Target.Overlaps(w.Target) {
				conflict = true
				if c.Strategy == w.Strategy {
					warnings = append(warnings, fmt.Sprintf(
						"overlapping %s edits at %d-%d; keeping the earlier one",
						c.Strategy, c.Target.Start, c.Target.End))
				}
				break
			}
		}
		if !conflict {
			winners = append(winners, c)
		}
	}
	return winners, warnings
}

// applySweep applies winners rightmost-first so earlier edits never shift
// the offsets of later ones.
func applySweep(buffer string, winners []types.RepairAction) string {
	sorted := append([]types.RepairAction{}, winners...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Target.Start > sorted[j].Target.Start })

	for _, a := range sorted {
		buffer = buffer[:a.Target.Start] + a.Replacement + buffer[a.Target.End:]
	}
	return buffer
}

// findingSpan maps a finding's line/column position to a byte span in the
// current buffer, verifying the flagged text is still there. When the
// reported columns no longer line up (earlier passes moved text), the
// occurrence of the match nearest the reported column is used instead.
func findingSpan(buffer string, offsets []int, f types.Finding) (types.Span, bool) {
	if f.Line < 1 || f.Line > len(offsets) {
		return types.Span{}, false
	}
	lineStart := offsets[f.Line-1]
	lineEnd := len(buffer)
	if f.Line < len(offsets) {
		lineEnd = offsets[f.Line] - 1
	}
	line := buffer[lineStart:lineEnd]

	if f.Column >= 1 && f.ColumnEnd > f.Column && f.ColumnEnd-1 <= len(line) {
		start := lineStart + f.Column - 1
		end := lineStart + f.ColumnEnd - 1
		if f.Match == "" || buffer[start:end] == f.Match {
			return types.Span{Start: start, End: end}, true
		}
	}

	if f.Match != "" {
		want := f.Column - 1
		best := -1
		for from := 0; ; {
			idx := strings.Index(line[from:], f.Match)
			if idx < 0 {
				break
			}
			pos := from + idx
			if best < 0 || abs(pos-want) < abs(best-want) {
				best = pos
			}
			from = pos + 1
		}
		if best >= 0 {
			return types.Span{Start: lineStart + best, End: lineStart + best + len(f.Match)}, true
		}
	}
	return types.Span{}, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// lineOffsets returns the byte offset of each line start.
func lineOffsets(buffer string) []int {
	offsets := []int{0}
	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' && i+1 < len(buffer) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// capitalize upper-cases the first rune, keeping the rest as-is.
func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func containsAction(actions []types.RepairAction, a types.RepairAction) bool {
	for _, x := range actions {
		if x.Target == a.Target && x.Strategy == a.Strategy && x.Replacement == a.Replacement {
			return true
		}
	}
	return false
}
