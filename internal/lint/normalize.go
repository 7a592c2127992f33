// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lint

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/docpipe/pkg/types"
)

// Normalize converts raw checker issues into Finding records sorted by span
// start. Overlapping findings are preserved independently; the repair
// engine resolves overlaps by strategy precedence. Removal findings carry
// no suggestion: the quoted candidate in their message is the flagged word
// itself, not a replacement. Findings without an extractable suggestion are
// still emitted and simply stay non-actionable for the suggestion strategy.
func Normalize(issues []valeIssue, cfg types.LinterConfig) []types.Finding {
	findings := make([]types.Finding, 0, len(issues))
	for _, issue := range issues {
		remove := isRemoval(issue, cfg)
		suggestion := ""
		if !remove {
			suggestion = extractSuggestion(issue, cfg)
		}
		findings = append(findings, types.Finding{
			Rule:       issue.Check,
			Severity:   types.Severity(issue.Severity),
			Line:       issue.Line,
			Column:     issue.Span[0],
			ColumnEnd:  issue.Span[1] + 1,
			Match:      issue.Match,
			Message:    issue.Message,
			Suggestion: suggestion,
			Remove:     remove,
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Column < findings[j].Column
	})
	return findings
}

// extractSuggestion pulls the replacement a rule offers: the structured
// action parameter when present and not an ignored placeholder, otherwise
// the first match of the configured pattern over the message and
// description. The suggestion value comes from the rule's own
// configuration, never from code here.
func extractSuggestion(issue valeIssue, cfg types.LinterConfig) string {
	if len(issue.Action.Params) > 0 {
		candidate := issue.Action.Params[0]
		if candidate != "" && !ignored(candidate, cfg.IgnoredPlaceholders) {
			return candidate
		}
	}

	if cfg.SuggestionPattern == "" {
		return ""
	}
	re, err := regexp.Compile(cfg.SuggestionPattern)
	if err != nil {
		return ""
	}
	pool := issue.Description + " " + issue.Message
	if m := re.FindStringSubmatch(pool); len(m) > 1 {
		return m[1]
	}
	return ""
}

// isRemoval reports whether the rule asks for the flagged text to be
// deleted rather than replaced: a structured remove action, or the
// configured removal trigger appearing in the message.
func isRemoval(issue valeIssue, cfg types.LinterConfig) bool {
	if strings.EqualFold(issue.Action.Name, "remove") {
		return true
	}
	return cfg.RemovalTrigger != "" &&
		strings.Contains(strings.ToLower(issue.Message), strings.ToLower(cfg.RemovalTrigger))
}

func ignored(candidate string, placeholders []string) bool {
	for _, p := range placeholders {
		if candidate == p {
			return true
		}
	}
	return false
}
