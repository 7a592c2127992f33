// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Severity is the alert level of a style checker finding.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Finding is one normalized style checker violation. Findings are immutable
// once parsed; overlapping findings are preserved independently and the
// repair engine resolves the overlap.
type Finding struct {
	// Rule is the checker rule identifier (e.g. "Vale.Spelling").
	Rule string `json:"rule" yaml:"rule"`

	// Severity is the reported alert level.
	Severity Severity `json:"severity" yaml:"severity"`

	// Line is the 1-based line number of the flagged span.
	Line int `json:"line" yaml:"line"`

	// Column is the 1-based starting column within the line; ColumnEnd is
	// exclusive. Both are byte positions as reported by the checker.
	Column    int `json:"column" yaml:"column"`
	ColumnEnd int `json:"column_end" yaml:"column_end"`

	// Match is the text the rule flagged.
	Match string `json:"match" yaml:"match"`

	// Message is the human-readable violation description.
	Message string `json:"message" yaml:"message"`

	// Suggestion is the replacement the rule offers, extracted from the
	// checker's structured action or its message. Empty when the rule
	// offers none.
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`

	// Remove marks a finding repaired by deleting the flagged span rather
	// than replacing it.
	Remove bool `json:"remove,omitempty" yaml:"remove,omitempty"`
}

// Actionable reports whether the suggestion strategy can use this finding.
// A new checker rule becomes auto-fixable purely by supplying a suggestion.
func (f Finding) Actionable() bool {
	return f.Suggestion != ""
}

// RepairStrategy identifies which repair strategy produced an action.
type RepairStrategy string

const (
	StrategySuggestion   RepairStrategy = "suggestion"
	StrategyBrandEnforce RepairStrategy = "brandEnforce"
	StrategyTenseShift   RepairStrategy = "tenseShift"
	StrategyLearn        RepairStrategy = "fallbackLearn"
)

// Precedence returns the strategy rank; lower wins when actions overlap.
func (s RepairStrategy) Precedence() int {
	switch s {
	case StrategySuggestion:
		return 0
	case StrategyBrandEnforce:
		return 1
	case StrategyTenseShift:
		return 2
	case StrategyLearn:
		return 3
	}
	return 4
}

// RepairAction is one edit produced by the repair engine. Actions live for
// a single pass and are never persisted.
type RepairAction struct {
	// Target is the byte span the edit replaces in the current buffer.
	Target Span `json:"target" yaml:"target"`

	// Strategy identifies which repair strategy produced the edit.
	Strategy RepairStrategy `json:"strategy" yaml:"strategy"`

	// Replacement is the text substituted for the target span.
	Replacement string `json:"replacement" yaml:"replacement"`

	// SourceRule is the finding rule that triggered the edit, empty for
	// edits independent of findings (brand enforcement).
	SourceRule string `json:"source_rule,omitempty" yaml:"source_rule,omitempty"`
}
