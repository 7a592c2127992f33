// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/docpipe/internal/kb"
	"github.com/pdiddy/docpipe/pkg/types"
)

// fakeResolver returns a scripted grammatical subject for every clause.
type fakeResolver struct {
	subject Subject
	found   bool
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, clause string) (Subject, bool, error) {
	return f.subject, f.found, f.err
}

func testKB(t *testing.T, brands map[string]string) *kb.Store {
	t.Helper()
	cfg := types.KnowledgeBaseConfig{
		Path:       filepath.Join(t.TempDir(), "knowledge.yaml"),
		BrandTerms: brands,
	}
	s, err := kb.Load(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestEngine(t *testing.T, brands map[string]string, resolver SubjectResolver) *Engine {
	t.Helper()
	return NewEngine(testKB(t, brands), types.GrammarConfig{}, resolver)
}

func TestRepairSuggestion(t *testing.T) {
	buffer := "Please utilize the tool.\n"
	findings := []types.Finding{{
		Rule: "Style.Wordiness", Line: 1, Column: 8, ColumnEnd: 15,
		Match: "utilize", Suggestion: "use",
	}}

	e := newTestEngine(t, nil, nil)
	out, actions, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Please use the tool.\n" {
		t.Errorf("got %q", out)
	}
	if len(actions) != 1 || actions[0].Strategy != types.StrategySuggestion {
		t.Errorf("actions = %+v", actions)
	}
}

func TestRepairStaleFindingSkipped(t *testing.T) {
	// The finding points at text a previous pass already replaced.
	buffer := "Please use the tool.\n"
	findings := []types.Finding{{
		Rule: "Style.Wordiness", Line: 1, Column: 8, ColumnEnd: 15,
		Match: "utilize", Suggestion: "use",
	}}

	e := newTestEngine(t, nil, nil)
	out, actions, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != buffer || len(actions) != 0 {
		t.Errorf("got %q with %d actions, want untouched buffer", out, len(actions))
	}
}

func TestRepairRemovalDeletesSpan(t *testing.T) {
	buffer := "This is very simple.\n"
	findings := []types.Finding{{
		Rule: "Style.Wordiness", Line: 1, Column: 9, ColumnEnd: 13,
		Match: "very", Message: "Consider removing 'very'", Remove: true,
	}}

	e := newTestEngine(t, nil, nil)
	out, actions, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "This is simple.\n" {
		t.Errorf("got %q, want the word and its trailing space deleted", out)
	}
	if len(actions) != 1 || actions[0].Replacement != "" {
		t.Errorf("actions = %+v, want one empty-replacement edit", actions)
	}
}

func TestRepairRemovalSecondPassIsNoop(t *testing.T) {
	buffer := "This is very simple.\n"
	findings := []types.Finding{{
		Rule: "Style.Wordiness", Line: 1, Column: 9, ColumnEnd: 13,
		Match: "very", Message: "Consider removing 'very'", Remove: true,
	}}

	e := newTestEngine(t, nil, nil)
	first, _, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}

	// Replaying the same finding over repaired text finds nothing to delete.
	second, actions, _, err := e.Repair(context.Background(), first, findings)
	if err != nil {
		t.Fatal(err)
	}
	if second != first || len(actions) != 0 {
		t.Errorf("second pass changed text: %q -> %q, actions = %+v", first, second, actions)
	}
}

func TestRepairStaleColumnsPickNearestOccurrence(t *testing.T) {
	// The flagged word appears twice and the reported columns are off by
	// one after an earlier edit; the occurrence nearest the report gets
	// edited, not the first on the line.
	buffer := "aaa very bbb very ccc\n"
	findings := []types.Finding{{
		Rule: "Style.Terms", Line: 1, Column: 15, ColumnEnd: 19,
		Match: "very", Suggestion: "VERY",
	}}

	e := newTestEngine(t, nil, nil)
	out, _, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "aaa very bbb VERY ccc\n" {
		t.Errorf("got %q, want the second occurrence edited", out)
	}
}

func TestRepairBrandEnforcementIsDocumentWide(t *testing.T) {
	buffer := "Deploy to k8s. Later, K8S scales.\n"

	e := newTestEngine(t, map[string]string{"k8s": "Kubernetes"}, nil)
	out, actions, _, err := e.Repair(context.Background(), buffer, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Deploy to Kubernetes. Later, Kubernetes scales.\n" {
		t.Errorf("got %q", out)
	}
	if len(actions) != 2 {
		t.Errorf("got %d actions, want 2", len(actions))
	}
}

func TestRepairSuggestionBeatsBrandOnOverlap(t *testing.T) {
	buffer := "The k8s cluster.\n"
	findings := []types.Finding{{
		Rule: "Style.Terms", Line: 1, Column: 5, ColumnEnd: 8,
		Match: "k8s", Suggestion: "K8s clusters",
	}}

	e := newTestEngine(t, map[string]string{"k8s": "Kubernetes"}, nil)
	out, actions, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "The K8s clusters cluster.\n" {
		t.Errorf("got %q, want the suggestion to win the overlap", out)
	}
	for _, a := range actions {
		if a.Strategy == types.StrategyBrandEnforce {
			t.Errorf("brand action survived an overlap it should lose: %+v", a)
		}
	}
}

func TestRepairEqualPrecedenceOverlapWarns(t *testing.T) {
	buffer := "alpha beta\n"
	findings := []types.Finding{
		{Rule: "A", Line: 1, Column: 1, ColumnEnd: 11, Match: "alpha beta", Suggestion: "one"},
		{Rule: "B", Line: 1, Column: 7, ColumnEnd: 11, Match: "beta", Suggestion: "two"},
	}

	e := newTestEngine(t, nil, nil)
	out, actions, warnings, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "one\n" {
		t.Errorf("got %q, want the earlier span to win", out)
	}
	if len(actions) != 1 {
		t.Errorf("actions = %+v, want exactly one", actions)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "overlapping") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestRepairSweepKeepsOffsetsStable(t *testing.T) {
	// Two edits on one line where the first replacement is longer than its
	// target; rightmost-first application must leave both correct.
	buffer := "aa bb\n"
	findings := []types.Finding{
		{Rule: "A", Line: 1, Column: 1, ColumnEnd: 3, Match: "aa", Suggestion: "AAAA"},
		{Rule: "B", Line: 1, Column: 4, ColumnEnd: 6, Match: "bb", Suggestion: "B"},
	}

	e := newTestEngine(t, nil, nil)
	out, _, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "AAAA B\n" {
		t.Errorf("got %q, want %q", out, "AAAA B\n")
	}
}

func TestRepairTenseShift(t *testing.T) {
	tests := []struct {
		name     string
		buffer   string
		resolver *fakeResolver
		want     string
	}{
		{
			"singular subject",
			"The system will reboot after install.\n",
			&fakeResolver{subject: Subject{Text: "system"}, found: true},
			"The system is rebooting after install.\n",
		},
		{
			"plural subject",
			"We will check the logs.\n",
			&fakeResolver{subject: Subject{Text: "We", Plural: true}, found: true},
			"We are checking the logs.\n",
		},
		{
			"negation preserved",
			"The daemon will not stop cleanly.\n",
			&fakeResolver{subject: Subject{Text: "daemon"}, found: true},
			"The daemon is not stopping cleanly.\n",
		},
		{
			"silent e elision",
			"The job will close at midnight.\n",
			&fakeResolver{subject: Subject{Text: "job"}, found: true},
			"The job is closing at midnight.\n",
		},
		{
			"no subject found defaults to singular",
			"Restarting will require downtime.\n",
			&fakeResolver{},
			"Restarting is requiring downtime.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := []types.Finding{{Rule: "Style.Will", Line: 1, Match: "will"}}
			e := newTestEngine(t, nil, tt.resolver)
			out, _, _, err := e.Repair(context.Background(), tt.buffer, findings)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRepairTenseShiftWithoutResolver(t *testing.T) {
	buffer := "The system will reboot.\n"
	findings := []types.Finding{{Rule: "Style.Will", Line: 1, Match: "will"}}

	e := newTestEngine(t, nil, nil)
	out, actions, warnings, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != buffer || len(actions) != 0 {
		t.Errorf("got %q with %d actions, want a no-op", out, len(actions))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "tense-shift repairs skipped") {
		t.Errorf("warnings = %v, want exactly one skip notice", warnings)
	}
}

func TestProgressiveForm(t *testing.T) {
	overrides := map[string]string{"be": "being"}
	tests := []struct {
		verb string
		want string
	}{
		{"reboot", "rebooting"},
		{"check", "checking"},
		{"stop", "stopping"},
		{"close", "closing"},
		{"see", "seeing"},
		{"run", "running"},
		{"be", "being"},
	}
	for _, tt := range tests {
		if got := progressiveForm(tt.verb, overrides); got != tt.want {
			t.Errorf("progressiveForm(%q) = %q, want %q", tt.verb, got, tt.want)
		}
	}
}

func TestRepairFallbackLearn(t *testing.T) {
	buffer := "Install widgetizer today.\n"
	findings := []types.Finding{{
		Rule: "Vale.Spelling", Line: 1, Column: 9, ColumnEnd: 19, Match: "widgetizer",
	}}

	store := testKB(t, nil)
	e := NewEngine(store, types.GrammarConfig{}, nil)
	out, actions, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "Install Widgetizer today.\n" {
		t.Errorf("got %q", out)
	}
	if len(actions) != 1 || actions[0].Strategy != types.StrategyLearn {
		t.Errorf("actions = %+v", actions)
	}

	entry, ok := store.Lookup("widgetizer")
	if !ok || entry.Canonical != "Widgetizer" || entry.Origin != types.OriginLearned {
		t.Errorf("learned entry = %+v, ok = %v", entry, ok)
	}
}

func TestRepairSecondPassIsNoop(t *testing.T) {
	buffer := "Install widgetizer today. Deploy to k8s.\n"
	findings := []types.Finding{{
		Rule: "Vale.Spelling", Line: 1, Column: 9, ColumnEnd: 19, Match: "widgetizer",
	}}

	e := newTestEngine(t, map[string]string{"k8s": "Kubernetes"}, nil)
	first, _, _, err := e.Repair(context.Background(), buffer, findings)
	if err != nil {
		t.Fatal(err)
	}

	// Second pass with no fresh findings over the repaired text.
	second, actions, _, err := e.Repair(context.Background(), first, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("second pass changed text:\n%q\n->\n%q", first, second)
	}
	if len(actions) != 0 {
		t.Errorf("second pass produced actions: %+v", actions)
	}
}
