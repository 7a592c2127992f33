// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/docpipe/internal/extrun"
	"github.com/pdiddy/docpipe/pkg/types"
)

func testLinterConfig() types.LinterConfig {
	return types.LinterConfig{
		Bin:                 "vale",
		MinAlertLevel:       "suggestion",
		SuggestionPattern:   `'(.*?)'`,
		IgnoredPlaceholders: []string{"%s"},
	}
}

func TestNormalizeColumns(t *testing.T) {
	issues := []valeIssue{
		{Check: "Style.Rule", Severity: "warning", Line: 3, Span: [2]int{5, 8}, Match: "foo"},
	}

	findings := Normalize(issues, testLinterConfig())
	if len(findings) != 1 {
		t.Fatalf("got %d findings", len(findings))
	}
	f := findings[0]
	if f.Column != 5 || f.ColumnEnd != 9 {
		t.Errorf("columns = %d..%d, want 5..9 (inclusive span end + 1)", f.Column, f.ColumnEnd)
	}
}

func TestNormalizeSortsByPosition(t *testing.T) {
	issues := []valeIssue{
		{Check: "A", Line: 5, Span: [2]int{1, 2}},
		{Check: "B", Line: 2, Span: [2]int{9, 10}},
		{Check: "C", Line: 2, Span: [2]int{3, 4}},
	}

	findings := Normalize(issues, testLinterConfig())
	order := []string{findings[0].Rule, findings[1].Rule, findings[2].Rule}
	want := []string{"C", "B", "A"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestNormalizeRemovalFindings(t *testing.T) {
	cfg := testLinterConfig()
	cfg.RemovalTrigger = "removing"

	issues := []valeIssue{
		{Check: "Style.Wordiness", Line: 1, Span: [2]int{9, 12}, Match: "very",
			Message: "Consider removing 'very'"},
		{Check: "Style.Adverbs", Line: 2, Span: [2]int{1, 6}, Match: "simply",
			Action: struct {
				Name   string   `json:"Name"`
				Params []string `json:"Params"`
			}{Name: "remove"}},
		{Check: "Style.Terms", Line: 3, Span: [2]int{1, 7}, Match: "utilize",
			Message: "Consider using 'use' instead of 'utilize'."},
	}

	findings := Normalize(issues, cfg)
	if !findings[0].Remove || findings[0].Suggestion != "" {
		t.Errorf("trigger in message: %+v, want a removal with no suggestion", findings[0])
	}
	if !findings[1].Remove {
		t.Errorf("structured remove action: %+v, want a removal", findings[1])
	}
	if findings[2].Remove || findings[2].Suggestion != "use" {
		t.Errorf("replacement finding: %+v, want a plain suggestion", findings[2])
	}
}

func TestExtractSuggestion(t *testing.T) {
	tests := []struct {
		name  string
		issue valeIssue
		want  string
	}{
		{
			name: "structured action parameter",
			issue: valeIssue{
				Action: struct {
					Name   string   `json:"Name"`
					Params []string `json:"Params"`
				}{Name: "replace", Params: []string{"utilize"}},
			},
			want: "utilize",
		},
		{
			name: "ignored placeholder falls back to message",
			issue: valeIssue{
				Action: struct {
					Name   string   `json:"Name"`
					Params []string `json:"Params"`
				}{Name: "replace", Params: []string{"%s"}},
				Message: "Consider using 'use' instead.",
			},
			want: "use",
		},
		{
			name:  "pattern over description",
			issue: valeIssue{Description: "Prefer 'Kubernetes' for the product name."},
			want:  "Kubernetes",
		},
		{
			name:  "no suggestion available",
			issue: valeIssue{Message: "Avoid passive voice."},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractSuggestion(tt.issue, testLinterConfig())
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteConfig(t *testing.T) {
	cfg := testLinterConfig()
	cfg.StylesPath = "styles"
	cfg.Styles = []string{"MeshDocs", "Vale"}

	dir := t.TempDir()
	r := NewRunner(cfg)
	path, err := r.WriteConfig(dir)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"StylesPath = styles",
		"MinAlertLevel = suggestion",
		"[*.{adoc,md}]",
		"BasedOnStyles = MeshDocs, Vale",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("config missing %q:\n%s", want, content)
		}
	}
}

func TestWriteConfigCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")

	r := NewRunner(testLinterConfig())
	path, err := r.WriteConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written into the created directory: %v", err)
	}
}

// fakeExecutor scripts the checker binary for Run tests.
type fakeExecutor struct {
	missing bool
	output  string
	runErr  error
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fmt.Fprint(stdout, f.output)
	return f.runErr
}

func TestRunMissingCheckerDegrades(t *testing.T) {
	cfg := testLinterConfig()
	tool := extrun.NewToolWithExecutor(cfg.Bin, &fakeExecutor{missing: true})
	r := NewRunnerWithTool(cfg, tool)

	findings, warnings, err := r.Run(context.Background(), "doc.adoc", "")
	if err != nil {
		t.Fatal(err)
	}
	if findings != nil {
		t.Errorf("findings = %v, want none", findings)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "not found") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestRunParsesCheckerOutput(t *testing.T) {
	output := `{
		"doc.adoc": [
			{"Check": "Vale.Spelling", "Severity": "error", "Line": 2,
			 "Span": [10, 13], "Match": "acme", "Message": "Did you really mean 'acme'?"}
		]
	}`
	cfg := testLinterConfig()
	// The checker exits non-zero when it reports violations; the output must
	// still be consumed.
	tool := extrun.NewToolWithExecutor(cfg.Bin, &fakeExecutor{output: output, runErr: errors.New("exit status 1")})
	r := NewRunnerWithTool(cfg, tool)

	findings, _, err := r.Run(context.Background(), "doc.adoc", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Rule != "Vale.Spelling" || f.Line != 2 || f.Match != "acme" {
		t.Errorf("finding = %+v", f)
	}
	if f.Suggestion != "acme" {
		t.Errorf("suggestion = %q, want the quoted candidate from the message", f.Suggestion)
	}
}

func TestRunEmptyOutput(t *testing.T) {
	cfg := testLinterConfig()
	tool := extrun.NewToolWithExecutor(cfg.Bin, &fakeExecutor{output: ""})
	r := NewRunnerWithTool(cfg, tool)

	findings, warnings, err := r.Run(context.Background(), "doc.adoc", "")
	if err != nil || findings != nil || warnings != nil {
		t.Errorf("got (%v, %v, %v), want clean empty result", findings, warnings, err)
	}
}

func TestWriteReport(t *testing.T) {
	var b strings.Builder
	WriteReport(&b, "doc.adoc", nil)
	if !strings.Contains(b.String(), "no style violations") {
		t.Errorf("empty report = %q", b.String())
	}

	b.Reset()
	WriteReport(&b, "doc.adoc", []types.Finding{
		{Rule: "Vale.Spelling", Severity: types.SeverityError, Line: 2, Column: 10, Message: "Did you really mean 'acme'?"},
	})
	out := b.String()
	if !strings.Contains(out, "2:10") || !strings.Contains(out, "Vale.Spelling") {
		t.Errorf("report = %q", out)
	}
}
