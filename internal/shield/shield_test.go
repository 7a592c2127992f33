// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shield

import (
	"strings"
	"testing"

	"github.com/pdiddy/docpipe/pkg/types"
)

// identity is a BodyConverter that leaves block bodies untouched.
func identity(body string, depth int) (string, []string, error) {
	return body, nil, nil
}

func roundTrip(t *testing.T, content string) (string, *Result) {
	t.Helper()
	res, err := Shield(content)
	if err != nil {
		t.Fatalf("Shield: %v", err)
	}
	out, _, err := Restore(res.Buffer, res, 0, identity)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	return out, res
}

func TestShieldAdmonition(t *testing.T) {
	content := "before\n:::note Heads up\nbody text\n:::\nafter\n"

	res, err := Shield(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.Kind != types.BlockAdmonition || b.Label != "note" || b.Title != "Heads up" {
		t.Errorf("descriptor = %+v", b)
	}
	if b.Body != "body text" {
		t.Errorf("body = %q", b.Body)
	}
	if strings.Contains(res.Buffer, ":::") {
		t.Errorf("buffer still contains source delimiters: %q", res.Buffer)
	}

	out, _, err := Restore(res.Buffer, res, 0, identity)
	if err != nil {
		t.Fatal(err)
	}
	want := "before\n[NOTE]\n.Heads up\n====\nbody text\n====\nafter\n"
	if out != want {
		t.Errorf("restored =\n%q\nwant\n%q", out, want)
	}
}

func TestShieldAdmonitionKinds(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"note", "[NOTE]"},
		{"info", "[NOTE]"},
		{"tip", "[TIP]"},
		{"warning", "[WARNING]"},
		{"caution", "[CAUTION]"},
		{"danger", "[IMPORTANT]"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			out, _ := roundTrip(t, ":::"+tt.label+"\nx\n:::\n")
			if !strings.HasPrefix(out, tt.want+"\n") {
				t.Errorf("output %q does not start with %q", out, tt.want)
			}
		})
	}
}

func TestShieldUnknownAdmonitionKind(t *testing.T) {
	res, err := Shield(":::shrug\nx\n:::\n")
	if err != nil {
		t.Fatal(err)
	}
	out, warnings, err := Restore(res.Buffer, res, 0, identity)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "[NOTE]\n") {
		t.Errorf("unknown kind should render as NOTE, got %q", out)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one", warnings)
	}
}

func TestShieldNestedAdmonitionByColonRun(t *testing.T) {
	content := "::::warning Outer\nouter intro\n:::note\ninner\n:::\n::::\n"

	res, err := Shield(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1 outer block", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.Label != "warning" || b.Title != "Outer" {
		t.Errorf("descriptor = %+v", b)
	}
	want := "outer intro\n:::note\ninner\n:::"
	if b.Body != want {
		t.Errorf("body = %q, want %q", b.Body, want)
	}
}

func TestShieldCollapsible(t *testing.T) {
	content := "<details>\n<summary>More info</summary>\nhidden text\n</details>\n"

	res, err := Shield(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.Kind != types.BlockCollapsible || b.Title != "More info" {
		t.Errorf("descriptor = %+v", b)
	}
	if b.Body != "hidden text" {
		t.Errorf("body = %q; summary line must not be part of the body", b.Body)
	}

	out, _, err := Restore(res.Buffer, res, 0, identity)
	if err != nil {
		t.Fatal(err)
	}
	want := ".More info\n[%collapsible]\n====\nhidden text\n====\n"
	if out != want {
		t.Errorf("restored = %q, want %q", out, want)
	}
}

func TestShieldTabGroup(t *testing.T) {
	content := strings.Join([]string{
		"<Tabs>",
		`<TabItem value="mac" label="macOS">`,
		"brew install foo",
		"</TabItem>",
		`<TabItem value="linux">`,
		"apt install foo",
		"</TabItem>",
		"</Tabs>",
		"",
	}, "\n")

	res, err := Shield(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(res.Blocks))
	}
	items := res.Blocks[0].Items
	if len(items) != 2 {
		t.Fatalf("got %d tab items, want 2", len(items))
	}
	if items[0].Label != "macOS" {
		t.Errorf("first label = %q, want the label attribute", items[0].Label)
	}
	if items[1].Label != "linux" {
		t.Errorf("second label = %q, want the value fallback", items[1].Label)
	}

	out, _, err := Restore(res.Buffer, res, 0, identity)
	if err != nil {
		t.Fatal(err)
	}
	want := "[tabs]\n======\nmacOS::\n+\n--\nbrew install foo\n--\n\nlinux::\n+\n--\napt install foo\n--\n======\n"
	if out != want {
		t.Errorf("restored =\n%q\nwant\n%q", out, want)
	}
}

func TestSplitTabItemsIgnoresNestedGroups(t *testing.T) {
	body := strings.Join([]string{
		`<TabItem label="outer">`,
		"<Tabs>",
		`<TabItem label="inner">`,
		"deep",
		"</TabItem>",
		"</Tabs>",
		"</TabItem>",
	}, "\n")

	items := splitTabItems(body)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 outer item", len(items))
	}
	if items[0].Label != "outer" {
		t.Errorf("label = %q", items[0].Label)
	}
	if !strings.Contains(items[0].Body, `<TabItem label="inner">`) {
		t.Errorf("nested group must stay in the outer body, got %q", items[0].Body)
	}
}

func TestShieldUnterminatedBlock(t *testing.T) {
	content := "intro\n:::note\nnever closed\n"

	res, err := Shield(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", res.Warnings)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Kind != BlockLiteral {
		t.Fatalf("blocks = %+v, want one literal", res.Blocks)
	}

	out, _, err := Restore(res.Buffer, res, 0, identity)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ":::note\nnever closed") {
		t.Errorf("unterminated span must survive verbatim, got %q", out)
	}
}

func TestShieldTargetSyntaxPassthrough(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"admonition", "[NOTE]\n====\nalready converted\n====\n"},
		{"titled admonition", "[WARNING]\n.Careful\n====\nbody\n====\n"},
		{"collapsible", ".Details\n[%collapsible]\n====\nbody\n====\n"},
		{"tabs", "[tabs]\n======\nA::\n+\n--\nbody\n--\n======\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := roundTrip(t, tt.content)
			if out != tt.content {
				t.Errorf("passthrough changed text:\n%q\nwant\n%q", out, tt.content)
			}
			if len(res.Blocks) != 1 || res.Blocks[0].Kind != BlockLiteral {
				t.Errorf("blocks = %+v, want one literal", res.Blocks)
			}
		})
	}
}

func TestRestoreDelimiterDepth(t *testing.T) {
	res, err := Shield(":::note\nbody\n:::\n")
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := Restore(res.Buffer, res, 2, identity)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\n======\nbody\n======") {
		t.Errorf("depth 2 admonition should use 6-char delimiters, got %q", out)
	}
}

func TestPlaceholderTokenAvoidsCollision(t *testing.T) {
	token, err := placeholderToken("plain document")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(token, "dpblock-") {
		t.Errorf("token = %q", token)
	}
}
