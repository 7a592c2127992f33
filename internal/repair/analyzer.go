// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/docpipe/internal/extrun"
	"github.com/pdiddy/docpipe/pkg/types"
)

// Subject is a resolved grammatical subject and its number.
type Subject struct {
	Text   string
	Plural bool
}

// SubjectResolver is the dependency-analysis capability: given a clause, it
// returns the grammatical subject and whether it is plural. found is false
// when the analyzer sees no subject in the clause.
type SubjectResolver interface {
	Resolve(ctx context.Context, clause string) (subject Subject, found bool, err error)
}

// analyzerReply is the JSON the external analyzer prints for one clause.
type analyzerReply struct {
	Subject string `json:"subject"`
	Number  string `json:"number"`
}

// ExecResolver resolves subjects by piping the clause through an external
// dependency-parsing binary.
type ExecResolver struct {
	tool *extrun.Tool
}

// NewExecResolver builds a resolver for the configured analyzer binary.
// It returns nil when no binary is configured or the binary is absent, so
// callers can hand the nil resolver straight to NewEngine and let the
// tense-shift strategy degrade.
func NewExecResolver(cfg types.GrammarConfig) *ExecResolver {
	if cfg.AnalyzerBin == "" {
		return nil
	}
	tool := extrun.NewTool(cfg.AnalyzerBin)
	if !tool.Available() {
		return nil
	}
	return &ExecResolver{tool: tool}
}

// NewExecResolverWithTool injects a tool for tests.
func NewExecResolverWithTool(tool *extrun.Tool) *ExecResolver {
	return &ExecResolver{tool: tool}
}

// Resolve sends the clause on stdin and parses the analyzer's JSON reply.
func (r *ExecResolver) Resolve(ctx context.Context, clause string) (Subject, bool, error) {
	out, err := r.tool.Run(ctx, strings.NewReader(clause))
	if err != nil {
		return Subject{}, false, fmt.Errorf("dependency analyzer: %w", err)
	}

	var reply analyzerReply
	if err := json.Unmarshal([]byte(out), &reply); err != nil {
		return Subject{}, false, fmt.Errorf("parsing analyzer reply: %w", err)
	}
	if reply.Subject == "" {
		return Subject{}, false, nil
	}
	return Subject{
		Text:   reply.Subject,
		Plural: strings.EqualFold(reply.Number, "plural"),
	}, true, nil
}
