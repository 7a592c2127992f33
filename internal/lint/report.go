// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lint

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/docpipe/pkg/types"
)

// WriteReport renders findings as a plain text table.
func WriteReport(w io.Writer, path string, findings []types.Finding) {
	if len(findings) == 0 {
		fmt.Fprintf(w, "%s: no style violations\n", path)
		return
	}

	fmt.Fprintf(w, "%s: %d violation(s)\n", path, len(findings))
	fmt.Fprintf(w, "%-9s  %-10s  %-50s  %s\n", "Line:Col", "Severity", "Message", "Rule")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, f := range findings {
		msg := f.Message
		if len(msg) > 50 {
			msg = msg[:47] + "..."
		}
		fmt.Fprintf(w, "%-9s  %-10s  %-50s  %s\n",
			fmt.Sprintf("%d:%d", f.Line, f.Column), f.Severity, msg, f.Rule)
	}
}
