package cst

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golangsnmp/asn1cst/internal/types"
)

// maxQuoted bounds the source text quoted in a parse-error message.
const maxQuoted = 32

// Diagnostics returns the lexical diagnostics followed by one parse-error
// per ERROR node and one missing-token per missing node, filtered and
// re-ranked by cfg. Diagnostics come out in source order within each group.
func (t *Tree) Diagnostics(cfg types.DiagnosticConfig) []types.Diagnostic {
	var out []types.Diagnostic
	add := func(sd types.SpanDiagnostic) {
		if !cfg.ShouldReport(sd.Code, sd.Severity) {
			return
		}
		p := t.Point(uint32(sd.Span.Start))
		out = append(out, types.Diagnostic{
			Severity: cfg.Effective(sd.Code, sd.Severity),
			Code:     sd.Code,
			Message:  sd.Message,
			Line:     int(p.Row) + 1,
			Column:   int(p.Column) + 1,
			Span:     sd.Span,
		})
	}
	for _, d := range t.diagnostics {
		add(d)
	}
	if !t.root.HasError() {
		return out
	}
	t.Walk(func(n *Node) bool {
		switch {
		case n.IsError():
			add(types.SpanDiagnostic{
				Severity: types.SeveritySevere,
				Code:     types.DiagParseError,
				Span:     types.NewSpan(types.ByteOffset(n.StartByte()), types.ByteOffset(n.EndByte())),
				Message:  errorMessage(n),
			})
			return false
		case n.IsMissing():
			add(types.SpanDiagnostic{
				Severity: types.SeveritySevere,
				Code:     types.DiagMissingToken,
				Span:     types.NewSpan(types.ByteOffset(n.StartByte()), types.ByteOffset(n.StartByte())),
				Message:  missingMessage(n),
			})
			return false
		}
		return n.HasError()
	})
	return out
}

func errorMessage(n *Node) string {
	text := strings.Join(strings.Fields(n.Text()), " ")
	if text == "" {
		return "syntax error"
	}
	if len(text) > maxQuoted {
		text = text[:maxQuoted] + "..."
	}
	return "syntax error: unexpected " + strconv.Quote(text)
}

func missingMessage(n *Node) string {
	if n.IsNamed() {
		return fmt.Sprintf("missing %s", n.Kind())
	}
	return fmt.Sprintf("missing %q", n.Kind())
}
