package main

import (
	"encoding/json"
	"io"

	"github.com/golangsnmp/asn1cst"
	"gopkg.in/yaml.v3"
)

// ParseOutput is the top-level JSON and YAML output for the parse command.
type ParseOutput struct {
	Files []FileJSON `json:"files" yaml:"files"`
}

// FileJSON holds the syntax tree and diagnostics of one parsed file.
type FileJSON struct {
	Path        string           `json:"path" yaml:"path"`
	ErrorCount  int              `json:"errorCount" yaml:"errorCount"`
	Tree        *TreeNodeJSON    `json:"tree" yaml:"tree"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// TreeNodeJSON is a syntax tree node. Only leaves carry their text.
type TreeNodeJSON struct {
	Kind      string          `json:"kind" yaml:"kind"`
	Field     string          `json:"field,omitempty" yaml:"field,omitempty"`
	Named     bool            `json:"named" yaml:"named"`
	Extra     bool            `json:"extra,omitempty" yaml:"extra,omitempty"`
	Missing   bool            `json:"missing,omitempty" yaml:"missing,omitempty"`
	Error     bool            `json:"error,omitempty" yaml:"error,omitempty"`
	StartByte uint32          `json:"startByte" yaml:"startByte"`
	EndByte   uint32          `json:"endByte" yaml:"endByte"`
	Start     PointJSON       `json:"start" yaml:"start,flow"`
	End       PointJSON       `json:"end" yaml:"end,flow"`
	Text      string          `json:"text,omitempty" yaml:"text,omitempty"`
	Children  []*TreeNodeJSON `json:"children,omitempty" yaml:"children,omitempty"`
}

// PointJSON is a zero-based row and column.
type PointJSON struct {
	Row    uint32 `json:"row" yaml:"row"`
	Column uint32 `json:"column" yaml:"column"`
}

// DiagnosticJSON holds a diagnostic message.
type DiagnosticJSON struct {
	Severity string `json:"severity" yaml:"severity"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string `json:"message" yaml:"message"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// TokenJSON is one token of the tokens command.
type TokenJSON struct {
	Kind   string       `json:"kind" yaml:"kind"`
	Text   string       `json:"text" yaml:"text"`
	Start  PointJSON    `json:"start" yaml:"start,flow"`
	Line   bool         `json:"lineStart,omitempty" yaml:"lineStart,omitempty"`
	Trivia []TriviaJSON `json:"trivia,omitempty" yaml:"trivia,omitempty"`
}

// TriviaJSON is a whitespace run or comment preceding a token.
type TriviaJSON struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
}

func pointJSON(p asn1cst.Point) PointJSON {
	return PointJSON{Row: p.Row, Column: p.Column}
}

// nodeJSON converts n and its descendants. Extra nodes are dropped when
// withExtras is false.
func nodeJSON(n *asn1cst.Node, field string, withExtras bool) *TreeNodeJSON {
	out := &TreeNodeJSON{
		Kind:      n.Kind(),
		Field:     field,
		Named:     n.IsNamed(),
		Extra:     n.IsExtra(),
		Missing:   n.IsMissing(),
		Error:     n.IsError(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Start:     pointJSON(n.StartPoint()),
		End:       pointJSON(n.EndPoint()),
	}
	if n.ChildCount() == 0 {
		out.Text = n.Text()
		return out
	}
	for i, child := range n.Children() {
		if child.IsExtra() && !withExtras {
			continue
		}
		out.Children = append(out.Children, nodeJSON(child, n.FieldNameForChild(i), withExtras))
	}
	return out
}

func diagnosticsJSON(diags []asn1cst.Diagnostic) []DiagnosticJSON {
	out := make([]DiagnosticJSON, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
			File:     d.File,
			Line:     d.Line,
			Column:   d.Column,
		})
	}
	return out
}

// encode writes v as indented JSON or as YAML.
func encode(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
