package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// CorpusCase is one entry of a YAML parse corpus: an input text and the
// S-expression the parser is expected to produce for it.
type CorpusCase struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Expect string `yaml:"expect"`
	// Errors is the expected number of ERROR and MISSING nodes.
	Errors int `yaml:"errors"`
}

// LoadCorpus reads a YAML corpus file.
func LoadCorpus(t testing.TB, path string) []CorpusCase {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read corpus %s: %v", path, err)
	}
	var cases []CorpusCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		t.Fatalf("failed to parse corpus %s: %v", path, err)
	}
	return cases
}

// IndentSexp re-flows an S-expression so that every node starts on its own
// line, indented by depth. A field label stays on the line of the node it
// labels. Whitespace in the input is not significant.
func IndentSexp(s string) string {
	var b strings.Builder
	depth := 0
	afterLabel := false
	for i, f := range strings.Fields(s) {
		switch {
		case i == 0:
		case afterLabel:
			b.WriteByte(' ')
		case strings.HasPrefix(f, "(") || strings.HasSuffix(f, ":"):
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("  ", depth))
		default:
			b.WriteByte(' ')
		}
		b.WriteString(f)
		afterLabel = strings.HasSuffix(f, ":")
		bare := stripQuoted(f)
		depth += strings.Count(bare, "(") - strings.Count(bare, ")")
	}
	return b.String()
}

// stripQuoted drops double-quoted segments, which hold token text such as
// the "(" of a missing parenthesis.
func stripQuoted(f string) string {
	for {
		i := strings.IndexByte(f, '"')
		if i < 0 {
			return f
		}
		j := strings.IndexByte(f[i+1:], '"')
		if j < 0 {
			return f[:i]
		}
		f = f[:i] + f[i+1+j+1:]
	}
}

// SexpDiff returns a unified diff between two S-expressions after
// re-flowing both, or "" when they are equivalent.
func SexpDiff(want, got string) string {
	w, g := IndentSexp(want), IndentSexp(got)
	if w == g {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(w + "\n"),
		B:        difflib.SplitLines(g + "\n"),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		return "want:\n" + w + "\ngot:\n" + g
	}
	return diff
}
