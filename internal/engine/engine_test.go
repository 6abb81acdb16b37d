package engine

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/rules"
	"github.com/golangsnmp/asn1cst/internal/testutil"
)

var (
	langOnce sync.Once
	lang     *grammar.Language
	langErr  error
)

func newParser(t *testing.T) *Parser {
	t.Helper()
	langOnce.Do(func() { lang, langErr = rules.Build() })
	if langErr != nil {
		t.Fatalf("rules.Build() error = %v", langErr)
	}
	return New(lang, nil)
}

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	return newParser(t).Parse([]byte(src)).Tree
}

func expectSexp(t *testing.T, want string, tree *cst.Tree) {
	t.Helper()
	if diff := testutil.SexpDiff(want, tree.String()); diff != "" {
		t.Errorf("tree mismatch:\n%s", diff)
	}
}

func TestTypeAssignment(t *testing.T) {
	tree := parse(t, "Foo ::= INTEGER")
	expectSexp(t, `(module-definition body: (module-body
		(type-assignment name: (type-reference) type: (integer-type))))`, tree)
	testutil.Equal(t, 0, tree.ErrorCount(), "error count")

	body := tree.RootNode().ChildByFieldName("body")
	testutil.NotNil(t, body, "body field")
	assign := body.NamedChild(0)
	testutil.Equal(t, "Foo", assign.ChildByFieldName("name").Text(), "assignment name")
	testutil.Equal(t, "INTEGER", assign.ChildByFieldName("type").Text(), "assignment type")
}

func TestSequenceType(t *testing.T) {
	tree := parse(t, "Foo ::= SEQUENCE { a INTEGER, b BOOLEAN }")
	expectSexp(t, `(module-definition body: (module-body
		(type-assignment name: (type-reference) type: (sequence-type
			(component-type name: (identifier) type: (integer-type))
			(component-type name: (identifier) type: (boolean-type))))))`, tree)
	testutil.Equal(t, 0, tree.ErrorCount(), "error count")

	var names []string
	for n := range tree.RootNode().Descendants() {
		if n.Kind() == "component-type" {
			names = append(names, n.ChildByFieldName("name").Text())
		}
	}
	testutil.SliceEqual(t, []string{"a", "b"}, names, "component names")
}

func TestTaggedType(t *testing.T) {
	tree := parse(t, "Foo ::= [APPLICATION 3] IMPLICIT INTEGER")
	expectSexp(t, `(module-definition body: (module-body
		(type-assignment name: (type-reference) type: (tagged-type
			tag: (tag class: (tag-class) number: (number))
			type: (integer-type)))))`, tree)

	var tagged *cst.Node
	for n := range tree.RootNode().Descendants() {
		if n.Kind() == "tagged-type" {
			tagged = n
			break
		}
	}
	testutil.NotNil(t, tagged, "tagged-type node")
	tag := tagged.ChildByFieldName("tag")
	testutil.Equal(t, "APPLICATION", tag.ChildByFieldName("class").Text(), "tag class")
	testutil.Equal(t, "3", tag.ChildByFieldName("number").Text(), "tag number")
	testutil.Equal(t, "IMPLICIT", tagged.ChildByFieldName("mode").Text(), "tag mode")
}

func TestMissingComma(t *testing.T) {
	src := "Foo ::= SEQUENCE { a INTEGER b BOOLEAN }"
	tree := parse(t, src)
	expectSexp(t, `(module-definition body: (module-body
		(type-assignment name: (type-reference) type: (sequence-type
			(component-type name: (identifier) type: (integer-type))
			(MISSING ",")
			(component-type name: (identifier) type: (boolean-type))))))`, tree)
	testutil.Equal(t, 1, tree.ErrorCount(), "error count")

	var missing *cst.Node
	for n := range tree.RootNode().Descendants() {
		if n.IsMissing() {
			missing = n
		}
	}
	testutil.NotNil(t, missing, "missing node")
	at := uint32(strings.Index(src, " b BOOLEAN"))
	testutil.Equal(t, at, missing.StartByte(), "missing node position")
	testutil.Equal(t, at, missing.EndByte(), "missing node is zero-width")
}

func TestEmptyInput(t *testing.T) {
	for _, src := range []string{"", "  \n", "-- only a comment\n"} {
		tree := parse(t, src)
		root := tree.RootNode()
		testutil.Equal(t, "module-definition", root.Kind(), "root kind for %q", src)
		testutil.Equal(t, 0, tree.ErrorCount(), "errors for %q", src)
		testutil.Equal(t, uint32(len(src)), root.EndByte(), "root end for %q", src)
	}
}

func TestModuleHeader(t *testing.T) {
	src := `Test-Module { iso 3 6 1 } DEFINITIONS AUTOMATIC TAGS ::= BEGIN
IMPORTS Foo FROM Other-Module;
A ::= INTEGER
END
`
	tree := parse(t, src)
	testutil.Equal(t, 0, tree.ErrorCount(), "error count")
	root := tree.RootNode()
	name := root.ChildByFieldName("name")
	testutil.NotNil(t, name, "module identifier")
	testutil.Equal(t, "Test-Module", name.ChildByFieldName("name").Text(), "module name")
	testutil.NotNil(t, name.ChildByFieldName("oid"), "module oid")
	testutil.Equal(t, "AUTOMATIC TAGS", root.ChildByFieldName("tags").Text(), "tag default")
	body := root.ChildByFieldName("body")
	testutil.Equal(t, "imports", body.NamedChild(0).Kind(), "imports")
	testutil.Equal(t, "type-assignment", body.NamedChild(1).Kind(), "assignment")
}

func TestMissingType(t *testing.T) {
	tree := parse(t, "A ::=\nB ::= INTEGER\n")
	expectSexp(t, `(module-definition body: (module-body
		(type-assignment name: (type-reference) type: (MISSING type))
		(type-assignment name: (type-reference) type: (integer-type))))`, tree)
	testutil.Equal(t, 1, tree.ErrorCount(), "error count")
}

func TestMissingCloseBrace(t *testing.T) {
	tree := parse(t, "Foo ::= SEQUENCE { a INTEGER")
	expectSexp(t, `(module-definition body: (module-body
		(type-assignment name: (type-reference) type: (sequence-type
			(component-type name: (identifier) type: (integer-type))
			(MISSING "}")))))`, tree)
}

func TestTrailingInput(t *testing.T) {
	tree := parse(t, "M DEFINITIONS ::= BEGIN\nA ::= INTEGER\nEND\nEND")
	root := tree.RootNode()
	last := root.Child(root.ChildCount() - 1)
	testutil.True(t, last.IsError(), "trailing input should be an ERROR node")
	testutil.Equal(t, "END", last.Text(), "trailing ERROR text")
	testutil.Equal(t, 1, tree.ErrorCount(), "error count")
}

const multiModuleSource = `A DEFINITIONS ::= BEGIN
IMPORTS X FROM C;
T ::= INTEGER
END

-- second module
B { iso 2 } DEFINITIONS ::= BEGIN
IMPORTS Y FROM D;
U ::= BOOLEAN
END
`

func TestMultipleModules(t *testing.T) {
	tree := parse(t, multiModuleSource)
	testutil.Equal(t, 0, tree.ErrorCount(), "error count")

	root := tree.RootNode()
	testutil.Equal(t, "A", root.ChildByFieldName("name").ChildByFieldName("name").Text(), "first module")

	var second *cst.Node
	for _, c := range root.NamedChildren() {
		if c.Kind() == "module-definition" {
			second = c
		}
	}
	testutil.NotNil(t, second, "second module node")
	testutil.Equal(t, "B", second.ChildByFieldName("name").ChildByFieldName("name").Text(), "second module")
	testutil.True(t, strings.HasPrefix(second.Text(), "B { iso 2 }"), "second module starts at its header")
	testutil.True(t, strings.HasSuffix(second.Text(), "END"), "second module ends at END")
	body := second.ChildByFieldName("body")
	testutil.NotNil(t, body, "second module body")
	testutil.Equal(t, "imports", body.NamedChild(0).Kind(), "second module imports")

	var kinds []string
	for _, c := range root.NamedChildren() {
		kinds = append(kinds, c.Kind())
	}
	testutil.SliceEqual(t, []string{"module-identifier", "module-body", "comment", "module-definition"}, kinds,
		"the comment before the second module stays outside it")
}

func TestJunkBetweenModules(t *testing.T) {
	src := "A DEFINITIONS ::= BEGIN\nT ::= INTEGER\nEND\nstray tokens ,\nB DEFINITIONS ::= BEGIN\nU ::= NULL\nEND\n"
	tree := parse(t, src)
	testutil.Equal(t, 1, tree.ErrorCount(), "error count")

	root := tree.RootNode()
	var kinds []string
	for _, c := range root.NamedChildren() {
		kinds = append(kinds, c.Kind())
	}
	testutil.SliceEqual(t, []string{"module-identifier", "module-body", "ERROR", "module-definition"}, kinds, "root children")
	testutil.Equal(t, "stray tokens ,", root.NamedChild(2).Text(), "ERROR text")
}

func TestErrorLocality(t *testing.T) {
	src := `M DEFINITIONS ::= BEGIN
A ::= INTEGER
B ::= SEQUENCE { x INTEGER, y ? ?, z BOOLEAN }
C ::= CHOICE { p NULL, q OCTET STRING }
D ::= SEQUENCE { e INTEGER (0..255) OPTIONAL, f BIT STRING }
END
`
	tree := parse(t, src)
	testutil.Greater(t, tree.ErrorCount(), 0, "errors")

	body := tree.RootNode().ChildByFieldName("body")
	testutil.NotNil(t, body, "module body")
	assignments := body.NamedChildren()
	testutil.Len(t, assignments, 4, "assignments")
	for _, a := range assignments {
		testutil.Equal(t, "type-assignment", a.Kind(), "assignment kind of %q", a.Text())
		name := a.ChildByFieldName("name").Text()
		testutil.Equal(t, name == "B", a.HasError(), "error flag of %s", name)
	}

	// The components around the bad one are intact.
	seq := assignments[1].ChildByFieldName("type")
	var comps []string
	for _, c := range seq.NamedChildren() {
		if c.Kind() == "component-type" {
			comps = append(comps, c.ChildByFieldName("name").Text())
		}
	}
	testutil.SliceEqual(t, []string{"x", "z"}, comps, "components of B")
}

func TestRecoveryAtAssignmentBoundary(t *testing.T) {
	src := "A ::= SEQUENCE { a INTEGER,\nB ::= BOOLEAN\n"
	tree := parse(t, src)
	body := tree.RootNode().ChildByFieldName("body")
	assignments := body.NamedChildren()
	testutil.Len(t, assignments, 2, "assignments")
	testutil.False(t, assignments[1].HasError(), "second assignment should be clean")
	testutil.Equal(t, "BOOLEAN", assignments[1].ChildByFieldName("type").Text(), "second type")
}

// leaves returns the leaves of the tree in order.
func leaves(tree *cst.Tree) []*cst.Node {
	var out []*cst.Node
	tree.Walk(func(n *cst.Node) bool {
		if n.ChildCount() == 0 {
			out = append(out, n)
		}
		return true
	})
	return out
}

var coverageInputs = []string{
	"",
	"Foo ::= INTEGER",
	"Foo ::= SEQUENCE { a INTEGER b BOOLEAN }",
	"}}}",
	"::= ::= ::=",
	"END",
	"BEGIN END",
	"Foo ::= SEQUENCE {",
	"Foo ::= SEQUENCE { a INTEGER, }",
	"/* unterminated",
	"'0101'B xyz 'AF'H \"str\"",
	"\x00\xff\x01",
	"M DEFINITIONS ::= BEGIN X ::= INTEGER",
	"M DEFINITIONS ::= BEGIN\n  x INTEGER ::= 5 -- five\n  y X ::= { a 1, b TRUE }\nEND",
	"A ::= CHOICE { a [0] IMPLICIT INTEGER (1..10, ...), b SET OF T }",
	"A ::= INTEGER { one(1), two(2) } (one | two)",
	"ID ::= CLASS { &id INTEGER UNIQUE, &Type } WITH SYNTAX { ID &id TYPE &Type }",
	"o OBJECT IDENTIFIER ::= { iso(1) org(3) 6 }",
	"A ::= SEQUENCE { a INTEGER ( }",
	"A ::= [ ] INTEGER",
	"x INTEGER ::=",
}

// checkCoverage verifies that the leaves of the tree for src tile the input
// in order and reproduce it, and that a second parse is identical.
func checkCoverage(t *testing.T, p *Parser, src string) {
	t.Helper()
	tree := p.Parse([]byte(src)).Tree
	root := tree.RootNode()
	testutil.Equal(t, uint32(0), root.StartByte(), "root start for %q", src)
	testutil.Equal(t, uint32(len(src)), root.EndByte(), "root end for %q", src)

	var b strings.Builder
	var pos uint32
	for _, leaf := range leaves(tree) {
		testutil.Equal(t, pos, leaf.StartByte(), "leaf %s start for %q", leaf.Kind(), src)
		pos = leaf.EndByte()
		b.WriteString(leaf.Text())
	}
	testutil.Equal(t, uint32(len(src)), pos, "leaves end for %q", src)
	testutil.Equal(t, src, b.String(), "round trip for %q", src)

	again := p.Parse([]byte(src)).Tree
	testutil.True(t, cst.Equal(root, again.RootNode()), "second parse differs for %q", src)
}

func TestTotalCoverage(t *testing.T) {
	p := newParser(t)
	for _, src := range coverageInputs {
		checkCoverage(t, p, src)
	}
}

// soupPieces are lexemes and fragments that random inputs are built from.
var soupPieces = []string{
	"A", "Foo-Bar", "x", "y1", "::=", "{", "}", "(", ")", "[", "]", "[[", "]]",
	",", ";", ":", ".", "..", "...", "|", "^", "@", "!", "<", "-", "&Type", "&id",
	"0", "42", "-1", "'0101'B", "'AF'H", "\"str\"", "\"open",
	"INTEGER", "BOOLEAN", "SEQUENCE", "OF", "CHOICE", "SET", "OPTIONAL", "DEFAULT",
	"DEFINITIONS", "BEGIN", "END", "IMPORTS", "EXPORTS", "FROM", "TAGS", "AUTOMATIC",
	"CLASS", "WITH SYNTAX", "SIZE", "OBJECT IDENTIFIER", "ANY DEFINED BY",
	"ENCODING-CONTROL", "[XER:", "Mod.v",
	"-- note\n", "/* c */", "/*", "\x00", "\xff", "é", "#",
}

func TestTotalCoverageRandom(t *testing.T) {
	p := newParser(t)
	rng := rand.New(rand.NewPCG(7, 11))
	seps := []string{"", " ", " ", "\n", "\n\t"}
	for range 500 {
		var b strings.Builder
		for range rng.IntN(40) {
			b.WriteString(soupPieces[rng.IntN(len(soupPieces))])
			b.WriteString(seps[rng.IntN(len(seps))])
		}
		checkCoverage(t, p, b.String())
		if t.Failed() {
			return
		}
	}
}

func FuzzParse(f *testing.F) {
	for _, src := range coverageInputs {
		f.Add(src)
	}
	f.Add(multiModuleSource)
	f.Fuzz(func(t *testing.T, src string) {
		checkCoverage(t, newParser(t), src)
	})
}

func TestDeterminism(t *testing.T) {
	p := newParser(t)
	for _, src := range coverageInputs {
		a := p.Parse([]byte(src)).Tree
		b := p.Parse([]byte(src)).Tree
		testutil.True(t, cst.Equal(a.RootNode(), b.RootNode()), "trees differ for %q", src)
		testutil.Equal(t, a.String(), b.String(), "S-expressions for %q", src)
	}
}

func TestConcurrentParses(t *testing.T) {
	p := newParser(t)
	want := make([]string, len(coverageInputs))
	for i, src := range coverageInputs {
		want[i] = p.Parse([]byte(src)).Tree.String()
	}

	var wg sync.WaitGroup
	got := make([][]string, 4)
	for w := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, src := range coverageInputs {
				got[w] = append(got[w], p.Parse([]byte(src)).Tree.String())
			}
		}()
	}
	wg.Wait()
	for _, g := range got {
		testutil.SliceEqual(t, want, g, "concurrent results")
	}
}

// edit replaces the first occurrence of old in src and describes the change.
func edit(t *testing.T, src, old, repl string) (string, Edit) {
	t.Helper()
	i := strings.Index(src, old)
	if i < 0 {
		t.Fatalf("%q not found", old)
	}
	out := src[:i] + repl + src[i+len(old):]
	return out, Edit{
		StartByte:  uint32(i),
		OldEndByte: uint32(i + len(old)),
		NewEndByte: uint32(i + len(repl)),
	}
}

const reuseSource = `M DEFINITIONS ::= BEGIN
A ::= INTEGER
B ::= BOOLEAN
C ::= SEQUENCE { a INTEGER, b OCTET STRING }
D ::= CHOICE { x NULL, y [1] REAL }
END
`

func TestReparseEquivalence(t *testing.T) {
	p := newParser(t)
	old := p.Parse([]byte(reuseSource)).Tree

	cases := []struct {
		name     string
		old, new string
	}{
		{"replace type", "BOOLEAN", "NULL"},
		{"rename", "C ::=", "Cee ::="},
		{"break component", "a INTEGER,", "a INTEGER"},
		{"insert assignment", "B ::= BOOLEAN\n", "B ::= BOOLEAN\nE ::= REAL\n"},
		{"delete assignment", "A ::= INTEGER\n", ""},
		{"open comment", "D ::=", "-- D ::="},
		{"garbage", "y [1] REAL", "y [1 REAL ?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, e := edit(t, reuseSource, tc.old, tc.new)
			fresh := p.Parse([]byte(src)).Tree
			res := p.Reparse(old, []byte(src), []Edit{e})
			testutil.True(t, cst.Equal(fresh.RootNode(), res.Tree.RootNode()),
				"reparse differs from fresh parse:\n%s", testutil.SexpDiff(fresh.String(), res.Tree.String()))
		})
	}
}

func TestReparseReuses(t *testing.T) {
	p := newParser(t)
	old := p.Parse([]byte(reuseSource)).Tree
	src, e := edit(t, reuseSource, "BOOLEAN", "NULL")

	res := p.Reparse(old, []byte(src), []Edit{e})
	testutil.Greater(t, res.Reused, 0, "reused subtrees")

	// Unchanged assignments are shared with the old tree.
	oldBody := old.RootNode().ChildByFieldName("body")
	newBody := res.Tree.RootNode().ChildByFieldName("body")
	testutil.True(t, oldBody.NamedChild(0).Subtree() == newBody.NamedChild(0).Subtree(), "A should be shared")
	testutil.True(t, oldBody.NamedChild(3).Subtree() == newBody.NamedChild(3).Subtree(), "D should be shared")
	testutil.False(t, oldBody.NamedChild(1).Subtree() == newBody.NamedChild(1).Subtree(), "B should be new")
}

func TestReparseSequentialEdits(t *testing.T) {
	p := newParser(t)
	old := p.Parse([]byte(reuseSource)).Tree

	src, e1 := edit(t, reuseSource, "INTEGER\nB", "INTEGER (0..7)\nB")
	src, e2 := edit(t, src, "REAL", "GeneralizedTime")
	res := p.Reparse(old, []byte(src), []Edit{e1, e2})
	fresh := p.Parse([]byte(src)).Tree
	testutil.True(t, cst.Equal(fresh.RootNode(), res.Tree.RootNode()),
		"reparse differs from fresh parse:\n%s", testutil.SexpDiff(fresh.String(), res.Tree.String()))
	testutil.Greater(t, res.Reused, 0, "reused subtrees")
}

func TestReparseMultipleModules(t *testing.T) {
	p := newParser(t)
	old := p.Parse([]byte(multiModuleSource)).Tree

	cases := []struct {
		name     string
		old, new string
	}{
		{"edit second module", "U ::= BOOLEAN", "U ::= NULL"},
		{"edit first module", "T ::= INTEGER", "T ::= INTEGER (0..9)"},
		{"break second header", "B { iso 2 } DEFINITIONS", "B { iso 2 } DEFINITION"},
		{"remove last END", "BOOLEAN\nEND", "BOOLEAN\n"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			src, e := edit(t, multiModuleSource, tt.old, tt.new)
			res := p.Reparse(old, []byte(src), []Edit{e})
			fresh := p.Parse([]byte(src)).Tree
			testutil.True(t, cst.Equal(fresh.RootNode(), res.Tree.RootNode()),
				"reparse differs from fresh parse:\n%s", testutil.SexpDiff(fresh.String(), res.Tree.String()))
		})
	}
}

func TestReparseWithoutOldTree(t *testing.T) {
	p := newParser(t)
	res := p.Reparse(nil, []byte(reuseSource), nil)
	testutil.Equal(t, 0, res.Reused, "reused without an old tree")
	testutil.Equal(t, p.Parse([]byte(reuseSource)).Tree.String(), res.Tree.String(), "tree")
}

func TestOldOffset(t *testing.T) {
	x := &reuseIndex{edits: []Edit{
		{StartByte: 10, OldEndByte: 15, NewEndByte: 12}, // 5 bytes become 2
		{StartByte: 30, OldEndByte: 30, NewEndByte: 34}, // 4 bytes inserted
	}}
	tests := []struct {
		off  uint32
		want uint32
		ok   bool
	}{
		{5, 5, true},
		{10, 0, false},
		{11, 0, false},
		{12, 15, true},
		{29, 32, true},
		{30, 0, false},
		{33, 0, false},
		{34, 33, true},
	}
	for _, tt := range tests {
		got, ok := x.oldOffset(tt.off)
		testutil.Equal(t, tt.ok, ok, "oldOffset(%d) ok", tt.off)
		if ok {
			testutil.Equal(t, tt.want, got, "oldOffset(%d)", tt.off)
		}
	}
}
