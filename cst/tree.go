// Package cst provides the concrete syntax trees produced by the parser.
//
// A Tree is immutable. Its nodes are built from Subtrees, which carry sizes
// instead of offsets and can be shared between the trees of successive
// parses of an edited source. Node is the positioned view of a Subtree
// inside one tree.
package cst

import (
	"sort"
	"sync"

	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/types"
)

// Point is a 0-based row and byte column.
type Point struct {
	Row    uint32
	Column uint32
}

// Tree is the result of a parse.
type Tree struct {
	lang        *grammar.Language
	source      []byte
	root        *Subtree
	diagnostics []types.SpanDiagnostic

	linesOnce sync.Once
	lines     []uint32 // byte offset of each line start
}

// NewTree assembles a tree. The source must not be modified afterwards.
func NewTree(lang *grammar.Language, source []byte, root *Subtree, diagnostics []types.SpanDiagnostic) *Tree {
	return &Tree{
		lang:        lang,
		source:      source,
		root:        root,
		diagnostics: diagnostics,
	}
}

// Language returns the grammar the tree was parsed with.
func (t *Tree) Language() *grammar.Language { return t.lang }

// Source returns the parsed source text.
func (t *Tree) Source() []byte { return t.source }

// Root returns the root subtree.
func (t *Tree) Root() *Subtree { return t.root }

// RootNode returns the root node.
func (t *Tree) RootNode() *Node {
	return &Node{tree: t, sub: t.root, index: -1}
}

// LexicalDiagnostics returns the lexer's diagnostics, unfiltered.
func (t *Tree) LexicalDiagnostics() []types.SpanDiagnostic { return t.diagnostics }

// String returns the S-expression of the root node.
func (t *Tree) String() string { return t.RootNode().String() }

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	walk(t.RootNode(), fn)
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		walk(c, fn)
	}
}

// ErrorCount returns the number of ERROR and missing nodes. Nodes nested
// inside an ERROR node are not counted separately.
func (t *Tree) ErrorCount() int {
	if !t.root.HasError() {
		return 0
	}
	n := 0
	t.Walk(func(node *Node) bool {
		if node.IsError() || node.IsMissing() {
			n++
			return false
		}
		return node.HasError()
	})
	return n
}

// Point converts a byte offset to a row and column.
func (t *Tree) Point(offset uint32) Point {
	t.linesOnce.Do(t.computeLines)
	row := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	return Point{Row: uint32(row), Column: offset - t.lines[row]}
}

func (t *Tree) computeLines() {
	t.lines = append(t.lines, 0)
	for i, b := range t.source {
		if b == '\n' {
			t.lines = append(t.lines, uint32(i+1))
		}
	}
}
