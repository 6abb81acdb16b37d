package cst

import (
	"iter"

	"github.com/golangsnmp/asn1cst/grammar"
)

// Node is a subtree positioned within a tree.
type Node struct {
	tree   *Tree
	sub    *Subtree
	start  uint32
	parent *Node
	index  int // position in parent, -1 for the root
}

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree { return n.tree }

// Subtree returns the underlying subtree.
func (n *Node) Subtree() *Subtree { return n.sub }

// Kind returns the node kind name, for example "type-assignment" or "::=".
func (n *Node) Kind() string { return n.tree.lang.SymbolName(n.sub.symbol) }

// Symbol returns the node kind.
func (n *Node) Symbol() grammar.Symbol { return n.sub.symbol }

func (n *Node) IsNamed() bool   { return n.sub.IsNamed() }
func (n *Node) IsExtra() bool   { return n.sub.IsExtra() }
func (n *Node) IsMissing() bool { return n.sub.IsMissing() }
func (n *Node) IsError() bool   { return n.sub.IsError() }
func (n *Node) HasError() bool  { return n.sub.HasError() }

// StartByte returns the offset of the first byte of the node.
func (n *Node) StartByte() uint32 { return n.start }

// EndByte returns the offset just past the last byte of the node.
func (n *Node) EndByte() uint32 { return n.start + n.sub.size }

// StartPoint returns the row and column of StartByte.
func (n *Node) StartPoint() Point { return n.tree.Point(n.start) }

// EndPoint returns the row and column of EndByte.
func (n *Node) EndPoint() Point { return n.tree.Point(n.EndByte()) }

// Text returns the source text the node spans.
func (n *Node) Text() string {
	return string(n.tree.source[n.start:n.EndByte()])
}

// ChildCount returns the number of children, extras included.
func (n *Node) ChildCount() int { return len(n.sub.children) }

// Child returns the i-th child, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.sub.children) {
		return nil
	}
	start := n.start
	for _, c := range n.sub.children[:i] {
		start += c.size
	}
	return n.child(i, start)
}

func (n *Node) child(i int, start uint32) *Node {
	return &Node{tree: n.tree, sub: n.sub.children[i], start: start, parent: n, index: i}
}

// Children returns all children in order.
func (n *Node) Children() []*Node {
	if len(n.sub.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.sub.children))
	start := n.start
	for i, c := range n.sub.children {
		out[i] = n.child(i, start)
		start += c.size
	}
	return out
}

// NamedChildCount returns the number of named children.
func (n *Node) NamedChildCount() int {
	count := 0
	for _, c := range n.sub.children {
		if c.IsNamed() {
			count++
		}
	}
	return count
}

// NamedChild returns the i-th named child, or nil.
func (n *Node) NamedChild(i int) *Node {
	for _, c := range n.Children() {
		if !c.IsNamed() {
			continue
		}
		if i == 0 {
			return c
		}
		i--
	}
	return nil
}

// NamedChildren returns the named children in order.
func (n *Node) NamedChildren() []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// ChildByFieldName returns the first child labeled with the field, or nil.
func (n *Node) ChildByFieldName(name string) *Node {
	id, ok := n.tree.lang.FieldID(name)
	if !ok || n.sub.fields == nil {
		return nil
	}
	for i, f := range n.sub.fields {
		if f == id {
			return n.Child(i)
		}
	}
	return nil
}

// ChildrenByFieldName returns every child labeled with the field.
func (n *Node) ChildrenByFieldName(name string) []*Node {
	id, ok := n.tree.lang.FieldID(name)
	if !ok || n.sub.fields == nil {
		return nil
	}
	var out []*Node
	for i, c := range n.Children() {
		if n.sub.fields[i] == id {
			out = append(out, c)
		}
	}
	return out
}

// FieldNameForChild returns the field label of the i-th child, or "".
func (n *Node) FieldNameForChild(i int) string {
	if i < 0 || i >= len(n.sub.children) {
		return ""
	}
	return n.tree.lang.FieldName(n.sub.FieldAt(i))
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// NextSibling returns the following child of the parent, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.childAfter(n.index, n.EndByte())
}

func (n *Node) childAfter(i int, start uint32) *Node {
	if i+1 >= len(n.sub.children) {
		return nil
	}
	return n.child(i+1, start)
}

// PrevSibling returns the preceding child of the parent, or nil.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	prev := n.parent.sub.children[n.index-1]
	return n.parent.child(n.index-1, n.start-prev.size)
}

// DescendantForByteRange returns the smallest node that spans
// [start, end). Zero-width nodes are only returned for an empty range.
func (n *Node) DescendantForByteRange(start, end uint32) *Node {
	if start < n.start || end > n.EndByte() {
		return nil
	}
	cur := n
outer:
	for {
		for _, c := range cur.Children() {
			if c.start > start {
				break
			}
			if c.sub.size == 0 && start != end {
				continue
			}
			if end <= c.EndByte() {
				cur = c
				continue outer
			}
		}
		return cur
	}
}

// Descendants yields the node and all of its descendants in pre-order.
func (n *Node) Descendants() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		descend(n, yield)
	}
}

func descend(n *Node, yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children() {
		if !descend(c, yield) {
			return false
		}
	}
	return true
}

// Equal reports whether two nodes have the same structure: kinds, flags,
// fields and byte ranges, recursively.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.start == b.start && equalSubtree(a.sub, b.sub)
}

func equalSubtree(a, b *Subtree) bool {
	if a == b {
		return true
	}
	if a.symbol != b.symbol || a.flags != b.flags || a.size != b.size ||
		len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if a.FieldAt(i) != b.FieldAt(i) || !equalSubtree(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
