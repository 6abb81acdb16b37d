package cst

import (
	"strconv"
	"strings"
)

// String renders the node as an S-expression of its named descendants:
//
//	(type-assignment name: (type-reference) type: (integer-type))
//
// Missing nodes print as (MISSING kind), with anonymous kinds quoted.
func (n *Node) String() string {
	var b strings.Builder
	writeSexp(&b, n, "")
	return b.String()
}

func writeSexp(b *strings.Builder, n *Node, field string) {
	if field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}
	b.WriteByte('(')
	if n.IsMissing() {
		b.WriteString("MISSING ")
		if n.IsNamed() {
			b.WriteString(n.Kind())
		} else {
			b.WriteString(strconv.Quote(n.Kind()))
		}
	} else {
		b.WriteString(n.Kind())
	}
	for i, c := range n.Children() {
		if !c.IsNamed() && !c.IsMissing() {
			continue
		}
		b.WriteByte(' ')
		writeSexp(b, c, n.FieldNameForChild(i))
	}
	b.WriteByte(')')
}
