package cst

import "github.com/golangsnmp/asn1cst/grammar"

type flags uint8

const (
	flagNamed flags = 1 << iota
	flagExtra
	flagMissing
	flagError
	flagHasError
)

// Subtree is an immutable node of a concrete syntax tree. It records sizes
// rather than offsets, so the same Subtree can appear in more than one
// tree and at different positions.
type Subtree struct {
	symbol   grammar.Symbol
	flags    flags
	size     uint32
	children []*Subtree
	fields   []grammar.FieldID // nil when no child is labeled
	rule     grammar.RuleID
	tokens   uint32
	window   uint32
}

// Child is a child subtree together with its field label.
type Child struct {
	Subtree *Subtree
	Field   grammar.FieldID
}

// Meta describes how a branch was produced. Tokens is the number of tokens
// the rule consumed; Window is the number of tokens it examined, lookahead
// included. Both count from the rule's first token.
type Meta struct {
	Rule   grammar.RuleID
	Tokens uint32
	Window uint32
}

// NewLeaf returns a token leaf of the given byte size. A leaf of
// grammar.ErrorSymbol is an error leaf.
func NewLeaf(sym grammar.Symbol, named bool, size uint32) *Subtree {
	s := &Subtree{symbol: sym, size: size, rule: grammar.NoRule, tokens: 1, window: 1}
	if named {
		s.flags |= flagNamed
	}
	if sym == grammar.ErrorSymbol {
		s.flags |= flagNamed | flagError | flagHasError
	}
	return s
}

// NewExtra returns a trivia leaf (whitespace or comment).
func NewExtra(sym grammar.Symbol, named bool, size uint32) *Subtree {
	s := &Subtree{symbol: sym, flags: flagExtra, size: size, rule: grammar.NoRule}
	if named {
		s.flags |= flagNamed
	}
	return s
}

// NewMissing returns a zero-width node standing for an absent token or
// construct.
func NewMissing(sym grammar.Symbol, named bool) *Subtree {
	s := &Subtree{symbol: sym, flags: flagMissing | flagHasError, rule: grammar.NoRule}
	if named {
		s.flags |= flagNamed
	}
	return s
}

// NewError returns an ERROR node wrapping children the grammar could not
// place.
func NewError(children []Child) *Subtree {
	s := newBranch(grammar.ErrorSymbol, children)
	s.flags |= flagNamed | flagError | flagHasError
	s.rule = grammar.NoRule
	return s
}

// NewBranch returns a node of a rule with the given children.
func NewBranch(sym grammar.Symbol, named bool, children []Child, meta Meta) *Subtree {
	s := newBranch(sym, children)
	if named {
		s.flags |= flagNamed
	}
	s.rule = meta.Rule
	s.tokens = meta.Tokens
	s.window = meta.Window
	return s
}

func newBranch(sym grammar.Symbol, children []Child) *Subtree {
	s := &Subtree{symbol: sym}
	if len(children) > 0 {
		s.children = make([]*Subtree, len(children))
	}
	for i, c := range children {
		s.children[i] = c.Subtree
		s.size += c.Subtree.size
		if c.Subtree.flags&flagHasError != 0 {
			s.flags |= flagHasError
		}
		if c.Field != 0 {
			if s.fields == nil {
				s.fields = make([]grammar.FieldID, len(children))
			}
			s.fields[i] = c.Field
		}
	}
	return s
}

// Symbol returns the node kind.
func (s *Subtree) Symbol() grammar.Symbol { return s.symbol }

// Size returns the byte length of the subtree.
func (s *Subtree) Size() uint32 { return s.size }

func (s *Subtree) IsNamed() bool   { return s.flags&flagNamed != 0 }
func (s *Subtree) IsExtra() bool   { return s.flags&flagExtra != 0 }
func (s *Subtree) IsMissing() bool { return s.flags&flagMissing != 0 }
func (s *Subtree) IsError() bool   { return s.flags&flagError != 0 }

// HasError reports whether the subtree is, or contains, an error or
// missing node.
func (s *Subtree) HasError() bool { return s.flags&flagHasError != 0 }

// ChildCount returns the number of children.
func (s *Subtree) ChildCount() int { return len(s.children) }

// Child returns the i-th child.
func (s *Subtree) Child(i int) *Subtree { return s.children[i] }

// FieldAt returns the field label of the i-th child, or zero.
func (s *Subtree) FieldAt(i int) grammar.FieldID {
	if s.fields == nil {
		return 0
	}
	return s.fields[i]
}

// Rule returns the rule that produced the subtree, or grammar.NoRule.
func (s *Subtree) Rule() grammar.RuleID { return s.rule }

// Tokens returns the number of tokens the producing rule consumed.
func (s *Subtree) Tokens() uint32 { return s.tokens }

// Window returns the number of tokens the producing rule examined.
func (s *Subtree) Window() uint32 { return s.window }
