package engine

import (
	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/lexer"
	"github.com/golangsnmp/asn1cst/internal/types"
)

// state is the private state of one parse.
type state struct {
	lang   *grammar.Language
	source []byte
	lex    *lexer.Lexer
	tokens []lexer.Token // lexed so far; the last one is EOF once done
	done   bool

	// examined is the highest token index looked at since the innermost
	// rule evaluation began.
	examined int

	memo   map[memoKey]*memoEntry
	reuse  *reuseIndex
	reused int
	types.Logger
}

type memoKey struct {
	rule grammar.RuleID
	pos  int32
}

type memoEntry struct {
	items []cst.Child
	end   int
	reach int
	ok    bool
}

// peek returns token i, lexing on demand. Past the end it returns the EOF
// token.
func (s *state) peek(i int) *lexer.Token {
	for len(s.tokens) <= i && !s.done {
		t := s.lex.NextToken()
		s.tokens = append(s.tokens, t)
		if t.Kind == lexer.TokEOF {
			s.done = true
		}
	}
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	if i > s.examined {
		s.examined = i
	}
	return &s.tokens[i]
}

// eofIndex lexes the rest of the input and returns the index of the EOF
// token.
func (s *state) eofIndex() int {
	for !s.done {
		s.peek(len(s.tokens))
	}
	return len(s.tokens) - 1
}

func (s *state) text(t *lexer.Token) []byte {
	return s.source[t.Span.Start:t.Span.End]
}

// trivia returns the extras for the trivia before token i.
func (s *state) trivia(i int) []cst.Child {
	t := s.peek(i)
	if len(t.Trivia) == 0 {
		return nil
	}
	out := make([]cst.Child, len(t.Trivia))
	for j, tv := range t.Trivia {
		sym := grammar.Symbol(tv.Kind)
		out[j] = cst.Child{Subtree: cst.NewExtra(sym, s.lang.IsNamed(sym), uint32(tv.Span.Len()))}
	}
	return out
}

// leaf returns the trivia of token i followed by the token as a leaf of
// symbol sym.
func (s *state) leaf(i int, sym grammar.Symbol) []cst.Child {
	t := s.peek(i)
	out := s.trivia(i)
	return append(out, cst.Child{Subtree: cst.NewLeaf(sym, s.lang.IsNamed(sym), uint32(t.Span.Len()))})
}

// errorItems wraps tokens [from, to) in an ERROR node. Trivia before the
// first token stays outside the node.
func (s *state) errorItems(from, to int) []cst.Child {
	if from >= to {
		return nil
	}
	var items []cst.Child
	for i := from; i < to; i++ {
		items = append(items, s.leaf(i, grammar.Symbol(s.peek(i).Kind))...)
	}
	lead := leadingExtras(items)
	out := make([]cst.Child, 0, lead+1)
	out = append(out, items[:lead]...)
	return append(out, cst.Child{Subtree: cst.NewError(items[lead:])})
}

// missing returns the zero-width node standing in for e.
func missing(e *grammar.Expr) cst.Child {
	c := cst.Child{Subtree: cst.NewMissing(e.Missing, e.MissingNamed)}
	if e.Op == grammar.OpField {
		c.Field = e.Field
	}
	return c
}

func leadingExtras(items []cst.Child) int {
	n := 0
	for n < len(items) && items[n].Subtree.IsExtra() {
		n++
	}
	return n
}

// symbol returns the terminal symbol of a token.
func symbol(t *lexer.Token) grammar.Symbol { return grammar.Symbol(t.Kind) }
