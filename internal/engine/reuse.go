package engine

import (
	"bytes"
	"log/slog"

	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/lexer"
	"github.com/golangsnmp/asn1cst/internal/types"
)

// Edit describes one change to the source: bytes [StartByte, OldEndByte)
// of the old text were replaced by bytes [StartByte, NewEndByte) of the
// new text. Edits are listed in the order they were applied, each in the
// coordinates left by the previous ones.
type Edit struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32
}

type reuseKey struct {
	rule  grammar.RuleID
	token int
}

// reuseIndex holds the error-free rule nodes of a previous tree, keyed by
// rule and first token.
type reuseIndex struct {
	source  []byte
	tokens  []lexer.Token
	byStart map[types.ByteOffset]int
	nodes   map[reuseKey]*cst.Subtree
	edits   []Edit
}

func newReuseIndex(old *cst.Tree, edits []Edit) *reuseIndex {
	tokens, _ := lexer.New(old.Source(), nil).Tokenize()
	x := &reuseIndex{
		source:  old.Source(),
		tokens:  tokens,
		byStart: make(map[types.ByteOffset]int, len(tokens)),
		nodes:   make(map[reuseKey]*cst.Subtree),
		edits:   edits,
	}
	for i, t := range tokens {
		x.byStart[t.Span.Start] = i
	}

	old.Walk(func(n *cst.Node) bool {
		sub := n.Subtree()
		if sub.IsExtra() || sub.ChildCount() == 0 {
			return false
		}
		if n.Parent() == nil || sub.HasError() || sub.Rule() == grammar.NoRule {
			return true
		}
		if i, ok := x.byStart[types.ByteOffset(n.StartByte())]; ok {
			key := reuseKey{rule: sub.Rule(), token: i}
			// The outermost node of a rule at a token is the one a parse
			// at that token returns.
			if _, dup := x.nodes[key]; !dup {
				x.nodes[key] = sub
			}
		}
		return true
	})
	return x
}

// oldOffset maps a byte offset of the new text back to the old text. It
// fails for offsets inside edited text.
func (x *reuseIndex) oldOffset(off uint32) (uint32, bool) {
	for i := len(x.edits) - 1; i >= 0; i-- {
		e := x.edits[i]
		switch {
		case off >= e.NewEndByte:
			off = off - e.NewEndByte + e.OldEndByte
		case off >= e.StartByte:
			return 0, false
		}
	}
	return off, true
}

// tryReuse returns the memo entry for rule r at pos built from an old
// subtree, or nil when no old subtree applies.
func (s *state) tryReuse(r *grammar.Rule, pos int) *memoEntry {
	t := s.peek(pos)
	off, ok := s.reuse.oldOffset(uint32(t.Span.Start))
	if !ok {
		return nil
	}
	oi, ok := s.reuse.byStart[types.ByteOffset(off)]
	if !ok {
		return nil
	}
	sub := s.reuse.nodes[reuseKey{rule: r.ID, token: oi}]
	if sub == nil {
		return nil
	}
	if !s.windowMatches(sub, pos, oi) {
		s.examined = pos
		return nil
	}

	s.reused++
	if s.TraceEnabled() {
		s.Trace("reused", slog.String("rule", r.Name),
			slog.Int("at", int(t.Span.Start)),
			slog.Int("tokens", int(sub.Tokens())))
	}
	items := append(s.trivia(pos), cst.Child{Subtree: sub})
	return &memoEntry{
		items: items,
		end:   pos + int(sub.Tokens()),
		reach: pos + int(sub.Window()) - 1,
		ok:    true,
	}
}

// windowMatches reports whether the tokens the old subtree examined are
// unchanged at pos. Trivia is compared inside the subtree, where it is
// part of the node.
func (s *state) windowMatches(sub *cst.Subtree, pos, oi int) bool {
	old := s.reuse.tokens
	for i := range int(sub.Window()) {
		if oi+i >= len(old) {
			return false
		}
		a, b := s.peek(pos+i), &old[oi+i]
		if a.Kind != b.Kind || a.LineStart != b.LineStart || a.Span.Len() != b.Span.Len() {
			return false
		}
		if !bytes.Equal(s.text(a), s.reuse.source[b.Span.Start:b.Span.End]) {
			return false
		}
		if i == 0 || i >= int(sub.Tokens()) {
			continue
		}
		if len(a.Trivia) != len(b.Trivia) {
			return false
		}
		for j := range a.Trivia {
			if a.Trivia[j].Kind != b.Trivia[j].Kind || a.Trivia[j].Span.Len() != b.Trivia[j].Span.Len() {
				return false
			}
		}
	}
	return true
}
