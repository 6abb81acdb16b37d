package engine

import (
	"log/slog"

	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/lexer"
)

// endsBody reports whether a token of kind k closes a module body.
// Recovery never skips it.
func endsBody(k lexer.TokenKind) bool {
	return k == lexer.TokEOF || k == lexer.TokKwEnd || k == lexer.TokKwEncodingControl
}

// atBoundary reports whether token k looks like the start of an
// assignment: a reference first on its line, followed by "::=" within two
// tokens. Recovery never skips past such a token.
func (s *state) atBoundary(k int) bool {
	t := s.peek(k)
	if !t.LineStart || !t.Kind.IsReference() {
		return false
	}
	return s.peek(k+1).Kind == lexer.TokAssign || s.peek(k+2).Kind == lexer.TokAssign
}

// repair stands in for a committed item e that failed at pos. It skips
// tokens, keeping brackets balanced, until e parses at bracket depth zero
// or a synchronizing token is reached. Skipped tokens become an ERROR
// node; if e never parsed, a missing node follows it.
func (s *state) repair(e *grammar.Expr, pos int) ([]cst.Child, int) {
	depth := 0
	k := pos
	for ; ; k++ {
		t := s.peek(k)
		if k > pos && depth == 0 {
			if items, end, ok := s.eval(e, k); ok {
				s.Trace("resynchronized", slog.Int("skipped", k-pos))
				return append(s.errorItems(pos, k), items...), end
			}
		}
		if endsBody(t.Kind) {
			break
		}
		if t.Kind.IsCloser() {
			if depth == 0 {
				break
			}
			depth--
			continue
		}
		if depth == 0 && (t.Kind == lexer.TokComma || t.Kind == lexer.TokSemicolon ||
			e.Sync.Has(symbol(t)) || s.atBoundary(k)) {
			break
		}
		if t.Kind.IsOpener() {
			depth++
		}
	}
	return append(s.errorItems(pos, k), missing(e)), k
}

// listStop reports whether token k ends the committed list e.
func (s *state) listStop(e *grammar.Expr, k int) bool {
	t := s.peek(k)
	return endsBody(t.Kind) ||
		t.Kind.IsCloser() || e.Sync.Has(symbol(t))
}

// recoverList matches a committed list with a separator. A missing item
// or separator becomes a missing node and tokens that fit neither become
// ERROR nodes; the list itself never fails.
func (s *state) recoverList(e *grammar.Expr, pos int) ([]cst.Child, int, bool) {
	item, sep := e.Items[0], e.Separator()
	var out []cst.Child
	p, n := pos, 0
	for {
		if n > 0 {
			if items, end, ok := s.eval(sep, p); ok {
				out = append(out, items...)
				p = end
			} else {
				if s.listStop(e, p) || s.atBoundary(p) {
					break
				}
				if items, end, ok := s.eval(item, p); ok {
					out = append(out, missing(sep))
					out = append(out, items...)
					p = end
					n++
					continue
				}
				k, _, _, _ := s.skipInList(e, p, false)
				if k == p {
					break
				}
				out = append(out, s.errorItems(p, k)...)
				p = k
				continue
			}
		}

		if items, end, ok := s.eval(item, p); ok {
			out = append(out, items...)
			p = end
			n++
			continue
		}
		if n == 0 && s.listStop(e, p) {
			if e.Min > 0 {
				out = append(out, missing(item))
			}
			break
		}
		k, items, end, ok := s.skipInList(e, p, true)
		out = append(out, s.errorItems(p, k)...)
		switch {
		case ok:
			out = append(out, items...)
			p = end
		case k == p:
			out = append(out, missing(item))
		default:
			p = k
		}
		n++
	}
	return out, p, true
}

// skipInList advances from p over tokens that fit nowhere in list e,
// keeping brackets balanced. It stops at depth zero on a separator, a
// list stop or an assignment boundary. With retry set it also stops where
// the item parses, and returns the item.
func (s *state) skipInList(e *grammar.Expr, p int, retry bool) (k int, items []cst.Child, end int, ok bool) {
	item, sep := e.Items[0], e.Separator()
	depth := 0
	for k = p; ; k++ {
		t := s.peek(k)
		if endsBody(t.Kind) {
			return k, nil, k, false
		}
		if depth == 0 {
			if retry && k > p {
				if items, end, ok = s.eval(item, k); ok {
					return k, items, end, true
				}
			}
			if s.listStop(e, k) || sep.First.Has(symbol(t)) || s.atBoundary(k) {
				return k, nil, k, false
			}
		}
		switch {
		case t.Kind.IsOpener():
			depth++
		case t.Kind.IsCloser():
			depth--
		}
	}
}

// recoverRun matches a committed list without a separator, such as the
// assignments of a module body. Tokens that start no item are skipped up
// to the next place an item parses: the start of a line, or a token at
// bracket depth zero that is directly followed by "::=".
func (s *state) recoverRun(e *grammar.Expr, pos int) ([]cst.Child, int, bool) {
	item := e.Items[0]
	var out []cst.Child
	p, n := pos, 0
	for {
		t := s.peek(p)
		if endsBody(t.Kind) || e.Sync.Has(symbol(t)) {
			break
		}
		if items, end, ok := s.eval(item, p); ok && end > p {
			out = append(out, items...)
			p = end
			n++
			continue
		}

		var (
			items []cst.Child
			end   int
			found bool
		)
		depth := 0
		k := p
		for {
			t := s.peek(k)
			if k > p {
				if t.LineStart || (depth == 0 && s.peek(k+1).Kind == lexer.TokAssign) {
					if items, end, found = s.eval(item, k); found && end > k {
						break
					}
					found = false
				}
				if endsBody(t.Kind) || (depth == 0 && e.Sync.Has(symbol(t))) {
					break
				}
			}
			switch {
			case t.Kind.IsOpener():
				depth++
			case t.Kind.IsCloser() && depth > 0:
				depth--
			}
			k++
		}
		s.Trace("skipped", slog.Int("from", int(s.peek(p).Span.Start)), slog.Int("tokens", k-p))
		out = append(out, s.errorItems(p, k)...)
		p = k
		if found {
			out = append(out, items...)
			p = end
			n++
		}
	}
	if n == 0 && e.Min > 0 {
		out = append(out, missing(item))
	}
	return out, p, true
}
