package engine

import (
	"log/slog"

	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
)

// rule evaluates rule id at token pos. Results are memoized; a visible
// rule wraps what it matched in a node, after any leading extras.
func (s *state) rule(id grammar.RuleID, pos int) ([]cst.Child, int, bool) {
	key := memoKey{rule: id, pos: int32(pos)}
	if m, ok := s.memo[key]; ok {
		if m.reach > s.examined {
			s.examined = m.reach
		}
		return m.items, m.end, m.ok
	}

	r := s.lang.Rule(id)
	saved := s.examined
	s.examined = pos

	var entry *memoEntry
	if s.reuse != nil && !r.Hidden {
		entry = s.tryReuse(r, pos)
	}
	if entry == nil {
		items, end, ok := s.eval(r.Body, pos)
		if ok && !r.Hidden {
			items = s.node(r, items, pos, end)
		}
		entry = &memoEntry{items: items, end: end, reach: s.examined, ok: ok}
	}
	s.memo[key] = entry
	s.examined = max(saved, entry.reach)
	return entry.items, entry.end, entry.ok
}

// node builds the node of a visible rule. A rule that matched nothing
// produces no node.
func (s *state) node(r *grammar.Rule, items []cst.Child, pos, end int) []cst.Child {
	lead := leadingExtras(items)
	if lead == len(items) {
		return items
	}
	branch := cst.NewBranch(r.Symbol, true, items[lead:], cst.Meta{
		Rule:   r.ID,
		Tokens: uint32(end - pos),
		Window: uint32(s.examined - pos + 1),
	})
	out := make([]cst.Child, 0, lead+1)
	out = append(out, items[:lead]...)
	return append(out, cst.Child{Subtree: branch})
}

// eval matches e at token pos and returns the produced items and the
// position after the match. Returned slices may be shared with the memo
// table and must not be modified.
func (s *state) eval(e *grammar.Expr, pos int) ([]cst.Child, int, bool) {
	t := s.peek(pos)
	if !e.Nullable && !e.First.Has(symbol(t)) {
		return nil, pos, false
	}

	switch e.Op {
	case grammar.OpTok:
		return s.leaf(pos, e.Sym), pos + 1, true

	case grammar.OpWord:
		if string(s.text(t)) != e.Text {
			return nil, pos, false
		}
		return s.leaf(pos, e.Sym), pos + 1, true

	case grammar.OpRef:
		return s.rule(e.Rule, pos)

	case grammar.OpSeq:
		return s.seq(e, pos)

	case grammar.OpChoice:
		for _, alt := range e.Items {
			if items, end, ok := s.eval(alt, pos); ok {
				return items, end, true
			}
		}
		return nil, pos, false

	case grammar.OpOpt:
		if items, end, ok := s.eval(e.Items[0], pos); ok {
			return items, end, true
		}
		return nil, pos, true

	case grammar.OpRepeat, grammar.OpRepeat1:
		var out []cst.Child
		p, n := pos, 0
		for {
			items, end, ok := s.eval(e.Items[0], p)
			if !ok || end == p {
				break
			}
			out = append(out, items...)
			p = end
			n++
		}
		if e.Op == grammar.OpRepeat1 && n == 0 {
			return nil, pos, false
		}
		return out, p, true

	case grammar.OpList:
		if e.Committed {
			if e.Separator() == nil {
				return s.recoverRun(e, pos)
			}
			return s.recoverList(e, pos)
		}
		return s.list(e, pos)

	case grammar.OpField:
		items, end, ok := s.eval(e.Items[0], pos)
		if !ok {
			return nil, pos, false
		}
		return label(items, e.Field), end, true

	case grammar.OpNot:
		inner := e.Items[0]
		if symbol(t) == inner.Kind && (inner.Op != grammar.OpWord || string(s.text(t)) == inner.Text) {
			return nil, pos, false
		}
		return nil, pos, true
	}
	return nil, pos, false
}

// seq matches the items of e in order. A committed item that fails is
// repaired rather than failing the sequence.
func (s *state) seq(e *grammar.Expr, pos int) ([]cst.Child, int, bool) {
	var out []cst.Child
	p := pos
	for _, item := range e.Items {
		items, end, ok := s.eval(item, p)
		if !ok {
			if !item.Committed {
				return nil, pos, false
			}
			if s.TraceEnabled() {
				s.Trace("repairing", slog.String("op", item.Op.String()),
					slog.String("missing", s.lang.SymbolName(item.Missing)),
					slog.Int("at", int(s.peek(p).Span.Start)))
			}
			items, end = s.repair(item, p)
		}
		out = append(out, items...)
		p = end
	}
	return out, p, true
}

// list matches a list without recovery. It stops before the first
// separator that is not followed by an item.
func (s *state) list(e *grammar.Expr, pos int) ([]cst.Child, int, bool) {
	item, sep := e.Items[0], e.Separator()
	out, p, ok := s.eval(item, pos)
	if !ok {
		if e.Min > 0 {
			return nil, pos, false
		}
		return nil, pos, true
	}
	out = append([]cst.Child(nil), out...)
	for {
		q := p
		var sepItems []cst.Child
		if sep != nil {
			var ok bool
			sepItems, q, ok = s.eval(sep, p)
			if !ok {
				break
			}
		}
		items, end, ok := s.eval(item, q)
		if !ok || end == p {
			break
		}
		out = append(out, sepItems...)
		out = append(out, items...)
		p = end
	}
	return out, p, true
}

// label tags the items a Field produced. Extras, ERROR nodes and items
// that already carry a label are left alone.
func label(items []cst.Child, f grammar.FieldID) []cst.Child {
	out := make([]cst.Child, len(items))
	copy(out, items)
	for i := range out {
		sub := out[i].Subtree
		if out[i].Field == 0 && !sub.IsExtra() && !(sub.IsError() && !sub.IsMissing()) {
			out[i].Field = f
		}
	}
	return out
}
