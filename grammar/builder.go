package grammar

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Build errors. Build wraps each problem it finds in one of these and
// returns them joined.
var (
	ErrNoStart         = errors.New("no start rule")
	ErrMultipleStart   = errors.New("more than one start rule")
	ErrDuplicateRule   = errors.New("duplicate rule")
	ErrUndefinedRule   = errors.New("undefined rule")
	ErrUnknownTerminal = errors.New("unknown terminal")
	ErrInvalidTerm     = errors.New("invalid term")
	ErrLeftRecursion   = errors.New("left recursion")
	ErrNullableRepeat  = errors.New("repeated term can match empty input")
	ErrUnrecoverable   = errors.New("committed term cannot be repaired")
)

// Terminal describes one terminal symbol. The position of a Terminal in
// the table given to NewBuilder is its symbol.
type Terminal struct {
	Name  string
	Named bool
	// Extra marks trivia: terminals that may appear anywhere and never
	// take part in rule matching.
	Extra bool
}

type ruleDef struct {
	name string
	body *Term
}

// Builder collects rules and compiles them into a Language.
// Use NewBuilder, add rules with Rule, name the start rule with Start,
// then call Build.
type Builder struct {
	name      string
	terminals []Terminal
	defs      []ruleDef
	starts    []string
}

// NewBuilder creates a builder for a grammar over the given terminals.
func NewBuilder(name string, terminals []Terminal) *Builder {
	return &Builder{name: name, terminals: terminals}
}

// Rule adds a rule. Names starting with "_" declare hidden rules, whose
// children are spliced into the parent node.
func (b *Builder) Rule(name string, body *Term) {
	b.defs = append(b.defs, ruleDef{name: name, body: body})
}

// Start names the start rule.
func (b *Builder) Start(name string) {
	b.starts = append(b.starts, name)
}

type compiler struct {
	lang    *Language
	termIDs map[string]Symbol
	symbols map[symbolKey]Symbol
	errs    []error
}

type symbolKey struct {
	name  string
	named bool
}

// Build compiles and validates the grammar.
func (b *Builder) Build() (*Language, error) {
	lang := &Language{
		name:      b.name,
		terminals: len(b.terminals),
		fields:    []string{""},
		fieldIDs:  make(map[string]FieldID),
		ruleIDs:   make(map[string]RuleID),
		start:     -1,
		hidden:    make(map[Symbol]RuleID),
	}
	c := &compiler{
		lang:    lang,
		termIDs: make(map[string]Symbol, len(b.terminals)),
		symbols: make(map[symbolKey]Symbol),
	}

	for i, t := range b.terminals {
		lang.symbols = append(lang.symbols, symbolInfo{
			name:  t.Name,
			named: t.Named,
			kind:  symTerminal,
			extra: t.Extra,
		})
		if _, dup := c.termIDs[t.Name]; !dup {
			c.termIDs[t.Name] = Symbol(i)
		}
	}

	var bodies []*Term
	for _, d := range b.defs {
		if _, dup := lang.ruleIDs[d.name]; dup {
			c.errorf(ErrDuplicateRule, "%q", d.name)
			continue
		}
		r := &Rule{
			ID:     RuleID(len(lang.rules)),
			Name:   d.name,
			Hidden: strings.HasPrefix(d.name, "_"),
		}
		lang.ruleIDs[d.name] = r.ID
		lang.rules = append(lang.rules, r)
		bodies = append(bodies, d.body)
	}
	for _, r := range lang.rules {
		if !r.Hidden {
			r.Symbol = c.intern(r.Name, true, symRule)
		}
	}

	c.resolveStart(b.starts)

	for i, r := range lang.rules {
		r.Body = c.compile(bodies[i], r, false)
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}

	c.analyze()
	c.checkLeftRecursion()
	for _, r := range lang.rules {
		c.validate(r, r.Body)
		c.sync(r.Body, newTokenSet(lang.terminals))
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	return lang, nil
}

func (c *compiler) errorf(kind error, format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}

func (c *compiler) resolveStart(starts []string) {
	switch len(starts) {
	case 0:
		c.errs = append(c.errs, ErrNoStart)
		return
	case 1:
	default:
		c.errorf(ErrMultipleStart, "%s", strings.Join(starts, ", "))
		return
	}
	id, ok := c.lang.ruleIDs[starts[0]]
	if !ok {
		c.errorf(ErrUndefinedRule, "start rule %q", starts[0])
		return
	}
	if c.lang.rules[id].Hidden {
		c.errorf(ErrInvalidTerm, "start rule %q is hidden", starts[0])
		return
	}
	c.lang.start = id
}

// intern returns the non-terminal symbol with the given name, adding it
// if needed.
func (c *compiler) intern(name string, named bool, kind symbolKind) Symbol {
	key := symbolKey{name, named}
	if s, ok := c.symbols[key]; ok {
		return s
	}
	s := Symbol(len(c.lang.symbols))
	c.lang.symbols = append(c.lang.symbols, symbolInfo{name: name, named: named, kind: kind})
	c.symbols[key] = s
	return s
}

func (c *compiler) field(name string) FieldID {
	if id, ok := c.lang.fieldIDs[name]; ok {
		return id
	}
	id := FieldID(len(c.lang.fields))
	c.lang.fields = append(c.lang.fields, name)
	c.lang.fieldIDs[name] = id
	return id
}

func (c *compiler) compile(t *Term, r *Rule, committed bool) *Expr {
	if t == nil {
		c.errorf(ErrInvalidTerm, "rule %q: nil term", r.Name)
		return &Expr{Op: OpSeq}
	}
	var e *Expr
	switch t.op {
	case OpTok:
		sym, ok := c.termIDs[t.name]
		if !ok {
			c.errorf(ErrUnknownTerminal, "rule %q: %q", r.Name, t.name)
		}
		e = &Expr{Op: OpTok, Kind: sym, Sym: sym}
	case OpWord:
		sym, ok := c.termIDs[t.name]
		if !ok {
			c.errorf(ErrUnknownTerminal, "rule %q: %q", r.Name, t.name)
		}
		e = &Expr{Op: OpWord, Kind: sym, Text: t.text, Sym: c.intern(t.text, false, symAlias)}
	case OpRef:
		id, ok := c.lang.ruleIDs[t.name]
		if !ok {
			c.errorf(ErrUndefinedRule, "rule %q references %q", r.Name, t.name)
		}
		e = &Expr{Op: OpRef, Rule: id}
	case OpSeq:
		e = &Expr{Op: OpSeq}
		cut := committed
		for _, item := range t.items {
			if item != nil && item.op == OpCut {
				cut = true
				continue
			}
			e.Items = append(e.Items, c.compile(item, r, cut))
		}
	case OpChoice:
		e = &Expr{Op: OpChoice}
		for _, alt := range t.items {
			e.Items = append(e.Items, c.compile(alt, r, false))
		}
		slices.SortStableFunc(e.Items, func(a, b *Expr) int {
			return cmp.Compare(b.Prec, a.Prec)
		})
	case OpOpt, OpRepeat, OpRepeat1:
		e = &Expr{Op: t.op, Items: []*Expr{c.compile(t.items[0], r, false)}}
	case OpList:
		e = &Expr{Op: OpList, Min: t.min}
		for _, item := range t.items {
			e.Items = append(e.Items, c.compile(item, r, false))
		}
	case OpField:
		e = &Expr{Op: OpField, Field: c.field(t.name), Items: []*Expr{c.compile(t.items[0], r, committed)}}
	case OpAlias:
		inner := t.items[0]
		if inner == nil || (inner.op != OpTok && inner.op != OpWord) {
			c.errorf(ErrInvalidTerm, "rule %q: alias %q must wrap a token", r.Name, t.name)
			return &Expr{Op: OpSeq}
		}
		e = c.compile(inner, r, committed)
		e.Sym = c.intern(t.name, t.named, symAlias)
	case OpPrec:
		e = c.compile(t.items[0], r, committed)
		e.Prec = t.prec
		return e
	case OpNot:
		inner := t.items[0]
		if inner == nil || (inner.op != OpTok && inner.op != OpWord) {
			c.errorf(ErrInvalidTerm, "rule %q: not must wrap a token", r.Name)
			return &Expr{Op: OpSeq}
		}
		e = &Expr{Op: OpNot, Items: []*Expr{c.compile(inner, r, false)}}
	case OpCut:
		c.errorf(ErrInvalidTerm, "rule %q: cut outside a sequence", r.Name)
		return &Expr{Op: OpSeq}
	default:
		c.errorf(ErrInvalidTerm, "rule %q: op %d", r.Name, t.op)
		return &Expr{Op: OpSeq}
	}
	e.Committed = committed
	return e
}

// analyze computes nullability and FIRST sets by fixpoint iteration.
func (c *compiler) analyze() {
	n := c.lang.terminals
	for _, r := range c.lang.rules {
		walk(r.Body, func(e *Expr) { e.First = newTokenSet(n) })
	}
	for changed := true; changed; {
		changed = false
		for _, r := range c.lang.rules {
			if c.analyzeExpr(r.Body) {
				changed = true
			}
		}
	}
}

func (c *compiler) analyzeExpr(e *Expr) bool {
	changed := false
	for _, item := range e.Items {
		if c.analyzeExpr(item) {
			changed = true
		}
	}
	nullable := e.Nullable
	switch e.Op {
	case OpTok, OpWord:
		if !e.First.Has(e.Kind) {
			e.First.add(e.Kind)
			changed = true
		}
	case OpRef:
		body := c.lang.rules[e.Rule].Body
		nullable = body.Nullable
		if e.First.union(body.First) {
			changed = true
		}
	case OpSeq:
		nullable = true
		for _, item := range e.Items {
			if e.First.union(item.First) {
				changed = true
			}
			if !item.Nullable {
				nullable = false
				break
			}
		}
	case OpChoice:
		nullable = false
		for _, alt := range e.Items {
			if e.First.union(alt.First) {
				changed = true
			}
			nullable = nullable || alt.Nullable
		}
	case OpOpt, OpRepeat:
		nullable = true
		if e.First.union(e.Items[0].First) {
			changed = true
		}
	case OpRepeat1, OpField:
		nullable = e.Items[0].Nullable
		if e.First.union(e.Items[0].First) {
			changed = true
		}
	case OpList:
		nullable = e.Min == 0 || e.Items[0].Nullable
		if e.First.union(e.Items[0].First) {
			changed = true
		}
	case OpNot:
		nullable = true
	}
	if nullable != e.Nullable {
		e.Nullable = nullable
		changed = true
	}
	return changed
}

// leftRefs returns the rules e can reference before consuming a token.
func leftRefs(e *Expr, out map[RuleID]bool) {
	switch e.Op {
	case OpRef:
		out[e.Rule] = true
	case OpSeq:
		for _, item := range e.Items {
			leftRefs(item, out)
			if !item.Nullable {
				return
			}
		}
	case OpChoice:
		for _, alt := range e.Items {
			leftRefs(alt, out)
		}
	case OpOpt, OpRepeat, OpRepeat1, OpField, OpList:
		leftRefs(e.Items[0], out)
	}
}

func (c *compiler) checkLeftRecursion() {
	rules := c.lang.rules
	edges := make([][]RuleID, len(rules))
	for i, r := range rules {
		refs := make(map[RuleID]bool)
		leftRefs(r.Body, refs)
		for id := range refs {
			edges[i] = append(edges[i], id)
		}
		slices.Sort(edges[i])
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(rules))
	var stack []RuleID
	var visit func(id RuleID)
	visit = func(id RuleID) {
		state[id] = active
		stack = append(stack, id)
		for _, next := range edges[id] {
			switch state[next] {
			case unvisited:
				visit(next)
			case active:
				start := slices.Index(stack, next)
				names := make([]string, 0, len(stack)-start+1)
				for _, s := range stack[start:] {
					names = append(names, rules[s].Name)
				}
				names = append(names, rules[next].Name)
				c.errorf(ErrLeftRecursion, "%s", strings.Join(names, " -> "))
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}
	for i := range rules {
		if state[i] == unvisited {
			visit(RuleID(i))
		}
	}
}

// validate checks repetition and recovery constraints and assigns the
// symbols of missing nodes.
func (c *compiler) validate(r *Rule, e *Expr) {
	switch e.Op {
	case OpRepeat, OpRepeat1:
		if e.Items[0].Nullable {
			c.errorf(ErrNullableRepeat, "rule %q", r.Name)
		}
	case OpList:
		item := e.Items[0]
		if item.Nullable {
			c.errorf(ErrNullableRepeat, "rule %q: list item", r.Name)
		}
		if e.Committed && !c.assignMissing(item) {
			c.errorf(ErrUnrecoverable, "rule %q: list item %s", r.Name, item.Op)
		}
		if sep := e.Separator(); sep != nil && e.Committed && !c.assignMissing(sep) {
			c.errorf(ErrUnrecoverable, "rule %q: list separator %s", r.Name, sep.Op)
		}
	case OpSeq:
		for _, item := range e.Items {
			if item.Committed && !item.Nullable && !c.assignMissing(item) {
				c.errorf(ErrUnrecoverable, "rule %q: %s", r.Name, item.Op)
			}
		}
	}
	for _, item := range e.Items {
		c.validate(r, item)
	}
}

// assignMissing sets the missing-node symbol of e and reports whether e
// can be synthesized as a single zero-width node.
func (c *compiler) assignMissing(e *Expr) bool {
	switch e.Op {
	case OpTok, OpWord:
		e.Missing = e.Sym
	case OpRef:
		r := c.lang.rules[e.Rule]
		if r.Hidden && r.Symbol == 0 {
			r.Symbol = c.intern(strings.TrimPrefix(r.Name, "_"), true, symSupertype)
			c.lang.hidden[r.Symbol] = r.ID
		}
		e.Missing = r.Symbol
	case OpField:
		if !c.assignMissing(e.Items[0]) {
			return false
		}
		e.Missing = e.Items[0].Missing
	case OpList:
		if e.Min == 0 || !c.assignMissing(e.Items[0]) {
			return false
		}
		e.Missing = e.Items[0].Missing
	default:
		return false
	}
	e.MissingNamed = c.lang.IsNamed(e.Missing)
	return true
}

// sync computes the Sync set of committed items. follow holds the
// terminals that may come after e in its enclosing sequence.
func (c *compiler) sync(e *Expr, follow TokenSet) {
	n := c.lang.terminals
	switch e.Op {
	case OpSeq:
		running := slices.Clone(follow)
		for i := len(e.Items) - 1; i >= 0; i-- {
			item := e.Items[i]
			if item.Committed {
				item.Sync = slices.Clone(running)
			}
			c.sync(item, running)
			if item.Nullable {
				running = slices.Clone(running)
				running.union(item.First)
			} else {
				running = slices.Clone(item.First)
			}
		}
	case OpRepeat, OpRepeat1:
		f := slices.Clone(follow)
		f.union(e.Items[0].First)
		c.sync(e.Items[0], f)
	case OpList:
		f := slices.Clone(follow)
		if sep := e.Separator(); sep != nil {
			f.union(sep.First)
			c.sync(sep, e.Items[0].First)
		} else {
			f.union(e.Items[0].First)
		}
		c.sync(e.Items[0], f)
	case OpChoice, OpOpt, OpField:
		for _, item := range e.Items {
			c.sync(item, follow)
		}
	case OpNot:
		c.sync(e.Items[0], newTokenSet(n))
	}
}

func walk(e *Expr, fn func(*Expr)) {
	fn(e)
	for _, item := range e.Items {
		walk(item, fn)
	}
}
