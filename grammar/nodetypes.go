package grammar

import (
	"cmp"
	"maps"
	"slices"
)

// NodeType describes one node kind of the schema.
type NodeType struct {
	Type     string               `json:"type" yaml:"type"`
	Named    bool                 `json:"named" yaml:"named"`
	Extra    bool                 `json:"extra,omitempty" yaml:"extra,omitempty"`
	Fields   map[string]ChildType `json:"fields,omitempty" yaml:"fields,omitempty"`
	Children *ChildType           `json:"children,omitempty" yaml:"children,omitempty"`
	Subtypes []TypeRef            `json:"subtypes,omitempty" yaml:"subtypes,omitempty"`
}

// ChildType describes the nodes that can appear under a field, or as
// unlabeled named children.
type ChildType struct {
	Multiple bool      `json:"multiple" yaml:"multiple"`
	Required bool      `json:"required" yaml:"required"`
	Types    []TypeRef `json:"types" yaml:"types"`
}

// TypeRef names a node kind.
type TypeRef struct {
	Type  string `json:"type" yaml:"type"`
	Named bool   `json:"named" yaml:"named"`
}

// many is the saturated upper bound of a slot.
const many = 2

// slot tracks how often nodes appear under one key and which kinds.
type slot struct {
	types    map[Symbol]bool
	min, max int
}

// content maps a field id to its slot. Unlabeled named nodes use key zero
// and unlabeled anonymous nodes use anonKey.
type content map[FieldID]*slot

const anonKey FieldID = 1<<16 - 1

func (b *schemaBuilder) leaf(sym Symbol) content {
	key := FieldID(0)
	if !b.lang.IsNamed(sym) {
		key = anonKey
	}
	return content{key: {types: map[Symbol]bool{sym: true}, min: 1, max: 1}}
}

func seqContent(a, b content) content {
	out := make(content, len(a)+len(b))
	for k, s := range a {
		out[k] = s.clone()
	}
	for k, s := range b {
		if o, ok := out[k]; ok {
			o.min += s.min
			o.max = min(many, o.max+s.max)
			maps.Copy(o.types, s.types)
		} else {
			out[k] = s.clone()
		}
	}
	return out
}

func altContent(a, b content) content {
	out := make(content, len(a)+len(b))
	for k, s := range a {
		out[k] = s.clone()
		if _, ok := b[k]; !ok {
			out[k].min = 0
		}
	}
	for k, s := range b {
		if o, ok := out[k]; ok {
			o.min = min(o.min, s.min)
			o.max = max(o.max, s.max)
			maps.Copy(o.types, s.types)
		} else {
			c := s.clone()
			c.min = 0
			out[k] = c
		}
	}
	return out
}

func (c content) optional() content {
	for _, s := range c {
		s.min = 0
	}
	return c
}

func (c content) repeated() content {
	for _, s := range c {
		if s.max > 0 {
			s.max = many
		}
	}
	return c
}

func (s *slot) clone() *slot {
	return &slot{types: maps.Clone(s.types), min: s.min, max: s.max}
}

type schemaBuilder struct {
	lang   *Language
	hidden map[RuleID]content
	active map[RuleID]bool
}

func (b *schemaBuilder) content(e *Expr) content {
	switch e.Op {
	case OpTok, OpWord:
		return b.leaf(e.Sym)
	case OpRef:
		r := b.lang.rules[e.Rule]
		if !r.Hidden {
			return b.leaf(r.Symbol)
		}
		return b.hiddenContent(r)
	case OpSeq:
		out := content{}
		for _, item := range e.Items {
			out = seqContent(out, b.content(item))
		}
		return out
	case OpChoice:
		var out content
		for i, alt := range e.Items {
			if i == 0 {
				out = b.content(alt)
			} else {
				out = altContent(out, b.content(alt))
			}
		}
		return out
	case OpOpt:
		return b.content(e.Items[0]).optional()
	case OpRepeat:
		return b.content(e.Items[0]).repeated().optional()
	case OpRepeat1:
		return b.content(e.Items[0]).repeated()
	case OpList:
		item := b.content(e.Items[0])
		out := item
		if sep := e.Separator(); sep != nil {
			out = seqContent(item, seqContent(b.content(sep), b.content(e.Items[0])).repeated().optional())
		} else {
			out = out.repeated()
		}
		if e.Min == 0 {
			out = out.optional()
		}
		return out
	case OpField:
		inner := b.content(e.Items[0])
		out := make(content, len(inner))
		for k, s := range inner {
			if k == 0 || k == anonKey {
				k = e.Field
			}
			if o, ok := out[k]; ok {
				out[k] = seqContent(content{0: o}, content{0: s})[0]
			} else {
				out[k] = s
			}
		}
		return out
	}
	return content{}
}

func (b *schemaBuilder) hiddenContent(r *Rule) content {
	if c, ok := b.hidden[r.ID]; ok {
		return cloneContent(c)
	}
	if b.active[r.ID] {
		return content{}
	}
	b.active[r.ID] = true
	c := b.content(r.Body)
	delete(b.active, r.ID)
	b.hidden[r.ID] = c
	return cloneContent(c)
}

func cloneContent(c content) content {
	out := make(content, len(c))
	for k, s := range c {
		out[k] = s.clone()
	}
	return out
}

func (b *schemaBuilder) typeRefs(set map[Symbol]bool, namedOnly bool) []TypeRef {
	syms := slices.Sorted(maps.Keys(set))
	refs := make([]TypeRef, 0, len(syms))
	for _, s := range syms {
		if namedOnly && !b.lang.IsNamed(s) {
			continue
		}
		refs = append(refs, TypeRef{Type: b.lang.SymbolName(s), Named: b.lang.IsNamed(s)})
	}
	slices.SortFunc(refs, func(x, y TypeRef) int {
		return cmp.Or(cmp.Compare(x.Type, y.Type), boolCompare(x.Named, y.Named))
	})
	return refs
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

// NodeTypes returns the node type schema: every node kind the grammar can
// produce with its fields and children, plus supertypes for hidden rules
// that can appear as missing nodes.
func (l *Language) NodeTypes() []NodeType {
	b := &schemaBuilder{
		lang:   l,
		hidden: make(map[RuleID]content),
		active: make(map[RuleID]bool),
	}

	used := make(map[Symbol]bool)
	for _, r := range l.rules {
		walk(r.Body, func(e *Expr) {
			if e.Op == OpTok || e.Op == OpWord {
				used[e.Sym] = true
			}
		})
	}

	var out []NodeType
	for i, info := range l.symbols {
		sym := Symbol(i)
		switch info.kind {
		case symTerminal, symAlias:
			if info.extra && info.named {
				out = append(out, NodeType{Type: info.name, Named: true, Extra: true})
			} else if used[sym] {
				out = append(out, NodeType{Type: info.name, Named: info.named})
			}
		case symRule:
			r := l.rules[l.ruleIDs[info.name]]
			out = append(out, b.ruleType(r))
		case symSupertype:
			c := b.hiddenContent(l.rules[l.hidden[sym]])
			types := make(map[Symbol]bool)
			for _, s := range c {
				maps.Copy(types, s.types)
			}
			out = append(out, NodeType{
				Type:     info.name,
				Named:    true,
				Subtypes: b.typeRefs(types, true),
			})
		}
	}
	return out
}

func (b *schemaBuilder) ruleType(r *Rule) NodeType {
	nt := NodeType{Type: r.Name, Named: true}
	c := b.content(r.Body)
	for k, s := range c {
		if k == anonKey {
			continue
		}
		if k == 0 {
			refs := b.typeRefs(s.types, true)
			if len(refs) > 0 {
				nt.Children = &ChildType{Multiple: s.max > 1, Required: s.min > 0, Types: refs}
			}
			continue
		}
		if nt.Fields == nil {
			nt.Fields = make(map[string]ChildType)
		}
		nt.Fields[b.lang.FieldName(k)] = ChildType{
			Multiple: s.max > 1,
			Required: s.min > 0,
			Types:    b.typeRefs(s.types, false),
		}
	}
	return nt
}
