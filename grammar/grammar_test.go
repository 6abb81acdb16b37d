package grammar

import (
	"errors"
	"slices"
	"testing"
)

// Terminals for a small expression language used across the tests.
var testTerminals = []Terminal{
	{Name: "ERROR", Named: true},
	{Name: "end"},
	{Name: "whitespace", Extra: true},
	{Name: "comment", Named: true, Extra: true},
	{Name: "identifier", Named: true},
	{Name: "number", Named: true},
	{Name: "("},
	{Name: ")"},
	{Name: ","},
	{Name: "+"},
	{Name: "="},
	{Name: "let"},
	{Name: ";"},
}

const (
	tIdent  Symbol = 4
	tNumber Symbol = 5
	tLParen Symbol = 6
	tComma  Symbol = 8
	tPlus   Symbol = 9
	tLet    Symbol = 11
	tSemi   Symbol = 12
)

func testGrammar() *Builder {
	b := NewBuilder("calc", testTerminals)
	b.Rule("program", Seq(Cut(), List(Ref("statement"), nil)))
	b.Rule("statement", Seq(
		Tok("let"), Cut(),
		Field("name", Tok("identifier")),
		Tok("="),
		Field("value", Ref("_expression")),
		Tok(";"),
	))
	b.Rule("_expression", Choice(
		Prec(1, Ref("sum")),
		Ref("_primary"),
	))
	b.Rule("sum", Seq(
		Field("left", Ref("_primary")),
		Repeat1(Seq(Tok("+"), Field("right", Ref("_primary")))),
	))
	b.Rule("_primary", Choice(
		Tok("number"),
		Ref("call"),
		Tok("identifier"),
		Ref("group"),
	))
	b.Rule("call", Seq(
		Field("function", Alias(Tok("identifier"), "function-name")),
		Tok("("), Cut(),
		List(Ref("_expression"), Tok(",")),
		Tok(")"),
	))
	b.Rule("group", Seq(Tok("("), Cut(), Ref("_expression"), Tok(")")))
	b.Start("program")
	return b
}

func mustBuild(t *testing.T, b *Builder) *Language {
	t.Helper()
	lang, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return lang
}

func TestBuildSymbols(t *testing.T) {
	lang := mustBuild(t, testGrammar())

	if lang.Name() != "calc" {
		t.Errorf("Name() = %q, want calc", lang.Name())
	}
	if lang.TerminalCount() != len(testTerminals) {
		t.Errorf("TerminalCount() = %d, want %d", lang.TerminalCount(), len(testTerminals))
	}
	if lang.Start().Name != "program" {
		t.Errorf("Start() = %q, want program", lang.Start().Name)
	}

	tests := []struct {
		name     string
		named    bool
		terminal bool
	}{
		{"identifier", true, true},
		{"(", false, true},
		{"program", true, false},
		{"statement", true, false},
		{"function-name", true, false},
	}
	for _, tt := range tests {
		sym, ok := lang.SymbolForName(tt.name, tt.named)
		if !ok {
			t.Errorf("SymbolForName(%q) not found", tt.name)
			continue
		}
		if lang.SymbolName(sym) != tt.name {
			t.Errorf("SymbolName(%d) = %q, want %q", sym, lang.SymbolName(sym), tt.name)
		}
		if lang.IsTerminal(sym) != tt.terminal {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.name, lang.IsTerminal(sym), tt.terminal)
		}
	}

	if _, ok := lang.SymbolForName("primary", true); ok {
		t.Error("hidden rule without missing nodes should have no symbol")
	}
	if !lang.IsExtra(2) || !lang.IsExtra(3) {
		t.Error("whitespace and comment should be extras")
	}
}

func TestBuildFields(t *testing.T) {
	lang := mustBuild(t, testGrammar())

	want := []string{"name", "value", "left", "right", "function"}
	if lang.FieldCount() != len(want) {
		t.Fatalf("FieldCount() = %d, want %d", lang.FieldCount(), len(want))
	}
	for i, name := range want {
		id, ok := lang.FieldID(name)
		if !ok || id != FieldID(i+1) {
			t.Errorf("FieldID(%q) = %d, %v, want %d", name, id, ok, i+1)
		}
		if lang.FieldName(id) != name {
			t.Errorf("FieldName(%d) = %q, want %q", id, lang.FieldName(id), name)
		}
	}
	if lang.FieldName(0) != "" {
		t.Errorf("FieldName(0) = %q, want empty", lang.FieldName(0))
	}
}

func TestFirstAndNullable(t *testing.T) {
	lang := mustBuild(t, testGrammar())

	tests := []struct {
		rule     string
		first    []Symbol
		nullable bool
	}{
		{"program", []Symbol{tLet}, true},
		{"statement", []Symbol{tLet}, false},
		{"_primary", []Symbol{tIdent, tNumber, tLParen}, false},
		{"_expression", []Symbol{tIdent, tNumber, tLParen}, false},
		{"call", []Symbol{tIdent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r, ok := lang.RuleByName(tt.rule)
			if !ok {
				t.Fatalf("rule %q missing", tt.rule)
			}
			if got := r.Body.First.Symbols(); !slices.Equal(got, tt.first) {
				t.Errorf("First = %s, want %v", r.Body.First.Format(lang), tt.first)
			}
			if r.Body.Nullable != tt.nullable {
				t.Errorf("Nullable = %v, want %v", r.Body.Nullable, tt.nullable)
			}
		})
	}
}

func TestChoicePrecedenceOrder(t *testing.T) {
	b := NewBuilder("prec", testTerminals)
	b.Rule("start", Choice(
		Tok("number"),
		Prec(2, Tok("identifier")),
		Tok("("),
		Prec(2, Tok(")")),
		Prec(-1, Tok(",")),
	))
	b.Start("start")
	lang := mustBuild(t, b)

	var got []string
	for _, alt := range lang.Start().Body.Items {
		got = append(got, lang.SymbolName(alt.Sym))
	}
	want := []string{"identifier", ")", "number", "(", ","}
	if !slices.Equal(got, want) {
		t.Errorf("alternative order = %v, want %v", got, want)
	}
}

func TestCommittedItems(t *testing.T) {
	lang := mustBuild(t, testGrammar())
	stmt, _ := lang.RuleByName("statement")

	items := stmt.Body.Items
	if len(items) != 5 {
		t.Fatalf("statement has %d items, want 5 (cut is dropped)", len(items))
	}
	if items[0].Committed {
		t.Error("item before the cut should not be committed")
	}
	for i, item := range items[1:] {
		if !item.Committed {
			t.Errorf("item %d after the cut should be committed", i+1)
		}
	}

	// The value field can be followed only by ";".
	value := items[3]
	if got := value.Sync.Symbols(); !slices.Equal(got, []Symbol{tSemi}) {
		t.Errorf("value Sync = %s, want {;}", value.Sync.Format(lang))
	}

	// A missing value is a node of the hidden rule's supertype.
	if lang.SymbolName(value.Missing) != "expression" || !value.MissingNamed {
		t.Errorf("value Missing = %q", lang.SymbolName(value.Missing))
	}
	if !lang.IsSupertype(value.Missing) {
		t.Error("expression should be a supertype symbol")
	}
	expr, _ := lang.RuleByName("_expression")
	if expr.Symbol != value.Missing {
		t.Errorf("_expression Symbol = %d, want %d", expr.Symbol, value.Missing)
	}
}

func TestCommittedList(t *testing.T) {
	lang := mustBuild(t, testGrammar())
	call, _ := lang.RuleByName("call")

	var list *Expr
	walk(call.Body, func(e *Expr) {
		if e.Op == OpList {
			list = e
		}
	})
	if list == nil {
		t.Fatal("call has no list")
	}
	if !list.Committed {
		t.Error("list after the cut should be committed")
	}
	if sep := list.Separator(); sep == nil || sep.Missing != tComma {
		t.Error("separator should be synthesizable as a missing comma")
	}
	if lang.SymbolName(list.Items[0].Missing) != "expression" {
		t.Errorf("list item Missing = %q", lang.SymbolName(list.Items[0].Missing))
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  error
	}{
		{"no start", func(b *Builder) {
			b.Rule("a", Tok("number"))
		}, ErrNoStart},
		{"two starts", func(b *Builder) {
			b.Rule("a", Tok("number"))
			b.Rule("b", Tok("number"))
			b.Start("a")
			b.Start("b")
		}, ErrMultipleStart},
		{"hidden start", func(b *Builder) {
			b.Rule("_a", Tok("number"))
			b.Start("_a")
		}, ErrInvalidTerm},
		{"undefined start", func(b *Builder) {
			b.Rule("a", Tok("number"))
			b.Start("b")
		}, ErrUndefinedRule},
		{"duplicate rule", func(b *Builder) {
			b.Rule("a", Tok("number"))
			b.Rule("a", Tok("identifier"))
			b.Start("a")
		}, ErrDuplicateRule},
		{"dangling reference", func(b *Builder) {
			b.Rule("a", Seq(Tok("number"), Ref("missing")))
			b.Start("a")
		}, ErrUndefinedRule},
		{"unknown terminal", func(b *Builder) {
			b.Rule("a", Tok("float"))
			b.Start("a")
		}, ErrUnknownTerminal},
		{"direct left recursion", func(b *Builder) {
			b.Rule("a", Choice(Seq(Ref("a"), Tok("+"), Tok("number")), Tok("number")))
			b.Start("a")
		}, ErrLeftRecursion},
		{"indirect left recursion", func(b *Builder) {
			b.Rule("a", Seq(Opt(Tok(",")), Ref("_b")))
			b.Rule("_b", Choice(Ref("a"), Tok("number")))
			b.Start("a")
		}, ErrLeftRecursion},
		{"nullable repeat", func(b *Builder) {
			b.Rule("a", Repeat(Opt(Tok("number"))))
			b.Start("a")
		}, ErrNullableRepeat},
		{"nullable list item", func(b *Builder) {
			b.Rule("a", List(Opt(Tok("number")), Tok(",")))
			b.Start("a")
		}, ErrNullableRepeat},
		{"committed choice", func(b *Builder) {
			b.Rule("a", Seq(Tok("let"), Cut(), Choice(Tok("number"), Tok("identifier"))))
			b.Start("a")
		}, ErrUnrecoverable},
		{"committed list item", func(b *Builder) {
			b.Rule("a", Seq(Tok("("), Cut(), List(Seq(Tok("number"), Tok("+")), Tok(",")), Tok(")")))
			b.Start("a")
		}, ErrUnrecoverable},
		{"alias of rule", func(b *Builder) {
			b.Rule("a", Alias(Ref("b"), "c"))
			b.Rule("b", Tok("number"))
			b.Start("a")
		}, ErrInvalidTerm},
		{"cut outside sequence", func(b *Builder) {
			b.Rule("a", Choice(Cut(), Tok("number")))
			b.Start("a")
		}, ErrInvalidTerm},
		{"not of rule", func(b *Builder) {
			b.Rule("a", Seq(Tok("number"), Not(Ref("a"))))
			b.Start("a")
		}, ErrInvalidTerm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder("bad", testTerminals)
			tt.build(b)
			lang, err := b.Build()
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if lang != nil {
				t.Error("Build() returned a language alongside an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildReportsAllErrors(t *testing.T) {
	b := NewBuilder("bad", testTerminals)
	b.Rule("a", Seq(Ref("x"), Ref("y")))
	b.Rule("b", Tok("float"))
	b.Start("a")

	_, err := b.Build()
	if !errors.Is(err, ErrUndefinedRule) || !errors.Is(err, ErrUnknownTerminal) {
		t.Errorf("Build() error = %v, want both undefined rule and unknown terminal", err)
	}
}

func TestWordSymbols(t *testing.T) {
	b := NewBuilder("words", testTerminals)
	b.Rule("a", Seq(Word("identifier", "print"), Alias(Word("identifier", "all"), "everything")))
	b.Start("a")
	lang := mustBuild(t, b)

	items := lang.Start().Body.Items
	if items[0].Kind != tIdent || items[0].Text != "print" {
		t.Errorf("word = kind %d text %q", items[0].Kind, items[0].Text)
	}
	if lang.SymbolName(items[0].Sym) != "print" || lang.IsNamed(items[0].Sym) {
		t.Errorf("word symbol = %q named=%v, want anonymous print", lang.SymbolName(items[0].Sym), lang.IsNamed(items[0].Sym))
	}
	if lang.SymbolName(items[1].Sym) != "everything" || !lang.IsNamed(items[1].Sym) {
		t.Errorf("aliased word symbol = %q", lang.SymbolName(items[1].Sym))
	}
	if items[1].Text != "all" {
		t.Errorf("aliased word text = %q, want all", items[1].Text)
	}
}

func TestTokenSet(t *testing.T) {
	s := newTokenSet(130)
	s.add(0)
	s.add(64)
	s.add(129)

	if !s.Has(0) || !s.Has(64) || !s.Has(129) {
		t.Error("Has() missing added members")
	}
	if s.Has(1) || s.Has(200) {
		t.Error("Has() reports absent members")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if got := s.Symbols(); !slices.Equal(got, []Symbol{0, 64, 129}) {
		t.Errorf("Symbols() = %v", got)
	}

	o := newTokenSet(130)
	o.add(64)
	if s.union(o) {
		t.Error("union() with a subset reported a change")
	}
	o.add(5)
	if !s.union(o) || !s.Has(5) {
		t.Error("union() did not add a new member")
	}
}
