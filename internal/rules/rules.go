// Package rules defines the ASN.1 grammar as a rule table.
//
// Node kinds are kebab-case. Rules whose name starts with "_" are hidden:
// they group alternatives and never appear in the tree themselves.
package rules

import (
	"slices"

	g "github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/lexer"
)

// Name is the grammar name.
const Name = "asn1"

// Start is the start rule.
const Start = "module-definition"

// Terminals returns one terminal per lexer token kind, in kind order, so
// that terminal symbols equal token kinds.
func Terminals() []g.Terminal {
	out := make([]g.Terminal, lexer.KindCount)
	for k := range lexer.KindCount {
		kind := lexer.TokenKind(k)
		out[k] = g.Terminal{
			Name:  kind.String(),
			Named: kind.IsNamed(),
			Extra: kind.IsTrivia(),
		}
	}
	return out
}

// Build compiles the ASN.1 grammar.
func Build() (*g.Language, error) {
	b := g.NewBuilder(Name, Terminals())
	moduleRules(b)
	assignmentRules(b)
	typeRules(b)
	constraintRules(b)
	valueRules(b)
	classRules(b)
	encodingRules(b)
	b.Start(Start)
	return b.Build()
}

// Shorthands for the terms used throughout the table.

func tok(name string) *g.Term { return g.Tok(name) }

func ref(name string) *g.Term { return g.Ref(name) }

func seq(items ...*g.Term) *g.Term { return g.Seq(items...) }

func choice(alts ...*g.Term) *g.Term { return g.Choice(alts...) }

func opt(t *g.Term) *g.Term { return g.Opt(t) }

func field(name string, t *g.Term) *g.Term { return g.Field(name, t) }

func prec(n int, t *g.Term) *g.Term { return g.Prec(n, t) }

func cut() *g.Term { return g.Cut() }

// word matches an uppercase identifier with fixed text that X.680 does
// not reserve, such as ANY or SUCCESSORS.
func word(text string) *g.Term { return g.Word("type-reference", text) }

// commaList is a comma separated list.
func commaList(item *g.Term) *g.Term { return g.List(item, tok(",")) }

func commaList1(item *g.Term) *g.Term { return g.List1(item, tok(",")) }

// alias renames a type-reference token, for example to module-reference.
func alias(name string) *g.Term { return g.Alias(tok("type-reference"), name) }

// keywords returns one alternative per reserved word.
func keywords() *g.Term {
	kws := lexer.Keywords()
	alts := make([]*g.Term, len(kws))
	for i, kw := range kws {
		alts[i] = tok(kw)
	}
	return choice(alts...)
}

// anyTokenExcept matches one token of any kind but trivia, end of input,
// lexical errors and the named terminals.
func anyTokenExcept(names ...string) *g.Term {
	var alts []*g.Term
	for k := range lexer.KindCount {
		kind := lexer.TokenKind(k)
		if kind == lexer.TokError || kind.IsTrivia() {
			continue
		}
		if !kind.IsNamed() && !kind.IsKeyword() && !kind.IsPunctuation() {
			continue
		}
		if slices.Contains(names, kind.String()) {
			continue
		}
		alts = append(alts, tok(kind.String()))
	}
	return choice(alts...)
}
