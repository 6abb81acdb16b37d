package rules

import g "github.com/golangsnmp/asn1cst/grammar"

// moduleRules covers ModuleDefinition (X.680 clause 13): the module
// header, EXPORTS, IMPORTS, the assignment list and any encoding control
// sections before END. Input without a module header is accepted as a
// bare module body.
func moduleRules(b *g.Builder) {
	b.Rule("module-definition", choice(
		seq(
			field("name", ref("module-identifier")),
			tok("DEFINITIONS"), cut(),
			opt(field("encoding", ref("encoding-reference-default"))),
			opt(field("tags", ref("tag-default"))),
			opt(field("extensibility", ref("extension-default"))),
			tok("::="),
			tok("BEGIN"),
			field("body", ref("module-body")),
			g.Repeat(ref("encoding-control-section")),
			tok("END"),
		),
		field("body", ref("module-body")),
	))

	b.Rule("module-identifier", seq(
		field("name", alias("module-reference")),
		opt(field("oid", ref("object-identifier-value"))),
		opt(field("iri", tok("cstring"))),
	))

	b.Rule("encoding-reference-default", seq(
		field("name", alias("encoding-reference")),
		tok("INSTRUCTIONS"),
	))

	b.Rule("tag-default", seq(
		choice(tok("EXPLICIT"), tok("IMPLICIT"), tok("AUTOMATIC")),
		tok("TAGS"),
	))

	b.Rule("extension-default", seq(tok("EXTENSIBILITY"), cut(), tok("IMPLIED")))

	b.Rule("module-body", seq(
		cut(),
		opt(ref("exports")),
		opt(ref("imports")),
		g.List(ref("_assignment"), nil),
	))

	b.Rule("exports", seq(
		tok("EXPORTS"), cut(),
		opt(tok("ALL")),
		commaList(ref("_symbol")),
		tok(";"),
	))

	b.Rule("imports", seq(
		tok("IMPORTS"), cut(),
		g.Repeat(ref("symbols-from-module")),
		tok(";"),
	))

	b.Rule("symbols-from-module", seq(
		commaList1(ref("_symbol")),
		tok("FROM"), cut(),
		field("module", alias("module-reference")),
		opt(field("oid", ref("_assigned_identifier"))),
		opt(field("selection", seq(tok("WITH"), choice(word("SUCCESSORS"), word("DESCENDANTS"))))),
	))

	// A value reference after the module reference is its assigned
	// identifier only when it does not begin the next symbol list.
	b.Rule("_assigned_identifier", choice(
		ref("object-identifier-value"),
		seq(ref("_defined_value"), g.Not(tok(",")), g.Not(tok("FROM"))),
	))

	b.Rule("_symbol", choice(
		prec(1, ref("parameterized-reference")),
		ref("_reference"),
	))

	b.Rule("parameterized-reference", seq(
		field("name", ref("_reference")),
		tok("{"), tok("}"),
	))

	b.Rule("_reference", choice(tok("type-reference"), tok("identifier")))
}

// assignmentRules covers the four assignment forms and their parameter
// lists (X.680 clause 16, X.683 clause 8).
func assignmentRules(b *g.Builder) {
	b.Rule("_assignment", choice(
		prec(3, ref("object-class-assignment")),
		prec(2, ref("type-assignment")),
		prec(1, ref("value-assignment")),
		ref("value-set-type-assignment"),
	))

	// "Foo ::= TYPE-IDENTIFIER.&Type" is a type, not a class.
	b.Rule("object-class-assignment", seq(
		field("name", tok("type-reference")),
		opt(field("parameters", ref("parameter-list"))),
		tok("::="),
		field("class", ref("_object_class")),
		g.Not(tok(".")),
	))

	b.Rule("type-assignment", seq(
		field("name", tok("type-reference")),
		opt(field("parameters", ref("parameter-list"))),
		tok("::="), cut(),
		field("type", ref("_type")),
	))

	b.Rule("value-assignment", seq(
		field("name", tok("identifier")),
		opt(field("parameters", ref("parameter-list"))),
		field("type", ref("_governor_type")),
		tok("::="), cut(),
		field("value", ref("_value")),
	))

	// Also covers object set assignments, which share the notation.
	b.Rule("value-set-type-assignment", seq(
		field("name", tok("type-reference")),
		opt(field("parameters", ref("parameter-list"))),
		field("type", ref("_governor_type")),
		tok("::="), cut(),
		field("value", ref("value-set")),
	))

	// A governor is a type, or a bare reference the type rules refuse
	// because "::=" follows it.
	b.Rule("_governor_type", choice(
		ref("_type"),
		tok("type-reference"),
	))

	b.Rule("parameter-list", seq(
		tok("{"), cut(),
		commaList1(ref("parameter")),
		tok("}"),
	))

	b.Rule("parameter", choice(
		prec(1, seq(
			field("governor", ref("_type")),
			tok(":"),
			field("name", ref("_reference")),
		)),
		field("name", ref("_reference")),
	))

	b.Rule("actual-parameter-list", seq(
		tok("{"),
		commaList1(ref("_actual_parameter")),
		tok("}"),
	))

	b.Rule("_actual_parameter", choice(
		prec(3, ref("value-set")),
		prec(2, ref("_type")),
		prec(1, ref("_value")),
	))
}
