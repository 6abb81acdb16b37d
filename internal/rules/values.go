package rules

import g "github.com/golangsnmp/asn1cst/grammar"

func valueRules(b *g.Builder) {
	b.Rule("_value", choice(
		ref("_brace_value"),
		ref("boolean-value"),
		ref("null-value"),
		ref("special-real-value"),
		ref("negative-number"),
		tok("number"),
		tok("cstring"),
		tok("bstring"),
		tok("hstring"),
		ref("containing-value"),
		prec(2, ref("choice-value")),
		prec(1, ref("external-value-reference")),
		prec(1, ref("parameterized-value")),
		tok("identifier"),
	))

	b.Rule("_defined_value", choice(
		prec(1, ref("external-value-reference")),
		tok("identifier"),
	))

	b.Rule("boolean-value", choice(tok("TRUE"), tok("FALSE")))
	b.Rule("null-value", tok("NULL"))

	b.Rule("special-real-value", choice(
		tok("PLUS-INFINITY"), tok("MINUS-INFINITY"), tok("NOT-A-NUMBER"),
	))

	b.Rule("negative-number", seq(tok("-"), tok("number")))

	b.Rule("containing-value", seq(
		tok("CONTAINING"), cut(),
		field("value", ref("_value")),
	))

	b.Rule("choice-value", seq(
		field("name", tok("identifier")),
		tok(":"),
		field("value", ref("_value")),
	))

	b.Rule("external-value-reference", seq(
		field("module", alias("module-reference")),
		tok("."),
		field("name", tok("identifier")),
	))

	b.Rule("parameterized-value", seq(
		field("name", ref("_defined_value")),
		field("arguments", ref("actual-parameter-list")),
	))

	// Brace notation is shared by several value forms. Without a comma,
	// a list of OID components is an object identifier; named items make
	// a SEQUENCE or SET value; anything else that balances is taken as an
	// object in defined syntax.
	b.Rule("_brace_value", choice(
		prec(3, ref("object-identifier-value")),
		prec(2, ref("sequence-value")),
		prec(1, ref("sequence-of-value")),
		ref("object-definition"),
	))

	b.Rule("object-identifier-value", seq(
		tok("{"),
		g.Repeat1(ref("_oid_component")),
		tok("}"),
	))

	b.Rule("_oid_component", choice(
		prec(1, ref("name-and-number-form")),
		tok("number"),
		ref("_defined_value"),
	))

	b.Rule("name-and-number-form", seq(
		field("name", tok("identifier")),
		tok("("),
		field("number", choice(tok("number"), ref("_defined_value"))),
		tok(")"),
	))

	b.Rule("sequence-value", seq(
		tok("{"),
		commaList(ref("named-value")),
		tok("}"),
	))

	b.Rule("named-value", seq(
		field("name", tok("identifier")),
		field("value", ref("_value")),
	))

	b.Rule("sequence-of-value", seq(
		tok("{"),
		commaList1(ref("_value")),
		tok("}"),
	))

	b.Rule("value-set", seq(
		tok("{"),
		field("spec", ref("_element_set_specs")),
		tok("}"),
	))
}
