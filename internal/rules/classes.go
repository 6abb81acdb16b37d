package rules

import g "github.com/golangsnmp/asn1cst/grammar"

// classRules covers information object classes and objects (X.681).
func classRules(b *g.Builder) {
	b.Rule("_object_class", choice(
		ref("object-class-definition"),
		tok("TYPE-IDENTIFIER"),
		tok("ABSTRACT-SYNTAX"),
	))

	b.Rule("_defined_object_class", choice(
		tok("type-reference"),
		tok("TYPE-IDENTIFIER"),
		tok("ABSTRACT-SYNTAX"),
	))

	b.Rule("object-class-definition", seq(
		tok("CLASS"), cut(),
		tok("{"),
		commaList(ref("field-spec")),
		tok("}"),
		opt(field("syntax", ref("with-syntax-spec"))),
	))

	// One shape for the six field spec kinds; which kind a field is
	// follows from its reference and type, not from its syntax.
	b.Rule("field-spec", seq(
		field("name", ref("_field_reference")),
		opt(field("type", ref("_field_type"))),
		opt(field("unique", tok("UNIQUE"))),
		opt(choice(
			field("optional", tok("OPTIONAL")),
			seq(tok("DEFAULT"), cut(), field("default", ref("_setting"))),
		)),
	))

	b.Rule("_field_type", choice(
		prec(1, ref("field-name")),
		ref("_type"),
	))

	b.Rule("_field_reference", choice(
		tok("type-field-reference"),
		tok("value-field-reference"),
	))

	b.Rule("field-name", seq(
		ref("_field_reference"),
		g.Repeat(seq(tok("."), ref("_field_reference"))),
	))

	b.Rule("with-syntax-spec", seq(
		tok("WITH"), tok("SYNTAX"), cut(),
		field("syntax", ref("syntax-list")),
	))

	b.Rule("syntax-list", seq(
		tok("{"), cut(),
		g.Repeat(ref("_syntax_item")),
		tok("}"),
	))

	b.Rule("_syntax_item", choice(
		ref("optional-group"),
		ref("_field_reference"),
		tok("type-reference"),
		tok(","),
		keywords(),
	))

	b.Rule("optional-group", seq(
		tok("["), cut(),
		g.Repeat(ref("_syntax_item")),
		tok("]"),
	))

	b.Rule("object-definition", seq(
		tok("{"),
		g.Repeat(ref("_defined_syntax_token")),
		tok("}"),
	))

	// Default syntax ("&field setting") and defined syntax (literal words
	// interleaved with settings) share one token stream.
	b.Rule("_defined_syntax_token", choice(
		prec(3, ref("field-setting")),
		prec(2, ref("_type")),
		prec(1, ref("_value")),
		tok(","),
		keywords(),
	))

	b.Rule("field-setting", seq(
		field("name", ref("_field_reference")),
		field("setting", ref("_setting")),
	))

	b.Rule("_setting", choice(
		prec(2, ref("_type")),
		prec(1, ref("_value")),
		ref("value-set"),
	))
}
