package rules

import g "github.com/golangsnmp/asn1cst/grammar"

// constraintRules covers subtype constraints (X.680 clauses 49-51), table
// and user-defined constraints (X.682) and contents constraints.
func constraintRules(b *g.Builder) {
	b.Rule("constraint", seq(
		tok("("), cut(),
		field("spec", ref("_constraint_spec")),
		opt(field("exception", ref("exception-spec"))),
		tok(")"),
	))

	b.Rule("_constraint_spec", choice(
		prec(3, ref("user-defined-constraint")),
		prec(3, ref("contents-constraint")),
		prec(2, ref("component-relation-constraint")),
		ref("_element_set_specs"),
	))

	b.Rule("user-defined-constraint", seq(
		tok("CONSTRAINED"), cut(),
		tok("BY"),
		tok("{"),
		commaList(ref("_user_defined_parameter")),
		tok("}"),
	))

	b.Rule("_user_defined_parameter", choice(
		prec(2, seq(field("governor", ref("_type")), tok(":"), field("value", ref("_value")))),
		prec(1, ref("_type")),
		ref("_value"),
	))

	b.Rule("contents-constraint", choice(
		seq(
			tok("CONTAINING"), cut(),
			field("type", ref("_type")),
			opt(seq(tok("ENCODED"), tok("BY"), field("encoding", ref("_value")))),
		),
		seq(
			tok("ENCODED"), cut(),
			tok("BY"),
			field("encoding", ref("_value")),
		),
	))

	b.Rule("component-relation-constraint", seq(
		tok("{"),
		field("set", ref("_defined_object_set")),
		tok("}"),
		tok("{"), cut(),
		commaList1(ref("at-notation")),
		tok("}"),
	))

	b.Rule("_defined_object_set", choice(
		prec(1, ref("external-type-reference")),
		tok("type-reference"),
	))

	b.Rule("at-notation", seq(
		choice(tok("@"), tok("@.")),
		field("component", tok("identifier")),
		g.Repeat(seq(tok("."), field("component", tok("identifier")))),
	))

	b.Rule("exception-spec", seq(
		tok("!"), cut(),
		field("value", ref("_exception_value")),
	))

	b.Rule("_exception_value", choice(
		prec(2, seq(ref("_type"), tok(":"), ref("_value"))),
		prec(1, ref("negative-number")),
		tok("number"),
		ref("_defined_value"),
	))

	b.Rule("_element_set_specs", commaList1(ref("_element_set_item")))

	b.Rule("_element_set_item", choice(
		ref("extension-marker"),
		ref("_element_set_spec"),
	))

	b.Rule("_element_set_spec", choice(
		ref("all-except"),
		ref("_unions"),
	))

	b.Rule("all-except", seq(
		tok("ALL"),
		tok("EXCEPT"), cut(),
		field("except", ref("_elements")),
	))

	b.Rule("_unions", choice(
		prec(1, ref("union-set")),
		ref("_intersections"),
	))

	b.Rule("union-set", seq(
		field("operand", ref("_intersections")),
		g.Repeat1(seq(
			choice(tok("|"), tok("UNION")),
			field("operand", ref("_intersections")),
		)),
	))

	b.Rule("_intersections", choice(
		prec(1, ref("intersection-set")),
		ref("_intersection_element"),
	))

	b.Rule("intersection-set", seq(
		field("operand", ref("_intersection_element")),
		g.Repeat1(seq(
			choice(tok("^"), tok("INTERSECTION")),
			field("operand", ref("_intersection_element")),
		)),
	))

	b.Rule("_intersection_element", choice(
		prec(1, ref("exclusion")),
		ref("_elements"),
	))

	b.Rule("exclusion", seq(
		field("operand", ref("_elements")),
		tok("EXCEPT"), cut(),
		field("except", ref("_elements")),
	))

	// Keyword-led constraints first; a range before its lower bound alone;
	// object sets before brace values; types before values.
	b.Rule("_elements", choice(
		prec(3, ref("size-constraint")),
		prec(3, ref("permitted-alphabet")),
		prec(3, ref("inner-type-constraint")),
		prec(3, ref("pattern-constraint")),
		prec(3, ref("property-settings")),
		prec(3, ref("contained-subtype")),
		prec(2, ref("value-range")),
		prec(1, ref("parenthesized-elements")),
		prec(1, ref("object-set")),
		prec(1, ref("_type")),
		ref("_value"),
	))

	b.Rule("size-constraint", seq(
		tok("SIZE"), cut(),
		field("constraint", ref("constraint")),
	))

	b.Rule("permitted-alphabet", seq(
		tok("FROM"), cut(),
		field("constraint", ref("constraint")),
	))

	b.Rule("inner-type-constraint", choice(
		seq(
			tok("WITH"), tok("COMPONENT"), cut(),
			field("constraint", ref("constraint")),
		),
		seq(
			tok("WITH"), tok("COMPONENTS"), cut(),
			tok("{"),
			commaList1(ref("_type_constraint_item")),
			tok("}"),
		),
	))

	b.Rule("_type_constraint_item", choice(
		ref("extension-marker"),
		ref("named-constraint"),
	))

	b.Rule("named-constraint", seq(
		field("name", tok("identifier")),
		opt(field("constraint", ref("constraint"))),
		opt(field("presence", ref("presence"))),
	))

	b.Rule("presence", choice(tok("PRESENT"), tok("ABSENT"), tok("OPTIONAL")))

	b.Rule("pattern-constraint", seq(
		tok("PATTERN"), cut(),
		field("value", ref("_value")),
	))

	b.Rule("property-settings", seq(
		tok("SETTINGS"), cut(),
		field("value", tok("cstring")),
	))

	b.Rule("contained-subtype", seq(
		tok("INCLUDES"), cut(),
		field("type", ref("_type")),
	))

	b.Rule("value-range", seq(
		field("lower", ref("_range_lower")),
		opt(tok("<")),
		tok(".."), cut(),
		opt(tok("<")),
		field("upper", ref("_range_upper")),
	))

	b.Rule("_range_lower", choice(tok("MIN"), ref("_value")))
	b.Rule("_range_upper", choice(tok("MAX"), ref("_value")))

	b.Rule("parenthesized-elements", seq(
		tok("("), cut(),
		field("spec", ref("_element_set_spec")),
		tok(")"),
	))

	b.Rule("object-set", seq(
		tok("{"),
		field("spec", ref("_element_set_specs")),
		tok("}"),
	))
}
