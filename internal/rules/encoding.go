package rules

import g "github.com/golangsnmp/asn1cst/grammar"

// encodingRules covers encoding control sections and encoding prefixes
// (X.680 clauses 31.3 and 54). Their instructions belong to the encoding
// notation named by the encoding reference, so they are kept as unparsed
// token runs.
func encodingRules(b *g.Builder) {
	b.Rule("encoding-control-section", seq(
		tok("ENCODING-CONTROL"), cut(),
		field("name", alias("encoding-reference")),
		opt(field("instructions", ref("encoding-instructions"))),
	))

	b.Rule("encoding-instructions", g.Repeat1(ref("_section_token")))

	b.Rule("_section_token", anyTokenExcept("END", "ENCODING-CONTROL"))

	// [XER:ATTRIBUTE] INTEGER. A tag number is a value, so an instruction
	// always starts with an uppercase name that is not a module prefix.
	b.Rule("encoding-prefixed-type", seq(
		field("prefix", ref("encoding-prefix")),
		field("type", ref("_type")),
	))

	b.Rule("encoding-prefix", seq(
		tok("["),
		opt(seq(field("encoding-reference", alias("encoding-reference")), tok(":"))),
		field("instruction", ref("encoding-instruction")), cut(),
		tok("]"),
	))

	b.Rule("encoding-instruction", seq(
		tok("type-reference"), g.Not(tok(".")),
		g.Repeat(ref("_prefix_token")),
	))

	b.Rule("_prefix_token", anyTokenExcept("[", "]", "[[", "]]", "{", "}", "::=", "END"))
}
