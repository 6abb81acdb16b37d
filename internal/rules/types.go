package rules

import g "github.com/golangsnmp/asn1cst/grammar"

// characterStringTypes are the restricted character string type names.
var characterStringTypes = []string{
	"BMPString", "GeneralString", "GraphicString", "IA5String",
	"ISO646String", "NumericString", "PrintableString", "T61String",
	"TeletexString", "UniversalString", "UTF8String", "VideotexString",
	"VisibleString",
}

func typeRules(b *g.Builder) {
	b.Rule("_type", choice(
		prec(1, ref("constrained-type")),
		ref("_plain_type"),
	))

	b.Rule("constrained-type", seq(
		field("type", ref("_plain_type")),
		g.Repeat1(field("constraint", ref("constraint"))),
	))

	b.Rule("_plain_type", choice(
		prec(1, ref("encoding-prefixed-type")),
		ref("tagged-type"),
		ref("boolean-type"),
		ref("integer-type"),
		ref("enumerated-type"),
		ref("real-type"),
		ref("bit-string-type"),
		ref("octet-string-type"),
		ref("null-type"),
		prec(1, ref("sequence-of-type")),
		ref("sequence-type"),
		prec(1, ref("set-of-type")),
		ref("set-type"),
		ref("choice-type"),
		ref("object-identifier-type"),
		ref("relative-oid-type"),
		ref("oid-iri-type"),
		ref("relative-oid-iri-type"),
		ref("embedded-pdv-type"),
		ref("external-type"),
		ref("time-type"),
		ref("character-string-type"),
		ref("useful-type"),
		prec(1, ref("any-type")),
		ref("instance-of-type"),
		prec(2, ref("object-class-field-type")),
		ref("selection-type"),
		prec(1, ref("parameterized-type")),
		prec(1, ref("external-type-reference")),
		// The name of the next assignment is not a type.
		seq(tok("type-reference"), g.Not(tok("::="))),
	))

	b.Rule("tagged-type", seq(
		field("tag", ref("tag")), cut(),
		opt(field("mode", choice(tok("IMPLICIT"), tok("EXPLICIT")))),
		field("type", ref("_type")),
	))

	b.Rule("tag", seq(
		tok("["), cut(),
		opt(seq(field("encoding-reference", alias("encoding-reference")), tok(":"))),
		opt(field("class", ref("tag-class"))),
		field("number", ref("_class_number")),
		tok("]"),
	))

	b.Rule("tag-class", choice(tok("UNIVERSAL"), tok("APPLICATION"), tok("PRIVATE")))

	b.Rule("_class_number", choice(tok("number"), ref("_defined_value")))

	b.Rule("boolean-type", tok("BOOLEAN"))

	b.Rule("integer-type", seq(
		tok("INTEGER"),
		opt(ref("_named_numbers")),
	))

	b.Rule("_named_numbers", seq(
		tok("{"), cut(),
		commaList1(ref("named-number")),
		tok("}"),
	))

	b.Rule("named-number", seq(
		field("name", tok("identifier")),
		tok("("), cut(),
		field("value", ref("_named_number_value")),
		tok(")"),
	))

	b.Rule("_named_number_value", choice(
		ref("negative-number"),
		tok("number"),
		ref("_defined_value"),
	))

	b.Rule("enumerated-type", seq(
		tok("ENUMERATED"), cut(),
		tok("{"),
		commaList(ref("_enumeration_item")),
		tok("}"),
	))

	b.Rule("_enumeration_item", choice(
		prec(1, ref("named-number")),
		ref("extension-marker"),
		tok("identifier"),
	))

	b.Rule("real-type", tok("REAL"))

	b.Rule("bit-string-type", seq(
		tok("BIT"), cut(),
		tok("STRING"),
		opt(ref("_named_numbers")),
	))

	b.Rule("octet-string-type", seq(tok("OCTET"), cut(), tok("STRING")))

	b.Rule("null-type", tok("NULL"))

	b.Rule("sequence-type", seq(
		tok("SEQUENCE"),
		tok("{"), cut(),
		commaList(ref("_component")),
		tok("}"),
	))

	b.Rule("set-type", seq(
		tok("SET"),
		tok("{"), cut(),
		commaList(ref("_component")),
		tok("}"),
	))

	b.Rule("_component", choice(
		ref("components-of"),
		ref("extension-addition-group"),
		ref("extension-marker"),
		ref("component-type"),
	))

	b.Rule("component-type", seq(
		field("name", tok("identifier")),
		field("type", ref("_type")),
		opt(choice(
			field("optional", tok("OPTIONAL")),
			seq(tok("DEFAULT"), cut(), field("default", ref("_value"))),
		)),
	))

	b.Rule("components-of", seq(
		tok("COMPONENTS"), tok("OF"), cut(),
		field("type", ref("_type")),
	))

	b.Rule("extension-marker", seq(
		tok("..."),
		opt(field("exception", ref("exception-spec"))),
	))

	b.Rule("extension-addition-group", seq(
		tok("[["), cut(),
		opt(seq(field("version", tok("number")), tok(":"))),
		commaList(ref("_component")),
		tok("]]"),
	))

	b.Rule("sequence-of-type", seq(
		tok("SEQUENCE"),
		opt(field("constraint", choice(ref("constraint"), ref("size-constraint")))),
		tok("OF"), cut(),
		field("type", ref("_collection_element")),
	))

	b.Rule("set-of-type", seq(
		tok("SET"),
		opt(field("constraint", choice(ref("constraint"), ref("size-constraint")))),
		tok("OF"), cut(),
		field("type", ref("_collection_element")),
	))

	b.Rule("_collection_element", choice(
		prec(1, ref("named-type")),
		ref("_type"),
	))

	b.Rule("choice-type", seq(
		tok("CHOICE"),
		tok("{"), cut(),
		commaList(ref("_alternative")),
		tok("}"),
	))

	b.Rule("_alternative", choice(
		ref("extension-addition-group"),
		ref("extension-marker"),
		ref("named-type"),
	))

	b.Rule("named-type", seq(
		field("name", tok("identifier")),
		field("type", ref("_type")),
	))

	b.Rule("object-identifier-type", seq(tok("OBJECT"), cut(), tok("IDENTIFIER")))
	b.Rule("relative-oid-type", tok("RELATIVE-OID"))
	b.Rule("oid-iri-type", tok("OID-IRI"))
	b.Rule("relative-oid-iri-type", tok("RELATIVE-OID-IRI"))
	b.Rule("embedded-pdv-type", seq(tok("EMBEDDED"), cut(), tok("PDV")))
	b.Rule("external-type", tok("EXTERNAL"))

	b.Rule("time-type", choice(
		tok("TIME"), tok("DATE"), tok("TIME-OF-DAY"), tok("DATE-TIME"), tok("DURATION"),
	))

	alts := make([]*g.Term, 0, len(characterStringTypes)+1)
	for _, name := range characterStringTypes {
		alts = append(alts, tok(name))
	}
	alts = append(alts, seq(tok("CHARACTER"), cut(), tok("STRING")))
	b.Rule("character-string-type", choice(alts...))

	b.Rule("useful-type", choice(
		tok("GeneralizedTime"), tok("UTCTime"), tok("ObjectDescriptor"),
	))

	// X.208 ANY, still found in older modules.
	b.Rule("any-type", seq(
		word("ANY"),
		opt(seq(word("DEFINED"), cut(), tok("BY"), field("name", tok("identifier")))),
	))

	b.Rule("instance-of-type", seq(
		tok("INSTANCE"), cut(),
		tok("OF"),
		field("class", ref("_defined_object_class")),
	))

	b.Rule("object-class-field-type", seq(
		field("class", ref("_defined_object_class")),
		tok("."),
		field("field", ref("field-name")),
	))

	b.Rule("selection-type", seq(
		field("name", tok("identifier")),
		tok("<"),
		field("type", ref("_type")),
	))

	b.Rule("parameterized-type", seq(
		field("name", choice(
			prec(1, ref("external-type-reference")),
			tok("type-reference"),
		)),
		field("arguments", ref("actual-parameter-list")),
	))

	b.Rule("external-type-reference", seq(
		field("module", alias("module-reference")),
		tok("."),
		field("name", tok("type-reference")),
	))
}
