// Package lexer provides tokenization for ASN.1 module source text.
package lexer

import (
	"fmt"

	"github.com/golangsnmp/asn1cst/internal/types"
)

// Token is a token with kind, source span and the trivia that precedes it.
type Token struct {
	Kind TokenKind
	Span types.Span
	// Trivia holds the whitespace runs and comments between the previous
	// token and this one, in source order.
	Trivia []Trivia
	// LineStart is set when no other token precedes this one on its line.
	LineStart bool
}

// Trivia is a whitespace run or comment. Trivia never affects parsing
// decisions but is kept so that the tree covers every source byte.
type Trivia struct {
	Kind TokenKind // TokWhitespace or TokComment
	Span types.Span
}

// NewToken creates a new token with no trivia.
func NewToken(kind TokenKind, span types.Span) Token {
	return Token{Kind: kind, Span: span}
}

// FullStart returns the offset where the token's leading trivia begins.
func (t Token) FullStart() types.ByteOffset {
	if len(t.Trivia) > 0 {
		return t.Trivia[0].Span.Start
	}
	return t.Span.Start
}

// TokenKind identifies a token type. Kinds double as terminal symbols of
// the grammar, so the numbering is part of the node type schema.
type TokenKind int

const (
	// === Special ===

	// TokError is a lexical error.
	TokError TokenKind = iota
	// TokEOF is end of input.
	TokEOF
	// TokWhitespace is a run of blanks and line breaks (trivia).
	TokWhitespace
	// TokComment is a "--" or "/* */" comment (trivia).
	TokComment

	// === Identifiers ===

	// TokTypeReference is an identifier with an uppercase initial that is
	// not a reserved word (typereference, modulereference, objectclassreference).
	TokTypeReference
	// TokIdentifier is an identifier with a lowercase initial
	// (valuereference, identifier, objectreference).
	TokIdentifier
	// TokTypeFieldReference is "&" followed by an uppercase identifier.
	TokTypeFieldReference
	// TokValueFieldReference is "&" followed by a lowercase identifier.
	TokValueFieldReference

	// === Literals ===

	// TokNumber is an unsigned decimal number.
	TokNumber
	// TokCString is a quoted character string ("...").
	TokCString
	// TokBString is a binary string ('...'B).
	TokBString
	// TokHString is a hexadecimal string ('...'H).
	TokHString

	// === Punctuation ===

	TokLBrace          // {
	TokRBrace          // }
	TokLParen          // (
	TokRParen          // )
	TokLBracket        // [
	TokRBracket        // ]
	TokLDoubleBracket  // [[
	TokRDoubleBracket  // ]]
	TokComma           // ,
	TokSemicolon       // ;
	TokColon           // :
	TokDot             // .
	TokDotDot          // ..
	TokEllipsis        // ...
	TokAssign          // ::=
	TokPipe            // |
	TokCaret           // ^
	TokExclamation     // !
	TokAt              // @
	TokAtDot           // @.
	TokLess            // <
	TokMinus           // -

	// === Reserved words (X.680 clause 12.38) ===

	tokKeywordStart
	TokKwAbsent
	TokKwAbstractSyntax
	TokKwAll
	TokKwApplication
	TokKwAutomatic
	TokKwBegin
	TokKwBit
	TokKwBMPString
	TokKwBoolean
	TokKwBy
	TokKwCharacter
	TokKwChoice
	TokKwClass
	TokKwComponent
	TokKwComponents
	TokKwConstrained
	TokKwContaining
	TokKwDate
	TokKwDateTime
	TokKwDefault
	TokKwDefinitions
	TokKwDuration
	TokKwEmbedded
	TokKwEncoded
	TokKwEncodingControl
	TokKwEnd
	TokKwEnumerated
	TokKwExcept
	TokKwExplicit
	TokKwExports
	TokKwExtensibility
	TokKwExternal
	TokKwFalse
	TokKwFrom
	TokKwGeneralizedTime
	TokKwGeneralString
	TokKwGraphicString
	TokKwIA5String
	TokKwIdentifier
	TokKwImplicit
	TokKwImplied
	TokKwImports
	TokKwIncludes
	TokKwInstance
	TokKwInstructions
	TokKwInteger
	TokKwIntersection
	TokKwISO646String
	TokKwMax
	TokKwMin
	TokKwMinusInfinity
	TokKwNotANumber
	TokKwNull
	TokKwNumericString
	TokKwObject
	TokKwObjectDescriptor
	TokKwOctet
	TokKwOf
	TokKwOidIri
	TokKwOptional
	TokKwPattern
	TokKwPdv
	TokKwPlusInfinity
	TokKwPresent
	TokKwPrintableString
	TokKwPrivate
	TokKwReal
	TokKwRelativeOid
	TokKwRelativeOidIri
	TokKwSequence
	TokKwSet
	TokKwSettings
	TokKwSize
	TokKwString
	TokKwSyntax
	TokKwT61String
	TokKwTags
	TokKwTeletexString
	TokKwTime
	TokKwTimeOfDay
	TokKwTrue
	TokKwTypeIdentifier
	TokKwUnion
	TokKwUnique
	TokKwUniversal
	TokKwUniversalString
	TokKwUTCTime
	TokKwUTF8String
	TokKwVideotexString
	TokKwVisibleString
	TokKwWith
	tokKeywordEnd

	// KindCount is the number of token kinds.
	KindCount = int(tokKeywordEnd)
)

var tokenNames = [...]string{
	TokError:               "ERROR",
	TokEOF:                 "end",
	TokWhitespace:          "whitespace",
	TokComment:             "comment",
	TokTypeReference:       "type-reference",
	TokIdentifier:          "identifier",
	TokTypeFieldReference:  "type-field-reference",
	TokValueFieldReference: "value-field-reference",
	TokNumber:              "number",
	TokCString:             "cstring",
	TokBString:             "bstring",
	TokHString:             "hstring",
	TokLBrace:              "{",
	TokRBrace:              "}",
	TokLParen:              "(",
	TokRParen:              ")",
	TokLBracket:            "[",
	TokRBracket:            "]",
	TokLDoubleBracket:      "[[",
	TokRDoubleBracket:      "]]",
	TokComma:               ",",
	TokSemicolon:           ";",
	TokColon:               ":",
	TokDot:                 ".",
	TokDotDot:              "..",
	TokEllipsis:            "...",
	TokAssign:              "::=",
	TokPipe:                "|",
	TokCaret:               "^",
	TokExclamation:         "!",
	TokAt:                  "@",
	TokAtDot:               "@.",
	TokLess:                "<",
	TokMinus:               "-",
	tokKeywordStart:        "",
	TokKwAbsent:            "ABSENT",
	TokKwAbstractSyntax:    "ABSTRACT-SYNTAX",
	TokKwAll:               "ALL",
	TokKwApplication:       "APPLICATION",
	TokKwAutomatic:         "AUTOMATIC",
	TokKwBegin:             "BEGIN",
	TokKwBit:               "BIT",
	TokKwBMPString:         "BMPString",
	TokKwBoolean:           "BOOLEAN",
	TokKwBy:                "BY",
	TokKwCharacter:         "CHARACTER",
	TokKwChoice:            "CHOICE",
	TokKwClass:             "CLASS",
	TokKwComponent:         "COMPONENT",
	TokKwComponents:        "COMPONENTS",
	TokKwConstrained:       "CONSTRAINED",
	TokKwContaining:        "CONTAINING",
	TokKwDate:              "DATE",
	TokKwDateTime:          "DATE-TIME",
	TokKwDefault:           "DEFAULT",
	TokKwDefinitions:       "DEFINITIONS",
	TokKwDuration:          "DURATION",
	TokKwEmbedded:          "EMBEDDED",
	TokKwEncoded:           "ENCODED",
	TokKwEncodingControl:   "ENCODING-CONTROL",
	TokKwEnd:               "END",
	TokKwEnumerated:        "ENUMERATED",
	TokKwExcept:            "EXCEPT",
	TokKwExplicit:          "EXPLICIT",
	TokKwExports:           "EXPORTS",
	TokKwExtensibility:     "EXTENSIBILITY",
	TokKwExternal:          "EXTERNAL",
	TokKwFalse:             "FALSE",
	TokKwFrom:              "FROM",
	TokKwGeneralizedTime:   "GeneralizedTime",
	TokKwGeneralString:     "GeneralString",
	TokKwGraphicString:     "GraphicString",
	TokKwIA5String:         "IA5String",
	TokKwIdentifier:        "IDENTIFIER",
	TokKwImplicit:          "IMPLICIT",
	TokKwImplied:           "IMPLIED",
	TokKwImports:           "IMPORTS",
	TokKwIncludes:          "INCLUDES",
	TokKwInstance:          "INSTANCE",
	TokKwInstructions:      "INSTRUCTIONS",
	TokKwInteger:           "INTEGER",
	TokKwIntersection:      "INTERSECTION",
	TokKwISO646String:      "ISO646String",
	TokKwMax:               "MAX",
	TokKwMin:               "MIN",
	TokKwMinusInfinity:     "MINUS-INFINITY",
	TokKwNotANumber:        "NOT-A-NUMBER",
	TokKwNull:              "NULL",
	TokKwNumericString:     "NumericString",
	TokKwObject:            "OBJECT",
	TokKwObjectDescriptor:  "ObjectDescriptor",
	TokKwOctet:             "OCTET",
	TokKwOf:                "OF",
	TokKwOidIri:            "OID-IRI",
	TokKwOptional:          "OPTIONAL",
	TokKwPattern:           "PATTERN",
	TokKwPdv:               "PDV",
	TokKwPlusInfinity:      "PLUS-INFINITY",
	TokKwPresent:           "PRESENT",
	TokKwPrintableString:   "PrintableString",
	TokKwPrivate:           "PRIVATE",
	TokKwReal:              "REAL",
	TokKwRelativeOid:       "RELATIVE-OID",
	TokKwRelativeOidIri:    "RELATIVE-OID-IRI",
	TokKwSequence:          "SEQUENCE",
	TokKwSet:               "SET",
	TokKwSettings:          "SETTINGS",
	TokKwSize:              "SIZE",
	TokKwString:            "STRING",
	TokKwSyntax:            "SYNTAX",
	TokKwT61String:         "T61String",
	TokKwTags:              "TAGS",
	TokKwTeletexString:     "TeletexString",
	TokKwTime:              "TIME",
	TokKwTimeOfDay:         "TIME-OF-DAY",
	TokKwTrue:              "TRUE",
	TokKwTypeIdentifier:    "TYPE-IDENTIFIER",
	TokKwUnion:             "UNION",
	TokKwUnique:            "UNIQUE",
	TokKwUniversal:         "UNIVERSAL",
	TokKwUniversalString:   "UniversalString",
	TokKwUTCTime:           "UTCTime",
	TokKwUTF8String:        "UTF8String",
	TokKwVideotexString:    "VideotexString",
	TokKwVisibleString:     "VisibleString",
	TokKwWith:              "WITH",
}

// String returns the terminal name of the kind: the literal text for
// punctuation and reserved words, a kebab-case class name otherwise.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsKeyword returns true if the kind is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k > tokKeywordStart && k < tokKeywordEnd
}

// IsNamed returns true if tokens of this kind carry a grammar-assigned
// class name rather than fixed text.
func (k TokenKind) IsNamed() bool {
	switch k {
	case TokError, TokComment,
		TokTypeReference, TokIdentifier,
		TokTypeFieldReference, TokValueFieldReference,
		TokNumber, TokCString, TokBString, TokHString:
		return true
	}
	return false
}

// IsTrivia returns true for whitespace and comments.
func (k TokenKind) IsTrivia() bool {
	return k == TokWhitespace || k == TokComment
}

// IsPunctuation returns true for operator and bracket tokens.
func (k TokenKind) IsPunctuation() bool {
	return k >= TokLBrace && k <= TokMinus
}

// IsReference returns true for the two identifier classes.
func (k TokenKind) IsReference() bool {
	return k == TokTypeReference || k == TokIdentifier
}

// IsOpener returns true for bracket tokens that open a nested group.
func (k TokenKind) IsOpener() bool {
	switch k {
	case TokLBrace, TokLParen, TokLBracket, TokLDoubleBracket:
		return true
	}
	return false
}

// IsCloser returns true for bracket tokens that close a nested group.
func (k TokenKind) IsCloser() bool {
	switch k {
	case TokRBrace, TokRParen, TokRBracket, TokRDoubleBracket:
		return true
	}
	return false
}
