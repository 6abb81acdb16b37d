package lexer

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/golangsnmp/asn1cst/internal/testutil"
	"github.com/golangsnmp/asn1cst/internal/types"
)

func tokenKinds(source string) []TokenKind {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	kinds := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func tokenTexts(source string) []string {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	var texts []string
	for _, t := range tokens {
		if t.Kind != TokEOF {
			texts = append(texts, source[t.Span.Start:t.Span.End])
		}
	}
	return texts
}

func TestEmptyInput(t *testing.T) {
	kinds := tokenKinds("")
	testutil.SliceEqual(t, []TokenKind{TokEOF}, kinds, "empty input")
}

func TestPunctuation(t *testing.T) {
	kinds := tokenKinds("{ } ( ) [ ] [[ ]] , ; | ^ ! < @ @.")
	expected := []TokenKind{
		TokLBrace, TokRBrace, TokLParen, TokRParen,
		TokLBracket, TokRBracket, TokLDoubleBracket, TokRDoubleBracket,
		TokComma, TokSemicolon, TokPipe, TokCaret, TokExclamation,
		TokLess, TokAt, TokAtDot, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestOperators(t *testing.T) {
	kinds := tokenKinds(". .. ... ::= : -")
	expected := []TokenKind{
		TokDot, TokDotDot, TokEllipsis, TokAssign, TokColon, TokMinus, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestRangeWithoutSpaces(t *testing.T) {
	kinds := tokenKinds("(0..255)")
	expected := []TokenKind{TokLParen, TokNumber, TokDotDot, TokNumber, TokRParen, TokEOF}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestNumbers(t *testing.T) {
	texts := tokenTexts("0 1 42 12345 99999999999999999999")
	expectedTexts := []string{"0", "1", "42", "12345", "99999999999999999999"}
	testutil.SliceEqual(t, expectedTexts, texts, "token texts")
}

func TestNegativeNumberIsTwoTokens(t *testing.T) {
	kinds := tokenKinds("-42")
	testutil.SliceEqual(t, []TokenKind{TokMinus, TokNumber, TokEOF}, kinds, "token kinds")
}

func TestIdentifierClasses(t *testing.T) {
	kinds := tokenKinds("ifIndex Foo-Bar my-value X")
	expected := []TokenKind{TokIdentifier, TokTypeReference, TokIdentifier, TokTypeReference, TokEOF}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestFieldReferences(t *testing.T) {
	kinds := tokenKinds("&Type &id &ArgumentType")
	expected := []TokenKind{TokTypeFieldReference, TokValueFieldReference, TokTypeFieldReference, TokEOF}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestKeywords(t *testing.T) {
	kinds := tokenKinds("DEFINITIONS AUTOMATIC TAGS ::= BEGIN END")
	expected := []TokenKind{
		TokKwDefinitions, TokKwAutomatic, TokKwTags, TokAssign,
		TokKwBegin, TokKwEnd, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestHyphenatedKeywords(t *testing.T) {
	kinds := tokenKinds("TYPE-IDENTIFIER RELATIVE-OID RELATIVE-OID-IRI TIME-OF-DAY PLUS-INFINITY")
	expected := []TokenKind{
		TokKwTypeIdentifier, TokKwRelativeOid, TokKwRelativeOidIri,
		TokKwTimeOfDay, TokKwPlusInfinity, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestCharacterStringTypeKeywords(t *testing.T) {
	kinds := tokenKinds("IA5String UTF8String VisibleString GeneralizedTime UTCTime")
	expected := []TokenKind{
		TokKwIA5String, TokKwUTF8String, TokKwVisibleString,
		TokKwGeneralizedTime, TokKwUTCTime, TokEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestKeywordPrefixIsIdentifier(t *testing.T) {
	// A reserved word followed by more name characters is a plain reference.
	kinds := tokenKinds("INTEGERS SETOF ENDING")
	expected := []TokenKind{TokTypeReference, TokTypeReference, TokTypeReference, TokEOF}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestCString(t *testing.T) {
	texts := tokenTexts(`"hello" "say ""hi""" ""`)
	expectedTexts := []string{`"hello"`, `"say ""hi"""`, `""`}
	testutil.SliceEqual(t, expectedTexts, texts, "token texts")
}

func TestMultilineCString(t *testing.T) {
	source := "\"line1\nline2\nline3\""
	kinds := tokenKinds(source)
	testutil.SliceEqual(t, []TokenKind{TokCString, TokEOF}, kinds, "multiline string")
}

func TestBinaryAndHexStrings(t *testing.T) {
	kinds := tokenKinds("'0101'B '0A1F'H ''B ''H '01 10'B")
	expected := []TokenKind{TokBString, TokHString, TokBString, TokHString, TokBString, TokEOF}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestInvalidBinaryDigit(t *testing.T) {
	lexer := New([]byte("'0102'B"), nil)
	tokens, diagnostics := lexer.Tokenize()
	testutil.Equal(t, TokBString, tokens[0].Kind, "kind is kept")
	testutil.Len(t, diagnostics, 1, "diagnostics")
	testutil.Equal(t, types.DiagInvalidBString, diagnostics[0].Code, "code")
}

func TestLowercaseHexDigitsRejected(t *testing.T) {
	lexer := New([]byte("'0a'H"), nil)
	_, diagnostics := lexer.Tokenize()
	testutil.Len(t, diagnostics, 1, "diagnostics")
	testutil.Equal(t, types.DiagInvalidHString, diagnostics[0].Code, "code")
}

func TestLineComment(t *testing.T) {
	lexer := New([]byte("INTEGER -- comment\nBOOLEAN"), nil)
	tokens, _ := lexer.Tokenize()
	testutil.Len(t, tokens, 3, "token count")
	testutil.Equal(t, TokKwBoolean, tokens[1].Kind, "second token")
	testutil.Len(t, tokens[1].Trivia, 3, "whitespace, comment, newline")
	testutil.Equal(t, TokComment, tokens[1].Trivia[1].Kind, "comment trivia")
	testutil.True(t, tokens[1].LineStart, "BOOLEAN starts a line")
	testutil.False(t, tokens[0].Trivia != nil, "no trivia before first token")
	testutil.True(t, tokens[0].LineStart, "first token starts a line")
}

func TestInlineComment(t *testing.T) {
	source := "INTEGER -- comment -- BOOLEAN"
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	testutil.Len(t, tokens, 3, "token count")
	testutil.Equal(t, TokKwBoolean, tokens[1].Kind, "comment ends at second --")
	c := tokens[1].Trivia[1]
	testutil.Equal(t, "-- comment --", source[c.Span.Start:c.Span.End], "comment text")
	testutil.False(t, tokens[1].LineStart, "same line")
}

func TestNestedBlockComment(t *testing.T) {
	source := "A /* outer /* inner */ still outer */ B"
	lexer := New([]byte(source), nil)
	tokens, diagnostics := lexer.Tokenize()
	testutil.Len(t, diagnostics, 0, "diagnostics")
	testutil.SliceEqual(t, []string{"A", "B"}, tokenTexts(source), "token texts")
	c := tokens[1].Trivia[1]
	testutil.Equal(t, "/* outer /* inner */ still outer */", source[c.Span.Start:c.Span.End], "comment text")
}

func TestUnterminatedBlockComment(t *testing.T) {
	lexer := New([]byte("A /* never closed"), nil)
	tokens, diagnostics := lexer.Tokenize()
	testutil.Len(t, tokens, 2, "A and EOF")
	testutil.Equal(t, TokEOF, tokens[1].Kind, "eof")
	testutil.Len(t, diagnostics, 1, "diagnostics")
	testutil.Equal(t, types.DiagUnterminatedComment, diagnostics[0].Code, "code")
}

func TestDoubleHyphenBreaksIdentifier(t *testing.T) {
	source := "foo--bar"
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()

	testutil.Len(t, tokens, 2, "token count")
	testutil.Equal(t, TokIdentifier, tokens[0].Kind, "first token kind")
	text := source[tokens[0].Span.Start:tokens[0].Span.End]
	testutil.Equal(t, "foo", text, "first token text")
}

func TestIdentifierEndingWithHyphen(t *testing.T) {
	source := "test- OBJECT"
	lexer := New([]byte(source), nil)
	tokens, diagnostics := lexer.Tokenize()

	testutil.Equal(t, TokIdentifier, tokens[0].Kind, "first token kind")
	text := source[tokens[0].Span.Start:tokens[0].Span.End]
	testutil.Equal(t, "test-", text, "identifier with trailing hyphen")
	testutil.Len(t, diagnostics, 1, "diagnostics")
	testutil.Equal(t, types.DiagIdentifierHyphenEnd, diagnostics[0].Code, "code")
}

// === Error handling and edge cases ===

func TestUnterminatedCString(t *testing.T) {
	source := `"unterminated string`
	lexer := New([]byte(source), nil)
	tokens, diagnostics := lexer.Tokenize()

	testutil.Equal(t, TokCString, tokens[0].Kind, "unterminated string token kind")
	testutil.Equal(t, types.ByteOffset(len(source)), tokens[0].Span.End, "runs to end of input")
	testutil.Greater(t, len(diagnostics), 0, "should emit diagnostic for unterminated string")
	testutil.Contains(t, diagnostics[0].Message, "unterminated", "diagnostic message")
}

func TestUnterminatedQuote(t *testing.T) {
	source := "'0A1B"
	lexer := New([]byte(source), nil)
	tokens, diagnostics := lexer.Tokenize()

	testutil.Equal(t, TokError, tokens[0].Kind, "unterminated quote token kind")
	testutil.Equal(t, types.ByteOffset(1), tokens[0].Span.End, "error token is one character")
	testutil.Equal(t, TokNumber, tokens[1].Kind, "lexing resumes after the quote")
	testutil.Greater(t, len(diagnostics), 0, "should emit diagnostic")
}

func TestQuotedStringMissingSuffix(t *testing.T) {
	lexer := New([]byte("'0A1B'X"), nil)
	tokens, diagnostics := lexer.Tokenize()

	testutil.Equal(t, TokError, tokens[0].Kind, "bad suffix should produce error token")
	testutil.Equal(t, TokTypeReference, tokens[1].Kind, "X is lexed on its own")
	testutil.Equal(t, types.DiagMissingStringSuffix, diagnostics[0].Code, "code")
}

func TestUnexpectedCharacter(t *testing.T) {
	source := "A # B"
	lexer := New([]byte(source), nil)
	tokens, diagnostics := lexer.Tokenize()

	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	testutil.SliceEqual(t, []TokenKind{TokTypeReference, TokError, TokTypeReference, TokEOF}, kinds,
		"tokens: %s", spew.Sdump(tokens))
	testutil.Equal(t, types.ByteOffset(1), tokens[1].Span.Len(), "single character")
	testutil.Len(t, diagnostics, 1, "diagnostics")
	testutil.Equal(t, types.DiagUnexpectedCharacter, diagnostics[0].Code, "code")
}

func TestUnexpectedMultibyteCharacter(t *testing.T) {
	source := "A é B"
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	testutil.Equal(t, TokError, tokens[1].Kind, "error token")
	testutil.Equal(t, types.ByteOffset(2), tokens[1].Span.Len(), "whole UTF-8 sequence")
}

func TestStrayAmpersand(t *testing.T) {
	kinds := tokenKinds("& 1")
	testutil.SliceEqual(t, []TokenKind{TokError, TokNumber, TokEOF}, kinds, "token kinds")
}

func TestTrailingTriviaOnEOF(t *testing.T) {
	lexer := New([]byte("A -- done\n"), nil)
	tokens, _ := lexer.Tokenize()
	testutil.Len(t, tokens, 2, "token count")
	testutil.Len(t, tokens[1].Trivia, 3, "space, comment, newline")
	testutil.Equal(t, types.ByteOffset(1), tokens[1].FullStart(), "trivia starts after A")
}

// TestTokensTileInput checks that tokens and trivia together cover every
// byte exactly once, in order.
func TestTokensTileInput(t *testing.T) {
	sources := []string{
		"",
		"   ",
		"Foo ::= SEQUENCE { a INTEGER (0..10), b '01'B } -- end",
		"/* x */ A\n\t-- c\r\nB ::= # junk 'oops",
		"\"open string",
	}
	for _, source := range sources {
		lexer := New([]byte(source), nil)
		tokens, _ := lexer.Tokenize()
		var pos types.ByteOffset
		for _, tok := range tokens {
			for _, tr := range tok.Trivia {
				testutil.Equal(t, pos, tr.Span.Start, "trivia start in %q", source)
				pos = tr.Span.End
			}
			testutil.Equal(t, pos, tok.Span.Start, "token start in %q: %s", source, spew.Sdump(tok))
			pos = tok.Span.End
		}
		testutil.Equal(t, types.ByteOffset(len(source)), pos, "coverage of %q", source)
	}
}

func TestKeywordLookup(t *testing.T) {
	tests := []struct {
		text     string
		expected TokenKind
		found    bool
	}{
		{"DEFINITIONS", TokKwDefinitions, true},
		{"BEGIN", TokKwBegin, true},
		{"ObjectDescriptor", TokKwObjectDescriptor, true},
		{"ENCODING-CONTROL", TokKwEncodingControl, true},
		{"ifIndex", TokError, false},
		{"Integer", TokError, false},
		{"", TokError, false},
	}

	for _, tc := range tests {
		kind, found := LookupKeyword(tc.text)
		testutil.Equal(t, tc.found, found, "LookupKeyword(%q) found", tc.text)
		if found {
			testutil.Equal(t, tc.expected, kind, "LookupKeyword(%q) kind", tc.text)
		}
	}
}

func TestKeywordTable(t *testing.T) {
	words := Keywords()
	testutil.Equal(t, int(tokKeywordEnd-tokKeywordStart-1), len(words), "every reserved word is indexed")
	for i := 1; i < len(words); i++ {
		testutil.True(t, words[i-1] < words[i], "sorted: %q before %q", words[i-1], words[i])
	}
	for k := tokKeywordStart + 1; k < tokKeywordEnd; k++ {
		kind, ok := LookupKeyword(k.String())
		testutil.True(t, ok, "lookup %s", k)
		testutil.Equal(t, k, kind, "lookup %s", k)
		testutil.True(t, k.IsKeyword(), "%s is a keyword", k)
	}
}

func TestKindNames(t *testing.T) {
	for k := TokenKind(0); int(k) < KindCount; k++ {
		if k == tokKeywordStart {
			continue
		}
		testutil.False(t, tokenNames[k] == "", "kind %d has a name", int(k))
	}
	testutil.Equal(t, "::=", TokAssign.String(), "punctuation name")
	testutil.Equal(t, "type-reference", TokTypeReference.String(), "class name")
	testutil.True(t, TokNumber.IsNamed(), "number is named")
	testutil.False(t, TokKwInteger.IsNamed(), "keywords are anonymous")
}
