package lexer

import (
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/golangsnmp/asn1cst/internal/types"
)

// Lexer tokenizes ASN.1 source text. Tokens are produced one at a time on
// request; lexing never fails and never stops before the end of input.
type Lexer struct {
	source      []byte
	pos         int
	emitted     int
	diagnostics []types.SpanDiagnostic
	types.Logger
}

// New returns a Lexer that tokenizes the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source: source,
		Logger: types.Logger{L: logger},
	}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Diagnostics returns a copy of all collected diagnostics.
func (l *Lexer) Diagnostics() []types.SpanDiagnostic {
	return slices.Clone(l.diagnostics)
}

func (l *Lexer) traceToken(tok Token) {
	if l.TraceEnabled() {
		l.Trace("token",
			slog.String("kind", tok.Kind.String()),
			slog.Int("start", int(tok.Span.Start)),
			slog.Int("end", int(tok.Span.End)),
			slog.Int("trivia", len(tok.Trivia)))
	}
}

// Tokenize consumes all source text and returns the token stream
// along with any diagnostics generated during lexing.
func (l *Lexer) Tokenize() ([]Token, []types.SpanDiagnostic) {
	estimatedTokens := max(len(l.source)/6, 64)
	tokens := make([]Token, 0, estimatedTokens)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenization complete",
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(l.diagnostics)))
	return tokens, l.diagnostics
}

// NextToken advances the lexer and returns the next token together with
// its leading trivia. Returns TokEOF when all input is consumed; the EOF
// token carries any trailing trivia.
func (l *Lexer) NextToken() Token {
	trivia, newline := l.scanTrivia()
	tok := l.scanToken()
	tok.Trivia = trivia
	tok.LineStart = newline || l.emitted == 0
	l.emitted++
	l.traceToken(tok)
	return tok
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	return l.source[l.pos], true
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) peekAtEquals(offset int, expected byte) bool {
	b, ok := l.peekAt(offset)
	return ok && b == expected
}

func (l *Lexer) advance() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	b := l.source[l.pos]
	l.pos++
	return b, true
}

func (l *Lexer) report(code string, sev types.Severity, span types.Span, message string) {
	l.diagnostics = append(l.diagnostics, types.SpanDiagnostic{
		Severity: sev,
		Code:     code,
		Span:     span,
		Message:  message,
	})
}

func (l *Lexer) spanFrom(start int) types.Span {
	return types.Span{
		Start: types.ByteOffset(start),
		End:   types.ByteOffset(l.pos),
	}
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	return Token{
		Kind: kind,
		Span: l.spanFrom(start),
	}
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// scanTrivia collects whitespace runs and comments up to the next token.
// The second result reports whether a line break was crossed.
func (l *Lexer) scanTrivia() ([]Trivia, bool) {
	var trivia []Trivia
	newline := false
	for {
		start := l.pos
		b, ok := l.peek()
		if !ok {
			return trivia, newline
		}
		switch {
		case isWhitespace(b):
			for {
				b, ok := l.peek()
				if !ok || !isWhitespace(b) {
					break
				}
				if b == '\n' || b == '\r' {
					newline = true
				}
				l.advance()
			}
			trivia = append(trivia, Trivia{Kind: TokWhitespace, Span: l.spanFrom(start)})
		case b == '-' && l.peekAtEquals(1, '-'):
			l.scanLineComment()
			trivia = append(trivia, Trivia{Kind: TokComment, Span: l.spanFrom(start)})
		case b == '/' && l.peekAtEquals(1, '*'):
			if l.scanBlockComment() {
				newline = true
			}
			trivia = append(trivia, Trivia{Kind: TokComment, Span: l.spanFrom(start)})
		default:
			return trivia, newline
		}
	}
}

// scanLineComment consumes a "--" comment. The comment ends at the next
// "--" (which is part of the comment) or before the end of the line.
func (l *Lexer) scanLineComment() {
	l.advance()
	l.advance()
	for {
		b, ok := l.peek()
		if !ok || b == '\n' || b == '\r' {
			return
		}
		if b == '-' && l.peekAtEquals(1, '-') {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

// scanBlockComment consumes a "/* */" comment, honoring nesting.
// Returns true if the comment spans a line break.
func (l *Lexer) scanBlockComment() bool {
	start := l.pos
	l.advance()
	l.advance()
	depth := 1
	newline := false
	for depth > 0 {
		b, ok := l.advance()
		if !ok {
			l.report(types.DiagUnterminatedComment, types.SeverityError, l.spanFrom(start),
				"unterminated block comment")
			return newline
		}
		switch {
		case b == '\n' || b == '\r':
			newline = true
		case b == '/' && l.peekAtEquals(0, '*'):
			l.advance()
			depth++
		case b == '*' && l.peekAtEquals(0, '/'):
			l.advance()
			depth--
		}
	}
	return newline
}

func (l *Lexer) scanToken() Token {
	start := l.pos

	b, ok := l.peek()
	if !ok {
		l.Log(slog.LevelDebug, "reached end of input", slog.Int("offset", start))
		return l.token(TokEOF, start)
	}

	switch b {
	case '{':
		l.advance()
		return l.token(TokLBrace, start)
	case '}':
		l.advance()
		return l.token(TokRBrace, start)
	case '(':
		l.advance()
		return l.token(TokLParen, start)
	case ')':
		l.advance()
		return l.token(TokRParen, start)
	case ',':
		l.advance()
		return l.token(TokComma, start)
	case ';':
		l.advance()
		return l.token(TokSemicolon, start)
	case '|':
		l.advance()
		return l.token(TokPipe, start)
	case '^':
		l.advance()
		return l.token(TokCaret, start)
	case '!':
		l.advance()
		return l.token(TokExclamation, start)
	case '<':
		l.advance()
		return l.token(TokLess, start)
	case '-':
		l.advance()
		return l.token(TokMinus, start)
	case '[':
		l.advance()
		if l.peekAtEquals(0, '[') {
			l.advance()
			return l.token(TokLDoubleBracket, start)
		}
		return l.token(TokLBracket, start)
	case ']':
		l.advance()
		if l.peekAtEquals(0, ']') {
			l.advance()
			return l.token(TokRDoubleBracket, start)
		}
		return l.token(TokRBracket, start)
	case '.':
		l.advance()
		if l.peekAtEquals(0, '.') {
			l.advance()
			if l.peekAtEquals(0, '.') {
				l.advance()
				return l.token(TokEllipsis, start)
			}
			return l.token(TokDotDot, start)
		}
		return l.token(TokDot, start)
	case '@':
		l.advance()
		if l.peekAtEquals(0, '.') {
			l.advance()
			return l.token(TokAtDot, start)
		}
		return l.token(TokAt, start)
	case ':':
		l.advance()
		if l.peekAtEquals(0, ':') && l.peekAtEquals(1, '=') {
			l.advance()
			l.advance()
			return l.token(TokAssign, start)
		}
		return l.token(TokColon, start)
	case '"':
		return l.scanCString()
	case '\'':
		return l.scanBinaryOrHexString()
	case '&':
		if next, ok := l.peekAt(1); ok && isAlpha(next) {
			l.advance()
			return l.scanFieldReference(start)
		}
	}

	if isDigit(b) {
		return l.scanNumber()
	}

	if isAlpha(b) {
		return l.scanIdentifierOrKeyword()
	}

	return l.scanUnexpected()
}

// scanUnexpected consumes one character (a whole UTF-8 sequence when the
// input is valid UTF-8) and returns it as an error token.
func (l *Lexer) scanUnexpected() Token {
	start := l.pos
	r, size := utf8.DecodeRune(l.source[l.pos:])
	l.pos += size
	span := l.spanFrom(start)
	if r == utf8.RuneError && size <= 1 {
		l.report(types.DiagUnexpectedCharacter, types.SeverityError, span,
			fmt.Sprintf("unexpected byte 0x%02x", l.source[start]))
	} else {
		l.report(types.DiagUnexpectedCharacter, types.SeverityError, span,
			fmt.Sprintf("unexpected character %q", r))
	}
	return l.token(TokError, start)
}

// scanName consumes the tail of an identifier: letters, digits and single
// hyphens. A "--" ends the name since it starts a comment.
func (l *Lexer) scanName() {
	for {
		b, ok := l.peek()
		if !ok {
			return
		}
		if isAlphanumeric(b) {
			l.advance()
			continue
		}
		if b == '-' && !l.peekAtEquals(1, '-') {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) checkHyphenEnd(start int) {
	if l.pos > start && l.source[l.pos-1] == '-' {
		l.report(types.DiagIdentifierHyphenEnd, types.SeverityStyle, l.spanFrom(start),
			fmt.Sprintf("identifier %q ends with a hyphen", l.source[start:l.pos]))
	}
}

func (l *Lexer) scanIdentifierOrKeyword() Token {
	start := l.pos
	firstChar, _ := l.advance()
	l.scanName()
	l.checkHyphenEnd(start)

	text := string(l.source[start:l.pos])
	if kind, ok := LookupKeyword(text); ok {
		return l.token(kind, start)
	}

	if isUpperAlpha(firstChar) {
		return l.token(TokTypeReference, start)
	}
	return l.token(TokIdentifier, start)
}

// scanFieldReference scans "&name" with the ampersand already consumed.
func (l *Lexer) scanFieldReference(start int) Token {
	first, _ := l.advance()
	l.scanName()
	l.checkHyphenEnd(start)
	if isUpperAlpha(first) {
		return l.token(TokTypeFieldReference, start)
	}
	return l.token(TokValueFieldReference, start)
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	return l.token(TokNumber, start)
}

// scanCString scans a quoted string. A doubled quote is an embedded quote
// and the string may span lines.
func (l *Lexer) scanCString() Token {
	start := l.pos
	l.advance() // consume opening quote

	for {
		b, ok := l.advance()
		if !ok {
			l.report(types.DiagUnterminatedString, types.SeverityError, l.spanFrom(start),
				"unterminated character string")
			return l.token(TokCString, start)
		}
		if b == '"' {
			if l.peekAtEquals(0, '"') {
				l.advance()
				continue
			}
			return l.token(TokCString, start)
		}
	}
}

// scanBinaryOrHexString scans 'xxx'B and 'xxx'H. Whitespace is permitted
// between the digits. A quote that is never closed is an error token of a
// single character so the rest of the line can still be recognized.
func (l *Lexer) scanBinaryOrHexString() Token {
	start := l.pos
	l.advance() // consume opening quote

	end := -1
	for i := l.pos; i < len(l.source); i++ {
		if l.source[i] == '\'' {
			end = i
			break
		}
	}
	if end < 0 {
		l.report(types.DiagUnterminatedString, types.SeverityError, l.spanFrom(start),
			"unterminated binary or hexadecimal string")
		return l.token(TokError, start)
	}

	body := l.source[l.pos:end]
	l.pos = end + 1 // consume closing quote

	suffix, ok := l.peek()
	switch {
	case ok && suffix == 'B':
		l.advance()
		if bad := firstInvalid(body, isBinaryDigit); bad >= 0 {
			l.report(types.DiagInvalidBString, types.SeverityError, l.spanFrom(start),
				fmt.Sprintf("invalid binary digit %q", body[bad]))
		}
		return l.token(TokBString, start)
	case ok && suffix == 'H':
		l.advance()
		if bad := firstInvalid(body, isHexDigit); bad >= 0 {
			l.report(types.DiagInvalidHString, types.SeverityError, l.spanFrom(start),
				fmt.Sprintf("invalid hexadecimal digit %q", body[bad]))
		}
		return l.token(TokHString, start)
	}

	l.report(types.DiagMissingStringSuffix, types.SeverityError, l.spanFrom(start),
		"expected 'B' or 'H' after quoted string")
	return l.token(TokError, start)
}

func firstInvalid(body []byte, valid func(byte) bool) int {
	for i, b := range body {
		if isWhitespace(b) || valid(b) {
			continue
		}
		return i
	}
	return -1
}

func isBinaryDigit(b byte) bool {
	return b == '0' || b == '1'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'A' && b <= 'F')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isUpperAlpha(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isAlphanumeric(b byte) bool {
	return isAlpha(b) || isDigit(b)
}
