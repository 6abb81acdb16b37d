package types

// Diagnostic codes emitted by the lexer and parser.
// Centralizing these prevents silent breakage from typos in string literals.

// Lexer diagnostic codes.
const (
	DiagUnexpectedCharacter = "unexpected-character"
	DiagUnterminatedString  = "unterminated-string"
	DiagUnterminatedComment = "unterminated-comment"
	DiagInvalidBString      = "invalid-bstring"
	DiagInvalidHString      = "invalid-hstring"
	DiagMissingStringSuffix = "missing-string-suffix"
	DiagIdentifierHyphenEnd = "identifier-hyphen-end"
)

// Parser diagnostic codes.
const (
	DiagParseError   = "parse-error"
	DiagMissingToken = "missing-token"
)

// AllDiagnosticCodes returns all known diagnostic codes grouped by phase.
func AllDiagnosticCodes() []DiagCodeInfo {
	return []DiagCodeInfo{
		// Lexer
		{Code: DiagUnexpectedCharacter, Phase: "lexer"},
		{Code: DiagUnterminatedString, Phase: "lexer"},
		{Code: DiagUnterminatedComment, Phase: "lexer"},
		{Code: DiagInvalidBString, Phase: "lexer"},
		{Code: DiagInvalidHString, Phase: "lexer"},
		{Code: DiagMissingStringSuffix, Phase: "lexer"},
		{Code: DiagIdentifierHyphenEnd, Phase: "lexer"},
		// Parser
		{Code: DiagParseError, Phase: "parser"},
		{Code: DiagMissingToken, Phase: "parser"},
	}
}

// DiagCodeInfo describes a diagnostic code and the phase that emits it.
type DiagCodeInfo struct {
	Code  string
	Phase string
}
