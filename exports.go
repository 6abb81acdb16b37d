package asn1cst

import (
	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/engine"
	"github.com/golangsnmp/asn1cst/internal/types"
)

// Type aliases for the public API.

// Tree is a parsed source and its concrete syntax tree.
type Tree = cst.Tree

// Node is a positioned node of a Tree.
type Node = cst.Node

// Point is a 0-based row and byte column.
type Point = cst.Point

// Grammar is a compiled grammar, as returned by Language.
type Grammar = grammar.Language

// NodeType describes one node kind of the node type schema.
type NodeType = grammar.NodeType

// ChildType describes the children a field or a node may hold.
type ChildType = grammar.ChildType

// TypeRef names a node kind inside a NodeType.
type TypeRef = grammar.TypeRef

// InputEdit describes one change to the source between two parses.
type InputEdit = engine.Edit

// SchemaVersion is the version of the node type schema.
const SchemaVersion = grammar.SchemaVersion

// Severity for diagnostics.
type Severity = types.Severity

// Diagnostic represents a lexical or syntax issue.
type Diagnostic = types.Diagnostic

// Severity constants (lower = more severe).
const (
	SeverityFatal   = types.SeverityFatal   // 0: Cannot continue parsing
	SeveritySevere  = types.SeveritySevere  // 1: Structure was repaired
	SeverityError   = types.SeverityError   // 2: Should correct
	SeverityMinor   = types.SeverityMinor   // 3: Minor issue
	SeverityStyle   = types.SeverityStyle   // 4: Style recommendation
	SeverityWarning = types.SeverityWarning // 5: Might be correct
	SeverityInfo    = types.SeverityInfo    // 6: Informational
)

// StrictnessLevel defines preset strictness configurations.
type StrictnessLevel = types.StrictnessLevel

// StrictnessLevel constants.
const (
	StrictnessStrict     = types.StrictnessStrict
	StrictnessNormal     = types.StrictnessNormal
	StrictnessPermissive = types.StrictnessPermissive
	StrictnessSilent     = types.StrictnessSilent
)

// DiagnosticConfig controls strictness and diagnostic filtering.
type DiagnosticConfig = types.DiagnosticConfig

// Config constructors.
var (
	DefaultConfig    = types.DefaultConfig
	StrictConfig     = types.StrictConfig
	PermissiveConfig = types.PermissiveConfig
)

// Diagnostic codes.
const (
	DiagUnexpectedCharacter = types.DiagUnexpectedCharacter
	DiagUnterminatedString  = types.DiagUnterminatedString
	DiagUnterminatedComment = types.DiagUnterminatedComment
	DiagInvalidBString      = types.DiagInvalidBString
	DiagInvalidHString      = types.DiagInvalidHString
	DiagMissingStringSuffix = types.DiagMissingStringSuffix
	DiagIdentifierHyphenEnd = types.DiagIdentifierHyphenEnd
	DiagParseError          = types.DiagParseError
	DiagMissingToken        = types.DiagMissingToken
)

// Equal reports whether two nodes have identical structure: kinds,
// fields, flags and sizes, recursively.
func Equal(a, b *Node) bool { return cst.Equal(a, b) }
