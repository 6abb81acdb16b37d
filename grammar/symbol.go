package grammar

import (
	"math/bits"
	"strings"
)

// Symbol identifies a node kind. Terminal symbols come first and share
// their numbering with the lexer's token kinds; rule, alias and supertype
// symbols follow.
type Symbol uint16

// ErrorSymbol is the symbol of ERROR nodes and lexical error tokens.
const ErrorSymbol Symbol = 0

// FieldID identifies a field label. Zero means "no field".
type FieldID uint16

// RuleID indexes Language.Rules.
type RuleID int32

// NoRule marks a subtree that was not produced by a rule.
const NoRule RuleID = -1

// TokenSet is a set of terminal symbols.
type TokenSet []uint64

func newTokenSet(n int) TokenSet {
	return make(TokenSet, (n+63)/64)
}

// Has reports whether the set contains the terminal.
func (s TokenSet) Has(sym Symbol) bool {
	i := int(sym) / 64
	return i < len(s) && s[i]&(1<<(sym%64)) != 0
}

func (s TokenSet) add(sym Symbol) {
	s[int(sym)/64] |= 1 << (sym % 64)
}

// union adds every member of o and reports whether s changed.
func (s TokenSet) union(o TokenSet) bool {
	changed := false
	for i := range s {
		if v := s[i] | o[i]; v != s[i] {
			s[i] = v
			changed = true
		}
	}
	return changed
}

// Len returns the number of terminals in the set.
func (s TokenSet) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Symbols returns the members in ascending order.
func (s TokenSet) Symbols() []Symbol {
	out := make([]Symbol, 0, s.Len())
	for i, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, Symbol(i*64+b))
			w &^= 1 << b
		}
	}
	return out
}

// Format renders the set using symbol names from lang, for debugging.
func (s TokenSet) Format(lang *Language) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, sym := range s.Symbols() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(lang.SymbolName(sym))
	}
	sb.WriteByte('}')
	return sb.String()
}
